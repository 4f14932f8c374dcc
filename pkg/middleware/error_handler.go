package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/gilanghuda/crewhub-backend/pkg/apperror"
)

// ErrorHandler renders any handler error as {message, error?} JSON with the
// status its apperror kind maps to. Fiber's own errors keep their code.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}
	return c.Status(apperror.HTTPStatus(err)).JSON(apperror.Body(err))
}
