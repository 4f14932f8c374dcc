package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/gilanghuda/crewhub-backend/pkg/utils"
)

const LocalUserID = "user_id"

// JWTProtected requires a bearer token signed with secret and stores the
// caller's id under LocalUserID.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromHeader(c.Get(fiber.HeaderAuthorization), secret)
		if err != nil {
			return err
		}
		c.Locals(LocalUserID, userID)
		return c.Next()
	}
}

// UserID returns the id JWTProtected stored, or uuid.Nil.
func UserID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(LocalUserID).(uuid.UUID)
	return id
}
