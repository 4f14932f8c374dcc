package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/gilanghuda/crewhub-backend/pkg/apperror"
)

const CronKeyHeader = "X-Cron-Key"

// CronKeyProtected guards scheduler endpoints with a shared key. An empty
// key disables the route entirely.
func CronKeyProtected(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got := c.Get(CronKeyHeader)
		if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			return apperror.Forbidden("invalid cron key")
		}
		return c.Next()
	}
}
