package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gilanghuda/crewhub-backend/pkg/logger"
)

// RequestLogger logs one line per request after the handler chain ran.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// let the app error handler write the status before logging it
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		kv := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start).String(),
			"ip", c.IP(),
		}
		switch {
		case status >= 500:
			logger.Error("http request", append(kv, "error", err)...)
		case status >= 400:
			logger.Warn("http request", kv...)
		default:
			logger.Info("http request", kv...)
		}
		return nil
	}
}
