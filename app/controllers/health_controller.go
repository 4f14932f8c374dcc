package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Presence reports live websocket connections.
type Presence interface {
	ConnectionCount() int
}

type HealthController struct {
	db       Pinger
	presence Presence
}

func NewHealthController(db Pinger, presence Presence) *HealthController {
	return &HealthController{db: db, presence: presence}
}

func (h *HealthController) Health(c *fiber.Ctx) error {
	status := fiber.Map{"status": "ok", "time": time.Now().UTC()}
	if h.presence != nil {
		status["websocket_connections"] = h.presence.ConnectionCount()
	}
	if h.db == nil {
		return c.JSON(status)
	}
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		status["status"] = "degraded"
		status["database"] = err.Error()
		return c.Status(fiber.StatusServiceUnavailable).JSON(status)
	}
	status["database"] = "ok"
	return c.JSON(status)
}
