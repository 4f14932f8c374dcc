package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/gilanghuda/crewhub-backend/pkg/logger"
	"github.com/gilanghuda/crewhub-backend/pkg/utils"
)

// WsUpgrade rejects plain HTTP requests to the websocket route.
func WsUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// WsHandler registers the socket for the user named by ?token= and keeps it
// open until the client goes away. Inbound frames are ignored.
func WsHandler(notifier *utils.Notifier, secret string) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		userID, err := utils.ExtractUserIDFromToken(c.Query("token"), secret)
		if err != nil {
			logger.Debug("ws rejected", "error", err)
			_ = c.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthorized"))
			_ = c.Close()
			return
		}

		notifier.Register(userID, c)
		defer notifier.Unregister(userID, c)

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}
}
