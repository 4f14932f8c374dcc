package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gilanghuda/crewhub-backend/app/controllers"
	"github.com/gilanghuda/crewhub-backend/pkg/middleware"
)

func RegisterTransactionRoutes(app *fiber.App, h *controllers.OrderController, jwtSecret string) {
	auth := middleware.JWTProtected(jwtSecret)

	app.Post("/orders", auth, h.CreateOrder)
	app.Get("/transactions", auth, h.ListTransactions)
	app.Get("/transactions/:orderId", auth, h.GetTransaction)
	app.Get("/requests/:orderId", auth, h.GetRequest)
}

func RegisterWebhookRoutes(app *fiber.App, h *controllers.WebhookController) {
	app.Post("/webhooks/paystack", h.Paystack)
}
