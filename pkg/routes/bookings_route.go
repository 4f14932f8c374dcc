package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/gilanghuda/crewhub-backend/app/controllers"
	"github.com/gilanghuda/crewhub-backend/pkg/middleware"
	"github.com/gilanghuda/crewhub-backend/pkg/utils"
)

func RegisterBookingRoutes(app *fiber.App, h *controllers.BookingController, jwtSecret, cronKey string) {
	bookings := app.Group("/bookings")
	bookings.Post("/sweep", middleware.CronKeyProtected(cronKey), h.Sweep)
	bookings.Post("/:orderId/continue", middleware.JWTProtected(jwtSecret), h.ContinueChat)
}

func RegisterRealtimeRoutes(app *fiber.App, notifier *utils.Notifier, jwtSecret string) {
	app.Get("/ws", controllers.WsUpgrade, websocket.New(controllers.WsHandler(notifier, jwtSecret)))
}
