package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/gilanghuda/crewhub-backend/app/models"
	"github.com/gilanghuda/crewhub-backend/pkg/apperror"
	"github.com/gilanghuda/crewhub-backend/pkg/middleware"
)

type BookingService interface {
	RequestContinuation(ctx context.Context, userID uuid.UUID, orderID, rawStart string) (*models.OrderResponse, error)
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

type BookingController struct {
	bookings BookingService
	now      func() time.Time
}

func NewBookingController(bookings BookingService) *BookingController {
	return &BookingController{bookings: bookings, now: time.Now}
}

// ContinueChat stages another session right after an active chat booking.
func (h *BookingController) ContinueChat(c *fiber.Ctx) error {
	p := models.ContinueChatRequest{}
	if err := c.BodyParser(&p); err != nil {
		return apperror.Validation("invalid body")
	}
	if p.Time == "" {
		return apperror.Validation("time required")
	}

	res, err := h.bookings.RequestContinuation(c.UserContext(), middleware.UserID(c), c.Params("orderId"), p.Time)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *BookingController) Sweep(c *fiber.Ctx) error {
	n, err := h.bookings.SweepExpired(c.UserContext(), h.now())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"closed": n})
}
