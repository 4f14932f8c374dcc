package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/gilanghuda/crewhub-backend/app/models"
	"github.com/gilanghuda/crewhub-backend/pkg/apperror"
	"github.com/gilanghuda/crewhub-backend/pkg/middleware"
)

type OrderService interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, in models.CreateOrderRequest) (*models.OrderResponse, error)
	GetTransaction(ctx context.Context, userID uuid.UUID, orderID string) (*models.Transaction, error)
	GetRequest(ctx context.Context, userID uuid.UUID, orderID string) (*models.Request, error)
	ListTransactions(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error)
}

type OrderController struct {
	orders OrderService
}

func NewOrderController(orders OrderService) *OrderController {
	return &OrderController{orders: orders}
}

func (h *OrderController) CreateOrder(c *fiber.Ctx) error {
	p := models.CreateOrderRequest{}
	if err := c.BodyParser(&p); err != nil {
		return apperror.Validation("invalid body")
	}

	res, err := h.orders.CreateOrder(c.UserContext(), middleware.UserID(c), p)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *OrderController) GetTransaction(c *fiber.Ctx) error {
	t, err := h.orders.GetTransaction(c.UserContext(), middleware.UserID(c), c.Params("orderId"))
	if err != nil {
		return err
	}
	return c.JSON(t)
}

func (h *OrderController) ListTransactions(c *fiber.Ctx) error {
	list, err := h.orders.ListTransactions(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	if list == nil {
		list = []models.Transaction{}
	}
	return c.JSON(fiber.Map{"transactions": list})
}

func (h *OrderController) GetRequest(c *fiber.Ctx) error {
	r, err := h.orders.GetRequest(c.UserContext(), middleware.UserID(c), c.Params("orderId"))
	if err != nil {
		return err
	}
	return c.JSON(r)
}
