package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/gilanghuda/crewhub-backend/app/models"
	"github.com/gilanghuda/crewhub-backend/pkg/paystack"
)

type WebhookService interface {
	HandleGatewayWebhook(ctx context.Context, rawBody []byte, signature string) (*models.WebhookAck, error)
}

type WebhookController struct {
	webhooks WebhookService
}

func NewWebhookController(webhooks WebhookService) *WebhookController {
	return &WebhookController{webhooks: webhooks}
}

// Paystack receives gateway callbacks. The signature covers the raw body, so
// it is passed through untouched.
func (h *WebhookController) Paystack(c *fiber.Ctx) error {
	body := append([]byte(nil), c.Body()...)
	ack, err := h.webhooks.HandleGatewayWebhook(c.UserContext(), body, c.Get(paystack.SignatureHeader))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(ack)
}
