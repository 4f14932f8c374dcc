package models

const EventChargeSuccess = "charge.success"

type GatewayEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Status    string `json:"status"`
		Customer  struct {
			Email string `json:"email"`
		} `json:"customer"`
	} `json:"data"`
}

type WebhookAck struct {
	Message string `json:"message"`
	OrderID string `json:"order_id,omitempty"`
}
