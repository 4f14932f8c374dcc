package models

type CreateOrderRequest struct {
	Type            string   `json:"type" validate:"required,oneof=Chat request"`
	NameOfService   string   `json:"nameofservice" validate:"required,lte=255"`
	Expertise       string   `json:"expertise" validate:"omitempty,lte=255"`
	Episodes        int      `json:"episodes" validate:"gte=0,lte=500"`
	ShowType        string   `json:"showtype" validate:"omitempty,lte=50"`
	Budget          string   `json:"budget" validate:"omitempty,lte=100"`
	Description     string   `json:"description" validate:"omitempty,lte=5000"`
	Files           []string `json:"files" validate:"omitempty,max=20,dive,url"`
	Time            string   `json:"time" validate:"required_if=Type Chat"`
	OriginalOrderID string   `json:"original_order_id" validate:"omitempty,len=11,alphanum"`
}

type ContinueChatRequest struct {
	Time string `json:"time" validate:"required"`
}

type OrderResponse struct {
	Transaction *Transaction `json:"transaction"`
	Request     *Request     `json:"request,omitempty"`
	Payment     *PaymentInit `json:"payment"`
}
