package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeChat    = "Chat"
	TypeRequest = "request"
)

const (
	TransactionProcessing = "processing"
	TransactionCompleted  = "completed"
	TransactionFailed     = "failed"
)

// Transaction is one payment attempt. OrderID joins it to the Request it pays for.
type Transaction struct {
	ID                      uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Title                   string    `json:"title" gorm:"not null"`
	UserID                  uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Type                    string    `json:"type" gorm:"not null"`
	OrderID                 string    `json:"order_id" gorm:"size:11;not null;uniqueIndex"`
	Price                   int64     `json:"price" gorm:"not null"`
	Reference               string    `json:"reference" gorm:"not null;default:'';index"`
	Status                  string    `json:"status" gorm:"not null;index"`
	OriginalOrderID         *string   `json:"original_order_id,omitempty" gorm:"size:11"`
	OriginalOrderIDFromChat *string   `json:"original_order_id_from_chat,omitempty" gorm:"column:original_order_id_from_chat;size:11"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

func (Transaction) TableName() string { return "transactions" }

// IsContinuation reports whether the transaction pays for extending an existing chat.
func (t *Transaction) IsContinuation() bool {
	return t.OriginalOrderIDFromChat != nil && *t.OriginalOrderIDFromChat != ""
}

// GoverningOrderID is the order id of the Request this transaction acts on.
func (t *Transaction) GoverningOrderID() string {
	if t.IsContinuation() {
		return *t.OriginalOrderIDFromChat
	}
	return t.OrderID
}

type PaymentInit struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}
