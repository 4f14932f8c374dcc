// Package services holds the order, payment, booking and webhook workflows.
// Stores, gateway and notification channels are injected as small interfaces
// so each workflow can be exercised against SQLite and fakes.
package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gilanghuda/crewhub-backend/app/models"
	"github.com/gilanghuda/crewhub-backend/app/pricing"
	"github.com/gilanghuda/crewhub-backend/pkg/paystack"
)

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type TransactionStore interface {
	CreateTransaction(ctx context.Context, t *models.Transaction) error
	GetTransactionByOrderID(ctx context.Context, orderID string) (*models.Transaction, error)
	GetTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error)
	GetTransactionsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Transaction, error)
	SetReference(ctx context.Context, id uuid.UUID, reference string) error
	CompleteByReference(ctx context.Context, reference string) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID) error
}

type RequestStore interface {
	CreateRequest(ctx context.Context, r *models.Request) error
	GetRequestByOrderID(ctx context.Context, orderID string) (*models.Request, error)
	StageContinuation(ctx context.Context, orderID string, start, end time.Time, day string) error
	ActivateContinuation(ctx context.Context, orderID string) (bool, error)
	MarkOngoing(ctx context.Context, orderID string) (bool, error)
	MarkCancelled(ctx context.Context, orderID string) (bool, error)
	ListExpiredChats(ctx context.Context, cutoff time.Time, limit int) ([]models.Request, error)
	CompleteIfExpired(ctx context.Context, orderID string, cutoff time.Time) (bool, error)
}

type UserDirectory interface {
	GetUserEmailByID(ctx context.Context, id uuid.UUID) (string, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.AdminNotification) error
}

type PriceResolver interface {
	Resolve(ctx context.Context, title string, a pricing.Attributes) (int64, error)
}

// Gateway is the payment provider's initialize call.
type Gateway interface {
	Initialize(ctx context.Context, email string, amount int64) (*paystack.InitializeData, error)
}

type PaymentInitializer interface {
	InitializePayment(ctx context.Context, email string, amount int64, transactionID uuid.UUID) (*models.PaymentInit, error)
}

// RealtimeNotifier pushes an event to a connected user. Implementations
// return an error when the user is not connected; callers treat it as best-effort.
type RealtimeNotifier interface {
	Push(userID uuid.UUID, event string, payload any) error
}

type AdminAlerter interface {
	Create(ctx context.Context, typ, orderID, title string) error
}
