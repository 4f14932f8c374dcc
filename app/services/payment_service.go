package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/gilanghuda/crewhub-backend/app/models"
	"github.com/gilanghuda/crewhub-backend/pkg/apperror"
	"github.com/gilanghuda/crewhub-backend/pkg/logger"
	"github.com/gilanghuda/crewhub-backend/pkg/metrics"
	"github.com/gilanghuda/crewhub-backend/pkg/paystack"
)

type PaymentService struct {
	gateway Gateway
	txns    TransactionStore
}

func NewPaymentService(g Gateway, txns TransactionStore) *PaymentService {
	return &PaymentService{gateway: g, txns: txns}
}

// InitializePayment opens a gateway transaction and attaches the returned
// reference to transactionID. It is the only writer of Transaction.Reference.
func (s *PaymentService) InitializePayment(ctx context.Context, email string, amount int64, transactionID uuid.UUID) (*models.PaymentInit, error) {
	if email == "" {
		return nil, apperror.Validation("customer email is required")
	}
	if amount <= 0 {
		return nil, apperror.Validation("amount must be positive")
	}

	data, err := s.gateway.Initialize(ctx, email, amount)
	if err != nil {
		var gwErr *paystack.ErrGateway
		if errors.As(err, &gwErr) {
			metrics.PaymentInitTotal.WithLabelValues("rejected").Inc()
			logger.Warn("payment gateway rejected initialize", "transaction_id", transactionID, "message", gwErr.Message)
			return nil, apperror.Upstream(err, gwErr.Message)
		}
		metrics.PaymentInitTotal.WithLabelValues("unavailable").Inc()
		logger.Error("payment gateway unreachable", "transaction_id", transactionID, "error", err)
		return nil, apperror.Upstream(err, "payment gateway unavailable")
	}

	if err := s.txns.SetReference(ctx, transactionID, data.Reference); err != nil {
		metrics.PaymentInitTotal.WithLabelValues("reference_error").Inc()
		return nil, err
	}

	metrics.PaymentInitTotal.WithLabelValues("ok").Inc()
	return &models.PaymentInit{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
	}, nil
}
