package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gilanghuda/crewhub-backend/app/models"
	"github.com/gilanghuda/crewhub-backend/app/pricing"
	"github.com/gilanghuda/crewhub-backend/app/scheduling"
	"github.com/gilanghuda/crewhub-backend/pkg/apperror"
	"github.com/gilanghuda/crewhub-backend/pkg/logger"
	"github.com/gilanghuda/crewhub-backend/pkg/metrics"
	"github.com/gilanghuda/crewhub-backend/pkg/utils"
)

const listLimit = 100

type OrderService struct {
	db        Transactor
	txns      TransactionStore
	requests  RequestStore
	users     UserDirectory
	prices    PriceResolver
	payments  PaymentInitializer
	scheduler *scheduling.Scheduler
	newToken  func() string
}

type OrderDeps struct {
	DB        Transactor
	Txns      TransactionStore
	Requests  RequestStore
	Users     UserDirectory
	Prices    PriceResolver
	Payments  PaymentInitializer
	Scheduler *scheduling.Scheduler
}

func NewOrderService(d OrderDeps) *OrderService {
	return &OrderService{
		db:        d.DB,
		txns:      d.Txns,
		requests:  d.Requests,
		users:     d.Users,
		prices:    d.Prices,
		payments:  d.Payments,
		scheduler: d.Scheduler,
		newToken:  utils.NewOrderToken,
	}
}

// CreateOrder prices the order, persists the Transaction and its Request in
// one database transaction, then opens the payment. A gateway failure marks
// the transaction failed and the request cancelled before returning.
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, in models.CreateOrderRequest) (*models.OrderResponse, error) {
	if userID == uuid.Nil {
		return nil, apperror.Auth("missing user")
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	var window *scheduling.Window
	if in.Type == models.TypeChat {
		start, err := s.scheduler.ParseStart(in.Time)
		if err != nil {
			return nil, err
		}
		w := s.scheduler.ScheduleChat(start)
		window = &w
	}

	amount, err := s.prices.Resolve(ctx, pricingTitle(in), pricing.Attributes{
		Episodes:       in.Episodes,
		ShowType:       in.ShowType,
		SessionMinutes: s.scheduler.LengthMinutes(),
	})
	if err != nil {
		return nil, err
	}

	var original *string
	if in.OriginalOrderID != "" {
		prev, err := s.requests.GetRequestByOrderID(ctx, in.OriginalOrderID)
		if err != nil {
			return nil, err
		}
		if prev.UserID != userID {
			return nil, apperror.NotFound("request not found")
		}
		original = &prev.OrderID
	}

	email, err := s.users.GetUserEmailByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Second)
	orderID := s.newToken()
	txn := &models.Transaction{
		ID:              uuid.New(),
		Title:           in.NameOfService,
		UserID:          userID,
		Type:            in.Type,
		OrderID:         orderID,
		Price:           amount,
		Status:          models.TransactionProcessing,
		OriginalOrderID: original,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	req := &models.Request{
		ID:            uuid.New(),
		OrderID:       orderID,
		UserID:        userID,
		Type:          in.Type,
		NameOfService: in.NameOfService,
		Status:        models.RequestPending,
		Expertise:     in.Expertise,
		Episodes:      in.Episodes,
		ShowType:      in.ShowType,
		Budget:        in.Budget,
		Description:   in.Description,
		Files:         in.Files,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if window != nil {
		start, end := window.Start, window.End
		req.RequestedTime = &start
		req.BookTime = &start
		req.EndTime = &end
		req.BookDay = window.Day
	}

	err = s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.txns.CreateTransaction(ctx, txn); err != nil {
			return err
		}
		return s.requests.CreateRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	payment, err := s.payments.InitializePayment(ctx, email, amount, txn.ID)
	if err != nil {
		s.compensate(ctx, txn, err)
		return nil, err
	}
	txn.Reference = payment.Reference

	metrics.OrdersCreatedTotal.WithLabelValues(in.Type, pricing.Tag(in.NameOfService)).Inc()
	metrics.OrderAmountTotal.WithLabelValues(in.Type).Add(float64(amount))
	logger.Info("order created", "order_id", orderID, "type", in.Type, "service", in.NameOfService, "amount", amount)

	return &models.OrderResponse{Transaction: txn, Request: req, Payment: payment}, nil
}

func (s *OrderService) compensate(ctx context.Context, txn *models.Transaction, cause error) {
	// the caller's context may already be done; compensation must still land
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.txns.MarkFailed(ctx, txn.ID); err != nil {
		logger.Error("compensation: mark transaction failed", "order_id", txn.OrderID, "error", err)
	} else {
		txn.Status = models.TransactionFailed
	}
	if _, err := s.requests.MarkCancelled(ctx, txn.OrderID); err != nil {
		logger.Error("compensation: cancel request", "order_id", txn.OrderID, "error", err)
	}
	logger.Warn("order payment failed, compensated", "order_id", txn.OrderID, "error", cause)
}

// GetTransaction returns a transaction owned by userID.
func (s *OrderService) GetTransaction(ctx context.Context, userID uuid.UUID, orderID string) (*models.Transaction, error) {
	t, err := s.txns.GetTransactionByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if t.UserID != userID {
		return nil, apperror.NotFound("transaction not found")
	}
	return t, nil
}

// GetRequest returns a request owned by userID.
func (s *OrderService) GetRequest(ctx context.Context, userID uuid.UUID, orderID string) (*models.Request, error) {
	r, err := s.requests.GetRequestByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, apperror.NotFound("request not found")
	}
	return r, nil
}

func (s *OrderService) ListTransactions(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	return s.txns.GetTransactionsByUser(ctx, userID, listLimit)
}

// pricingTitle is the catalog key for the order: chat bookings are priced as
// a session regardless of the consultant's service label.
func pricingTitle(in models.CreateOrderRequest) string {
	if in.Type == models.TypeChat {
		return models.TypeChat
	}
	return in.NameOfService
}
