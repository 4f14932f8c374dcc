package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/gilanghuda/crewhub-backend/app/models"
	"github.com/gilanghuda/crewhub-backend/app/pricing"
	"github.com/gilanghuda/crewhub-backend/app/scheduling"
	"github.com/gilanghuda/crewhub-backend/pkg/apperror"
	"github.com/gilanghuda/crewhub-backend/pkg/logger"
	"github.com/gilanghuda/crewhub-backend/pkg/mailer"
	"github.com/gilanghuda/crewhub-backend/pkg/metrics"
	"github.com/gilanghuda/crewhub-backend/pkg/utils"
)

const (
	EventSessionClosed = "session.closed"

	DefaultSweepGrace = 5 * time.Minute
	sweepBatch        = 500
)

type BookingService struct {
	db        Transactor
	txns      TransactionStore
	requests  RequestStore
	users     UserDirectory
	prices    PriceResolver
	payments  PaymentInitializer
	scheduler *scheduling.Scheduler
	mail      mailer.Mailer
	realtime  RealtimeNotifier
	grace     time.Duration
	newToken  func() string
}

type BookingDeps struct {
	DB        Transactor
	Txns      TransactionStore
	Requests  RequestStore
	Users     UserDirectory
	Prices    PriceResolver
	Payments  PaymentInitializer
	Scheduler *scheduling.Scheduler
	Mailer    mailer.Mailer
	Realtime  RealtimeNotifier
	Grace     time.Duration
}

func NewBookingService(d BookingDeps) *BookingService {
	grace := d.Grace
	if grace <= 0 {
		grace = DefaultSweepGrace
	}
	return &BookingService{
		db:        d.DB,
		txns:      d.Txns,
		requests:  d.Requests,
		users:     d.Users,
		prices:    d.Prices,
		payments:  d.Payments,
		scheduler: d.Scheduler,
		mail:      d.Mailer,
		realtime:  d.Realtime,
		grace:     grace,
		newToken:  utils.NewOrderToken,
	}
}

// RequestContinuation stages a follow-on window for an active chat booking
// and opens a payment for it. The live window is untouched until the
// payment webhook activates the staged one.
func (s *BookingService) RequestContinuation(ctx context.Context, userID uuid.UUID, orderID, rawStart string) (*models.OrderResponse, error) {
	req, err := s.requests.GetRequestByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if req.UserID != userID {
		return nil, apperror.Forbidden("booking belongs to another user")
	}
	if req.Type != models.TypeChat {
		return nil, apperror.Validation("only chat bookings can be continued")
	}
	if req.Status == models.RequestPending || req.Status == models.RequestCancelled {
		return nil, apperror.Conflict("booking is not active yet")
	}

	start, err := s.scheduler.ParseStart(rawStart)
	if err != nil {
		return nil, err
	}
	window := s.scheduler.ScheduleChat(start)

	amount, err := s.prices.Resolve(ctx, models.TypeChat, pricing.Attributes{SessionMinutes: s.scheduler.LengthMinutes()})
	if err != nil {
		return nil, err
	}

	email, err := s.users.GetUserEmailByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Second)
	parent := req.OrderID
	txn := &models.Transaction{
		ID:                      uuid.New(),
		Title:                   req.NameOfService,
		UserID:                  userID,
		Type:                    models.TypeChat,
		OrderID:                 s.newToken(),
		Price:                   amount,
		Status:                  models.TransactionProcessing,
		OriginalOrderIDFromChat: &parent,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	err = s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.requests.StageContinuation(ctx, req.OrderID, window.Start, window.End, window.Day); err != nil {
			return err
		}
		return s.txns.CreateTransaction(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	payment, err := s.payments.InitializePayment(ctx, email, amount, txn.ID)
	if err != nil {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if mErr := s.txns.MarkFailed(ctx, txn.ID); mErr != nil {
			logger.Error("compensation: mark continuation failed", "order_id", txn.OrderID, "error", mErr)
		}
		return nil, err
	}
	txn.Reference = payment.Reference

	metrics.ContinuationsTotal.Inc()
	logger.Info("chat continuation staged", "order_id", req.OrderID, "transaction", txn.OrderID, "start", window.Start)

	staged, err := s.requests.GetRequestByOrderID(ctx, req.OrderID)
	if err != nil {
		staged = req
	}
	return &models.OrderResponse{Transaction: txn, Request: staged, Payment: payment}, nil
}

// SweepExpired completes ongoing chat bookings whose window ended more than
// the grace period before now. Each booking is closed by exactly one caller;
// only that caller sends the closing notifications.
func (s *BookingService) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.UTC().Add(-s.grace)
	expired, err := s.requests.ListExpiredChats(ctx, cutoff, sweepBatch)
	if err != nil {
		return 0, err
	}

	closed := 0
	for i := range expired {
		r := &expired[i]
		ok, err := s.requests.CompleteIfExpired(ctx, r.OrderID, cutoff)
		if err != nil {
			logger.Error("sweep: complete request", "order_id", r.OrderID, "error", err)
			continue
		}
		if !ok {
			continue
		}
		closed++
		metrics.SweepClosedTotal.Inc()
		s.notifyClosed(ctx, r)
	}

	if closed > 0 {
		logger.Info("sweep closed chat bookings", "closed", closed, "candidates", len(expired))
	}
	return closed, nil
}

func (s *BookingService) notifyClosed(ctx context.Context, r *models.Request) {
	var end time.Time
	if r.EndTime != nil {
		end = *r.EndTime
	}
	if s.realtime != nil {
		err := s.realtime.Push(r.UserID, EventSessionClosed, map[string]any{
			"order_id": r.OrderID,
			"end_time": s.scheduler.Format(end),
		})
		if err != nil && !errors.Is(err, utils.ErrNoConnection) {
			logger.Warn("sweep: realtime push failed", "order_id", r.OrderID, "error", err)
		}
	}

	if s.mail == nil {
		return
	}
	to, err := s.users.GetUserEmailByID(ctx, r.UserID)
	if err != nil {
		logger.Warn("sweep: requester email lookup failed", "order_id", r.OrderID, "error", err)
		return
	}
	email, err := mailer.SessionClosed(to, mailer.BookingData{
		Service: r.NameOfService,
		OrderID: r.OrderID,
		Day:     r.BookDay,
		End:     s.scheduler.Format(end),
	})
	if err == nil {
		err = s.mail.Send(ctx, email)
	}
	if err != nil {
		metrics.NotificationFailuresTotal.WithLabelValues("email").Inc()
		logger.Warn("sweep: closing email failed", "order_id", r.OrderID, "error", err)
	}
}

// RunSweeper calls SweepExpired every interval until ctx is done.
func (s *BookingService) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("booking sweeper started", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			logger.Info("booking sweeper stopped")
			return
		case now := <-ticker.C:
			if _, err := s.SweepExpired(ctx, now); err != nil {
				logger.Error("booking sweep failed", "error", err)
			}
		}
	}
}
