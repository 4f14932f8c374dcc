package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/gilanghuda/crewhub-backend/app/models"
	"github.com/gilanghuda/crewhub-backend/app/scheduling"
	"github.com/gilanghuda/crewhub-backend/pkg/apperror"
	"github.com/gilanghuda/crewhub-backend/pkg/logger"
	"github.com/gilanghuda/crewhub-backend/pkg/mailer"
	"github.com/gilanghuda/crewhub-backend/pkg/metrics"
	"github.com/gilanghuda/crewhub-backend/pkg/paystack"
	"github.com/gilanghuda/crewhub-backend/pkg/utils"
)

const EventPaymentCompleted = "payment.completed"

// notifyTimeout bounds the post-commit side effects of one delivery. They run
// detached from the request so a client deadline cannot drop them.
const notifyTimeout = 30 * time.Second

const (
	AckProcessed        = "payment processed"
	AckIgnored          = "event ignored"
	AckNotFound         = "transaction not found"
	AckAlreadyProcessed = "already processed"
)

type WebhookService struct {
	secret    string
	db        Transactor
	txns      TransactionStore
	requests  RequestStore
	users     UserDirectory
	scheduler *scheduling.Scheduler
	mail      mailer.Mailer
	realtime  RealtimeNotifier
	admin     AdminAlerter
}

type WebhookDeps struct {
	Secret    string
	DB        Transactor
	Txns      TransactionStore
	Requests  RequestStore
	Users     UserDirectory
	Scheduler *scheduling.Scheduler
	Mailer    mailer.Mailer
	Realtime  RealtimeNotifier
	Admin     AdminAlerter
}

func NewWebhookService(d WebhookDeps) *WebhookService {
	return &WebhookService{
		secret:    d.Secret,
		db:        d.DB,
		txns:      d.Txns,
		requests:  d.Requests,
		users:     d.Users,
		scheduler: d.Scheduler,
		mail:      d.Mailer,
		realtime:  d.Realtime,
		admin:     d.Admin,
	}
}

// settlement is what the database step decided; side effects run from it
// after commit.
type settlement struct {
	txn     *models.Transaction
	request *models.Request
	replay  bool
}

// HandleGatewayWebhook verifies and applies a gateway callback. Once the
// signature checks out every outcome is acknowledged; only state changes made
// by this delivery trigger notifications.
func (s *WebhookService) HandleGatewayWebhook(ctx context.Context, rawBody []byte, signature string) (*models.WebhookAck, error) {
	if !paystack.VerifySignature(s.secret, rawBody, signature) {
		metrics.WebhookEventsTotal.WithLabelValues("invalid_signature").Inc()
		return nil, apperror.Auth("invalid webhook signature")
	}

	var ev models.GatewayEvent
	if err := json.Unmarshal(rawBody, &ev); err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("malformed").Inc()
		return nil, apperror.Validation("invalid webhook payload")
	}

	if ev.Event != models.EventChargeSuccess {
		metrics.WebhookEventsTotal.WithLabelValues("ignored").Inc()
		logger.Debug("webhook event ignored", "event", ev.Event)
		return &models.WebhookAck{Message: AckIgnored}, nil
	}

	txn, err := s.txns.GetTransactionByReference(ctx, ev.Data.Reference)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			metrics.WebhookEventsTotal.WithLabelValues("unknown_reference").Inc()
			logger.Warn("webhook for unknown reference", "reference", ev.Data.Reference)
			return &models.WebhookAck{Message: AckNotFound}, nil
		}
		return nil, err
	}
	// A mismatched amount is flagged for reconciliation, the order is still settled.
	if ev.Data.Amount != 0 && ev.Data.Amount != txn.Price {
		metrics.WebhookEventsTotal.WithLabelValues("amount_mismatch").Inc()
		logger.Warn("webhook amount differs from order price",
			"order_id", txn.OrderID, "price", txn.Price, "paid", ev.Data.Amount)
	}

	st, err := s.settle(ctx, txn)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if st.replay {
		metrics.WebhookEventsTotal.WithLabelValues("replay").Inc()
		logger.Info("webhook replay ignored", "order_id", txn.OrderID, "reference", txn.Reference)
		return &models.WebhookAck{Message: AckAlreadyProcessed, OrderID: txn.OrderID}, nil
	}

	metrics.WebhookEventsTotal.WithLabelValues("processed").Inc()
	logger.Info("payment completed", "order_id", txn.OrderID, "type", txn.Type, "governing_order", txn.GoverningOrderID())

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	s.notify(nctx, st, ev.Data.Customer.Email)
	return &models.WebhookAck{Message: AckProcessed, OrderID: txn.OrderID}, nil
}

func (s *WebhookService) settle(ctx context.Context, txn *models.Transaction) (*settlement, error) {
	st := &settlement{txn: txn}
	err := s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		ok, err := s.txns.CompleteByReference(ctx, txn.Reference)
		if err != nil {
			return err
		}
		if !ok {
			st.replay = true
			return nil
		}
		txn.Status = models.TransactionCompleted

		orderID := txn.GoverningOrderID()
		req, err := s.requests.GetRequestByOrderID(ctx, orderID)
		if err != nil {
			if apperror.Is(err, apperror.KindNotFound) {
				// keep the payment; the booking is reported and left for support
				logger.Error("paid transaction has no request", "order_id", txn.OrderID, "request_order_id", orderID)
				return nil
			}
			return err
		}

		if txn.Type == models.TypeChat {
			if req.Continued {
				if _, err := s.requests.ActivateContinuation(ctx, orderID); err != nil {
					return err
				}
			} else if txn.IsContinuation() {
				logger.Warn("continuation paid with nothing staged", "order_id", txn.OrderID, "request_order_id", orderID)
			} else if _, err := s.requests.MarkOngoing(ctx, orderID); err != nil {
				return err
			}
			if req, err = s.requests.GetRequestByOrderID(ctx, orderID); err != nil {
				return err
			}
		}
		st.request = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (s *WebhookService) notify(ctx context.Context, st *settlement, gatewayEmail string) {
	txn, req := st.txn, st.request
	if req == nil {
		return
	}

	to, err := s.users.GetUserEmailByID(ctx, txn.UserID)
	if err != nil {
		logger.Warn("requester email lookup failed", "order_id", txn.OrderID, "error", err)
		to = gatewayEmail
	}

	switch txn.Type {
	case models.TypeChat:
		s.notifyChat(ctx, txn, req, to)
	default:
		s.sendEmail(ctx, txn.OrderID, func() (mailer.Email, error) {
			return mailer.RequestConfirmation(to, mailer.RequestData{
				Service: req.NameOfService,
				OrderID: req.OrderID,
				Amount:  txn.Price,
			})
		}, to)
	}

	if s.admin != nil {
		if err := s.admin.Create(ctx, models.NotificationNewOrder, txn.OrderID, txn.Title); err != nil {
			metrics.NotificationFailuresTotal.WithLabelValues("admin").Inc()
			logger.Error("admin notification failed", "order_id", txn.OrderID, "error", err)
		}
	}
}

func (s *WebhookService) notifyChat(ctx context.Context, txn *models.Transaction, req *models.Request, to string) {
	var window scheduling.Window
	if req.BookTime != nil {
		window = s.scheduler.ScheduleChat(*req.BookTime)
		if req.EndTime != nil {
			window.End = req.EndTime.UTC()
		}
	}
	link := ""
	if !window.Start.IsZero() {
		link = scheduling.CalendarLink(req.NameOfService+" session", "Order "+req.OrderID, window)
	}

	s.sendEmail(ctx, txn.OrderID, func() (mailer.Email, error) {
		return mailer.BookingConfirmation(to, mailer.BookingData{
			Service:      req.NameOfService,
			OrderID:      req.OrderID,
			Day:          req.BookDay,
			Start:        s.scheduler.Format(window.Start),
			End:          s.scheduler.Format(window.End),
			CalendarLink: link,
			Continued:    txn.IsContinuation(),
		})
	}, to)

	if s.realtime == nil {
		return
	}
	err := s.realtime.Push(txn.UserID, EventPaymentCompleted, map[string]any{
		"order_id":      req.OrderID,
		"transaction":   txn.OrderID,
		"booktime":      s.scheduler.Format(window.Start),
		"end_time":      s.scheduler.Format(window.End),
		"bookday":       req.BookDay,
		"calendar_link": link,
		"continued":     txn.IsContinuation(),
	})
	if err != nil && !errors.Is(err, utils.ErrNoConnection) {
		logger.Warn("realtime push failed", "order_id", txn.OrderID, "error", err)
	}
}

func (s *WebhookService) sendEmail(ctx context.Context, orderID string, build func() (mailer.Email, error), to string) {
	if s.mail == nil || to == "" {
		return
	}
	email, err := build()
	if err == nil {
		err = s.mail.Send(ctx, email)
	}
	if err != nil {
		metrics.NotificationFailuresTotal.WithLabelValues("email").Inc()
		logger.Warn("confirmation email failed", "order_id", orderID, "error", err)
	}
}
