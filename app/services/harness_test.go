package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/gilanghuda/crewhub-backend/app/models"
	"github.com/gilanghuda/crewhub-backend/app/pricing"
	"github.com/gilanghuda/crewhub-backend/app/queries"
	"github.com/gilanghuda/crewhub-backend/app/scheduling"
	"github.com/gilanghuda/crewhub-backend/pkg/database"
	"github.com/gilanghuda/crewhub-backend/pkg/database/dbtest"
	"github.com/gilanghuda/crewhub-backend/pkg/events"
	"github.com/gilanghuda/crewhub-backend/pkg/mailer"
	"github.com/gilanghuda/crewhub-backend/pkg/paystack"
	"github.com/gilanghuda/crewhub-backend/pkg/utils"
)

const testSecret = "sk_test_secret"

type fakeGateway struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (g *fakeGateway) Initialize(_ context.Context, email string, amount int64) (*paystack.InitializeData, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	ref := fmt.Sprintf("ref_%d", g.calls)
	return &paystack.InitializeData{
		AuthorizationURL: "https://checkout.paystack.test/" + ref,
		AccessCode:       "ac_" + ref,
		Reference:        ref,
	}, nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Email
}

func (m *recordingMailer) Send(_ context.Context, e mailer.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, e)
	return nil
}

func (m *recordingMailer) emails() []mailer.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Email(nil), m.sent...)
}

// slowMailer delays every delivery, as a sluggish SMTP relay would.
type slowMailer struct {
	recordingMailer
	delay time.Duration
}

func (m *slowMailer) Send(ctx context.Context, e mailer.Email) error {
	time.Sleep(m.delay)
	return m.recordingMailer.Send(ctx, e)
}

type push struct {
	UserID  uuid.UUID
	Event   string
	Payload any
}

type recordingNotifier struct {
	mu        sync.Mutex
	connected map[uuid.UUID]bool
	pushes    []push
}

func (n *recordingNotifier) Push(userID uuid.UUID, event string, payload any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.connected[userID] {
		return utils.ErrNoConnection
	}
	n.pushes = append(n.pushes, push{UserID: userID, Event: event, Payload: payload})
	return nil
}

func (n *recordingNotifier) events() []push {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]push(nil), n.pushes...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
}

func (p *recordingPublisher) PublishOrder(_ context.Context, e events.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type harness struct {
	db        *database.DB
	txns      *queries.TransactionQueries
	requests  *queries.RequestQueries
	notes     *queries.NotificationQueries
	gateway   *fakeGateway
	mail      *recordingMailer
	realtime  *recordingNotifier
	publisher *recordingPublisher
	scheduler *scheduling.Scheduler

	orders   *OrderService
	bookings *BookingService
	webhooks *WebhookService
	// webhookDeps lets a test rebuild the webhook service with other collaborators.
	webhookDeps WebhookDeps

	user models.User
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := dbtest.New(t)
	g := dbtest.Gorm(t, db)

	h := &harness{
		db:        db,
		txns:      &queries.TransactionQueries{DB: db},
		requests:  &queries.RequestQueries{DB: db},
		notes:     &queries.NotificationQueries{DB: db},
		gateway:   &fakeGateway{},
		mail:      &recordingMailer{},
		realtime:  &recordingNotifier{connected: map[uuid.UUID]bool{}},
		publisher: &recordingPublisher{},
		scheduler: scheduling.NewScheduler(time.FixedZone("UTC+01:00", 3600), time.Hour),
		user: models.User{
			ID:       uuid.New(),
			Username: "ada",
			Email:    "ada@crew.test",
			UserRole: models.RoleUser,
		},
	}
	require.NoError(t, g.Create(&h.user).Error)
	services := []models.ServicePrice{
		{Title: "Create Budget", Price: 300000},
		{Title: "Market Budget", Price: 200000},
		{Title: "Pitch Deck", Price: 150000},
		{Title: "Chat", Price: 25000},
	}
	require.NoError(t, g.Create(&services).Error)
	extensions := []models.ExtensionPrice{
		{Minutes: 30, Price: 15000},
		{Minutes: 60, Price: 25000},
	}
	require.NoError(t, g.Create(&extensions).Error)

	users := &queries.UserQueries{DB: db}
	resolver := pricing.NewResolver(&queries.PriceQueries{DB: db})
	payments := NewPaymentService(h.gateway, h.txns)

	h.orders = NewOrderService(OrderDeps{
		DB:        db,
		Txns:      h.txns,
		Requests:  h.requests,
		Users:     users,
		Prices:    resolver,
		Payments:  payments,
		Scheduler: h.scheduler,
	})
	h.bookings = NewBookingService(BookingDeps{
		DB:        db,
		Txns:      h.txns,
		Requests:  h.requests,
		Users:     users,
		Prices:    resolver,
		Payments:  payments,
		Scheduler: h.scheduler,
		Mailer:    h.mail,
		Realtime:  h.realtime,
	})
	h.webhookDeps = WebhookDeps{
		Secret:    testSecret,
		DB:        db,
		Txns:      h.txns,
		Requests:  h.requests,
		Users:     users,
		Scheduler: h.scheduler,
		Mailer:    h.mail,
		Realtime:  h.realtime,
		Admin:     NewAdminNotifier(h.notes, h.publisher, nil, ""),
	}
	h.webhooks = NewWebhookService(h.webhookDeps)
	return h
}

func (h *harness) connect(userID uuid.UUID) {
	h.realtime.mu.Lock()
	defer h.realtime.mu.Unlock()
	h.realtime.connected[userID] = true
}

func chargeEvent(t *testing.T, event, reference string, amount int64) []byte {
	t.Helper()
	var ev models.GatewayEvent
	ev.Event = event
	ev.Data.Reference = reference
	ev.Data.Amount = amount
	ev.Data.Status = "success"
	ev.Data.Customer.Email = "ada@crew.test"
	body, err := json.Marshal(ev)
	require.NoError(t, err)
	return body
}

// pay delivers a correctly signed charge.success for reference.
func (h *harness) pay(t *testing.T, reference string) *models.WebhookAck {
	t.Helper()
	body := chargeEvent(t, models.EventChargeSuccess, reference, 0)
	ack, err := h.webhooks.HandleGatewayWebhook(context.Background(), body, paystack.Sign(testSecret, body))
	require.NoError(t, err)
	return ack
}

func (h *harness) request(t *testing.T, orderID string) *models.Request {
	t.Helper()
	r, err := h.requests.GetRequestByOrderID(context.Background(), orderID)
	require.NoError(t, err)
	return r
}

func (h *harness) transaction(t *testing.T, orderID string) *models.Transaction {
	t.Helper()
	tx, err := h.txns.GetTransactionByOrderID(context.Background(), orderID)
	require.NoError(t, err)
	return tx
}

func ts(s string) time.Time {
	v, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return v.UTC()
}
