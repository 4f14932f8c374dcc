package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gilanghuda/crewhub-backend/app/models"
	"github.com/gilanghuda/crewhub-backend/pkg/apperror"
	"github.com/gilanghuda/crewhub-backend/pkg/middleware"
	"github.com/gilanghuda/crewhub-backend/pkg/paystack"
	"github.com/gilanghuda/crewhub-backend/pkg/utils"
)

const jwtSecret = "test-jwt"

type mockOrders struct{ mock.Mock }

func (m *mockOrders) CreateOrder(ctx context.Context, userID uuid.UUID, in models.CreateOrderRequest) (*models.OrderResponse, error) {
	args := m.Called(ctx, userID, in)
	res, _ := args.Get(0).(*models.OrderResponse)
	return res, args.Error(1)
}

func (m *mockOrders) GetTransaction(ctx context.Context, userID uuid.UUID, orderID string) (*models.Transaction, error) {
	args := m.Called(ctx, userID, orderID)
	res, _ := args.Get(0).(*models.Transaction)
	return res, args.Error(1)
}

func (m *mockOrders) GetRequest(ctx context.Context, userID uuid.UUID, orderID string) (*models.Request, error) {
	args := m.Called(ctx, userID, orderID)
	res, _ := args.Get(0).(*models.Request)
	return res, args.Error(1)
}

func (m *mockOrders) ListTransactions(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	args := m.Called(ctx, userID)
	res, _ := args.Get(0).([]models.Transaction)
	return res, args.Error(1)
}

type mockBookings struct{ mock.Mock }

func (m *mockBookings) RequestContinuation(ctx context.Context, userID uuid.UUID, orderID, rawStart string) (*models.OrderResponse, error) {
	args := m.Called(ctx, userID, orderID, rawStart)
	res, _ := args.Get(0).(*models.OrderResponse)
	return res, args.Error(1)
}

func (m *mockBookings) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

type mockWebhooks struct{ mock.Mock }

func (m *mockWebhooks) HandleGatewayWebhook(ctx context.Context, rawBody []byte, signature string) (*models.WebhookAck, error) {
	args := m.Called(ctx, rawBody, signature)
	res, _ := args.Get(0).(*models.WebhookAck)
	return res, args.Error(1)
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
}

func authed(t *testing.T, method, path string, body any, user uuid.UUID) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	tok, err := utils.SignUserToken(user, jwtSecret, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok)
	return req
}

func decode(t *testing.T, res *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(res.Body).Decode(v))
}

func TestOrderController_CreateOrder(t *testing.T) {
	orders := &mockOrders{}
	h := NewOrderController(orders)
	app := newTestApp()
	app.Post("/orders", middleware.JWTProtected(jwtSecret), h.CreateOrder)

	user := uuid.New()
	in := models.CreateOrderRequest{Type: models.TypeRequest, NameOfService: "create budget", Episodes: 3, ShowType: "yes"}
	orders.On("CreateOrder", mock.Anything, user, in).Return(&models.OrderResponse{
		Transaction: &models.Transaction{OrderID: "Ab3dE5gH1jK", Price: 750000},
		Payment:     &models.PaymentInit{AuthorizationURL: "https://checkout.test/x", Reference: "ref_1"},
	}, nil).Once()

	res, err := app.Test(authed(t, "POST", "/orders", in, user))
	require.NoError(t, err)
	assert.Equal(t, 201, res.StatusCode)

	var out models.OrderResponse
	decode(t, res, &out)
	assert.Equal(t, int64(750000), out.Transaction.Price)
	assert.Equal(t, "https://checkout.test/x", out.Payment.AuthorizationURL)
	orders.AssertExpectations(t)
}

func TestOrderController_ErrorsMapToStatus(t *testing.T) {
	orders := &mockOrders{}
	h := NewOrderController(orders)
	app := newTestApp()
	app.Post("/orders", middleware.JWTProtected(jwtSecret), h.CreateOrder)
	app.Get("/transactions/:orderId", middleware.JWTProtected(jwtSecret), h.GetTransaction)

	user := uuid.New()
	orders.On("CreateOrder", mock.Anything, user, mock.Anything).
		Return(nil, apperror.Upstream(errors.New("paystack: Invalid key"), "Invalid key")).Once()
	orders.On("GetTransaction", mock.Anything, user, "missing0000").
		Return(nil, apperror.NotFound("transaction not found")).Once()

	res, err := app.Test(authed(t, "POST", "/orders", models.CreateOrderRequest{Type: models.TypeRequest, NameOfService: "x"}, user))
	require.NoError(t, err)
	assert.Equal(t, 500, res.StatusCode)
	var body map[string]string
	decode(t, res, &body)
	assert.Equal(t, "Invalid key", body["message"])
	assert.Equal(t, "paystack: Invalid key", body["error"])

	res, err = app.Test(authed(t, "GET", "/transactions/missing0000", nil, user))
	require.NoError(t, err)
	assert.Equal(t, 404, res.StatusCode)
}

func TestOrderController_RequiresAuth(t *testing.T) {
	h := NewOrderController(&mockOrders{})
	app := newTestApp()
	app.Get("/transactions", middleware.JWTProtected(jwtSecret), h.ListTransactions)

	res, err := app.Test(httptest.NewRequest("GET", "/transactions", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, res.StatusCode)
}

func TestOrderController_ListAndGetRequest(t *testing.T) {
	orders := &mockOrders{}
	h := NewOrderController(orders)
	app := newTestApp()
	app.Get("/transactions", middleware.JWTProtected(jwtSecret), h.ListTransactions)
	app.Get("/requests/:orderId", middleware.JWTProtected(jwtSecret), h.GetRequest)

	user := uuid.New()
	orders.On("ListTransactions", mock.Anything, user).Return(nil, nil).Once()
	orders.On("GetRequest", mock.Anything, user, "Ab3dE5gH1jK").
		Return(&models.Request{OrderID: "Ab3dE5gH1jK", Status: models.RequestOngoing}, nil).Once()

	res, err := app.Test(authed(t, "GET", "/transactions", nil, user))
	require.NoError(t, err)
	assert.Equal(t, 200, res.StatusCode)
	var list struct {
		Transactions []models.Transaction `json:"transactions"`
	}
	decode(t, res, &list)
	assert.NotNil(t, list.Transactions)
	assert.Empty(t, list.Transactions)

	res, err = app.Test(authed(t, "GET", "/requests/Ab3dE5gH1jK", nil, user))
	require.NoError(t, err)
	assert.Equal(t, 200, res.StatusCode)
	var r map[string]any
	decode(t, res, &r)
	assert.Equal(t, "ongoing", r["stattusof"])
}

func TestBookingController_ContinueChat(t *testing.T) {
	bookings := &mockBookings{}
	h := NewBookingController(bookings)
	app := newTestApp()
	app.Post("/bookings/:orderId/continue", middleware.JWTProtected(jwtSecret), h.ContinueChat)

	user := uuid.New()
	bookings.On("RequestContinuation", mock.Anything, user, "Ab3dE5gH1jK", "2025-01-06T11:00:00+01:00").
		Return(&models.OrderResponse{Transaction: &models.Transaction{OrderID: "Zz9yX8wV7uT"}}, nil).Once()

	res, err := app.Test(authed(t, "POST", "/bookings/Ab3dE5gH1jK/continue",
		models.ContinueChatRequest{Time: "2025-01-06T11:00:00+01:00"}, user))
	require.NoError(t, err)
	assert.Equal(t, 201, res.StatusCode)

	res, err = app.Test(authed(t, "POST", "/bookings/Ab3dE5gH1jK/continue", map[string]string{}, user))
	require.NoError(t, err)
	assert.Equal(t, 400, res.StatusCode)
	bookings.AssertExpectations(t)
}

func TestBookingController_Sweep(t *testing.T) {
	bookings := &mockBookings{}
	h := NewBookingController(bookings)
	fixed := time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return fixed }

	app := newTestApp()
	app.Post("/bookings/sweep", middleware.CronKeyProtected("cron"), h.Sweep)

	bookings.On("SweepExpired", mock.Anything, fixed).Return(3, nil).Once()

	req := httptest.NewRequest("POST", "/bookings/sweep", nil)
	req.Header.Set(middleware.CronKeyHeader, "cron")
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, res.StatusCode)
	var out map[string]int
	decode(t, res, &out)
	assert.Equal(t, 3, out["closed"])

	res, err = app.Test(httptest.NewRequest("POST", "/bookings/sweep", nil))
	require.NoError(t, err)
	assert.Equal(t, 403, res.StatusCode)
	bookings.AssertExpectations(t)
}

func TestWebhookController_PassesRawBodyAndSignature(t *testing.T) {
	webhooks := &mockWebhooks{}
	h := NewWebhookController(webhooks)
	app := newTestApp()
	app.Post("/webhooks/paystack", h.Paystack)

	raw := []byte(`{"event":"charge.success","data":{"reference":"ref_1"}}`)
	sig := paystack.Sign("sk", raw)
	webhooks.On("HandleGatewayWebhook", mock.Anything, raw, sig).
		Return(&models.WebhookAck{Message: "payment processed", OrderID: "Ab3dE5gH1jK"}, nil).Once()
	webhooks.On("HandleGatewayWebhook", mock.Anything, raw, "bad").
		Return(nil, apperror.Auth("invalid webhook signature")).Once()

	req := httptest.NewRequest("POST", "/webhooks/paystack", bytes.NewReader(raw))
	req.Header.Set(paystack.SignatureHeader, sig)
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, res.StatusCode)
	var ack models.WebhookAck
	decode(t, res, &ack)
	assert.Equal(t, "Ab3dE5gH1jK", ack.OrderID)

	req = httptest.NewRequest("POST", "/webhooks/paystack", bytes.NewReader(raw))
	req.Header.Set(paystack.SignatureHeader, "bad")
	res, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, res.StatusCode)
	webhooks.AssertExpectations(t)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type fakePresence int

func (p fakePresence) ConnectionCount() int { return int(p) }

func TestHealthController(t *testing.T) {
	app := newTestApp()
	app.Get("/health", NewHealthController(fakePinger{}, fakePresence(3)).Health)
	app.Get("/health/down", NewHealthController(fakePinger{err: errors.New("refused")}, nil).Health)

	res, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, res.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "ok", body["database"])
	assert.EqualValues(t, 3, body["websocket_connections"])

	res, err = app.Test(httptest.NewRequest("GET", "/health/down", nil))
	require.NoError(t, err)
	assert.Equal(t, 503, res.StatusCode)
}

func TestWsUpgrade_RejectsPlainHTTP(t *testing.T) {
	app := newTestApp()
	app.Get("/ws", WsUpgrade, func(c *fiber.Ctx) error { return c.SendStatus(200) })

	res, err := app.Test(httptest.NewRequest("GET", "/ws", nil))
	require.NoError(t, err)
	assert.Equal(t, 426, res.StatusCode)
}
