package utils

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/gilanghuda/crewhub-backend/pkg/logger"
	"github.com/gilanghuda/crewhub-backend/pkg/metrics"
)

const writeWait = 5 * time.Second

// Conn is the part of a websocket connection the Notifier writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Event is the envelope pushed to clients.
type Event struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Notifier is the registry of live websocket connections, one per user.
// Delivery is best-effort: users without a connection are skipped.
type Notifier struct {
	mu    sync.RWMutex
	conns map[uuid.UUID]*client
}

// client serializes writes; websocket conns allow a single writer.
type client struct {
	mu   sync.Mutex
	conn Conn
}

func NewNotifier() *Notifier {
	return &Notifier{
		conns: make(map[uuid.UUID]*client),
	}
}

// Register binds conn to userID, closing any connection it replaces.
func (n *Notifier) Register(userID uuid.UUID, conn Conn) {
	n.mu.Lock()
	prev, had := n.conns[userID]
	n.conns[userID] = &client{conn: conn}
	total := len(n.conns)
	n.mu.Unlock()

	if had && prev.conn != conn {
		_ = prev.conn.Close()
	}
	logger.Debug("ws register", "user_id", userID, "connections", total)
}

// Unregister drops conn for userID. A newer connection for the same user is left alone.
func (n *Notifier) Unregister(userID uuid.UUID, conn Conn) {
	n.mu.Lock()
	cur, ok := n.conns[userID]
	owned := ok && cur.conn == conn
	if owned {
		delete(n.conns, userID)
	}
	total := len(n.conns)
	n.mu.Unlock()

	if owned {
		_ = conn.Close()
	}
	logger.Debug("ws unregister", "user_id", userID, "connections", total)
}

// Push sends event to userID if connected. ErrNoConnection means nothing was sent.
func (n *Notifier) Push(userID uuid.UUID, event string, payload any) error {
	n.mu.RLock()
	cl, ok := n.conns[userID]
	n.mu.RUnlock()
	if !ok {
		logger.Debug("notify skip", "user_id", userID, "event", event, "reason", "no_connection")
		return ErrNoConnection
	}

	msg, err := json.Marshal(Event{Event: event, Payload: payload})
	if err != nil {
		return err
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()
	_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		metrics.NotificationFailuresTotal.WithLabelValues("websocket").Inc()
		logger.Warn("notify write failed", "user_id", userID, "event", event, "error", err)
		return err
	}
	logger.Debug("notify sent", "user_id", userID, "event", event, "payload_len", len(msg))
	return nil
}

// ConnectionCount is the number of users with a live connection.
func (n *Notifier) ConnectionCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.conns)
}

// ErrNoConnection is returned when there is no websocket connection for the user.
var ErrNoConnection = &NoConnError{}

type NoConnError struct{}

func (e *NoConnError) Error() string { return "no websocket connection for user" }
