package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gilanghuda/crewhub-backend/app/models"
	"github.com/gilanghuda/crewhub-backend/pkg/events"
	"github.com/gilanghuda/crewhub-backend/pkg/logger"
	"github.com/gilanghuda/crewhub-backend/pkg/mailer"
	"github.com/gilanghuda/crewhub-backend/pkg/metrics"
)

// AdminNotifier records operational alerts for the back office. The row is
// the source of truth; the Kafka event and admin email are best-effort.
type AdminNotifier struct {
	store      NotificationStore
	publisher  events.Publisher
	mail       mailer.Mailer
	adminEmail string
}

func NewAdminNotifier(store NotificationStore, publisher events.Publisher, mail mailer.Mailer, adminEmail string) *AdminNotifier {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &AdminNotifier{store: store, publisher: publisher, mail: mail, adminEmail: adminEmail}
}

func (a *AdminNotifier) Create(ctx context.Context, typ, orderID, title string) error {
	n := &models.AdminNotification{
		ID:        uuid.New(),
		Type:      typ,
		OrderID:   orderID,
		Title:     title,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := a.store.CreateNotification(ctx, n); err != nil {
		return err
	}

	err := a.publisher.PublishOrder(ctx, events.OrderEvent{
		Type:       typ,
		OrderID:    orderID,
		Title:      title,
		OccurredAt: n.CreatedAt,
	})
	if err != nil {
		metrics.NotificationFailuresTotal.WithLabelValues("kafka").Inc()
		logger.Warn("admin event publish failed", "order_id", orderID, "error", err)
	}

	if a.mail != nil && a.adminEmail != "" {
		email, err := mailer.AdminNewOrder(a.adminEmail, mailer.RequestData{Service: title, OrderID: orderID})
		if err == nil {
			err = a.mail.Send(ctx, email)
		}
		if err != nil {
			metrics.NotificationFailuresTotal.WithLabelValues("email").Inc()
			logger.Warn("admin email failed", "order_id", orderID, "error", err)
		}
	}
	return nil
}
