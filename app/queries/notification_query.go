package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/gilanghuda/crewhub-backend/app/models"
	"github.com/gilanghuda/crewhub-backend/pkg/database"
)

type NotificationQueries struct {
	DB *database.DB
}

func (q *NotificationQueries) CreateNotification(ctx context.Context, n *models.AdminNotification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if err := q.DB.Conn(ctx).Create(n).Error; err != nil {
		return dbError(err, "unable to create notification")
	}
	return nil
}

func (q *NotificationQueries) ListUnread(ctx context.Context, limit int) ([]models.AdminNotification, error) {
	var res []models.AdminNotification
	err := q.DB.Conn(ctx).
		Where("read = ?", false).
		Order("created_at DESC").
		Limit(limit).
		Find(&res).Error
	if err != nil {
		return nil, dbError(err, "unable to list notifications")
	}
	return res, nil
}
