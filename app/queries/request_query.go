package queries

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/gilanghuda/crewhub-backend/app/models"
	"github.com/gilanghuda/crewhub-backend/pkg/apperror"
	"github.com/gilanghuda/crewhub-backend/pkg/database"
)

type RequestQueries struct {
	DB *database.DB
}

func (q *RequestQueries) CreateRequest(ctx context.Context, r *models.Request) error {
	if err := q.DB.Conn(ctx).Create(r).Error; err != nil {
		return dbError(err, "unable to create request")
	}
	return nil
}

func (q *RequestQueries) GetRequestByOrderID(ctx context.Context, orderID string) (*models.Request, error) {
	r := &models.Request{}
	err := q.DB.Conn(ctx).Where("order_id = ?", orderID).First(r).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("request not found")
		}
		return nil, dbError(err, "unable to get request")
	}
	return r, nil
}

// StageContinuation records the next window without activating it.
func (q *RequestQueries) StageContinuation(ctx context.Context, orderID string, start, end time.Time, day string) error {
	res := q.DB.Conn(ctx).Model(&models.Request{}).
		Where("order_id = ?", orderID).
		Updates(map[string]any{
			"usebooktimed":   start.UTC(),
			"useendtimed":    end.UTC(),
			"usebookday":     day,
			"continued":      true,
			"continue_count": gorm.Expr("continue_count + 1"),
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return dbError(res.Error, "unable to stage continuation")
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("request not found")
	}
	return nil
}

// ActivateContinuation swaps the staged window in and clears it, in one
// statement. It reports false when nothing was staged.
func (q *RequestQueries) ActivateContinuation(ctx context.Context, orderID string) (bool, error) {
	res := q.DB.Conn(ctx).Model(&models.Request{}).
		Where("order_id = ? AND continued = ?", orderID, true).
		Updates(map[string]any{
			"booktime":     gorm.Expr("usebooktimed"),
			"end_time":     gorm.Expr("useendtimed"),
			"bookday":      gorm.Expr("usebookday"),
			"usebooktimed": nil,
			"useendtimed":  nil,
			"usebookday":   "",
			"continued":    false,
			"stattusof":    models.RequestOngoing,
			"updated_at":   time.Now().UTC(),
		})
	if res.Error != nil {
		return false, dbError(res.Error, "unable to activate continuation")
	}
	return res.RowsAffected == 1, nil
}

func (q *RequestQueries) transition(ctx context.Context, orderID, from, to string) (bool, error) {
	res := q.DB.Conn(ctx).Model(&models.Request{}).
		Where("order_id = ? AND stattusof = ?", orderID, from).
		Updates(map[string]any{"stattusof": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, dbError(res.Error, "unable to update request")
	}
	return res.RowsAffected == 1, nil
}

func (q *RequestQueries) MarkOngoing(ctx context.Context, orderID string) (bool, error) {
	return q.transition(ctx, orderID, models.RequestPending, models.RequestOngoing)
}

func (q *RequestQueries) MarkCancelled(ctx context.Context, orderID string) (bool, error) {
	return q.transition(ctx, orderID, models.RequestPending, models.RequestCancelled)
}

// ListExpiredChats returns ongoing chat bookings whose window ended at or before cutoff.
func (q *RequestQueries) ListExpiredChats(ctx context.Context, cutoff time.Time, limit int) ([]models.Request, error) {
	var res []models.Request
	err := q.DB.Conn(ctx).
		Where("type = ? AND stattusof = ? AND end_time <= ?", models.TypeChat, models.RequestOngoing, cutoff.UTC()).
		Order("end_time ASC").
		Limit(limit).
		Find(&res).Error
	if err != nil {
		return nil, dbError(err, "unable to query expired requests")
	}
	return res, nil
}

// CompleteIfExpired closes an ongoing chat only if it is still past cutoff,
// so a window extended in the meantime is left alone.
func (q *RequestQueries) CompleteIfExpired(ctx context.Context, orderID string, cutoff time.Time) (bool, error) {
	res := q.DB.Conn(ctx).Model(&models.Request{}).
		Where("order_id = ? AND stattusof = ? AND end_time <= ?", orderID, models.RequestOngoing, cutoff.UTC()).
		Updates(map[string]any{"stattusof": models.RequestCompleted, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, dbError(res.Error, "unable to complete request")
	}
	return res.RowsAffected == 1, nil
}
