package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gilanghuda/crewhub-backend/app/models"
	"github.com/gilanghuda/crewhub-backend/pkg/apperror"
	"github.com/gilanghuda/crewhub-backend/pkg/database"
)

type TransactionQueries struct {
	DB *database.DB
}

func (q *TransactionQueries) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	if err := q.DB.Conn(ctx).Create(t).Error; err != nil {
		return dbError(err, "unable to create transaction")
	}
	return nil
}

func (q *TransactionQueries) GetTransactionByOrderID(ctx context.Context, orderID string) (*models.Transaction, error) {
	t := &models.Transaction{}
	err := q.DB.Conn(ctx).Where("order_id = ?", orderID).First(t).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("transaction not found")
		}
		return nil, dbError(err, "unable to get transaction")
	}
	return t, nil
}

func (q *TransactionQueries) GetTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	if reference == "" {
		return nil, apperror.NotFound("transaction not found")
	}
	t := &models.Transaction{}
	err := q.DB.Conn(ctx).Where("reference = ?", reference).First(t).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("transaction not found")
		}
		return nil, dbError(err, "unable to get transaction")
	}
	return t, nil
}

func (q *TransactionQueries) GetTransactionsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Transaction, error) {
	var res []models.Transaction
	err := q.DB.Conn(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&res).Error
	if err != nil {
		return nil, dbError(err, "unable to query transactions")
	}
	return res, nil
}

// SetReference attaches the gateway reference once. Writing the same value
// again is a no-op; a different value fails with ErrReferenceAlreadySet.
func (q *TransactionQueries) SetReference(ctx context.Context, id uuid.UUID, reference string) error {
	res := q.DB.Conn(ctx).Model(&models.Transaction{}).
		Where("id = ? AND reference = ?", id, "").
		Updates(map[string]any{"reference": reference, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return dbError(res.Error, "unable to set reference")
	}
	if res.RowsAffected == 1 {
		return nil
	}

	current := &models.Transaction{}
	err := q.DB.Conn(ctx).Select("id", "reference").Where("id = ?", id).First(current).Error
	if err != nil {
		if isNotFound(err) {
			return apperror.NotFound("transaction not found")
		}
		return dbError(err, "unable to get transaction")
	}
	if current.Reference == reference {
		return nil
	}
	return ErrReferenceAlreadySet
}

// CompleteByReference flips processing -> completed. It reports false when the
// transaction was not processing, which makes webhook replays no-ops.
func (q *TransactionQueries) CompleteByReference(ctx context.Context, reference string) (bool, error) {
	res := q.DB.Conn(ctx).Model(&models.Transaction{}).
		Where("reference = ? AND status = ?", reference, models.TransactionProcessing).
		Updates(map[string]any{"status": models.TransactionCompleted, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, dbError(res.Error, "unable to update transaction")
	}
	return res.RowsAffected == 1, nil
}

func (q *TransactionQueries) MarkFailed(ctx context.Context, id uuid.UUID) error {
	res := q.DB.Conn(ctx).Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, models.TransactionProcessing).
		Updates(map[string]any{"status": models.TransactionFailed, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return dbError(res.Error, "unable to update transaction")
	}
	return nil
}
