package queries

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilanghuda/crewhub-backend/app/models"
	"github.com/gilanghuda/crewhub-backend/pkg/apperror"
	"github.com/gilanghuda/crewhub-backend/pkg/database/dbtest"
)

func newTransaction(orderID string) *models.Transaction {
	return &models.Transaction{
		ID:      uuid.New(),
		Title:   "Create Budget",
		UserID:  uuid.New(),
		Type:    models.TypeRequest,
		OrderID: orderID,
		Price:   750000,
		Status:  models.TransactionProcessing,
	}
}

func TestTransactionQueries_CreateAndGet(t *testing.T) {
	db := dbtest.New(t)
	q := &TransactionQueries{DB: db}
	ctx := context.Background()

	txn := newTransaction("A1b2C3d4E5f")
	require.NoError(t, q.CreateTransaction(ctx, txn))

	got, err := q.GetTransactionByOrderID(ctx, "A1b2C3d4E5f")
	require.NoError(t, err)
	assert.Equal(t, txn.ID, got.ID)
	assert.Equal(t, int64(750000), got.Price)
	assert.Empty(t, got.Reference)

	_, err = q.GetTransactionByOrderID(ctx, "missing0000")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestTransactionQueries_DuplicateOrderID(t *testing.T) {
	db := dbtest.New(t)
	q := &TransactionQueries{DB: db}
	ctx := context.Background()

	require.NoError(t, q.CreateTransaction(ctx, newTransaction("dupdupdup01")))
	assert.Error(t, q.CreateTransaction(ctx, newTransaction("dupdupdup01")))
}

func TestTransactionQueries_SetReference(t *testing.T) {
	db := dbtest.New(t)
	q := &TransactionQueries{DB: db}
	ctx := context.Background()

	txn := newTransaction("refrefref01")
	require.NoError(t, q.CreateTransaction(ctx, txn))

	require.NoError(t, q.SetReference(ctx, txn.ID, "ref_1"))
	// same value again is accepted
	require.NoError(t, q.SetReference(ctx, txn.ID, "ref_1"))

	err := q.SetReference(ctx, txn.ID, "ref_2")
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	got, err := q.GetTransactionByReference(ctx, "ref_1")
	require.NoError(t, err)
	assert.Equal(t, txn.ID, got.ID)

	err = q.SetReference(ctx, uuid.New(), "ref_3")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestTransactionQueries_GetByEmptyReference(t *testing.T) {
	db := dbtest.New(t)
	q := &TransactionQueries{DB: db}

	require.NoError(t, q.CreateTransaction(context.Background(), newTransaction("emptyref001")))

	_, err := q.GetTransactionByReference(context.Background(), "")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestTransactionQueries_CompleteByReferenceOnce(t *testing.T) {
	db := dbtest.New(t)
	q := &TransactionQueries{DB: db}
	ctx := context.Background()

	txn := newTransaction("complete001")
	require.NoError(t, q.CreateTransaction(ctx, txn))
	require.NoError(t, q.SetReference(ctx, txn.ID, "ref_done"))

	ok, err := q.CompleteByReference(ctx, "ref_done")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = q.CompleteByReference(ctx, "ref_done")
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := q.GetTransactionByOrderID(ctx, "complete001")
	require.NoError(t, err)
	assert.Equal(t, models.TransactionCompleted, got.Status)
}

func TestTransactionQueries_MarkFailedOnlyFromProcessing(t *testing.T) {
	db := dbtest.New(t)
	q := &TransactionQueries{DB: db}
	ctx := context.Background()

	txn := newTransaction("failed00001")
	require.NoError(t, q.CreateTransaction(ctx, txn))
	require.NoError(t, q.MarkFailed(ctx, txn.ID))

	got, err := q.GetTransactionByOrderID(ctx, "failed00001")
	require.NoError(t, err)
	assert.Equal(t, models.TransactionFailed, got.Status)

	require.NoError(t, q.SetReference(ctx, txn.ID, "ref_failed"))
	ok, err := q.CompleteByReference(ctx, "ref_failed")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTransactionQueries_ListByUser(t *testing.T) {
	db := dbtest.New(t)
	q := &TransactionQueries{DB: db}
	ctx := context.Background()

	user := uuid.New()
	first := newTransaction("listlist001")
	first.UserID = user
	first.CreatedAt = time.Now().Add(-time.Hour).UTC()
	second := newTransaction("listlist002")
	second.UserID = user
	second.CreatedAt = time.Now().UTC()
	require.NoError(t, q.CreateTransaction(ctx, first))
	require.NoError(t, q.CreateTransaction(ctx, second))
	require.NoError(t, q.CreateTransaction(ctx, newTransaction("listlist003")))

	res, err := q.GetTransactionsByUser(ctx, user, 10)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "listlist002", res[0].OrderID)
}
