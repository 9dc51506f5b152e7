package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/opsdash/backend-go/internal/domain"
	"github.com/opsdash/backend-go/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewDBFromConn(conn), mock
}

func expectEnsureStockLevel(mock sqlmock.Sqlmock, componentID int64) {
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO stock_levels")).
		WithArgs(componentID).
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func expectLockOnHand(mock sqlmock.Sqlmock, componentID int64, onHand int) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT on_hand FROM stock_levels WHERE component_id = $1 FOR UPDATE")).
		WithArgs(componentID).
		WillReturnRows(sqlmock.NewRows([]string{"on_hand"}).AddRow(onHand))
}

func TestStockRepositoryAdjustDelta(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStockRepository(db)

	mock.ExpectBegin()
	expectEnsureStockLevel(mock, 1)
	expectLockOnHand(mock, 1, 10)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE stock_levels")).
		WithArgs(int64(1), 15).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO stock_transactions")).
		WithArgs(int64(1), string(domain.TransactionAdjust), 5, 10, 15, "manual", nil, "restock").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	result, err := repo.Adjust(context.Background(), repository.Adjustment{
		ComponentID: 1,
		Type:        domain.TransactionAdjust,
		Quantity:    5,
		Notes:       "restock",
	})
	require.NoError(t, err)

	assert.Equal(t, 10, result.PreviousOnHand)
	assert.Equal(t, 15, result.NewOnHand)
	assert.Equal(t, 5, result.Delta)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRepositoryAdjustCountSetsAbsolute(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStockRepository(db)

	mock.ExpectBegin()
	expectEnsureStockLevel(mock, 1)
	expectLockOnHand(mock, 1, 30)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE stock_levels")).
		WithArgs(int64(1), 12).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO stock_transactions")).
		WithArgs(int64(1), string(domain.TransactionCount), -18, 30, 12, "manual", nil, "recount").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	result, err := repo.Adjust(context.Background(), repository.Adjustment{
		ComponentID: 1,
		Type:        domain.TransactionCount,
		Quantity:    12,
		Notes:       "recount",
	})
	require.NoError(t, err)

	assert.Equal(t, -18, result.Delta)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRepositoryAdjustRejectsNegative(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStockRepository(db)

	mock.ExpectBegin()
	expectEnsureStockLevel(mock, 1)
	expectLockOnHand(mock, 1, 3)
	mock.ExpectRollback()

	_, err := repo.Adjust(context.Background(), repository.Adjustment{
		ComponentID: 1,
		Type:        domain.TransactionAdjust,
		Quantity:    -5,
	})

	var negativeErr *domain.NegativeStockError
	require.ErrorAs(t, err, &negativeErr)
	assert.Equal(t, 3, negativeErr.Current)
	assert.Equal(t, 5, negativeErr.Requested)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRepositoryGetByComponentNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStockRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM stock_levels")).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByComponent(context.Background(), 9)

	var notFoundErr *domain.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRepositoryListTransactions(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStockRepository(db)

	createdAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "component_id", "transaction_type", "quantity", "quantity_before",
		"quantity_after", "reference_type", "reference_id", "notes", "created_at",
	}).
		AddRow(2, 1, "receive", 5, 10, 15, "purchase_order", 7, "", createdAt).
		AddRow(1, 1, "count", 10, 0, 10, "manual", nil, "initial count", createdAt)

	mock.ExpectQuery(regexp.QuoteMeta("FROM stock_transactions")).
		WithArgs(int64(1), 50, 0).
		WillReturnRows(rows)

	transactions, err := repo.ListTransactions(context.Background(), 1, 0, 0)
	require.NoError(t, err)

	require.Len(t, transactions, 2)
	assert.Equal(t, domain.TransactionReceive, transactions[0].TransactionType)
	assert.Equal(t, "initial count", transactions[1].Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}
