package postgres

import (
	"context"
	"testing"
	"time"

	"ceiba21/internal/domain"
	"ceiba21/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder() *domain.Order {
	operatorID := int64(7)
	return &domain.Order{
		ID:                  10,
		Reference:           "ORD-20240115-001",
		UserID:              1,
		OperatorID:          &operatorID,
		CurrencyID:          3,
		CurrencyCode:        "VES",
		PaymentMethodFromID: 2,
		PaymentMethodToID:   5,
		AmountUSD:           decimal.RequireFromString("100.00"),
		AmountLocal:         decimal.RequireFromString("28341.00"),
		FeeUSD:              decimal.RequireFromString("5.23"),
		NetUSD:              decimal.RequireFromString("94.47"),
		ExchangeRate:        decimal.RequireFromString("300.00"),
		ClientPaymentData: domain.PaymentData{
			Bank:       "Banco de Venezuela",
			Account:    "01020123456789012345",
			Holder:     "María González",
			NationalID: "V-12345678",
		},
		Status:        domain.OrderInProcess,
		Channel:       "telegram",
		ChannelChatID: "555",
	}
}

func TestOrderRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOrderRepo(db)

	order := testOrder()
	order.ID = 0
	order.Status = domain.OrderDraft

	now := time.Now()
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(10, now))

	err = repo.Create(context.Background(), order)

	assert.NoError(t, err)
	assert.Equal(t, int64(10), order.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_Create_DuplicateReference(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOrderRepo(db)

	mock.ExpectQuery("INSERT INTO orders").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "orders_reference_key"})

	err = repo.Create(context.Background(), testOrder())

	assert.ErrorIs(t, err, repository.ErrDuplicateReference)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_MarkSubmitted_WrongStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOrderRepo(db)

	// Guarded update touches zero rows when the order left DRAFT already
	mock.ExpectExec("UPDATE orders").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.MarkSubmitted(context.Background(), 10, time.Now())

	assert.ErrorIs(t, err, repository.ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_Complete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOrderRepo(db)

	order := testOrder()
	txs := domain.TransactionsForOrder(order)
	require.Len(t, txs, 3)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders").WillReturnResult(sqlmock.NewResult(0, 1))
	for range txs {
		mock.ExpectExec("INSERT INTO transactions").WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE operators").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = repo.Complete(context.Background(), order, txs, 754, decimal.RequireFromString("0.2"), time.Now())

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_Complete_NotInProcess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOrderRepo(db)

	order := testOrder()
	order.Status = domain.OrderCancelled
	txs := domain.TransactionsForOrder(order)

	// Status guard rejects the update, everything rolls back and no
	// transactions are written
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = repo.Complete(context.Background(), order, txs, 100, decimal.RequireFromString("0.2"), time.Now())

	assert.ErrorIs(t, err, repository.ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_Complete_NoOperator(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOrderRepo(db)

	order := testOrder()
	order.OperatorID = nil
	txs := domain.TransactionsForOrder(order)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders").WillReturnResult(sqlmock.NewResult(0, 1))
	for range txs {
		mock.ExpectExec("INSERT INTO transactions").WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = repo.Complete(context.Background(), order, txs, 100, decimal.RequireFromString("0.2"), time.Now())

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_CountCreatedBetween(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOrderRepo(db)

	from := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountCreatedBetween(context.Background(), from, to)

	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
