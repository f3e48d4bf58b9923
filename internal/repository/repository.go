package repository

import (
	"context"
	"errors"
	"time"

	"ceiba21/internal/domain"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared by all repository implementations
var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateReference = errors.New("duplicate order reference")
	ErrInvalidTransition  = errors.New("invalid status transition")
)

// UserRepository defines client data operations
type UserRepository interface {
	EnsureTelegramUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	IsBlocked(ctx context.Context, id int64) (bool, error)
}

// OperatorRepository defines operator data operations
type OperatorRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Operator, error)
	ActiveOperators(ctx context.Context) ([]domain.Operator, error)
}

// CatalogRepository serves the currency and payment method catalogs
type CatalogRepository interface {
	ActiveCurrencies(ctx context.Context) ([]domain.Currency, error)
	CurrencyByID(ctx context.Context, id int64) (*domain.Currency, error)
	ActivePaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error)
	PaymentMethodByID(ctx context.Context, id int64) (*domain.PaymentMethod, error)
}

// RateRepository serves exchange rates and per-method quotes. QuoteFor
// returns (nil, nil) when no quote row exists for the pair.
type RateRepository interface {
	RateForCurrency(ctx context.Context, currencyID int64) (*domain.ExchangeRate, error)
	QuoteFor(ctx context.Context, paymentMethodID, currencyID int64) (*domain.Quote, error)
}

// OrderRepository defines order lifecycle persistence. Status-changing
// operations guard the current status in SQL and return
// ErrInvalidTransition when the row was not in the expected state.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetByReference(ctx context.Context, reference string) (*domain.Order, error)
	LatestByUser(ctx context.Context, userID int64) (*domain.Order, error)
	PendingOrders(ctx context.Context) ([]domain.Order, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error)

	UpdateProofURL(ctx context.Context, id int64, url string) error
	MarkSubmitted(ctx context.Context, id int64, at time.Time) error
	MarkAssigned(ctx context.Context, id, operatorID int64, at time.Time) error
	MarkCancelled(ctx context.Context, id int64, reason string, at time.Time) error

	// Complete settles the order atomically: the guarded status update, the
	// three accounting transactions, the user's rolling totals and the
	// operator's weighted processing average all commit or none do.
	Complete(ctx context.Context, order *domain.Order, txs []domain.Transaction, processingSeconds int, smoothing decimal.Decimal, at time.Time) error

	TransactionsByOrder(ctx context.Context, orderID int64) ([]domain.Transaction, error)
	StaleDrafts(ctx context.Context, olderThan time.Time) ([]domain.Order, error)
}

// SessionStore keeps per-user conversation state and the collected data
// bag, both expiring together after a period of inactivity.
type SessionStore interface {
	State(ctx context.Context, userID int64) (domain.ConversationState, error)
	SetState(ctx context.Context, userID int64, state domain.ConversationState) error
	Data(ctx context.Context, userID int64) (*domain.ConversationData, error)
	SetData(ctx context.Context, userID int64, data *domain.ConversationData) error
	Clear(ctx context.Context, userID int64) error
}
