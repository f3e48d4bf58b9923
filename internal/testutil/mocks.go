package testutil

import (
	"context"
	"time"

	"ceiba21/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock for repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) EnsureTelegramUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (*domain.User, error) {
	args := m.Called(ctx, telegramID, username, firstName, lastName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) IsBlocked(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockOperatorRepository is a mock for repository.OperatorRepository
type MockOperatorRepository struct {
	mock.Mock
}

func (m *MockOperatorRepository) GetByID(ctx context.Context, id int64) (*domain.Operator, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Operator), args.Error(1)
}

func (m *MockOperatorRepository) ActiveOperators(ctx context.Context) ([]domain.Operator, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Operator), args.Error(1)
}

// MockCatalogRepository is a mock for repository.CatalogRepository
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) ActiveCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

func (m *MockCatalogRepository) CurrencyByID(ctx context.Context, id int64) (*domain.Currency, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCatalogRepository) ActivePaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentMethod), args.Error(1)
}

func (m *MockCatalogRepository) PaymentMethodByID(ctx context.Context, id int64) (*domain.PaymentMethod, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentMethod), args.Error(1)
}

// MockRateRepository is a mock for repository.RateRepository
type MockRateRepository struct {
	mock.Mock
}

func (m *MockRateRepository) RateForCurrency(ctx context.Context, currencyID int64) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, currencyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockRateRepository) QuoteFor(ctx context.Context, paymentMethodID, currencyID int64) (*domain.Quote, error) {
	args := m.Called(ctx, paymentMethodID, currencyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

// MockOrderRepository is a mock for repository.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByReference(ctx context.Context, reference string) (*domain.Order, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) LatestByUser(ctx context.Context, userID int64) (*domain.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) PendingOrders(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	args := m.Called(ctx, from, to)
	return args.Int(0), args.Error(1)
}

func (m *MockOrderRepository) UpdateProofURL(ctx context.Context, id int64, url string) error {
	args := m.Called(ctx, id, url)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkSubmitted(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkAssigned(ctx context.Context, id, operatorID int64, at time.Time) error {
	args := m.Called(ctx, id, operatorID, at)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkCancelled(ctx context.Context, id int64, reason string, at time.Time) error {
	args := m.Called(ctx, id, reason, at)
	return args.Error(0)
}

func (m *MockOrderRepository) Complete(ctx context.Context, order *domain.Order, txs []domain.Transaction, processingSeconds int, smoothing decimal.Decimal, at time.Time) error {
	args := m.Called(ctx, order, txs, processingSeconds, smoothing, at)
	return args.Error(0)
}

func (m *MockOrderRepository) TransactionsByOrder(ctx context.Context, orderID int64) ([]domain.Transaction, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockOrderRepository) StaleDrafts(ctx context.Context, olderThan time.Time) ([]domain.Order, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

// MockSessionStore is an in-memory repository.SessionStore for tests
type MockSessionStore struct {
	states map[int64]domain.ConversationState
	data   map[int64]*domain.ConversationData
}

// NewMockSessionStore creates an empty in-memory session store
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{
		states: make(map[int64]domain.ConversationState),
		data:   make(map[int64]*domain.ConversationData),
	}
}

func (s *MockSessionStore) State(_ context.Context, userID int64) (domain.ConversationState, error) {
	if st, ok := s.states[userID]; ok {
		return st, nil
	}
	return domain.StateStart, nil
}

func (s *MockSessionStore) SetState(_ context.Context, userID int64, state domain.ConversationState) error {
	s.states[userID] = state
	return nil
}

func (s *MockSessionStore) Data(_ context.Context, userID int64) (*domain.ConversationData, error) {
	if d, ok := s.data[userID]; ok {
		return d, nil
	}
	return &domain.ConversationData{}, nil
}

func (s *MockSessionStore) SetData(_ context.Context, userID int64, data *domain.ConversationData) error {
	s.data[userID] = data
	return nil
}

func (s *MockSessionStore) Clear(_ context.Context, userID int64) error {
	delete(s.states, userID)
	delete(s.data, userID)
	return nil
}

// MockNotifier is a mock for service.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyNewOrder(ctx context.Context, order *domain.Order, user *domain.User) error {
	args := m.Called(ctx, order, user)
	return args.Error(0)
}

func (m *MockNotifier) NotifyOrderCompleted(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockNotifier) NotifyOrderCancelled(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}
