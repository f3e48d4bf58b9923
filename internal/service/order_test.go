package service

import (
	"context"
	"testing"
	"time"

	"ceiba21/internal/domain"
	"ceiba21/internal/repository"
	"ceiba21/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newOrderService(t *testing.T) (*OrderService, *testutil.MockOrderRepository, *testutil.MockUserRepository, *testutil.MockNotifier) {
	t.Helper()
	orders := new(testutil.MockOrderRepository)
	users := new(testutil.MockUserRepository)
	operators := new(testutil.MockOperatorRepository)
	operators.On("GetByID", mock.Anything, mock.Anything).Return(&domain.Operator{ID: 7, Username: "op", IsActive: true}, nil)
	notifier := new(testutil.MockNotifier)
	svc := NewOrderService(orders, users, operators, notifier, testutil.NewTestLogger(), testutil.MustDecimal("0.2"))
	return svc, orders, users, notifier
}

func draftData() *domain.ConversationData {
	return &domain.ConversationData{
		CurrencyID:        3,
		CurrencyCode:      "VES",
		CurrencyName:      "Bolívar",
		PaymentMethodID:   2,
		PaymentMethodName: "PayPal",
		AmountUSD:         testutil.MustDecimal("100"),
		Calculation: &domain.Calculation{
			AmountUSD:    testutil.MustDecimal("100.00"),
			FeeUSD:       testutil.MustDecimal("5.23"),
			NetUSD:       testutil.MustDecimal("94.47"),
			ExchangeRate: testutil.MustDecimal("300.00"),
			AmountLocal:  testutil.MustDecimal("28341.00"),
			CurrencyCode: "VES",
		},
		Bank:       "Banco de Venezuela",
		Account:    "01020123456789012345",
		Holder:     "María González",
		NationalID: "V-12345678",
	}
}

func TestOrderService_CreateDraft(t *testing.T) {
	svc, orders, _, _ := newOrderService(t)
	svc.now = func() time.Time {
		return time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	}

	orders.On("CountCreatedBetween", mock.Anything, mock.Anything, mock.Anything).Return(2, nil)
	orders.On("Create", mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
		return o.Reference == "ORD-20240115-003" && o.Status == domain.OrderDraft
	})).Return(nil)

	order, err := svc.CreateDraft(context.Background(), 1, draftData(), "555")

	require.NoError(t, err)
	assert.Equal(t, "ORD-20240115-003", order.Reference)
	assert.Equal(t, "28341.00", order.AmountLocal.StringFixed(2))
	assert.Equal(t, "V-12345678", order.ClientPaymentData.NationalID)
	orders.AssertExpectations(t)
}

func TestOrderService_CreateDraft_ReferenceCollision(t *testing.T) {
	svc, orders, _, _ := newOrderService(t)

	orders.On("CountCreatedBetween", mock.Anything, mock.Anything, mock.Anything).Return(2, nil).Once()
	orders.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicateReference).Once()
	// Recount sees the winner's row and produces the next number
	orders.On("CountCreatedBetween", mock.Anything, mock.Anything, mock.Anything).Return(3, nil).Once()
	orders.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	order, err := svc.CreateDraft(context.Background(), 1, draftData(), "555")

	require.NoError(t, err)
	assert.NotEmpty(t, order.Reference)
	orders.AssertExpectations(t)
}

func TestOrderService_CreateDraft_MissingData(t *testing.T) {
	svc, _, _, _ := newOrderService(t)

	data := draftData()
	data.Calculation = nil

	_, err := svc.CreateDraft(context.Background(), 1, data, "555")
	assert.Error(t, err)

	data = draftData()
	data.Account = ""

	_, err = svc.CreateDraft(context.Background(), 1, data, "555")
	assert.Error(t, err)
}

func TestOrderService_Submit(t *testing.T) {
	svc, orders, users, notifier := newOrderService(t)

	order := testutil.NewTestOrder(10, domain.OrderPending)
	user := testutil.NewTestUser(1, 555)

	orders.On("MarkSubmitted", mock.Anything, int64(10), mock.Anything).Return(nil)
	orders.On("GetByID", mock.Anything, int64(10)).Return(order, nil)
	users.On("GetByID", mock.Anything, int64(1)).Return(user, nil)
	notifier.On("NotifyNewOrder", mock.Anything, order, user).Return(nil)

	got, err := svc.Submit(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, domain.OrderPending, got.Status)
	notifier.AssertExpectations(t)
}

func TestOrderService_Submit_WrongStatus(t *testing.T) {
	svc, orders, _, _ := newOrderService(t)

	orders.On("MarkSubmitted", mock.Anything, int64(10), mock.Anything).Return(repository.ErrInvalidTransition)

	_, err := svc.Submit(context.Background(), 10)

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrderService_Complete(t *testing.T) {
	svc, orders, _, notifier := newOrderService(t)

	order := testutil.NewTestOrder(10, domain.OrderInProcess)

	orders.On("GetByID", mock.Anything, int64(10)).Return(order, nil)
	orders.On("Complete", mock.Anything, order, mock.MatchedBy(func(txs []domain.Transaction) bool {
		return len(txs) == 3 &&
			txs[0].Type == domain.TransactionIncome &&
			txs[1].Type == domain.TransactionFee &&
			txs[2].Type == domain.TransactionExpense
	}), mock.Anything, mock.Anything, mock.Anything).Return(nil)
	notifier.On("NotifyOrderCompleted", mock.Anything, mock.Anything).Return(nil)

	got, err := svc.Complete(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, domain.OrderCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)
	orders.AssertExpectations(t)
}

func TestOrderService_Complete_Cancelled(t *testing.T) {
	svc, orders, _, _ := newOrderService(t)

	order := testutil.NewTestOrder(10, domain.OrderCancelled)
	orders.On("GetByID", mock.Anything, int64(10)).Return(order, nil)

	_, err := svc.Complete(context.Background(), 10)

	assert.ErrorIs(t, err, ErrInvalidTransition)
	// No settlement must reach the database
	orders.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_Cancel(t *testing.T) {
	svc, orders, _, notifier := newOrderService(t)

	order := testutil.NewTestOrder(10, domain.OrderPending)
	orders.On("GetByID", mock.Anything, int64(10)).Return(order, nil)
	orders.On("MarkCancelled", mock.Anything, int64(10), "Cliente no envió comprobante", mock.Anything).Return(nil)
	notifier.On("NotifyOrderCancelled", mock.Anything, mock.Anything).Return(nil)

	got, err := svc.Cancel(context.Background(), 10, "Cliente no envió comprobante")

	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, got.Status)
	assert.Equal(t, "Cliente no envió comprobante", got.CancellationReason)
}

func TestOrderService_Assign_InactiveOperator(t *testing.T) {
	orders := new(testutil.MockOrderRepository)
	operators := new(testutil.MockOperatorRepository)
	operators.On("GetByID", mock.Anything, int64(7)).Return(&domain.Operator{ID: 7, Username: "op", IsActive: false}, nil)
	svc := NewOrderService(orders, new(testutil.MockUserRepository), operators, new(testutil.MockNotifier), testutil.NewTestLogger(), testutil.MustDecimal("0.2"))

	err := svc.Assign(context.Background(), 10, 7)

	assert.Error(t, err)
	orders.AssertNotCalled(t, "MarkAssigned", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_Assign(t *testing.T) {
	svc, orders, _, _ := newOrderService(t)

	orders.On("MarkAssigned", mock.Anything, int64(10), int64(7), mock.Anything).Return(nil)

	err := svc.Assign(context.Background(), 10, 7)

	assert.NoError(t, err)
	orders.AssertExpectations(t)
}

func TestOrderService_Escalate(t *testing.T) {
	orders := new(testutil.MockOrderRepository)
	operators := new(testutil.MockOperatorRepository)
	op := &domain.Operator{ID: 7, Username: "op", IsActive: true}
	operators.On("ActiveOperators", mock.Anything).Return([]domain.Operator{*op}, nil)
	operators.On("GetByID", mock.Anything, int64(7)).Return(op, nil)
	svc := NewOrderService(orders, new(testutil.MockUserRepository), operators, new(testutil.MockNotifier), testutil.NewTestLogger(), testutil.MustDecimal("0.2"))

	orders.On("MarkAssigned", mock.Anything, int64(10), int64(7), mock.Anything).Return(nil)

	err := svc.Escalate(context.Background(), 10)

	require.NoError(t, err)
	orders.AssertExpectations(t)
}

func TestOrderService_Escalate_NoOperators(t *testing.T) {
	orders := new(testutil.MockOrderRepository)
	operators := new(testutil.MockOperatorRepository)
	operators.On("ActiveOperators", mock.Anything).Return([]domain.Operator{}, nil)
	svc := NewOrderService(orders, new(testutil.MockUserRepository), operators, new(testutil.MockNotifier), testutil.NewTestLogger(), testutil.MustDecimal("0.2"))

	err := svc.Escalate(context.Background(), 10)

	assert.ErrorIs(t, err, ErrNoOperator)
	orders.AssertNotCalled(t, "MarkAssigned", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_Cancel_RequiresReason(t *testing.T) {
	svc, _, _, _ := newOrderService(t)

	_, err := svc.Cancel(context.Background(), 10, "")

	assert.ErrorIs(t, err, ErrReasonRequired)
}

func TestOrderService_Cancel_Completed(t *testing.T) {
	svc, orders, _, _ := newOrderService(t)

	order := testutil.NewTestOrder(10, domain.OrderCompleted)
	orders.On("GetByID", mock.Anything, int64(10)).Return(order, nil)

	_, err := svc.Cancel(context.Background(), 10, "demasiado tarde")

	assert.ErrorIs(t, err, ErrInvalidTransition)
	orders.AssertNotCalled(t, "MarkCancelled", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
