package testutil

import (
	"time"

	"ceiba21/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// MustDecimal parses a decimal literal or panics
func MustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// NewTestUser creates a test user
func NewTestUser(id, telegramID int64) *domain.User {
	return &domain.User{
		ID:         id,
		TelegramID: telegramID,
		Username:   "maria",
		FirstName:  "María",
		LastName:   "González",
		IsActive:   true,
		CreatedAt:  time.Now(),
	}
}

// NewTestCurrency creates the bolívar test currency
func NewTestCurrency(id int64) *domain.Currency {
	return &domain.Currency{
		ID:     id,
		Code:   "VES",
		Name:   "Bolívar",
		Symbol: "Bs.",
		Active: true,
	}
}

// NewTestMethod creates a fee-free manual payment method
func NewTestMethod(id int64) *domain.PaymentMethod {
	return &domain.PaymentMethod{
		ID:        id,
		Code:      "zelle",
		Name:      "Zelle",
		Active:    true,
		ValueType: domain.ValueManual,
	}
}

// NewTestMethodWithFee creates a method charging a platform fee
func NewTestMethodWithFee(id int64, rate, fixed string) *domain.PaymentMethod {
	m := NewTestMethod(id)
	m.Code = "paypal"
	m.Name = "PayPal"
	m.HasPlatformFee = true
	m.FeeRate = MustDecimal(rate)
	m.FeeFixed = MustDecimal(fixed)
	return m
}

// NewTestOrder creates an in-process test order
func NewTestOrder(id int64, status domain.OrderStatus) *domain.Order {
	assignedAt := time.Now().Add(-10 * time.Minute)
	operatorID := int64(7)
	return &domain.Order{
		ID:                  id,
		Reference:           "ORD-20240115-001",
		UserID:              1,
		OperatorID:          &operatorID,
		CurrencyID:          3,
		CurrencyCode:        "VES",
		PaymentMethodFromID: 2,
		PaymentMethodToID:   2,
		AmountUSD:           MustDecimal("100.00"),
		AmountLocal:         MustDecimal("28341.00"),
		FeeUSD:              MustDecimal("5.23"),
		NetUSD:              MustDecimal("94.47"),
		ExchangeRate:        MustDecimal("300.00"),
		ClientPaymentData: domain.PaymentData{
			Bank:       "Banco de Venezuela",
			Account:    "01020123456789012345",
			Holder:     "María González",
			NationalID: "V-12345678",
		},
		Status:        status,
		Channel:       "telegram",
		ChannelChatID: "555",
		CreatedAt:     time.Now().Add(-30 * time.Minute),
		AssignedAt:    &assignedAt,
	}
}
