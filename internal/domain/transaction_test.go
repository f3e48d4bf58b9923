package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionsForOrder(t *testing.T) {
	order := &Order{
		ID:                  10,
		Reference:           "ORD-20240115-001",
		CurrencyCode:        "VES",
		PaymentMethodFromID: 2,
		PaymentMethodToID:   5,
		AmountUSD:           decimal.RequireFromString("100.00"),
		AmountLocal:         decimal.RequireFromString("28341.00"),
		FeeUSD:              decimal.RequireFromString("5.23"),
		NetUSD:              decimal.RequireFromString("94.47"),
	}

	txs := TransactionsForOrder(order)
	require.Len(t, txs, 3)

	income := txs[0]
	assert.Equal(t, TransactionIncome, income.Type)
	assert.Equal(t, "100.00", income.Amount.StringFixed(2))
	assert.Equal(t, "USD", income.CurrencyCode)
	assert.Equal(t, int64(2), income.PaymentMethodID)
	assert.Equal(t, "Ingreso de ORD-20240115-001", income.Description)

	fee := txs[1]
	assert.Equal(t, TransactionFee, fee.Type)
	assert.Equal(t, "5.23", fee.Amount.StringFixed(2))
	assert.Equal(t, "USD", fee.CurrencyCode)
	assert.Equal(t, int64(2), fee.PaymentMethodID)
	assert.Equal(t, "Comisión de ORD-20240115-001", fee.Description)

	expense := txs[2]
	assert.Equal(t, TransactionExpense, expense.Type)
	assert.Equal(t, "28341.00", expense.Amount.StringFixed(2))
	assert.Equal(t, "VES", expense.CurrencyCode)
	assert.Equal(t, int64(5), expense.PaymentMethodID)
	assert.Equal(t, "Pago al cliente ORD-20240115-001", expense.Description)

	// The gross amount splits into fee, net and the 0.30 fixed charge
	assert.True(t, order.AmountUSD.Equal(order.FeeUSD.Add(order.NetUSD).Add(decimal.RequireFromString("0.30"))))
}

func TestCountryForCurrency(t *testing.T) {
	assert.Equal(t, CountryVenezuela, CountryForCurrency("VES"))
	assert.Equal(t, CountryColombia, CountryForCurrency("COP"))
	assert.Equal(t, CountryChile, CountryForCurrency("CLP"))
	assert.Equal(t, CountryArgentina, CountryForCurrency("ARS"))
	assert.Equal(t, CountryVenezuela, CountryForCurrency("XXX"))
}
