package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies an accounting record
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"  // client paid us
	TransactionExpense TransactionType = "expense" // we paid the client
	TransactionFee     TransactionType = "fee"     // our commission
)

// Transaction is a derived accounting record. Exactly three are created,
// atomically, when an order reaches COMPLETED; they are never created any
// other way.
type Transaction struct {
	ID              int64
	OrderID         int64
	Type            TransactionType
	Amount          decimal.Decimal
	CurrencyCode    string
	PaymentMethodID int64
	Description     string
	IsVerified      bool
	VerifiedAt      *time.Time
	CreatedAt       time.Time
}

// TransactionsForOrder builds the three accounting records derived from a
// settled order: the USD income, the USD fee and the local-currency payout.
func TransactionsForOrder(o *Order) []Transaction {
	return []Transaction{
		{
			OrderID:         o.ID,
			Type:            TransactionIncome,
			Amount:          o.AmountUSD,
			CurrencyCode:    "USD",
			PaymentMethodID: o.PaymentMethodFromID,
			Description:     fmt.Sprintf("Ingreso de %s", o.Reference),
		},
		{
			OrderID:         o.ID,
			Type:            TransactionFee,
			Amount:          o.FeeUSD,
			CurrencyCode:    "USD",
			PaymentMethodID: o.PaymentMethodFromID,
			Description:     fmt.Sprintf("Comisión de %s", o.Reference),
		},
		{
			OrderID:         o.ID,
			Type:            TransactionExpense,
			Amount:          o.AmountLocal,
			CurrencyCode:    o.CurrencyCode,
			PaymentMethodID: o.PaymentMethodToID,
			Description:     fmt.Sprintf("Pago al cliente %s", o.Reference),
		},
	}
}
