package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValueType says how a payment method's or quote's USD value is obtained
const (
	ValueManual  = "manual"
	ValueFormula = "formula"
)

// Currency is a destination currency offered by the service
type Currency struct {
	ID           int64
	Code         string
	Name         string
	Symbol       string
	Active       bool
	DisplayOrder int
}

// PaymentMethod is a channel the client can pay through (PayPal, Zelle, ...).
// Its USD-denominated value is either a fixed manual value or a restricted
// arithmetic formula over a base rate. A method may additionally charge a
// platform fee (percentage plus fixed charge), deducted before conversion.
type PaymentMethod struct {
	ID           int64
	Code         string
	Name         string
	Active       bool
	DisplayOrder int

	ValueType  string
	USDValue   decimal.NullDecimal
	USDFormula string

	HasPlatformFee bool
	FeeRate        decimal.Decimal
	FeeFixed       decimal.Decimal
}

// ExchangeRate is the base USD→currency rate, read-only for the core
type ExchangeRate struct {
	ID         int64
	CurrencyID int64
	Rate       decimal.Decimal
	SourceType string
	UpdatedAt  time.Time
}

// Quote ties a payment method to a currency. When a final local-currency
// value exists it overrides the currency's base rate for that method.
type Quote struct {
	ID              int64
	PaymentMethodID int64
	CurrencyID      int64
	ValueType       string
	USDValue        decimal.NullDecimal
	USDFormula      string
	CalculatedUSD   decimal.NullDecimal
	FinalValue      decimal.NullDecimal
	UpdatedAt       time.Time
}

// Country codes used for the per-country validation rules
const (
	CountryVenezuela = "VE"
	CountryColombia  = "CO"
	CountryChile     = "CL"
	CountryArgentina = "AR"
)

var currencyCountries = map[string]string{
	"VES": CountryVenezuela,
	"COP": CountryColombia,
	"CLP": CountryChile,
	"ARS": CountryArgentina,
}

// CountryForCurrency maps a currency code to the country whose validation
// rules apply. Unknown currencies fall back to Venezuela's rules.
func CountryForCurrency(code string) string {
	if c, ok := currencyCountries[code]; ok {
		return c
	}
	return CountryVenezuela
}
