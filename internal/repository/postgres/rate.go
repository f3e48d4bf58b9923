package postgres

import (
	"context"
	"database/sql"

	"ceiba21/internal/domain"
	"ceiba21/internal/repository"
)

// RateRepo implements repository.RateRepository
type RateRepo struct {
	db *sql.DB
}

// NewRateRepo creates a new rate repository
func NewRateRepo(db *sql.DB) *RateRepo {
	return &RateRepo{db: db}
}

// RateForCurrency fetches the freshest base rate for a currency
func (r *RateRepo) RateForCurrency(ctx context.Context, currencyID int64) (*domain.ExchangeRate, error) {
	query := `
		SELECT id, currency_id, rate, source_type, updated_at
		FROM exchange_rates
		WHERE currency_id = $1
		ORDER BY updated_at DESC
		LIMIT 1
	`
	var er domain.ExchangeRate
	err := r.db.QueryRowContext(ctx, query, currencyID).Scan(
		&er.ID, &er.CurrencyID, &er.Rate, &er.SourceType, &er.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &er, nil
}

// QuoteFor fetches the quote for a payment method and currency pair.
// A missing row is not an error: (nil, nil) means no quote configured.
func (r *RateRepo) QuoteFor(ctx context.Context, paymentMethodID, currencyID int64) (*domain.Quote, error) {
	query := `
		SELECT id, payment_method_id, currency_id, value_type,
		       usd_value, usd_formula, calculated_usd, final_value, updated_at
		FROM quotes
		WHERE payment_method_id = $1 AND currency_id = $2
	`
	var q domain.Quote
	var formula sql.NullString
	err := r.db.QueryRowContext(ctx, query, paymentMethodID, currencyID).Scan(
		&q.ID, &q.PaymentMethodID, &q.CurrencyID, &q.ValueType,
		&q.USDValue, &formula, &q.CalculatedUSD, &q.FinalValue, &q.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	q.USDFormula = formula.String
	return &q, nil
}
