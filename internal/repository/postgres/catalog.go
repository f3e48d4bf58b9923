package postgres

import (
	"context"
	"database/sql"

	"ceiba21/internal/domain"
	"ceiba21/internal/repository"
)

// CatalogRepo implements repository.CatalogRepository
type CatalogRepo struct {
	db *sql.DB
}

// NewCatalogRepo creates a new catalog repository
func NewCatalogRepo(db *sql.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

// ActiveCurrencies lists currencies offered to clients, in display order
func (r *CatalogRepo) ActiveCurrencies(ctx context.Context) ([]domain.Currency, error) {
	query := `
		SELECT id, code, name, symbol, is_active, display_order
		FROM currencies
		WHERE is_active = TRUE
		ORDER BY display_order, id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var currencies []domain.Currency
	for rows.Next() {
		var c domain.Currency
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Symbol, &c.Active, &c.DisplayOrder); err != nil {
			return nil, err
		}
		currencies = append(currencies, c)
	}
	return currencies, rows.Err()
}

// CurrencyByID fetches a currency by id
func (r *CatalogRepo) CurrencyByID(ctx context.Context, id int64) (*domain.Currency, error) {
	query := `
		SELECT id, code, name, symbol, is_active, display_order
		FROM currencies WHERE id = $1
	`
	var c domain.Currency
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Code, &c.Name, &c.Symbol, &c.Active, &c.DisplayOrder)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ActivePaymentMethods lists payment channels offered to clients
func (r *CatalogRepo) ActivePaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	query := `
		SELECT id, code, name, is_active, display_order,
		       value_type, usd_value, usd_formula,
		       has_platform_fee, fee_rate, fee_fixed
		FROM payment_methods
		WHERE is_active = TRUE
		ORDER BY display_order, id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var methods []domain.PaymentMethod
	for rows.Next() {
		m, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, err
		}
		methods = append(methods, *m)
	}
	return methods, rows.Err()
}

// PaymentMethodByID fetches a payment method by id
func (r *CatalogRepo) PaymentMethodByID(ctx context.Context, id int64) (*domain.PaymentMethod, error) {
	query := `
		SELECT id, code, name, is_active, display_order,
		       value_type, usd_value, usd_formula,
		       has_platform_fee, fee_rate, fee_fixed
		FROM payment_methods WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, query, id)
	m, err := scanPaymentMethod(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaymentMethod(row rowScanner) (*domain.PaymentMethod, error) {
	var m domain.PaymentMethod
	var formula sql.NullString
	err := row.Scan(
		&m.ID, &m.Code, &m.Name, &m.Active, &m.DisplayOrder,
		&m.ValueType, &m.USDValue, &formula,
		&m.HasPlatformFee, &m.FeeRate, &m.FeeFixed,
	)
	if err != nil {
		return nil, err
	}
	m.USDFormula = formula.String
	return &m, nil
}
