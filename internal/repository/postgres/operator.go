package postgres

import (
	"context"
	"database/sql"

	"ceiba21/internal/domain"
	"ceiba21/internal/repository"
)

// OperatorRepo implements repository.OperatorRepository
type OperatorRepo struct {
	db *sql.DB
}

// NewOperatorRepo creates a new operator repository
func NewOperatorRepo(db *sql.DB) *OperatorRepo {
	return &OperatorRepo{db: db}
}

// GetByID fetches an operator by id
func (r *OperatorRepo) GetByID(ctx context.Context, id int64) (*domain.Operator, error) {
	query := `
		SELECT id, username, is_active, orders_processed, average_processing_time, created_at
		FROM operators WHERE id = $1
	`
	var o domain.Operator
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&o.ID, &o.Username, &o.IsActive, &o.OrdersProcessed, &o.AverageProcessingTime, &o.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ActiveOperators lists operators able to take orders
func (r *OperatorRepo) ActiveOperators(ctx context.Context) ([]domain.Operator, error) {
	query := `
		SELECT id, username, is_active, orders_processed, average_processing_time, created_at
		FROM operators
		WHERE is_active = TRUE
		ORDER BY orders_processed ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var operators []domain.Operator
	for rows.Next() {
		var o domain.Operator
		if err := rows.Scan(&o.ID, &o.Username, &o.IsActive, &o.OrdersProcessed, &o.AverageProcessingTime, &o.CreatedAt); err != nil {
			return nil, err
		}
		operators = append(operators, o)
	}
	return operators, rows.Err()
}
