package postgres

import (
	"context"
	"database/sql"

	"ceiba21/internal/domain"
	"ceiba21/internal/repository"
)

// UserRepo implements repository.UserRepository
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// EnsureTelegramUser creates the user on first contact and refreshes the
// Telegram profile fields on every later one.
func (r *UserRepo) EnsureTelegramUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (*domain.User, error) {
	query := `
		INSERT INTO users (telegram_id, username, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (telegram_id)
		DO UPDATE SET username = $2, first_name = $3, last_name = $4
		RETURNING id, telegram_id, username, first_name, last_name,
		          is_active, is_blocked, total_orders, total_volume_usd, created_at
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, telegramID, username, firstName, lastName))
}

// GetByID fetches a user by internal id
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
		SELECT id, telegram_id, username, first_name, last_name,
		       is_active, is_blocked, total_orders, total_volume_usd, created_at
		FROM users WHERE id = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// IsBlocked checks whether the user is blocked from operating
func (r *UserRepo) IsBlocked(ctx context.Context, id int64) (bool, error) {
	var blocked bool
	query := `SELECT is_blocked FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&blocked)

	if err == sql.ErrNoRows {
		// Unknown user, nothing to block yet
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return blocked, nil
}

func (r *UserRepo) scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.TelegramID, &u.Username, &u.FirstName, &u.LastName,
		&u.IsActive, &u.IsBlocked, &u.TotalOrders, &u.TotalVolumeUSD, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
