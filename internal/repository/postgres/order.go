package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"ceiba21/internal/domain"
	"ceiba21/internal/repository"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// OrderRepo implements repository.OrderRepository
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo creates a new order repository
func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

const orderColumns = `
	id, reference, user_id, operator_id, currency_id, currency_code,
	payment_method_from_id, payment_method_to_id,
	amount_usd, amount_local, fee_usd, net_usd, exchange_rate,
	client_payment_data, payment_proof_url, operator_proof_url,
	status, channel, channel_chat_id,
	created_at, submitted_at, assigned_at, completed_at, cancelled_at,
	cancellation_reason, operator_notes
`

// Create inserts a draft order. A reference collision surfaces as
// repository.ErrDuplicateReference so the caller can regenerate.
func (r *OrderRepo) Create(ctx context.Context, order *domain.Order) error {
	paymentData, err := json.Marshal(order.ClientPaymentData)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO orders (
			reference, user_id, currency_id, currency_code,
			payment_method_from_id, payment_method_to_id,
			amount_usd, amount_local, fee_usd, net_usd, exchange_rate,
			client_payment_data, status, channel, channel_chat_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at
	`
	err = r.db.QueryRowContext(ctx, query,
		order.Reference, order.UserID, order.CurrencyID, order.CurrencyCode,
		order.PaymentMethodFromID, order.PaymentMethodToID,
		order.AmountUSD, order.AmountLocal, order.FeeUSD, order.NetUSD, order.ExchangeRate,
		paymentData, order.Status, order.Channel, order.ChannelChatID,
	).Scan(&order.ID, &order.CreatedAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return repository.ErrDuplicateReference
	}
	return err
}

// GetByID fetches an order by id
func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return scanOrder(r.db.QueryRowContext(ctx, query, id))
}

// GetByReference fetches an order by its human-facing reference
func (r *OrderRepo) GetByReference(ctx context.Context, reference string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE reference = $1`
	return scanOrder(r.db.QueryRowContext(ctx, query, reference))
}

// LatestByUser fetches the user's most recent order
func (r *OrderRepo) LatestByUser(ctx context.Context, userID int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`
	return scanOrder(r.db.QueryRowContext(ctx, query, userID))
}

// PendingOrders lists submitted orders waiting for an operator, oldest first
func (r *OrderRepo) PendingOrders(ctx context.Context) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status = $1 ORDER BY submitted_at ASC`
	return r.queryOrders(ctx, query, domain.OrderPending)
}

// CountCreatedBetween counts orders created in [from, to), used for the
// daily sequence in order references
func (r *OrderRepo) CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM orders WHERE created_at >= $1 AND created_at < $2`
	err := r.db.QueryRowContext(ctx, query, from, to).Scan(&count)
	return count, err
}

// UpdateProofURL attaches the client's payment proof to a draft
func (r *OrderRepo) UpdateProofURL(ctx context.Context, id int64, url string) error {
	query := `UPDATE orders SET payment_proof_url = $2 WHERE id = $1 AND status = $3`
	return r.execGuarded(ctx, query, id, url, domain.OrderDraft)
}

// MarkSubmitted moves DRAFT to PENDING
func (r *OrderRepo) MarkSubmitted(ctx context.Context, id int64, at time.Time) error {
	query := `
		UPDATE orders SET status = $2, submitted_at = $3
		WHERE id = $1 AND status = $4
	`
	return r.execGuarded(ctx, query, id, domain.OrderPending, at, domain.OrderDraft)
}

// MarkAssigned moves PENDING to IN_PROCESS and pins the operator
func (r *OrderRepo) MarkAssigned(ctx context.Context, id, operatorID int64, at time.Time) error {
	query := `
		UPDATE orders SET status = $2, operator_id = $3, assigned_at = $4
		WHERE id = $1 AND status = $5
	`
	return r.execGuarded(ctx, query, id, domain.OrderInProcess, operatorID, at, domain.OrderPending)
}

// MarkCancelled moves any non-terminal status to CANCELLED
func (r *OrderRepo) MarkCancelled(ctx context.Context, id int64, reason string, at time.Time) error {
	query := `
		UPDATE orders SET status = $2, cancellation_reason = $3, cancelled_at = $4
		WHERE id = $1 AND status NOT IN ($5, $6)
	`
	return r.execGuarded(ctx, query, id, domain.OrderCancelled, reason, at, domain.OrderCompleted, domain.OrderCancelled)
}

// Complete settles the order in a single database transaction: the status
// flip away from IN_PROCESS, the three accounting records, the user's
// rolling totals and the operator's weighted processing average.
func (r *OrderRepo) Complete(ctx context.Context, order *domain.Order, txs []domain.Transaction, processingSeconds int, smoothing decimal.Decimal, at time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = $2, completed_at = $3
		WHERE id = $1 AND status = $4
	`, order.ID, domain.OrderCompleted, at, domain.OrderInProcess)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrInvalidTransition
	}

	for _, t := range txs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO transactions (order_id, type, amount, currency_code, payment_method_id, description)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, t.OrderID, t.Type, t.Amount, t.CurrencyCode, t.PaymentMethodID, t.Description)
		if err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users
		SET total_orders = total_orders + 1,
		    total_volume_usd = total_volume_usd + $2
		WHERE id = $1
	`, order.UserID, order.AmountUSD)
	if err != nil {
		return err
	}

	if order.OperatorID != nil {
		// First completed order seeds the average as-is; later ones blend
		// the new sample in with the smoothing factor.
		_, err = tx.ExecContext(ctx, `
			UPDATE operators
			SET orders_processed = orders_processed + 1,
			    average_processing_time = CASE
			        WHEN orders_processed = 0 THEN $2
			        ELSE CAST(average_processing_time * (1 - $3) + $2 * $3 AS INTEGER)
			    END
			WHERE id = $1
		`, *order.OperatorID, processingSeconds, smoothing)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// TransactionsByOrder lists the accounting records derived from an order
func (r *OrderRepo) TransactionsByOrder(ctx context.Context, orderID int64) ([]domain.Transaction, error) {
	query := `
		SELECT id, order_id, type, amount, currency_code, payment_method_id,
		       description, is_verified, verified_at, created_at
		FROM transactions
		WHERE order_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID, &t.OrderID, &t.Type, &t.Amount, &t.CurrencyCode, &t.PaymentMethodID,
			&t.Description, &t.IsVerified, &t.VerifiedAt, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// StaleDrafts lists drafts abandoned before the cutoff
func (r *OrderRepo) StaleDrafts(ctx context.Context, olderThan time.Time) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status = $1 AND created_at < $2`
	return r.queryOrders(ctx, query, domain.OrderDraft, olderThan)
}

func (r *OrderRepo) execGuarded(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrInvalidTransition
	}
	return nil
}

func (r *OrderRepo) queryOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrderRow(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func scanOrder(row *sql.Row) (*domain.Order, error) {
	o, err := scanOrderRow(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	return o, err
}

func scanOrderRow(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var operatorID sql.NullInt64
	var paymentData []byte
	var proofURL, operatorProofURL, cancellationReason, operatorNotes sql.NullString

	err := row.Scan(
		&o.ID, &o.Reference, &o.UserID, &operatorID, &o.CurrencyID, &o.CurrencyCode,
		&o.PaymentMethodFromID, &o.PaymentMethodToID,
		&o.AmountUSD, &o.AmountLocal, &o.FeeUSD, &o.NetUSD, &o.ExchangeRate,
		&paymentData, &proofURL, &operatorProofURL,
		&o.Status, &o.Channel, &o.ChannelChatID,
		&o.CreatedAt, &o.SubmittedAt, &o.AssignedAt, &o.CompletedAt, &o.CancelledAt,
		&cancellationReason, &operatorNotes,
	)
	if err != nil {
		return nil, err
	}

	if operatorID.Valid {
		o.OperatorID = &operatorID.Int64
	}
	if len(paymentData) > 0 {
		if err := json.Unmarshal(paymentData, &o.ClientPaymentData); err != nil {
			return nil, err
		}
	}
	o.PaymentProofURL = proofURL.String
	o.OperatorProofURL = operatorProofURL.String
	o.CancellationReason = cancellationReason.String
	o.OperatorNotes = operatorNotes.String
	return &o, nil
}
