package service

import (
	"context"
	"fmt"
	"time"

	"ceiba21/internal/domain"
	"ceiba21/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Notifier pushes order events to the operator channel. The order service
// treats delivery as best effort: a failed notification is logged, never
// rolled back into the order.
type Notifier interface {
	NotifyNewOrder(ctx context.Context, order *domain.Order, user *domain.User) error
	NotifyOrderCompleted(ctx context.Context, order *domain.Order) error
	NotifyOrderCancelled(ctx context.Context, order *domain.Order) error
}

// OrderService drives the order lifecycle
type OrderService struct {
	orders    repository.OrderRepository
	users     repository.UserRepository
	operators repository.OperatorRepository
	notifier  Notifier
	logger    *zap.Logger
	smoothing decimal.Decimal
	now       func() time.Time
}

// NewOrderService creates a new order service. The smoothing factor weighs
// new samples into the operator's running processing-time average.
func NewOrderService(orders repository.OrderRepository, users repository.UserRepository, operators repository.OperatorRepository, notifier Notifier, logger *zap.Logger, smoothing decimal.Decimal) *OrderService {
	return &OrderService{
		orders:    orders,
		users:     users,
		operators: operators,
		notifier:  notifier,
		logger:    logger,
		smoothing: smoothing,
		now:       time.Now,
	}
}

const referenceRetries = 3

// CreateDraft materializes a confirmed calculation into a DRAFT order with a
// fresh daily reference. Monetary fields are copied from the calculation
// snapshot, never recomputed.
func (s *OrderService) CreateDraft(ctx context.Context, userID int64, data *domain.ConversationData, chatID string) (*domain.Order, error) {
	calc, err := data.RequireCalculation()
	if err != nil {
		return nil, err
	}
	if err := data.RequireCurrency(); err != nil {
		return nil, err
	}
	if err := data.RequirePaymentMethod(); err != nil {
		return nil, err
	}
	if err := data.RequireBankDetails(); err != nil {
		return nil, err
	}

	order := &domain.Order{
		UserID:              userID,
		CurrencyID:          data.CurrencyID,
		CurrencyCode:        data.CurrencyCode,
		PaymentMethodFromID: data.PaymentMethodID,
		PaymentMethodToID:   data.PaymentMethodID,
		AmountUSD:           calc.AmountUSD,
		AmountLocal:         calc.AmountLocal,
		FeeUSD:              calc.FeeUSD,
		NetUSD:              calc.NetUSD,
		ExchangeRate:        calc.ExchangeRate,
		ClientPaymentData: domain.PaymentData{
			Bank:       data.Bank,
			Account:    data.Account,
			Holder:     data.Holder,
			NationalID: data.NationalID,
		},
		Status:        domain.OrderDraft,
		Channel:       "telegram",
		ChannelChatID: chatID,
	}

	// Two clients creating orders in the same instant can race to the same
	// daily sequence number. The unique index is the arbiter; on collision
	// we recount and retry.
	for attempt := 0; attempt < referenceRetries; attempt++ {
		reference, err := s.nextReference(ctx)
		if err != nil {
			return nil, err
		}
		order.Reference = reference

		err = s.orders.Create(ctx, order)
		if err == repository.ErrDuplicateReference {
			s.logger.Warn("Order reference collision, retrying",
				zap.String("reference", reference),
				zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return nil, err
		}

		s.logger.Info("Order draft created",
			zap.String("reference", order.Reference),
			zap.Int64("user_id", userID),
			zap.String("amount_usd", order.AmountUSD.StringFixed(2)))
		return order, nil
	}

	return nil, fmt.Errorf("could not allocate order reference after %d attempts", referenceRetries)
}

// nextReference builds ORD-YYYYMMDD-NNN from today's order count
func (s *OrderService) nextReference(ctx context.Context) (string, error) {
	now := s.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	count, err := s.orders.CountCreatedBetween(ctx, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("ORD-%s-%03d", now.Format("20060102"), count+1), nil
}

// AttachProof stores the client's payment proof on a draft order
func (s *OrderService) AttachProof(ctx context.Context, orderID int64, proofURL string) error {
	err := s.orders.UpdateProofURL(ctx, orderID, proofURL)
	if err == repository.ErrInvalidTransition {
		return ErrInvalidTransition
	}
	return err
}

// Submit moves a draft into the operator queue and announces it
func (s *OrderService) Submit(ctx context.Context, orderID int64) (*domain.Order, error) {
	err := s.orders.MarkSubmitted(ctx, orderID, s.now())
	if err == repository.ErrInvalidTransition {
		return nil, ErrInvalidTransition
	}
	if err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, order.UserID)
	if err != nil {
		s.logger.Error("Could not load user for notification", zap.Error(err))
	} else if err := s.notifier.NotifyNewOrder(ctx, order, user); err != nil {
		s.logger.Error("Operator notification failed",
			zap.String("reference", order.Reference),
			zap.Error(err))
	}

	return order, nil
}

// Assign pins an operator to a pending order
func (s *OrderService) Assign(ctx context.Context, orderID, operatorID int64) error {
	operator, err := s.operators.GetByID(ctx, operatorID)
	if err != nil {
		return err
	}
	if !operator.IsActive {
		return fmt.Errorf("operator %s is not active", operator.Username)
	}

	err = s.orders.MarkAssigned(ctx, orderID, operatorID, s.now())
	if err == repository.ErrInvalidTransition {
		return ErrInvalidTransition
	}
	return err
}

// Escalate hands a pending order to the first available operator. Used when
// the client asks for manual attention mid-conversation.
func (s *OrderService) Escalate(ctx context.Context, orderID int64) error {
	operators, err := s.operators.ActiveOperators(ctx)
	if err != nil {
		return err
	}
	if len(operators) == 0 {
		return ErrNoOperator
	}
	return s.Assign(ctx, orderID, operators[0].ID)
}

// Complete settles an in-process order: the status flip, the three derived
// accounting transactions and both parties' statistics commit atomically.
func (s *OrderService) Complete(ctx context.Context, orderID int64) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err == repository.ErrNotFound {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(domain.OrderCompleted) {
		return nil, ErrInvalidTransition
	}

	now := s.now()
	processingSeconds := 0
	if order.AssignedAt != nil {
		processingSeconds = int(now.Sub(*order.AssignedAt).Seconds())
	}

	txs := domain.TransactionsForOrder(order)
	err = s.orders.Complete(ctx, order, txs, processingSeconds, s.smoothing, now)
	if err == repository.ErrInvalidTransition {
		return nil, ErrInvalidTransition
	}
	if err != nil {
		return nil, err
	}

	order.Status = domain.OrderCompleted
	order.CompletedAt = &now

	s.logger.Info("Order completed",
		zap.String("reference", order.Reference),
		zap.String("amount_usd", order.AmountUSD.StringFixed(2)),
		zap.Int("processing_seconds", processingSeconds))

	if err := s.notifier.NotifyOrderCompleted(ctx, order); err != nil {
		s.logger.Error("Completion notification failed", zap.Error(err))
	}

	return order, nil
}

// Cancel cancels a non-settled order. A reason is mandatory; a completed
// order can never be cancelled.
func (s *OrderService) Cancel(ctx context.Context, orderID int64, reason string) (*domain.Order, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err == repository.ErrNotFound {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(domain.OrderCancelled) {
		return nil, ErrInvalidTransition
	}

	now := s.now()
	err = s.orders.MarkCancelled(ctx, orderID, reason, now)
	if err == repository.ErrInvalidTransition {
		return nil, ErrInvalidTransition
	}
	if err != nil {
		return nil, err
	}

	order.Status = domain.OrderCancelled
	order.CancelledAt = &now
	order.CancellationReason = reason

	s.logger.Info("Order cancelled",
		zap.String("reference", order.Reference),
		zap.String("reason", reason))

	if err := s.notifier.NotifyOrderCancelled(ctx, order); err != nil {
		s.logger.Error("Cancellation notification failed", zap.Error(err))
	}

	return order, nil
}

// GetByReference looks an order up by its human-facing reference
func (s *OrderService) GetByReference(ctx context.Context, reference string) (*domain.Order, error) {
	order, err := s.orders.GetByReference(ctx, reference)
	if err == repository.ErrNotFound {
		return nil, ErrOrderNotFound
	}
	return order, err
}

// LatestByUser returns the user's most recent order, or ErrOrderNotFound
func (s *OrderService) LatestByUser(ctx context.Context, userID int64) (*domain.Order, error) {
	order, err := s.orders.LatestByUser(ctx, userID)
	if err == repository.ErrNotFound {
		return nil, ErrOrderNotFound
	}
	return order, err
}

// PendingOrders lists the operator queue, oldest first
func (s *OrderService) PendingOrders(ctx context.Context) ([]domain.Order, error) {
	return s.orders.PendingOrders(ctx)
}

// Transactions lists the accounting records of an order
func (s *OrderService) Transactions(ctx context.Context, orderID int64) ([]domain.Transaction, error) {
	return s.orders.TransactionsByOrder(ctx, orderID)
}
