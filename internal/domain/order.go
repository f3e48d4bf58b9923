package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of an order.
//
// Normal flow: DRAFT → PENDING → IN_PROCESS → COMPLETED.
// CANCELLED is reachable from any non-terminal state.
type OrderStatus string

const (
	OrderDraft     OrderStatus = "draft"
	OrderPending   OrderStatus = "pending"
	OrderInProcess OrderStatus = "in_process"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderDraft:     {OrderPending, OrderCancelled},
	OrderPending:   {OrderInProcess, OrderCancelled},
	OrderInProcess: {OrderCompleted, OrderCancelled},
}

// IsTerminal reports whether no further transitions are allowed
func (s OrderStatus) IsTerminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// CanTransitionTo checks the whitelist of forward transitions. A settled
// order can never be cancelled afterwards.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentData holds the client's payout details collected by the bot
type PaymentData struct {
	Bank       string `json:"bank"`
	Account    string `json:"account"`
	Holder     string `json:"holder"`
	NationalID string `json:"national_id"`
	Phone      string `json:"phone,omitempty"`
}

// Order is the central business entity: one currency exchange negotiated
// through the bot and settled by an operator.
//
// The five monetary/rate fields are snapshots taken at creation time and are
// never recomputed from live rates afterwards.
type Order struct {
	ID        int64
	Reference string

	UserID     int64
	OperatorID *int64

	CurrencyID          int64
	CurrencyCode        string
	PaymentMethodFromID int64
	PaymentMethodToID   int64

	AmountUSD    decimal.Decimal
	AmountLocal  decimal.Decimal
	FeeUSD       decimal.Decimal
	NetUSD       decimal.Decimal
	ExchangeRate decimal.Decimal

	ClientPaymentData PaymentData

	PaymentProofURL  string
	OperatorProofURL string

	Status OrderStatus

	Channel       string
	ChannelChatID string

	CreatedAt   time.Time
	SubmittedAt *time.Time
	AssignedAt  *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time

	CancellationReason string
	OperatorNotes      string
}
