package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// User is a client of the exchange service. The model is channel-agnostic:
// today only the Telegram identity is populated, but nothing else assumes it.
type User struct {
	ID         int64
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
	IsActive   bool
	IsBlocked  bool

	// Denormalized rolling statistics, updated when orders settle
	TotalOrders    int
	TotalVolumeUSD decimal.Decimal

	CreatedAt time.Time
}

// DisplayName returns the friendliest available name for the user
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		if u.LastName != "" {
			return u.FirstName + " " + u.LastName
		}
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return fmt.Sprintf("Usuario #%d", u.ID)
}

// Operator verifies payments and settles orders
type Operator struct {
	ID       int64
	Username string
	IsActive bool

	OrdersProcessed int
	// Weighted running average of order processing time, in seconds
	AverageProcessingTime int

	CreatedAt time.Time
}
