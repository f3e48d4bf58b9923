package service

import "errors"

// Sentinel errors surfaced to callers for user-facing handling
var (
	ErrNoRate            = errors.New("no exchange rate available")
	ErrUserBlocked       = errors.New("user is blocked")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("order status does not allow this operation")
	ErrReasonRequired    = errors.New("cancellation reason is required")
	ErrNoOperator        = errors.New("no active operators available")
)
