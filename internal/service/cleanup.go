package service

import (
	"context"
	"time"

	"ceiba21/internal/repository"

	"go.uber.org/zap"
)

// CleanupService cancels draft orders their owners walked away from
type CleanupService struct {
	orders repository.OrderRepository
	logger *zap.Logger
	maxAge time.Duration
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(orders repository.OrderRepository, logger *zap.Logger, maxAge time.Duration) *CleanupService {
	return &CleanupService{orders: orders, logger: logger, maxAge: maxAge}
}

// CancelStaleDrafts cancels drafts older than the configured age
func (s *CleanupService) CancelStaleDrafts(ctx context.Context) error {
	cutoff := time.Now().Add(-s.maxAge)

	drafts, err := s.orders.StaleDrafts(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to list stale drafts", zap.Error(err))
		return err
	}

	for _, draft := range drafts {
		err := s.orders.MarkCancelled(ctx, draft.ID, "Orden abandonada", time.Now())
		if err != nil {
			s.logger.Error("Failed to cancel stale draft",
				zap.String("reference", draft.Reference),
				zap.Error(err))
			continue
		}
		s.logger.Info("Stale draft cancelled", zap.String("reference", draft.Reference))
	}

	if len(drafts) > 0 {
		s.logger.Info("Cleanup completed", zap.Int("cancelled", len(drafts)))
	}
	return nil
}
