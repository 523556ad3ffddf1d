package service

import (
	"context"
	"fmt"
	"time"

	"shipment-sentinel/internal/core/logger"
	classification "shipment-sentinel/internal/features/classification/domain"
	"shipment-sentinel/internal/features/alerts/ports"

	"go.uber.org/zap"
)

// DefaultSuppressWindow is the duplicate-alert suppression window.
const DefaultSuppressWindow = 5 * time.Minute

// Suppressor gates alerts so that identical (entity, text, kind) triggers
// fire at most once per window.
type Suppressor struct {
	store  ports.SuppressionStore
	window time.Duration
	logger *zap.Logger
}

// NewSuppressor creates a Suppressor over the given store. window <= 0
// selects the default 5-minute window.
func NewSuppressor(store ports.SuppressionStore, window time.Duration) *Suppressor {
	if window <= 0 {
		window = DefaultSuppressWindow
	}
	return &Suppressor{
		store:  store,
		window: window,
		logger: logger.Named("suppressor"),
	}
}

// ShouldSuppress returns true when an identical alert fired within the
// window. When it returns false the attempt has been recorded. A failing
// store fails open: a duplicate alert is preferable to a lost one.
func (s *Suppressor) ShouldSuppress(ctx context.Context, entityID, updateText string, kind classification.IssueKind) bool {
	key := fmt.Sprintf("%s|%s|%s", entityID, updateText, kind)

	seen, err := s.store.Seen(ctx, key, s.window)
	if err != nil {
		s.logger.Warn("Suppression store unavailable, allowing alert",
			zap.String("entity_id", entityID),
			zap.Error(err),
		)
		return false
	}

	if seen {
		s.logger.Debug("Duplicate alert suppressed",
			zap.String("entity_id", entityID),
			zap.String("kind", string(kind)),
		)
	}
	return seen
}
