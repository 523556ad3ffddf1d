package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"shipment-sentinel/internal/core/config"
	"shipment-sentinel/internal/core/logger"
	alertservice "shipment-sentinel/internal/features/alerts/service"
	classification "shipment-sentinel/internal/features/classification/domain"
	classifierservice "shipment-sentinel/internal/features/classification/service"
	stalenessservice "shipment-sentinel/internal/features/staleness/service"
	"shipment-sentinel/internal/features/monitor/domain"
	"shipment-sentinel/internal/features/monitor/ports"

	"go.uber.org/zap"
)

// MonitorService runs the alerting pipeline for inbound board events:
// fetch the shipment, normalize its tracking token, classify the update
// text, run both staleness checks, and route every surviving issue through
// duplicate suppression to the notifier. Collaborator failures are logged
// and contained; nothing propagates back to the webhook caller.
type MonitorService struct {
	board      ports.BoardClient
	classifier *classifierservice.Classifier
	tracker    *stalenessservice.Tracker
	suppressor *alertservice.Suppressor
	notifier   *alertservice.Notifier
	boards     config.Boards
	logger     *zap.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewMonitorService creates a MonitorService wired to its collaborators.
func NewMonitorService(
	board ports.BoardClient,
	classifier *classifierservice.Classifier,
	tracker *stalenessservice.Tracker,
	suppressor *alertservice.Suppressor,
	notifier *alertservice.Notifier,
	boards config.Boards,
) *MonitorService {
	return &MonitorService{
		board:      board,
		classifier: classifier,
		tracker:    tracker,
		suppressor: suppressor,
		notifier:   notifier,
		boards:     boards,
		logger:     logger.Named("monitor"),
		now:        time.Now,
	}
}

// HandleEvent processes one webhook event end to end. It never returns an
// error: every failure mode is logged and contained so the webhook caller
// always gets its acknowledgment.
func (s *MonitorService) HandleEvent(ctx context.Context, event domain.WebhookEvent) {
	board, ok := s.boards.ByID(event.BoardID)
	if !ok {
		s.logger.Debug("Event for untracked board ignored",
			zap.String("board_id", event.BoardID),
		)
		return
	}

	shipment, err := s.board.FetchShipment(ctx, event.EntityID)
	if err != nil {
		if errors.Is(err, ports.ErrShipmentNotFound) {
			s.logger.Warn("Shipment not found on board",
				zap.String("entity_id", event.EntityID),
				zap.String("board_id", event.BoardID),
			)
		} else {
			s.logger.Error("Failed to fetch shipment",
				zap.String("entity_id", event.EntityID),
				zap.Error(err),
			)
		}
		return
	}

	s.normalizeTrackingToken(ctx, board, shipment)

	// Only changes to the designated status column feed the classifiers;
	// everything else was only eligible for token normalization.
	if event.FieldID != "" && event.FieldID != board.Fields.Status {
		return
	}

	text := event.Text
	if text == "" {
		text = shipment.Field(board.Fields.Status)
	}
	if strings.TrimSpace(text) == "" {
		return
	}

	now := s.now()
	issues := make([]classification.Issue, 0, 3)

	classified := s.classifier.Classify(ctx, text, s.contextFields(board, shipment))
	if !classified.None() {
		issues = append(issues, classified)
	}

	staleAfter := time.Duration(board.StaleAfterHours) * time.Hour
	if stale := s.tracker.ObserveText(event.EntityID, text, staleAfter, now); stale != nil {
		issues = append(issues, *stale)
	}
	if ambiguous := s.tracker.ObserveAmbiguous(event.EntityID, text, now); ambiguous != nil {
		issues = append(issues, *ambiguous)
	}

	if len(issues) == 0 {
		return
	}

	location := classifierservice.ResolveLocation(
		shipment.Field(board.Fields.Location),
		classified.ExtractedLocation,
		text,
	)

	in := alertservice.RouteInput{
		EntityID:     shipment.ID,
		EntityName:   shipment.Name,
		UpdateText:   text,
		Location:     location,
		DueDate:      shipment.Field(board.Fields.DueDate),
		CustomerName: shipment.Field(board.Fields.Customer),
		CompanyName:  shipment.Field(board.Fields.Company),
		Board:        board,
	}

	for _, issue := range issues {
		if s.suppressor.ShouldSuppress(ctx, shipment.ID, text, issue.Kind) {
			continue
		}
		s.notifier.Route(ctx, issue, in)
	}
}

// GetShipment fetches a shipment and previews its rule-based classification.
func (s *MonitorService) GetShipment(ctx context.Context, itemID string) (*domain.Shipment, classification.Issue, error) {
	shipment, err := s.board.FetchShipment(ctx, itemID)
	if err != nil {
		return nil, classification.Issue{}, err
	}

	var issue classification.Issue
	for _, board := range s.boards {
		if text := shipment.Field(board.Fields.Status); text != "" {
			issue = s.classifier.ClassifyRules(text)
			break
		}
	}

	return shipment, issue, nil
}

// contextFields collects the structured attributes passed to the
// model-assisted classifier.
func (s *MonitorService) contextFields(board config.BoardConfig, shipment *domain.Shipment) map[string]string {
	return map[string]string{
		"location":    shipment.Field(board.Fields.Location),
		"due_date":    shipment.Field(board.Fields.DueDate),
		"customer":    shipment.Field(board.Fields.Customer),
		"company":     shipment.Field(board.Fields.Company),
		"part_number": shipment.Field(board.Fields.PartNumber),
		"region":      board.Region,
	}
}

// normalizeTrackingToken extracts a bare tracking number out of a tracking
// URL written into the designated column and writes it back. The write is
// idempotent; failures only cost the normalization.
func (s *MonitorService) normalizeTrackingToken(ctx context.Context, board config.BoardConfig, shipment *domain.Shipment) {
	key := board.Fields.TrackingToken
	if key == "" {
		return
	}

	raw := shipment.Field(key)
	normalized := NormalizeTrackingToken(raw)
	if normalized == "" || normalized == raw {
		return
	}

	if err := s.board.WriteField(ctx, board.ID, shipment.ID, key, normalized); err != nil {
		s.logger.Warn("Failed to write normalized tracking token",
			zap.String("entity_id", shipment.ID),
			zap.Error(err),
		)
		return
	}

	shipment.Fields[key] = normalized
	s.logger.Debug("Tracking token normalized",
		zap.String("entity_id", shipment.ID),
		zap.String("token", normalized),
	)
}

// trackingQueryParams are the URL query parameters carriers use for the
// tracking number, in lookup order.
var trackingQueryParams = []string{
	"tracknum",
	"trackingnumber",
	"tracking-id",
	"trackingid",
	"tracknumbers",
	"awb",
	"id",
}

// NormalizeTrackingToken returns the bare tracking number for a value that
// may be a tracking URL. Non-URL values are returned trimmed; URLs without
// a recognizable number yield the empty string.
func NormalizeTrackingToken(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	query := u.Query()
	for _, param := range trackingQueryParams {
		for name, values := range query {
			if strings.EqualFold(name, param) && len(values) > 0 && values[0] != "" {
				return values[0]
			}
		}
	}

	// Fall back to the last path segment for path-style tracking links.
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if last := segments[len(segments)-1]; last != "" && last != u.Host {
		return last
	}

	return ""
}
