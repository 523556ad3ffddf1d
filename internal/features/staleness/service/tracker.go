package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"shipment-sentinel/internal/core/logger"
	classification "shipment-sentinel/internal/features/classification/domain"
	"shipment-sentinel/internal/features/staleness/domain"

	"go.uber.org/zap"
)

// RepeatPolicy controls whether the same-text staleness check re-emits on
// every event once past the threshold or fires once per run of identical
// text. The source behaviour was ambiguous between the two, so the choice
// is an explicit configuration.
type RepeatPolicy string

const (
	// RepeatAlways re-emits on every event past the threshold. Downstream
	// duplicate suppression keeps the alert volume bounded.
	RepeatAlways RepeatPolicy = "repeat"
	// RepeatOnce fires a single alert per continuous run of identical text.
	RepeatOnce RepeatPolicy = "once"
)

// ParseRepeatPolicy maps a configuration string to a RepeatPolicy.
func ParseRepeatPolicy(s string) (RepeatPolicy, error) {
	switch RepeatPolicy(strings.ToLower(s)) {
	case RepeatAlways:
		return RepeatAlways, nil
	case RepeatOnce:
		return RepeatOnce, nil
	}
	return "", fmt.Errorf("unknown stale repeat policy: %q", s)
}

// ambiguousTimeout pairs a known ambiguous phrase with its timeout. Order
// matters: more specific, more blocking phrases come first so that a text
// containing several known phrases tracks under the strictest one.
type ambiguousTimeout struct {
	phrase  string
	timeout time.Duration
}

// ambiguousTimeouts is the static table of phrases that are normal in small
// doses but indicate a problem when they persist. Blocking states get short
// timeouts; normally-slow states get long ones.
var ambiguousTimeouts = []ambiguousTimeout{
	{"on hold", 6 * time.Hour},
	{"awaiting documentation", 12 * time.Hour},
	{"clearance event", 12 * time.Hour},
	{"clearance in progress", 12 * time.Hour},
	{"customs clearance", 18 * time.Hour},
	{"processing", 24 * time.Hour},
	{"tendered to delivery service provider", 48 * time.Hour},
	{"in transit", 72 * time.Hour},
}

// Tracker owns the per-shipment staleness state. It detects two independent
// failure modes against the same update text: identical text persisting past
// a flat threshold (silent tracking failure) and a known ambiguous phrase
// persisting past its phrase-specific timeout (genuine processing delay).
// Constructed once at process start; all state is process-scoped.
type Tracker struct {
	mu        sync.Mutex
	updates   map[string]*domain.UpdateRecord
	ambiguous map[string]*domain.AmbiguousRecord

	staleAfter time.Duration
	policy     RepeatPolicy
	logger     *zap.Logger
}

// NewTracker creates a Tracker with the given default same-text threshold
// and repeat policy.
func NewTracker(staleAfter time.Duration, policy RepeatPolicy) *Tracker {
	return &Tracker{
		updates:    make(map[string]*domain.UpdateRecord),
		ambiguous:  make(map[string]*domain.AmbiguousRecord),
		staleAfter: staleAfter,
		policy:     policy,
		logger:     logger.Named("staleness"),
	}
}

// ObserveText runs the same-text staleness check for one update event.
// staleAfter overrides the tracker default when > 0 (per-board threshold).
// Returns nil when no alert should fire.
func (t *Tracker) ObserveText(entityID, text string, staleAfter time.Duration, now time.Time) *classification.Issue {
	if staleAfter <= 0 {
		staleAfter = t.staleAfter
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.updates[entityID]
	if !ok || rec.Text != text {
		t.updates[entityID] = &domain.UpdateRecord{
			Text:      text,
			FirstSeen: now,
			LastSeen:  now,
			Count:     1,
		}
		return nil
	}

	rec.Count++
	rec.LastSeen = now

	elapsed := now.Sub(rec.FirstSeen)
	if elapsed <= staleAfter {
		return nil
	}

	if t.policy == RepeatOnce && rec.Alerted {
		return nil
	}
	rec.Alerted = true

	hours := int(elapsed.Hours())
	t.logger.Debug("Stale tracking detected",
		zap.String("entity_id", entityID),
		zap.Int("hours", hours),
		zap.Int("repeats", rec.Count),
	)

	return &classification.Issue{
		Kind:     classification.IssueStaleTracking,
		Severity: classification.SeverityMedium,
		Reason:   fmt.Sprintf("Tracking text unchanged for %d hours (%d repeats)", hours, rec.Count),
		Carrier:  classification.CarrierUnknown,
	}
}

// ObserveAmbiguous runs the ambiguous-status timeout check for one update
// event. First observation of a phrase never alerts; the alert fires once
// when the originally matched phrase persists past its timeout, after which
// the record is cleared and a renewed occurrence restarts tracking.
// Returns nil when no alert should fire.
func (t *Tracker) ObserveAmbiguous(entityID, text string, now time.Time) *classification.Issue {
	lower := strings.ToLower(text)

	t.mu.Lock()
	defer t.mu.Unlock()

	rec, tracking := t.ambiguous[entityID]

	if tracking {
		rec.LastSeen = now
		if !strings.Contains(lower, rec.Phrase) {
			// The originally matched phrase is gone: implicit resolution,
			// even if the new text matches a different ambiguous phrase.
			delete(t.ambiguous, entityID)
			t.startAmbiguous(entityID, lower, text, now)
			return nil
		}

		elapsed := now.Sub(rec.FirstSeen)
		if elapsed < rec.Timeout {
			return nil
		}

		delete(t.ambiguous, entityID)

		hours := int(elapsed.Hours())
		t.logger.Debug("Ambiguous status timed out",
			zap.String("entity_id", entityID),
			zap.String("phrase", rec.Phrase),
			zap.Int("hours", hours),
		)

		return &classification.Issue{
			Kind:     classification.IssueAmbiguousTimeout,
			Severity: classification.SeverityHigh,
			Reason:   fmt.Sprintf("Status %q has persisted for %d hours (limit %d)", rec.Phrase, hours, int(rec.Timeout.Hours())),
			Carrier:  classification.CarrierUnknown,
		}
	}

	t.startAmbiguous(entityID, lower, text, now)
	return nil
}

// startAmbiguous begins tracking when the text contains a known phrase.
// Caller holds the lock.
func (t *Tracker) startAmbiguous(entityID, lower, text string, now time.Time) {
	for _, at := range ambiguousTimeouts {
		if strings.Contains(lower, at.phrase) {
			t.ambiguous[entityID] = &domain.AmbiguousRecord{
				Phrase:    at.phrase,
				Text:      text,
				FirstSeen: now,
				LastSeen:  now,
				Timeout:   at.timeout,
			}
			return
		}
	}
}

// Sweep evicts state for shipments that have been silent longer than
// maxIdle. Shipments that stop reporting would otherwise leak records
// forever.
func (t *Tracker) Sweep(maxIdle time.Duration, now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	evicted := 0
	for id, rec := range t.updates {
		if now.Sub(rec.LastSeen) > maxIdle {
			delete(t.updates, id)
			evicted++
		}
	}
	for id, rec := range t.ambiguous {
		if now.Sub(rec.LastSeen) > maxIdle {
			delete(t.ambiguous, id)
			evicted++
		}
	}

	if evicted > 0 {
		t.logger.Info("Swept idle shipment state", zap.Int("evicted", evicted))
	}
	return evicted
}

// TrackedCount returns the number of shipments with same-text state.
func (t *Tracker) TrackedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.updates)
}
