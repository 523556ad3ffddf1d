package domain

import "time"

// UpdateRecord tracks the latest update text seen for one shipment.
// FirstSeen resets whenever the text changes.
type UpdateRecord struct {
	// Text is the last update text observed.
	Text string
	// FirstSeen is when this exact text was first observed.
	FirstSeen time.Time
	// LastSeen is when this text was most recently observed.
	LastSeen time.Time
	// Count is how many times this text has been observed in a row.
	Count int
	// Alerted marks that a staleness alert already fired for this run of
	// identical text. Only consulted under the one-shot repeat policy.
	Alerted bool
}

// AmbiguousRecord tracks an ambiguous status phrase observed for one shipment.
// The record is cleared when the phrase disappears from the update text
// (implicit resolution) or when its timeout fires.
type AmbiguousRecord struct {
	// Phrase is the matched ambiguous-status keyword.
	Phrase string
	// Text is the update text at match time.
	Text string
	// FirstSeen is when the phrase was first observed.
	FirstSeen time.Time
	// LastSeen is when the shipment last reported any update.
	LastSeen time.Time
	// Timeout is the phrase-specific duration after which an alert fires.
	Timeout time.Duration
}
