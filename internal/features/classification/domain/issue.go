package domain

// IssueKind enumerates the alert-worthy conditions a carrier update can map to.
type IssueKind string

const (
	// IssueNone indicates a normal update that must never be alerted.
	IssueNone IssueKind = "NONE"
	// IssueHeldInCustoms indicates the shipment is actively held by customs.
	IssueHeldInCustoms IssueKind = "HELD_IN_CUSTOMS"
	// IssueDeliveryFailure indicates a failed delivery attempt (recipient
	// unavailable, wrong address, refused).
	IssueDeliveryFailure IssueKind = "DELIVERY_FAILURE"
	// IssueFinalMile indicates a problem at a domestic last-mile partner.
	IssueFinalMile IssueKind = "FINAL_MILE_ISSUE"
	// IssueHubDelay indicates a delay at a known carrier hub.
	IssueHubDelay IssueKind = "HUB_DELAY"
	// IssueTransitDelay indicates an operational or weather transit delay.
	IssueTransitDelay IssueKind = "TRANSIT_DELAY"
	// IssueDamageOrLoss indicates damage, loss or an open investigation.
	IssueDamageOrLoss IssueKind = "DAMAGE_OR_LOSS"
	// IssueEUCustomsComplexity indicates cross-border documentation friction
	// (VAT, duty codes, declarations).
	IssueEUCustomsComplexity IssueKind = "EU_CUSTOMS_COMPLEXITY"
	// IssueStaleTracking indicates identical tracking text persisting past
	// the staleness threshold.
	IssueStaleTracking IssueKind = "STALE_TRACKING"
	// IssueAmbiguousTimeout indicates an ambiguous status persisting past
	// its phrase-specific timeout.
	IssueAmbiguousTimeout IssueKind = "AMBIGUOUS_TIMEOUT"
	// IssueStuckInTransit indicates a shipment flagged as stuck between scans.
	IssueStuckInTransit IssueKind = "STUCK_IN_TRANSIT"
)

// Severity grades how urgently an issue needs attention.
type Severity string

const (
	// SeverityHigh marks issues requiring immediate action.
	SeverityHigh Severity = "HIGH"
	// SeverityMedium marks issues worth watching.
	SeverityMedium Severity = "MEDIUM"
	// SeverityLow marks informational issues.
	SeverityLow Severity = "LOW"
)

// Carrier identifies the shipping carrier detected in an update.
type Carrier string

const (
	// CarrierUPS is United Parcel Service.
	CarrierUPS Carrier = "UPS"
	// CarrierDHL is DHL Express.
	CarrierDHL Carrier = "DHL"
	// CarrierFedEx is Federal Express.
	CarrierFedEx Carrier = "FEDEX"
	// CarrierUnknown is any carrier that could not be detected.
	CarrierUnknown Carrier = "UNKNOWN"
)

// Issue is the structured output of classification.
// Kind == IssueNone means the update is normal; every other kind carries a
// severity and a human-readable reason.
type Issue struct {
	// Kind is the enumerated issue category.
	Kind IssueKind `json:"kind"`
	// Severity grades the issue. Empty when Kind is IssueNone.
	Severity Severity `json:"severity,omitempty"`
	// Reason is the human-readable explanation.
	Reason string `json:"reason,omitempty"`
	// Carrier is the carrier detected in the update text.
	Carrier Carrier `json:"carrier"`
	// Route is the shipping route when known (e.g., "DE -> US").
	Route string `json:"route,omitempty"`
	// ExtractedLocation is a location pulled from the update text, if any.
	ExtractedLocation string `json:"extracted_location,omitempty"`
	// Resolved marks updates that describe an already-cleared problem.
	Resolved bool `json:"resolved,omitempty"`
}

// None returns true when the issue represents a normal, non-alertable update.
func (i Issue) None() bool {
	return i.Kind == IssueNone || i.Kind == ""
}

// NoIssue builds the non-alertable result for the given carrier.
func NoIssue(carrier Carrier) Issue {
	return Issue{Kind: IssueNone, Carrier: carrier}
}

// ValidKind reports whether s names a known issue kind.
func ValidKind(s IssueKind) bool {
	switch s {
	case IssueNone, IssueHeldInCustoms, IssueDeliveryFailure, IssueFinalMile,
		IssueHubDelay, IssueTransitDelay, IssueDamageOrLoss,
		IssueEUCustomsComplexity, IssueStaleTracking, IssueAmbiguousTimeout,
		IssueStuckInTransit:
		return true
	}
	return false
}

// ValidSeverity reports whether s names a known severity.
func ValidSeverity(s Severity) bool {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}
