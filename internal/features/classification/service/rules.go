package service

import (
	"fmt"
	"strings"

	"shipment-sentinel/internal/features/classification/domain"
)

// Phrase tables for the deterministic classifier. Matching is
// case-insensitive substring matching; rule order encodes precedence
// (resolved-before-active, specific-before-generic) and is a tested contract.

var deliveredPhrases = []string{
	"delivered",
	"delivery completed",
	"handed to recipient",
	"proof of delivery",
	"collected by recipient",
}

var carrierTokens = []struct {
	token   string
	carrier domain.Carrier
}{
	{"ups", domain.CarrierUPS},
	{"dhl", domain.CarrierDHL},
	{"fedex", domain.CarrierFedEx},
	{"federal express", domain.CarrierFedEx},
}

var carrierNormalPhrases = map[domain.Carrier][]string{
	domain.CarrierUPS: {
		"arrived at facility",
		"departed from facility",
		"on the way",
		"order processed: ready for ups",
		"pickup scan",
		"out for delivery today",
	},
	domain.CarrierDHL: {
		"shipment picked up",
		"processed at",
		"arrived at sort facility",
		"departed facility",
		"forwarded to destination",
		"with delivery courier",
	},
	domain.CarrierFedEx: {
		"picked up",
		"left fedex origin facility",
		"at local fedex facility",
		"on fedex vehicle for delivery",
		"at destination sort facility",
		"international shipment release - import",
	},
}

var customsResolvedPhrases = map[domain.Carrier][]string{
	domain.CarrierUPS: {
		"customs clearance completed",
		"released by customs",
		"cleared customs",
		"your package was released by the customs agency",
	},
	domain.CarrierDHL: {
		"clearance processing complete",
		"customs status updated: released",
		"released from customs",
	},
	domain.CarrierFedEx: {
		"international shipment release",
		"customs cleared",
		"clearance completed",
	},
	domain.CarrierUnknown: {
		"customs clearance completed",
		"released by customs",
		"cleared customs",
	},
}

var customsActivePhrases = map[domain.Carrier][]string{
	domain.CarrierUPS: {
		"held in customs",
		"held by customs",
		"customs hold",
		"awaiting customs clearance",
		"import duties required",
		"ups is unable to clear",
	},
	domain.CarrierDHL: {
		"held by customs",
		"customs hold",
		"clearance delay",
		"awaiting payment of duties",
		"shipment is on hold at customs",
	},
	domain.CarrierFedEx: {
		"held in customs",
		"customs hold",
		"clearance delay",
		"shipment exception - customs",
		"additional information required for clearance",
	},
	domain.CarrierUnknown: {
		"held in customs",
		"held by customs",
		"customs hold",
		"detained by customs",
		"import duties required",
	},
}

var deliveryFailurePhrases = []string{
	"recipient unavailable",
	"consignee unavailable",
	"consignee absent",
	"consignee premises closed",
	"premises closed",
	"business closed",
	"incorrect address",
	"address incorrect",
	"insufficient address",
	"refused",
	"receiver not available",
	"unable to deliver",
	"delivery attempted",
}

var finalMilePartnerTokens = []string{
	"local courier",
	"last mile",
	"final mile",
	"delivery partner",
	"usps",
	"gls",
	"hermes",
	"evri",
	"yodel",
	"ontrac",
	"lasership",
	"purolator",
}

var hubTokens = []string{
	"leipzig",
	"cologne",
	"koeln hub",
	"memphis",
	"louisville",
	"cincinnati",
	"east midlands",
	"hong kong hub",
	"anchorage",
	"roissy",
	"bergamo",
}

var delayTokens = []string{
	"delay",
	"delayed",
	"exception",
	"issue",
	"problem",
	"held",
	"unable",
	"missed",
}

var transitDelayPhrases = []string{
	"weather delay",
	"adverse weather",
	"severe weather",
	"operational delay",
	"mechanical delay",
	"flight delay",
	"delay in transit",
	"service disruption",
	"natural disaster",
	"emergency situation or severe weather",
}

var damageLossPhrases = []string{
	"damaged",
	"damage reported",
	"package lost",
	"shipment lost",
	"missing",
	"investigation opened",
	"parcel investigation",
	"claim initiated",
	"tracer initiated",
}

var euCustomsDocPhrases = []string{
	"vat",
	"duty code",
	"tariff",
	"commodity code",
	"eori",
	"customs documentation",
	"import declaration",
	"export declaration",
	"cross-border declaration",
	"paperwork required",
	"broker notified",
}

// RuleClassifier is the deterministic, ordered-rule status classifier.
// Rules are evaluated in a single pass; the first matching rule wins and
// later rules act as more generic fallbacks.
type RuleClassifier struct {
	rules []rule
}

// rule pairs a predicate with the issue it produces. name exists for the
// order contract and for tests.
type rule struct {
	name  string
	match func(lower string, carrier domain.Carrier) bool
	build func(lower string, carrier domain.Carrier) domain.Issue
}

// NewRuleClassifier creates the classifier with the full rule cascade.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{rules: buildRules()}
}

// RuleOrder returns the ordered rule names. The order is business meaning:
// terminal-success first, then resolved states, then active problems from
// specific to generic.
func (c *RuleClassifier) RuleOrder() []string {
	names := make([]string, 0, len(c.rules))
	for _, r := range c.rules {
		names = append(names, r.name)
	}
	return names
}

// Classify maps a raw carrier status string to an Issue.
func (c *RuleClassifier) Classify(updateText string) domain.Issue {
	return c.ClassifyWithHint(updateText, domain.CarrierUnknown)
}

// ClassifyWithHint classifies with a caller-supplied carrier hint used when
// the text itself does not name a carrier.
func (c *RuleClassifier) ClassifyWithHint(updateText string, hint domain.Carrier) domain.Issue {
	lower := strings.ToLower(updateText)
	carrier := detectCarrier(lower)
	if carrier == domain.CarrierUnknown && hint != "" {
		carrier = hint
	}

	for _, r := range c.rules {
		if r.match(lower, carrier) {
			return r.build(lower, carrier)
		}
	}

	return domain.NoIssue(carrier)
}

// detectCarrier finds the carrier named in the text, or CarrierUnknown.
func detectCarrier(lower string) domain.Carrier {
	for _, t := range carrierTokens {
		if strings.Contains(lower, t.token) {
			return t.carrier
		}
	}
	return domain.CarrierUnknown
}

func buildRules() []rule {
	return []rule{
		{
			name: "delivered",
			match: func(lower string, _ domain.Carrier) bool {
				return containsAny(lower, deliveredPhrases)
			},
			build: func(_ string, carrier domain.Carrier) domain.Issue {
				issue := domain.NoIssue(carrier)
				issue.Resolved = true
				return issue
			},
		},
		{
			name: "carrier-normal",
			match: func(lower string, carrier domain.Carrier) bool {
				return containsAny(lower, carrierNormalPhrases[carrier])
			},
			build: func(_ string, carrier domain.Carrier) domain.Issue {
				return domain.NoIssue(carrier)
			},
		},
		{
			name: "customs-resolved",
			match: func(lower string, carrier domain.Carrier) bool {
				return containsAny(lower, customsResolvedPhrases[carrier]) ||
					containsAny(lower, customsResolvedPhrases[domain.CarrierUnknown])
			},
			build: func(_ string, carrier domain.Carrier) domain.Issue {
				issue := domain.NoIssue(carrier)
				issue.Resolved = true
				return issue
			},
		},
		{
			name: "customs-active",
			match: func(lower string, carrier domain.Carrier) bool {
				return containsAny(lower, customsActivePhrases[carrier]) ||
					containsAny(lower, customsActivePhrases[domain.CarrierUnknown])
			},
			build: func(lower string, carrier domain.Carrier) domain.Issue {
				return domain.Issue{
					Kind:     domain.IssueHeldInCustoms,
					Severity: domain.SeverityHigh,
					Reason:   fmt.Sprintf("Shipment is held by customs: %q", firstMatch(lower, append(customsActivePhrases[carrier], customsActivePhrases[domain.CarrierUnknown]...))),
					Carrier:  carrier,
				}
			},
		},
		{
			name: "delivery-failure",
			match: func(lower string, _ domain.Carrier) bool {
				return containsAny(lower, deliveryFailurePhrases)
			},
			build: func(lower string, carrier domain.Carrier) domain.Issue {
				return domain.Issue{
					Kind:     domain.IssueDeliveryFailure,
					Severity: domain.SeverityHigh,
					Reason:   fmt.Sprintf("Delivery failed: %q", firstMatch(lower, deliveryFailurePhrases)),
					Carrier:  carrier,
				}
			},
		},
		{
			name: "final-mile",
			match: func(lower string, _ domain.Carrier) bool {
				return containsAny(lower, finalMilePartnerTokens) && containsAny(lower, delayTokens)
			},
			build: func(lower string, carrier domain.Carrier) domain.Issue {
				return domain.Issue{
					Kind:     domain.IssueFinalMile,
					Severity: domain.SeverityHigh,
					Reason:   fmt.Sprintf("Problem at last-mile partner %q", firstMatch(lower, finalMilePartnerTokens)),
					Carrier:  carrier,
				}
			},
		},
		{
			name: "hub-delay",
			match: func(lower string, _ domain.Carrier) bool {
				return containsAny(lower, hubTokens) && containsAny(lower, delayTokens)
			},
			build: func(lower string, carrier domain.Carrier) domain.Issue {
				return domain.Issue{
					Kind:     domain.IssueHubDelay,
					Severity: domain.SeverityMedium,
					Reason:   fmt.Sprintf("Delay at carrier hub %q", firstMatch(lower, hubTokens)),
					Carrier:  carrier,
				}
			},
		},
		{
			name: "transit-delay",
			match: func(lower string, _ domain.Carrier) bool {
				return containsAny(lower, transitDelayPhrases)
			},
			build: func(lower string, carrier domain.Carrier) domain.Issue {
				return domain.Issue{
					Kind:     domain.IssueTransitDelay,
					Severity: domain.SeverityMedium,
					Reason:   fmt.Sprintf("Transit delay: %q", firstMatch(lower, transitDelayPhrases)),
					Carrier:  carrier,
				}
			},
		},
		{
			name: "damage-or-loss",
			match: func(lower string, _ domain.Carrier) bool {
				return containsAny(lower, damageLossPhrases)
			},
			build: func(lower string, carrier domain.Carrier) domain.Issue {
				return domain.Issue{
					Kind:     domain.IssueDamageOrLoss,
					Severity: domain.SeverityHigh,
					Reason:   fmt.Sprintf("Possible damage or loss: %q", firstMatch(lower, damageLossPhrases)),
					Carrier:  carrier,
				}
			},
		},
		{
			name: "eu-customs-complexity",
			match: func(lower string, _ domain.Carrier) bool {
				return containsAny(lower, euCustomsDocPhrases)
			},
			build: func(lower string, carrier domain.Carrier) domain.Issue {
				return domain.Issue{
					Kind:     domain.IssueEUCustomsComplexity,
					Severity: domain.SeverityMedium,
					Reason:   fmt.Sprintf("Customs documentation required: %q", firstMatch(lower, euCustomsDocPhrases)),
					Carrier:  carrier,
				}
			},
		},
	}
}

// containsAny returns true when lower contains any of the phrases.
func containsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// firstMatch returns the first phrase contained in lower, for reason strings.
func firstMatch(lower string, phrases []string) string {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return p
		}
	}
	return ""
}
