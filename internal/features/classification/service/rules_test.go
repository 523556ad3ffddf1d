package service

import (
	"testing"

	"shipment-sentinel/internal/features/classification/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRuleClassifier_Delivered verifies that terminal-success phrases always
// win, even when a problem pattern appears in the same text.
func TestRuleClassifier_Delivered(t *testing.T) {
	c := NewRuleClassifier()

	texts := []string{
		"Delivered to front door",
		"DELIVERED - signed by J. SMITH",
		"Package was delivered despite earlier customs hold",
		"Proof of delivery available",
	}

	for _, text := range texts {
		issue := c.Classify(text)
		assert.True(t, issue.None(), "expected no issue for %q, got %s", text, issue.Kind)
	}
}

// TestRuleClassifier_CarrierDetection verifies carrier token matching.
func TestRuleClassifier_CarrierDetection(t *testing.T) {
	tests := []struct {
		text    string
		carrier domain.Carrier
	}{
		{"UPS: arrived at facility", domain.CarrierUPS},
		{"dhl shipment picked up", domain.CarrierDHL},
		{"FedEx picked up", domain.CarrierFedEx},
		{"Handled by Federal Express", domain.CarrierFedEx},
		{"Arrived at sorting center", domain.CarrierUnknown},
	}

	c := NewRuleClassifier()
	for _, tt := range tests {
		issue := c.Classify(tt.text)
		assert.Equal(t, tt.carrier, issue.Carrier, "text: %q", tt.text)
	}
}

// TestRuleClassifier_CarrierHint verifies that the hint fills in when the
// text does not name a carrier.
func TestRuleClassifier_CarrierHint(t *testing.T) {
	c := NewRuleClassifier()

	issue := c.ClassifyWithHint("Held in customs", domain.CarrierDHL)
	assert.Equal(t, domain.CarrierDHL, issue.Carrier)
	assert.Equal(t, domain.IssueHeldInCustoms, issue.Kind)

	// Text naming a carrier beats the hint
	issue = c.ClassifyWithHint("UPS: held in customs", domain.CarrierDHL)
	assert.Equal(t, domain.CarrierUPS, issue.Carrier)
}

// TestRuleClassifier_CustomsResolvedBeforeActive verifies the precedence
// that keeps "customs" in resolved phrasing from false-positive alerting.
func TestRuleClassifier_CustomsResolvedBeforeActive(t *testing.T) {
	c := NewRuleClassifier()

	issue := c.Classify("UPS: customs clearance completed, released by customs")
	assert.True(t, issue.None())
	assert.True(t, issue.Resolved)

	issue = c.Classify("DHL: released from customs")
	assert.True(t, issue.None())
}

// TestRuleClassifier_CustomsActive verifies the held-in-customs rule.
func TestRuleClassifier_CustomsActive(t *testing.T) {
	c := NewRuleClassifier()

	issue := c.Classify("Held by customs - import duties required, contact UPS")
	require.Equal(t, domain.IssueHeldInCustoms, issue.Kind)
	assert.Equal(t, domain.SeverityHigh, issue.Severity)
	assert.Equal(t, domain.CarrierUPS, issue.Carrier)
	assert.NotEmpty(t, issue.Reason)
}

// TestRuleClassifier_DeliveryFailure verifies generic failure phrases.
func TestRuleClassifier_DeliveryFailure(t *testing.T) {
	c := NewRuleClassifier()

	tests := []string{
		"Consignee premises closed",
		"Receiver refused the shipment",
		"Incorrect address - unable to deliver",
		"Delivery attempted, recipient unavailable",
	}

	for _, text := range tests {
		issue := c.Classify(text)
		assert.Equal(t, domain.IssueDeliveryFailure, issue.Kind, "text: %q", text)
		assert.Equal(t, domain.SeverityHigh, issue.Severity)
	}
}

// TestRuleClassifier_FinalMile verifies the last-mile-partner rule needs
// both a partner token and a delay token.
func TestRuleClassifier_FinalMile(t *testing.T) {
	c := NewRuleClassifier()

	issue := c.Classify("Exception reported by last mile delivery partner")
	assert.Equal(t, domain.IssueFinalMile, issue.Kind)
	assert.Equal(t, domain.SeverityHigh, issue.Severity)

	// Partner token without a delay token is normal flow
	issue = c.Classify("Handed over to local courier for final mile")
	assert.True(t, issue.None())
}

// TestRuleClassifier_HubDelay verifies the hub rule and its medium severity.
func TestRuleClassifier_HubDelay(t *testing.T) {
	c := NewRuleClassifier()

	issue := c.Classify("Shipment delayed at Leipzig sorting center")
	assert.Equal(t, domain.IssueHubDelay, issue.Kind)
	assert.Equal(t, domain.SeverityMedium, issue.Severity)

	issue = c.Classify("Arrived Memphis")
	assert.True(t, issue.None())
}

// TestRuleClassifier_TransitDelay verifies operational delay phrases.
func TestRuleClassifier_TransitDelay(t *testing.T) {
	c := NewRuleClassifier()

	issue := c.Classify("Weather delay affecting operations")
	assert.Equal(t, domain.IssueTransitDelay, issue.Kind)
	assert.Equal(t, domain.SeverityMedium, issue.Severity)
}

// TestRuleClassifier_DamageOrLoss verifies damage and investigation phrases.
func TestRuleClassifier_DamageOrLoss(t *testing.T) {
	c := NewRuleClassifier()

	issue := c.Classify("Package damaged in transit, investigation opened")
	assert.Equal(t, domain.IssueDamageOrLoss, issue.Kind)
	assert.Equal(t, domain.SeverityHigh, issue.Severity)
}

// TestRuleClassifier_EUCustomsComplexity verifies documentation phrases.
func TestRuleClassifier_EUCustomsComplexity(t *testing.T) {
	c := NewRuleClassifier()

	issue := c.Classify("VAT payment pending, customs documentation needed")
	assert.Equal(t, domain.IssueEUCustomsComplexity, issue.Kind)
	assert.Equal(t, domain.SeverityMedium, issue.Severity)
}

// TestRuleClassifier_NoMatch verifies the generic fallthrough.
func TestRuleClassifier_NoMatch(t *testing.T) {
	c := NewRuleClassifier()

	issue := c.Classify("Label created")
	assert.True(t, issue.None())
	assert.Equal(t, domain.IssueNone, issue.Kind)
}

// TestRuleClassifier_Order pins the rule cascade as a contract: the order
// encodes resolved-before-active and specific-before-generic precedence.
func TestRuleClassifier_Order(t *testing.T) {
	c := NewRuleClassifier()

	assert.Equal(t, []string{
		"delivered",
		"carrier-normal",
		"customs-resolved",
		"customs-active",
		"delivery-failure",
		"final-mile",
		"hub-delay",
		"transit-delay",
		"damage-or-loss",
		"eu-customs-complexity",
	}, c.RuleOrder())
}

// TestRuleClassifier_CarrierNormal verifies per-carrier normal-operation sets.
func TestRuleClassifier_CarrierNormal(t *testing.T) {
	c := NewRuleClassifier()

	issue := c.Classify("DHL: processed at LEIPZIG - DE")
	assert.True(t, issue.None())

	issue = c.Classify("UPS: departed from facility")
	assert.True(t, issue.None())
}
