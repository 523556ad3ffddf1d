package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipment-sentinel/internal/features/classification/domain"
)

type mockGenerator struct {
	reply      string
	err        error
	lastPrompt string
}

func (m *mockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	m.lastPrompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func TestClassifier_ModelVerdict(t *testing.T) {
	gen := &mockGenerator{reply: `{
		"hasIssue": true,
		"issueType": "held-in-customs",
		"severity": "high",
		"reason": "Import duties outstanding",
		"currentLocation": "Cologne, Germany",
		"isResolved": false,
		"carrier": "ups",
		"route": "CN -> DE"
	}`}
	c := NewClassifier(NewRuleClassifier(), gen)

	issue := c.Classify(context.Background(), "Held by customs - import duties required", nil)

	assert.Equal(t, domain.IssueHeldInCustoms, issue.Kind)
	assert.Equal(t, domain.SeverityHigh, issue.Severity)
	assert.Equal(t, "Import duties outstanding", issue.Reason)
	assert.Equal(t, "Cologne, Germany", issue.ExtractedLocation)
	assert.Equal(t, domain.CarrierUPS, issue.Carrier)
	assert.Equal(t, "CN -> DE", issue.Route)
}

func TestClassifier_FencedReplyTolerated(t *testing.T) {
	gen := &mockGenerator{reply: "Here is the verdict:\n```json\n" +
		`{"hasIssue":true,"issueType":"hub-delay","severity":"medium","reason":"Backlog at hub","currentLocation":"","isResolved":false,"carrier":"dhl","route":""}` +
		"\n```"}
	c := NewClassifier(NewRuleClassifier(), gen)

	issue := c.Classify(context.Background(), "Delayed at Leipzig hub", nil)

	assert.Equal(t, domain.IssueHubDelay, issue.Kind)
	assert.Equal(t, domain.CarrierDHL, issue.Carrier)
}

func TestClassifier_ResolvedVerdictIsNoIssue(t *testing.T) {
	gen := &mockGenerator{reply: `{"hasIssue":true,"issueType":"held-in-customs","severity":"high","reason":"was held","currentLocation":"Rotterdam","isResolved":true,"carrier":"fedex","route":""}`}
	c := NewClassifier(NewRuleClassifier(), gen)

	issue := c.Classify(context.Background(), "Released by customs", nil)

	assert.Equal(t, domain.IssueNone, issue.Kind)
	assert.True(t, issue.Resolved)
	assert.Equal(t, "Rotterdam", issue.ExtractedLocation)
	assert.Equal(t, domain.CarrierFedEx, issue.Carrier)
}

// A generator failure must never fail classification: the rule engine takes over.
func TestClassifier_GeneratorErrorFallsBackToRules(t *testing.T) {
	gen := &mockGenerator{err: errors.New("quota exceeded")}
	c := NewClassifier(NewRuleClassifier(), gen)

	issue := c.Classify(context.Background(), "Held by customs - import duties required, contact UPS", nil)

	assert.Equal(t, domain.IssueHeldInCustoms, issue.Kind)
	assert.Equal(t, domain.SeverityHigh, issue.Severity)
	assert.Equal(t, domain.CarrierUPS, issue.Carrier)
}

func TestClassifier_MalformedVerdictFallsBackToRules(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{name: "no json", reply: "I could not determine an issue."},
		{name: "broken json", reply: `{"hasIssue": true,`},
		{name: "unknown issue type", reply: `{"hasIssue":true,"issueType":"alien-abduction","severity":"high","reason":"x","isResolved":false}`},
		{name: "unknown severity", reply: `{"hasIssue":true,"issueType":"hub-delay","severity":"catastrophic","reason":"x","isResolved":false}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &mockGenerator{reply: tt.reply}
			c := NewClassifier(NewRuleClassifier(), gen)

			issue := c.Classify(context.Background(), "Consignee premises closed", nil)

			assert.Equal(t, domain.IssueDeliveryFailure, issue.Kind)
		})
	}
}

func TestClassifier_NilGeneratorUsesRules(t *testing.T) {
	c := NewClassifier(NewRuleClassifier(), nil)

	issue := c.Classify(context.Background(), "Package damaged in transit, investigation opened", nil)

	assert.Equal(t, domain.IssueDamageOrLoss, issue.Kind)
	assert.Equal(t, domain.SeverityHigh, issue.Severity)
}

func TestClassifier_PromptCarriesContextFields(t *testing.T) {
	gen := &mockGenerator{reply: `{"hasIssue":false,"issueType":"none","severity":"low","reason":"","currentLocation":"","isResolved":false,"carrier":"unknown","route":""}`}
	c := NewClassifier(NewRuleClassifier(), gen)

	c.Classify(context.Background(), "Departed facility", map[string]string{
		"Carrier":  "DHL",
		"Due date": "2026-09-04",
		"Empty":    "",
	})

	assert.Contains(t, gen.lastPrompt, "Departed facility")
	assert.Contains(t, gen.lastPrompt, "- Carrier: DHL")
	assert.Contains(t, gen.lastPrompt, "- Due date: 2026-09-04")
	assert.NotContains(t, gen.lastPrompt, "Empty")
}

func TestParseVerdict(t *testing.T) {
	v, err := parseVerdict(`noise {"hasIssue":true,"issueType":"transit-delay","severity":"low","reason":"r","isResolved":false} trailing`)
	require.NoError(t, err)
	assert.Equal(t, "transit-delay", v.IssueType)

	_, err = parseVerdict("no object here")
	assert.ErrorIs(t, err, ErrMalformedVerdict)
}
