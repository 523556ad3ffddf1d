package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"shipment-sentinel/internal/core/logger"
	"shipment-sentinel/internal/features/classification/domain"
	"shipment-sentinel/internal/features/classification/ports"

	"go.uber.org/zap"
)

// ErrMalformedVerdict is returned when the model reply cannot be parsed
// into the expected verdict shape.
var ErrMalformedVerdict = errors.New("malformed model verdict")

// Classifier is the uniform classification entry point. When a generator is
// configured it tries the model-assisted path first and falls back to the
// rule engine on any failure; without a generator it is the rule engine.
// The fallback boundary is a hard contract: classification never fails the
// alerting pipeline.
type Classifier struct {
	rules     *RuleClassifier
	generator ports.TextGenerator
	logger    *zap.Logger
}

// NewClassifier creates a Classifier. generator may be nil, which disables
// the model-assisted path.
func NewClassifier(rules *RuleClassifier, generator ports.TextGenerator) *Classifier {
	return &Classifier{
		rules:     rules,
		generator: generator,
		logger:    logger.Named("classifier"),
	}
}

// Classify maps an update text plus structured context to an Issue.
func (c *Classifier) Classify(ctx context.Context, updateText string, fields map[string]string) domain.Issue {
	if c.generator == nil {
		return c.rules.Classify(updateText)
	}

	issue, err := c.classifyWithModel(ctx, updateText, fields)
	if err != nil {
		c.logger.Warn("Model classification failed, falling back to rules",
			zap.Error(err),
		)
		return c.rules.Classify(updateText)
	}
	return issue
}

// ClassifyRules runs only the deterministic rule engine, bypassing the
// model-assisted path. Used for synchronous previews.
func (c *Classifier) ClassifyRules(updateText string) domain.Issue {
	return c.rules.Classify(updateText)
}

// verdict is the fixed shape expected from the text-generation service.
type verdict struct {
	HasIssue        bool   `json:"hasIssue"`
	IssueType       string `json:"issueType"`
	Severity        string `json:"severity"`
	Reason          string `json:"reason"`
	CurrentLocation string `json:"currentLocation"`
	IsResolved      bool   `json:"isResolved"`
	Carrier         string `json:"carrier"`
	Route           string `json:"route"`
}

// verdictKinds maps the model's issueType vocabulary to domain kinds.
var verdictKinds = map[string]domain.IssueKind{
	"held-in-customs":       domain.IssueHeldInCustoms,
	"delivery-failure":      domain.IssueDeliveryFailure,
	"final-mile-issue":      domain.IssueFinalMile,
	"hub-delay":             domain.IssueHubDelay,
	"transit-delay":         domain.IssueTransitDelay,
	"damage-or-loss":        domain.IssueDamageOrLoss,
	"eu-customs-complexity": domain.IssueEUCustomsComplexity,
	"stuck-in-transit":      domain.IssueStuckInTransit,
	"none":                  domain.IssueNone,
}

var verdictSeverities = map[string]domain.Severity{
	"high":   domain.SeverityHigh,
	"medium": domain.SeverityMedium,
	"low":    domain.SeverityLow,
}

var verdictCarriers = map[string]domain.Carrier{
	"ups":     domain.CarrierUPS,
	"dhl":     domain.CarrierDHL,
	"fedex":   domain.CarrierFedEx,
	"unknown": domain.CarrierUnknown,
}

func (c *Classifier) classifyWithModel(ctx context.Context, updateText string, fields map[string]string) (domain.Issue, error) {
	reply, err := c.generator.Generate(ctx, buildPrompt(updateText, fields))
	if err != nil {
		return domain.Issue{}, fmt.Errorf("generate: %w", err)
	}

	v, err := parseVerdict(reply)
	if err != nil {
		return domain.Issue{}, err
	}

	carrier, ok := verdictCarriers[strings.ToLower(v.Carrier)]
	if !ok {
		carrier = domain.CarrierUnknown
	}

	if !v.HasIssue || v.IsResolved {
		issue := domain.NoIssue(carrier)
		issue.Resolved = v.IsResolved
		issue.ExtractedLocation = v.CurrentLocation
		issue.Route = v.Route
		return issue, nil
	}

	kind, ok := verdictKinds[strings.ToLower(v.IssueType)]
	if !ok {
		return domain.Issue{}, fmt.Errorf("%w: unknown issue type %q", ErrMalformedVerdict, v.IssueType)
	}
	if kind == domain.IssueNone {
		return domain.NoIssue(carrier), nil
	}

	severity, ok := verdictSeverities[strings.ToLower(v.Severity)]
	if !ok {
		return domain.Issue{}, fmt.Errorf("%w: unknown severity %q", ErrMalformedVerdict, v.Severity)
	}

	reason := strings.TrimSpace(v.Reason)
	if reason == "" {
		reason = "Model flagged the update as an issue"
	}

	return domain.Issue{
		Kind:              kind,
		Severity:          severity,
		Reason:            reason,
		Carrier:           carrier,
		Route:             v.Route,
		ExtractedLocation: v.CurrentLocation,
	}, nil
}

// parseVerdict extracts the JSON verdict out of a raw model reply, tolerating
// markdown fences and prose around the object.
func parseVerdict(reply string) (*verdict, error) {
	start := strings.IndexByte(reply, '{')
	end := strings.LastIndexByte(reply, '}')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object in reply", ErrMalformedVerdict)
	}

	var v verdict
	if err := json.Unmarshal([]byte(reply[start:end+1]), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedVerdict, err)
	}
	return &v, nil
}

// buildPrompt composes the classification prompt from the update text and
// the shipment's structured context.
func buildPrompt(updateText string, fields map[string]string) string {
	var b strings.Builder
	b.WriteString("You analyse carrier tracking updates for problems.\n")
	b.WriteString("Reply with a single JSON object and nothing else, shaped as:\n")
	b.WriteString(`{"hasIssue":bool,"issueType":"held-in-customs|delivery-failure|final-mile-issue|hub-delay|transit-delay|damage-or-loss|eu-customs-complexity|stuck-in-transit|none","severity":"high|medium|low","reason":string,"currentLocation":string,"isResolved":bool,"carrier":"ups|dhl|fedex|unknown","route":string}`)
	b.WriteString("\n\nTracking update:\n")
	b.WriteString(updateText)

	if len(fields) > 0 {
		b.WriteString("\n\nShipment context:\n")
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if fields[k] == "" {
				continue
			}
			fmt.Fprintf(&b, "- %s: %s\n", k, fields[k])
		}
	}

	return b.String()
}
