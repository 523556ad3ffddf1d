package service

import (
	"context"
	"fmt"
	"strings"

	"shipment-sentinel/internal/core/config"
	"shipment-sentinel/internal/core/logger"
	"shipment-sentinel/internal/features/alerts/domain"
	"shipment-sentinel/internal/features/alerts/ports"
	classification "shipment-sentinel/internal/features/classification/domain"

	"go.uber.org/zap"
)

// issuePhrases are the human headlines per issue kind.
var issuePhrases = map[classification.IssueKind]string{
	classification.IssueHeldInCustoms:       "Held in customs",
	classification.IssueDeliveryFailure:     "Delivery failure",
	classification.IssueFinalMile:           "Last-mile problem",
	classification.IssueHubDelay:            "Hub delay",
	classification.IssueTransitDelay:        "Transit delay",
	classification.IssueDamageOrLoss:        "Possible damage or loss",
	classification.IssueEUCustomsComplexity: "Customs documentation needed",
	classification.IssueStaleTracking:       "Tracking has gone stale",
	classification.IssueAmbiguousTimeout:    "Status stuck too long",
	classification.IssueStuckInTransit:      "Stuck in transit",
}

// customerAction pairs a customer-facing failure pattern with the action the
// customer should take. Matched in order against the update text.
type customerAction struct {
	pattern string
	action  string
}

var customerActions = []customerAction{
	{"premises closed", "Please confirm your business hours or arrange an alternative delivery address."},
	{"business closed", "Please confirm your business hours or arrange an alternative delivery address."},
	{"consignee unavailable", "Please make sure someone is available to receive the delivery, or nominate a safe place."},
	{"consignee absent", "Please make sure someone is available to receive the delivery, or nominate a safe place."},
	{"recipient unavailable", "Please make sure someone is available to receive the delivery, or nominate a safe place."},
	{"refused", "The delivery was refused. Please contact us if this was unintentional."},
	{"incorrect address", "Please verify and confirm your delivery address."},
	{"address incorrect", "Please verify and confirm your delivery address."},
	{"insufficient address", "Please verify and confirm your delivery address."},
	{"delivery attempted", "A delivery was attempted. Please check for a notification card or contact the carrier."},
}

// RouteInput carries the shipment context the router needs to compose
// notifications.
type RouteInput struct {
	// EntityID is the shipment's board item ID.
	EntityID string
	// EntityName is the shipment's display name.
	EntityName string
	// UpdateText is the carrier update that produced the issue.
	UpdateText string
	// Location is the resolved current location.
	Location string
	// DueDate is the delivery due date, empty if unknown.
	DueDate string
	// CustomerName is the customer contact name, empty if unknown.
	CustomerName string
	// CompanyName is the customer company, empty if unknown.
	CompanyName string
	// Board is the originating board's configuration.
	Board config.BoardConfig
}

// Notifier composes and dispatches alerts for classified issues. The
// internal chat alert and the customer email are independent: failure of
// one never blocks the other, and neither blocks the webhook ack.
type Notifier struct {
	chat      ports.ChatSink
	mail      ports.MailSink
	contacts  ports.ContactDirectory
	channelID string
	logger    *zap.Logger
}

// NewNotifier creates a Notifier. mail and contacts may be nil, which
// disables the customer email path.
func NewNotifier(chat ports.ChatSink, mail ports.MailSink, contacts ports.ContactDirectory, channelID string) *Notifier {
	return &Notifier{
		chat:      chat,
		mail:      mail,
		contacts:  contacts,
		channelID: channelID,
		logger:    logger.Named("notifier"),
	}
}

// Route dispatches the internal alert and, when the update text calls for a
// customer-facing action, the customer email. Errors are logged, never
// returned: a failed channel is a no-op for that channel only.
func (n *Notifier) Route(ctx context.Context, issue classification.Issue, in RouteInput) {
	n.postInternal(ctx, issue, in)
	n.maybeEmailCustomer(ctx, issue, in)
}

func (n *Notifier) postInternal(ctx context.Context, issue classification.Issue, in RouteInput) {
	alert := ComposeAlert(issue, in)

	if _, err := n.chat.PostAlert(ctx, n.channelID, alert); err != nil {
		n.logger.Error("Failed to post internal alert",
			zap.String("entity_id", in.EntityID),
			zap.String("kind", string(issue.Kind)),
			zap.Error(err),
		)
		return
	}

	n.logger.Info("Internal alert posted",
		zap.String("entity_id", in.EntityID),
		zap.String("kind", string(issue.Kind)),
		zap.String("severity", string(issue.Severity)),
	)
}

// ComposeAlert builds the internal alert message for an issue.
func ComposeAlert(issue classification.Issue, in RouteInput) domain.Alert {
	phrase, ok := issuePhrases[issue.Kind]
	if !ok {
		phrase = string(issue.Kind)
	}

	name := in.EntityName
	if name == "" {
		name = in.EntityID
	}

	details := []domain.Detail{
		{Label: "Carrier", Value: string(issue.Carrier)},
		{Label: "Severity", Value: string(issue.Severity)},
		{Label: "Reason", Value: issue.Reason},
		{Label: "Update", Value: in.UpdateText},
	}
	if in.DueDate != "" {
		details = append(details, domain.Detail{Label: "Due date", Value: in.DueDate})
	}

	return domain.Alert{
		Summary:       fmt.Sprintf("%s: %s (%s)", name, phrase, in.Location),
		CoordinatorID: in.Board.Coordinator.SlackID,
		Region:        in.Board.Region,
		Details:       details,
	}
}

func (n *Notifier) maybeEmailCustomer(ctx context.Context, issue classification.Issue, in RouteInput) {
	if n.mail == nil || n.contacts == nil {
		return
	}

	action := matchCustomerAction(in.UpdateText)
	if action == "" {
		return
	}

	name := in.CompanyName
	if name == "" {
		name = in.CustomerName
	}
	if name == "" {
		n.logger.Info("No customer or company name on shipment, skipping customer email",
			zap.String("entity_id", in.EntityID),
		)
		return
	}

	contact, err := n.contacts.FindContact(ctx, name)
	if err != nil {
		n.logger.Warn("Contact lookup failed, skipping customer email",
			zap.String("entity_id", in.EntityID),
			zap.String("name", name),
			zap.Error(err),
		)
		return
	}
	if contact == nil || contact.Email == "" {
		n.logger.Info("No contact found for customer, skipping customer email",
			zap.String("entity_id", in.EntityID),
			zap.String("name", name),
		)
		return
	}

	mail := composeCustomerMail(issue, in, contact, action)
	if _, err := n.mail.Send(ctx, mail); err != nil {
		n.logger.Error("Failed to send customer email",
			zap.String("entity_id", in.EntityID),
			zap.String("to", contact.Email),
			zap.Error(err),
		)
		return
	}

	n.logger.Info("Customer email sent",
		zap.String("entity_id", in.EntityID),
		zap.String("to", contact.Email),
	)
}

// matchCustomerAction returns the recommended action for the first matching
// customer-facing pattern, or empty when the update needs no customer action.
func matchCustomerAction(updateText string) string {
	lower := strings.ToLower(updateText)
	for _, ca := range customerActions {
		if strings.Contains(lower, ca.pattern) {
			return ca.action
		}
	}
	return ""
}

func composeCustomerMail(issue classification.Issue, in RouteInput, contact *domain.Contact, action string) domain.Mail {
	greeting := "Hello"
	if contact.FirstName != "" {
		greeting = "Hello " + contact.FirstName
	}

	name := in.EntityName
	if name == "" {
		name = in.EntityID
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s,\n\n", greeting)
	fmt.Fprintf(&b, "There is an update on your shipment %s:\n\n", name)
	fmt.Fprintf(&b, "  %s\n\n", in.UpdateText)
	if in.Location != "" {
		fmt.Fprintf(&b, "Current location: %s\n\n", in.Location)
	}
	fmt.Fprintf(&b, "%s\n\n", action)
	b.WriteString("Best regards,\nYour logistics team\n")

	return domain.Mail{
		To:      contact.Email,
		Subject: fmt.Sprintf("Action needed for shipment %s", name),
		Body:    b.String(),
	}
}
