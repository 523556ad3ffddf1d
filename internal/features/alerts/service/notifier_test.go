package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipment-sentinel/internal/core/config"
	"shipment-sentinel/internal/features/alerts/domain"
	classification "shipment-sentinel/internal/features/classification/domain"
)

type mockChatSink struct {
	err    error
	alerts []domain.Alert
}

func (m *mockChatSink) PostAlert(_ context.Context, _ string, alert domain.Alert) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.alerts = append(m.alerts, alert)
	return "ts-1", nil
}

type mockMailSink struct {
	err   error
	mails []domain.Mail
}

func (m *mockMailSink) Send(_ context.Context, mail domain.Mail) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.mails = append(m.mails, mail)
	return "msg-1", nil
}

type mockContactDirectory struct {
	contact  *domain.Contact
	err      error
	lastName string
}

func (m *mockContactDirectory) FindContact(_ context.Context, name string) (*domain.Contact, error) {
	m.lastName = name
	return m.contact, m.err
}

func euBoard() config.BoardConfig {
	return config.BoardConfig{
		ID:     "123",
		Region: "EU",
		Coordinator: config.Coordinator{
			SlackID: "U0COORD",
			Name:    "Mara",
		},
	}
}

func customsIssue() classification.Issue {
	return classification.Issue{
		Kind:     classification.IssueHeldInCustoms,
		Severity: classification.SeverityHigh,
		Reason:   "Customs is actively holding the shipment",
		Carrier:  classification.CarrierUPS,
	}
}

func TestNotifier_RoutePostsInternalAlert(t *testing.T) {
	chat := &mockChatSink{}
	n := NewNotifier(chat, nil, nil, "C0ALERTS")

	n.Route(context.Background(), customsIssue(), RouteInput{
		EntityID:   "42",
		EntityName: "PO-1042 gearboxes",
		UpdateText: "Held by customs - import duties required",
		Location:   "Cologne, Germany",
		DueDate:    "2026-09-04",
		Board:      euBoard(),
	})

	require.Len(t, chat.alerts, 1)
	alert := chat.alerts[0]
	assert.Equal(t, "PO-1042 gearboxes: Held in customs (Cologne, Germany)", alert.Summary)
	assert.Equal(t, "U0COORD", alert.CoordinatorID)
	assert.Equal(t, "EU", alert.Region)

	labels := make([]string, 0, len(alert.Details))
	for _, d := range alert.Details {
		labels = append(labels, d.Label)
	}
	assert.Equal(t, []string{"Carrier", "Severity", "Reason", "Update", "Due date"}, labels)
}

func TestComposeAlert_FallsBackToEntityID(t *testing.T) {
	alert := ComposeAlert(customsIssue(), RouteInput{
		EntityID:   "42",
		UpdateText: "Held by customs",
		Location:   "Unknown Location",
		Board:      euBoard(),
	})

	assert.Equal(t, "42: Held in customs (Unknown Location)", alert.Summary)
}

func TestNotifier_CustomerEmailOnActionableFailure(t *testing.T) {
	chat := &mockChatSink{}
	mail := &mockMailSink{}
	contacts := &mockContactDirectory{contact: &domain.Contact{
		Email:     "ops@acme.test",
		FirstName: "Dana",
	}}
	n := NewNotifier(chat, mail, contacts, "C0ALERTS")

	n.Route(context.Background(), classification.Issue{
		Kind:     classification.IssueDeliveryFailure,
		Severity: classification.SeverityHigh,
		Reason:   "Failed delivery attempt",
		Carrier:  classification.CarrierDHL,
	}, RouteInput{
		EntityID:    "42",
		EntityName:  "PO-1042 gearboxes",
		UpdateText:  "Consignee premises closed",
		Location:    "Rotterdam, Netherlands",
		CompanyName: "Acme GmbH",
		Board:       euBoard(),
	})

	// Both channels fired.
	require.Len(t, chat.alerts, 1)
	require.Len(t, mail.mails, 1)

	assert.Equal(t, "Acme GmbH", contacts.lastName)

	sent := mail.mails[0]
	assert.Equal(t, "ops@acme.test", sent.To)
	assert.Equal(t, "Action needed for shipment PO-1042 gearboxes", sent.Subject)
	assert.Contains(t, sent.Body, "Hello Dana")
	assert.Contains(t, sent.Body, "Consignee premises closed")
	assert.Contains(t, sent.Body, "Rotterdam, Netherlands")
	assert.Contains(t, sent.Body, "confirm your business hours")
}

func TestNotifier_CustomerNameFallback(t *testing.T) {
	contacts := &mockContactDirectory{contact: &domain.Contact{Email: "dana@acme.test"}}
	n := NewNotifier(&mockChatSink{}, &mockMailSink{}, contacts, "C0ALERTS")

	n.Route(context.Background(), customsIssue(), RouteInput{
		EntityID:     "42",
		UpdateText:   "Delivery attempted, recipient unavailable",
		CustomerName: "Dana Voss",
		Board:        euBoard(),
	})

	assert.Equal(t, "Dana Voss", contacts.lastName)
}

func TestNotifier_NoCustomerEmailForInternalOnlyIssues(t *testing.T) {
	mail := &mockMailSink{}
	contacts := &mockContactDirectory{contact: &domain.Contact{Email: "ops@acme.test"}}
	n := NewNotifier(&mockChatSink{}, mail, contacts, "C0ALERTS")

	// Customs holds are not the customer's problem to act on.
	n.Route(context.Background(), customsIssue(), RouteInput{
		EntityID:    "42",
		UpdateText:  "Held by customs - import duties required",
		CompanyName: "Acme GmbH",
		Board:       euBoard(),
	})

	assert.Empty(t, mail.mails)
}

func TestNotifier_ContactLookupFailureOnlySkipsEmail(t *testing.T) {
	chat := &mockChatSink{}
	mail := &mockMailSink{}
	contacts := &mockContactDirectory{err: errors.New("crm unavailable")}
	n := NewNotifier(chat, mail, contacts, "C0ALERTS")

	n.Route(context.Background(), customsIssue(), RouteInput{
		EntityID:    "42",
		UpdateText:  "Consignee premises closed",
		CompanyName: "Acme GmbH",
		Board:       euBoard(),
	})

	assert.Len(t, chat.alerts, 1)
	assert.Empty(t, mail.mails)
}

func TestNotifier_NoContactMatchSkipsEmail(t *testing.T) {
	mail := &mockMailSink{}
	contacts := &mockContactDirectory{contact: nil}
	n := NewNotifier(&mockChatSink{}, mail, contacts, "C0ALERTS")

	n.Route(context.Background(), customsIssue(), RouteInput{
		EntityID:    "42",
		UpdateText:  "Consignee premises closed",
		CompanyName: "Acme GmbH",
		Board:       euBoard(),
	})

	assert.Empty(t, mail.mails)
}

func TestNotifier_MissingNamesSkipLookup(t *testing.T) {
	mail := &mockMailSink{}
	contacts := &mockContactDirectory{contact: &domain.Contact{Email: "ops@acme.test"}}
	n := NewNotifier(&mockChatSink{}, mail, contacts, "C0ALERTS")

	n.Route(context.Background(), customsIssue(), RouteInput{
		EntityID:   "42",
		UpdateText: "Consignee premises closed",
		Board:      euBoard(),
	})

	assert.Empty(t, contacts.lastName)
	assert.Empty(t, mail.mails)
}

func TestNotifier_NilMailSinkDisablesEmailPath(t *testing.T) {
	chat := &mockChatSink{}
	n := NewNotifier(chat, nil, nil, "C0ALERTS")

	n.Route(context.Background(), customsIssue(), RouteInput{
		EntityID:    "42",
		UpdateText:  "Consignee premises closed",
		CompanyName: "Acme GmbH",
		Board:       euBoard(),
	})

	assert.Len(t, chat.alerts, 1)
}

func TestNotifier_ChatFailureDoesNotBlockEmail(t *testing.T) {
	chat := &mockChatSink{err: errors.New("slack down")}
	mail := &mockMailSink{}
	contacts := &mockContactDirectory{contact: &domain.Contact{Email: "ops@acme.test"}}
	n := NewNotifier(chat, mail, contacts, "C0ALERTS")

	n.Route(context.Background(), customsIssue(), RouteInput{
		EntityID:    "42",
		UpdateText:  "Consignee premises closed",
		CompanyName: "Acme GmbH",
		Board:       euBoard(),
	})

	assert.Len(t, mail.mails, 1)
}

func TestMatchCustomerAction(t *testing.T) {
	assert.NotEmpty(t, matchCustomerAction("Consignee PREMISES CLOSED on arrival"))
	assert.NotEmpty(t, matchCustomerAction("Incorrect address - unable to deliver"))
	assert.NotEmpty(t, matchCustomerAction("Receiver refused the shipment"))
	assert.Empty(t, matchCustomerAction("Departed facility"))
	assert.Empty(t, matchCustomerAction("Held by customs"))
}
