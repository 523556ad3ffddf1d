package ports

import (
	"context"
	"time"

	"shipment-sentinel/internal/features/alerts/domain"
)

// SuppressionStore defines the interface for the duplicate-alert window.
// This is a Secondary Port (Driven Port) so the window can be held
// in-process or shared in Redis across replicas.
type SuppressionStore interface {
	// Seen atomically checks whether key fired within the window and, if
	// not, records the attempt. Returns true when the key is suppressed.
	Seen(ctx context.Context, key string, window time.Duration) (bool, error)
}

// ChatSink defines the interface for posting internal alerts.
type ChatSink interface {
	// PostAlert posts an alert to the given channel and returns the
	// message timestamp or ID.
	PostAlert(ctx context.Context, channelID string, alert domain.Alert) (string, error)
}

// MailSink defines the interface for sending customer notifications.
type MailSink interface {
	// Send delivers a mail and returns the message ID.
	Send(ctx context.Context, mail domain.Mail) (string, error)
}

// ContactDirectory defines the interface for customer contact lookup.
type ContactDirectory interface {
	// FindContact resolves a contact by name, trying multiple search
	// strategies. Returns nil when no contact matches.
	FindContact(ctx context.Context, name string) (*domain.Contact, error)
}
