package domain

// Shipment is a tracked board item. It is fetched fresh per event and never
// persisted by the monitor; only derived classification state lives in
// process.
type Shipment struct {
	// ID is the opaque board item ID.
	ID string `json:"id"`
	// Name is the item's display name.
	Name string `json:"name"`
	// Fields maps board column IDs to their text values.
	Fields map[string]string `json:"fields"`
}

// Field returns the value for a column ID, empty when the column is absent
// or the key is empty.
func (s *Shipment) Field(key string) string {
	if key == "" || s.Fields == nil {
		return ""
	}
	return s.Fields[key]
}

// WebhookEvent is one inbound board-change notification.
type WebhookEvent struct {
	// EntityID is the changed board item's ID.
	EntityID string
	// BoardID identifies the originating board.
	BoardID string
	// FieldID is the changed column's ID.
	FieldID string
	// Text is the new text value for text-update events.
	Text string
}
