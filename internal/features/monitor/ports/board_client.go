package ports

import (
	"context"
	"errors"

	"shipment-sentinel/internal/features/monitor/domain"
)

// ErrShipmentNotFound is returned when the board has no item with the
// requested ID.
var ErrShipmentNotFound = errors.New("shipment not found")

// BoardClient defines the interface for the project-tracking board.
// This is a Secondary Port (Driven Port).
type BoardClient interface {
	// FetchShipment retrieves a board item with its column values.
	FetchShipment(ctx context.Context, itemID string) (*domain.Shipment, error)

	// WriteField writes a column value back to the board. The only write
	// the monitor performs is tracking-token normalization, which is
	// idempotent.
	WriteField(ctx context.Context, boardID, itemID, columnID, value string) error
}
