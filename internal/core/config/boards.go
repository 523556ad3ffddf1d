package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// FieldKeys maps the logical shipment attributes to board column IDs.
// Column IDs differ per board deployment, so every board carries its own
// mapping instead of duplicating pipeline logic per board.
type FieldKeys struct {
	// Status is the column holding the latest carrier status text.
	Status string `mapstructure:"status"`
	// Location is the column holding the authoritative current location.
	Location string `mapstructure:"location"`
	// DueDate is the column holding the delivery due date.
	DueDate string `mapstructure:"due_date"`
	// Customer is the column holding the customer contact name.
	Customer string `mapstructure:"customer"`
	// Company is the column holding the customer company name.
	Company string `mapstructure:"company"`
	// PartNumber is the column holding the part number.
	PartNumber string `mapstructure:"part_number"`
	// TrackingToken is the column holding the carrier tracking number or URL.
	TrackingToken string `mapstructure:"tracking_token"`
}

// Coordinator identifies the internal responsible party for a region.
type Coordinator struct {
	// SlackID is the Slack member ID used for mentions.
	SlackID string `mapstructure:"slack_id"`
	// Name is the display name used when a mention is not possible.
	Name string `mapstructure:"name"`
}

// BoardConfig is the configuration record for a single tracked board.
type BoardConfig struct {
	// ID is the board identifier as delivered in webhook events.
	ID string `mapstructure:"id"`
	// Region labels the board's shipping region (e.g., "EU", "US").
	Region string `mapstructure:"region"`
	// Coordinator is the internal party mentioned in alerts for this board.
	// A zero value means alerts carry the region label without a mention.
	Coordinator Coordinator `mapstructure:"coordinator"`
	// Fields maps logical attributes to this board's column IDs.
	Fields FieldKeys `mapstructure:"fields"`
	// StaleAfterHours overrides the global same-text staleness threshold
	// for this board when > 0.
	StaleAfterHours int `mapstructure:"stale_after_hours"`
}

// HasCoordinator returns true when the board resolves to a mentionable coordinator.
func (b BoardConfig) HasCoordinator() bool {
	return b.Coordinator.SlackID != ""
}

// Boards is the set of tracked boards keyed by board ID.
type Boards map[string]BoardConfig

// ByID returns the configuration for a board, or false when the board is
// not tracked by this deployment.
func (b Boards) ByID(id string) (BoardConfig, bool) {
	cfg, ok := b[id]
	return cfg, ok
}

// LoadBoards reads the per-board configuration file.
func LoadBoards(path string) (Boards, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading boards file %s: %w", path, err)
	}

	var raw struct {
		Boards []BoardConfig `mapstructure:"boards"`
	}
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("unable to decode boards file: %w", err)
	}

	boards := make(Boards, len(raw.Boards))
	for _, board := range raw.Boards {
		if board.ID == "" {
			return nil, fmt.Errorf("boards file %s contains a board without an id", path)
		}
		if board.Fields.Status == "" {
			return nil, fmt.Errorf("board %s is missing the status field key", board.ID)
		}
		if _, dup := boards[board.ID]; dup {
			return nil, fmt.Errorf("board %s is declared twice", board.ID)
		}
		boards[board.ID] = board
	}

	return boards, nil
}
