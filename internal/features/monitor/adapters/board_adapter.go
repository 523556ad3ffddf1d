package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"shipment-sentinel/internal/core/config"
	"shipment-sentinel/internal/core/httpclient"
	"shipment-sentinel/internal/features/monitor/domain"
	"shipment-sentinel/internal/features/monitor/ports"
)

// BoardAdapter implements the BoardClient interface against a GraphQL
// project-board API.
type BoardAdapter struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// config holds the board API connection details.
	config config.BoardAPIConfig
}

// NewBoardAdapter creates a new instance of BoardAdapter.
func NewBoardAdapter(cfg config.BoardAPIConfig) *BoardAdapter {
	return &BoardAdapter{
		client: httpclient.NewClient(10 * time.Second),
		config: cfg,
	}
}

// graphqlRequest is the GraphQL-over-HTTP request envelope.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// itemsResponse is the item query result shape.
type itemsResponse struct {
	Data struct {
		Items []struct {
			ID           string `json:"id"`
			Name         string `json:"name"`
			ColumnValues []struct {
				ID   string `json:"id"`
				Text string `json:"text"`
			} `json:"column_values"`
		} `json:"items"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

const fetchItemQuery = `query ($ids: [ID!]) {
  items (ids: $ids) {
    id
    name
    column_values { id text }
  }
}`

const writeColumnMutation = `mutation ($board: ID!, $item: ID!, $column: String!, $value: String!) {
  change_simple_column_value (board_id: $board, item_id: $item, column_id: $column, value: $value) { id }
}`

// FetchShipment retrieves a board item and maps its columns to the domain entity.
func (a *BoardAdapter) FetchShipment(ctx context.Context, itemID string) (*domain.Shipment, error) {
	body, err := a.execute(ctx, graphqlRequest{
		Query:     fetchItemQuery,
		Variables: map[string]any{"ids": []string{itemID}},
	})
	if err != nil {
		return nil, err
	}

	var resp itemsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode board response: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("board API error: %s", resp.Errors[0].Message)
	}
	if len(resp.Data.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", ports.ErrShipmentNotFound, itemID)
	}

	item := resp.Data.Items[0]
	shipment := &domain.Shipment{
		ID:     item.ID,
		Name:   item.Name,
		Fields: make(map[string]string, len(item.ColumnValues)),
	}
	for _, cv := range item.ColumnValues {
		shipment.Fields[cv.ID] = cv.Text
	}

	return shipment, nil
}

// WriteField writes a simple column value back to the board.
func (a *BoardAdapter) WriteField(ctx context.Context, boardID, itemID, columnID, value string) error {
	body, err := a.execute(ctx, graphqlRequest{
		Query: writeColumnMutation,
		Variables: map[string]any{
			"board":  boardID,
			"item":   itemID,
			"column": columnID,
			"value":  value,
		},
	})
	if err != nil {
		return err
	}

	var resp itemsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to decode board response: %w", err)
	}
	if len(resp.Errors) > 0 {
		return fmt.Errorf("board API error: %s", resp.Errors[0].Message)
	}

	return nil
}

// HealthCheck verifies that the board API is reachable and the token is valid.
func (a *BoardAdapter) HealthCheck(ctx context.Context) error {
	body, err := a.execute(ctx, graphqlRequest{Query: `query { me { id } }`})
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	var resp itemsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("health check failed to decode response: %w", err)
	}
	if len(resp.Errors) > 0 {
		return fmt.Errorf("health check failed: %s", resp.Errors[0].Message)
	}

	return nil
}

// execute posts a GraphQL request and returns the raw response body.
func (a *BoardAdapter) execute(ctx context.Context, reqBody graphqlRequest) ([]byte, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", a.config.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("board API returned status: %d", resp.StatusCode)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return buf.Bytes(), nil
}
