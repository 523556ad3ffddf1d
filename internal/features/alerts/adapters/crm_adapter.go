package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shipment-sentinel/internal/core/config"
	"shipment-sentinel/internal/core/httpclient"
	"shipment-sentinel/internal/core/logger"
	"shipment-sentinel/internal/features/alerts/domain"

	"go.uber.org/zap"
)

// CRMAdapter implements ports.ContactDirectory against a HubSpot-style
// contact search API.
type CRMAdapter struct {
	client  *http.Client
	baseURL string
	token   string
	logger  *zap.Logger
}

// NewCRMAdapter creates a CRM contact directory. Returns nil when the CRM
// is not configured, which disables contact lookup.
func NewCRMAdapter(cfg config.ContactsConfig) *CRMAdapter {
	if cfg.URL == "" {
		logger.Get().Info("No CRM configuration, contact lookup disabled")
		return nil
	}
	return &CRMAdapter{
		client:  httpclient.NewClient(10 * time.Second),
		baseURL: strings.TrimRight(cfg.URL, "/"),
		token:   cfg.Token,
		logger:  logger.Named("crm"),
	}
}

// searchStrategy pairs a contact property with the token to search it for.
type searchStrategy struct {
	property string
	value    string
}

// FindContact resolves a contact by name. Strategies run in sequence
// (company token, first-name token, last-name token, email local part) and
// the first non-empty result set's first record wins.
func (a *CRMAdapter) FindContact(ctx context.Context, name string) (*domain.Contact, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	tokens := strings.Fields(name)
	first := tokens[0]
	last := tokens[len(tokens)-1]

	strategies := []searchStrategy{
		{"company", name},
		{"firstname", first},
		{"lastname", last},
		{"email", strings.ToLower(first)},
	}

	for _, s := range strategies {
		contacts, err := a.search(ctx, s.property, s.value)
		if err != nil {
			return nil, err
		}
		if len(contacts) > 0 {
			a.logger.Debug("Contact resolved",
				zap.String("name", name),
				zap.String("strategy", s.property),
			)
			return &contacts[0], nil
		}
	}

	return nil, nil
}

// crmSearchRequest is the CRM search payload.
type crmSearchRequest struct {
	FilterGroups []crmFilterGroup `json:"filterGroups"`
	Properties   []string         `json:"properties"`
	Limit        int              `json:"limit"`
}

type crmFilterGroup struct {
	Filters []crmFilter `json:"filters"`
}

type crmFilter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

// crmSearchResponse is the CRM search result shape.
type crmSearchResponse struct {
	Results []struct {
		Properties domain.Contact `json:"properties"`
	} `json:"results"`
}

func (a *CRMAdapter) search(ctx context.Context, property, value string) ([]domain.Contact, error) {
	payload := crmSearchRequest{
		FilterGroups: []crmFilterGroup{
			{Filters: []crmFilter{{
				PropertyName: property,
				Operator:     "CONTAINS_TOKEN",
				Value:        value,
			}}},
		},
		Properties: []string{"email", "firstname", "lastname", "company"},
		Limit:      5,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	url := a.baseURL + "/crm/v3/objects/contacts/search"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("crm search returned status: %d", resp.StatusCode)
	}

	var result crmSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	contacts := make([]domain.Contact, 0, len(result.Results))
	for _, r := range result.Results {
		if r.Properties.Email != "" {
			contacts = append(contacts, r.Properties)
		}
	}
	return contacts, nil
}
