package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipment-sentinel/internal/core/config"
	alertadapters "shipment-sentinel/internal/features/alerts/adapters"
	alertdomain "shipment-sentinel/internal/features/alerts/domain"
	alertservice "shipment-sentinel/internal/features/alerts/service"
	classifierservice "shipment-sentinel/internal/features/classification/service"
	stalenessservice "shipment-sentinel/internal/features/staleness/service"
	"shipment-sentinel/internal/features/monitor/domain"
	"shipment-sentinel/internal/features/monitor/ports"
	"shipment-sentinel/internal/features/monitor/service"
)

type stubBoardClient struct {
	shipments map[string]*domain.Shipment
}

func (s *stubBoardClient) FetchShipment(_ context.Context, itemID string) (*domain.Shipment, error) {
	shipment, ok := s.shipments[itemID]
	if !ok {
		return nil, ports.ErrShipmentNotFound
	}
	return shipment, nil
}

func (s *stubBoardClient) WriteField(_ context.Context, _, _, _, _ string) error {
	return nil
}

type stubChatSink struct{}

func (stubChatSink) PostAlert(_ context.Context, _ string, _ alertdomain.Alert) (string, error) {
	return "ts-1", nil
}

func newTestService(shipments map[string]*domain.Shipment) *service.MonitorService {
	boards := config.Boards{
		"123": {
			ID: "123",
			Fields: config.FieldKeys{
				Status: "status",
			},
		},
	}

	return service.NewMonitorService(
		&stubBoardClient{shipments: shipments},
		classifierservice.NewClassifier(classifierservice.NewRuleClassifier(), nil),
		stalenessservice.NewTracker(36*time.Hour, stalenessservice.RepeatAlways),
		alertservice.NewSuppressor(alertadapters.NewMemoryStore(), 0),
		alertservice.NewNotifier(stubChatSink{}, nil, nil, "C0ALERTS"),
		boards,
	)
}

func newWebhookApp(svc *service.MonitorService) *fiber.App {
	app := fiber.New()
	app.Use(requestid.New())

	h := NewWebhookHandler(svc)
	app.Post("/webhook/board", h.Handle)

	return app
}

func postWebhook(t *testing.T, app *fiber.App, body string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhook/board", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	return resp.StatusCode, decoded
}

func TestWebhookHandler_ChallengeEchoedVerbatim(t *testing.T) {
	app := newWebhookApp(newTestService(nil))

	status, body := postWebhook(t, app, `{"challenge":"abc-123"}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "abc-123", body["challenge"])
}

func TestWebhookHandler_EventAccepted(t *testing.T) {
	app := newWebhookApp(newTestService(map[string]*domain.Shipment{
		"42": {
			ID:     "42",
			Name:   "PO-1042",
			Fields: map[string]string{"status": "Departed facility"},
		},
	}))

	status, body := postWebhook(t, app, `{
		"event": {
			"boardId": 123,
			"pulseId": 42,
			"columnId": "status",
			"value": {"label": {"text": "Departed facility"}}
		}
	}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "accepted", body["status"])
}

// Carriers retry on non-2xx; a broken body must still be acknowledged.
func TestWebhookHandler_MalformedBodyAcknowledged(t *testing.T) {
	app := newWebhookApp(newTestService(nil))

	status, body := postWebhook(t, app, `{"event": not-json`)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ignored", body["status"])
}

func TestWebhookHandler_EmptyPayloadIgnored(t *testing.T) {
	app := newWebhookApp(newTestService(nil))

	status, body := postWebhook(t, app, `{}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ignored", body["status"])
}
