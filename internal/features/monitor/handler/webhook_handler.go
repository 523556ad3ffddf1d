package handler

import (
	"context"
	"encoding/json"

	"shipment-sentinel/internal/core/logger"
	"shipment-sentinel/internal/features/monitor/domain"
	"shipment-sentinel/internal/features/monitor/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// WebhookHandler handles inbound board change notifications.
type WebhookHandler struct {
	// service runs the alerting pipeline.
	service *service.MonitorService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(s *service.MonitorService) *WebhookHandler {
	return &WebhookHandler{
		service: s,
	}
}

// webhookPayload is the inbound webhook body: either a subscription
// handshake carrying a challenge, or a change event.
type webhookPayload struct {
	Challenge string        `json:"challenge"`
	Event     *webhookEvent `json:"event"`
}

// webhookEvent is the board's change-event shape. Item and board IDs arrive
// as numbers; json.Number keeps them opaque.
type webhookEvent struct {
	BoardID  json.Number `json:"boardId"`
	PulseID  json.Number `json:"pulseId"`
	ColumnID string      `json:"columnId"`
	Value    struct {
		Text  string `json:"text"`
		Label struct {
			Text string `json:"text"`
		} `json:"label"`
	} `json:"value"`
}

// text returns the event's new text value regardless of column type.
func (e *webhookEvent) text() string {
	if e.Value.Text != "" {
		return e.Value.Text
	}
	return e.Value.Label.Text
}

// Handle godoc
// @Summary Board webhook endpoint
// @Description Receives board change notifications. Echoes subscription challenges and acknowledges events immediately.
// @Tags webhook
// @Accept json
// @Produce json
// @Success 200
// @Router /webhook/board [post]
func (h *WebhookHandler) Handle(c *fiber.Ctx) error {
	rayID, ok := c.Locals("requestid").(string)
	if !ok {
		rayID = "unknown"
	}

	var payload webhookPayload
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		// Always acknowledge: a 4xx/5xx here only provokes retry storms.
		logger.Get().Warn("Unparseable webhook payload acknowledged",
			zap.String("ray_id", rayID),
			zap.Error(err),
		)
		return c.JSON(fiber.Map{"status": "ignored"})
	}

	// Subscription handshake: echo the challenge back verbatim.
	if payload.Challenge != "" {
		return c.JSON(fiber.Map{"challenge": payload.Challenge})
	}

	if payload.Event == nil {
		return c.JSON(fiber.Map{"status": "ignored"})
	}

	event := domain.WebhookEvent{
		EntityID: payload.Event.PulseID.String(),
		BoardID:  payload.Event.BoardID.String(),
		FieldID:  payload.Event.ColumnID,
		Text:     payload.Event.text(),
	}

	// Process off the request path so collaborator latency and failures
	// never delay or fail the acknowledgment.
	go h.service.HandleEvent(context.Background(), event)

	return c.JSON(fiber.Map{"status": "accepted"})
}
