package handler

import (
	"errors"
	"net/http"

	"shipment-sentinel/internal/core/logger"
	classification "shipment-sentinel/internal/features/classification/domain"
	"shipment-sentinel/internal/features/monitor/domain"
	"shipment-sentinel/internal/features/monitor/ports"
	"shipment-sentinel/internal/features/monitor/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ShipmentHandler handles HTTP requests for shipment inspection.
type ShipmentHandler struct {
	// service is the MonitorService instance.
	service *service.MonitorService
}

// NewShipmentHandler creates a new instance of ShipmentHandler.
func NewShipmentHandler(s *service.MonitorService) *ShipmentHandler {
	return &ShipmentHandler{
		service: s,
	}
}

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id"`
}

// ShipmentView is a shipment together with its classification preview.
type ShipmentView struct {
	// ID is the board item ID.
	ID string `json:"id"`
	// Name is the shipment's display name.
	Name string `json:"name"`
	// Fields maps column IDs to their text values.
	Fields map[string]string `json:"fields"`
	// Issue is the rule-based classification of the current status text.
	Issue classification.Issue `json:"issue"`
}

// GetShipment godoc
// @Summary Get shipment with classification preview
// @Description Fetch a shipment from the board and preview its rule-based classification.
// @Tags shipments
// @Accept json
// @Produce json
// @Param id path string true "Shipment ID"
// @Success 200 {object} ShipmentView
// @Failure 404 {object} ErrorResponse
// @Router /shipments/{id} [get]
func (h *ShipmentHandler) GetShipment(c *fiber.Ctx) error {
	itemID := c.Params("id")

	rayID, ok := c.Locals("requestid").(string)
	if !ok {
		rayID = "unknown"
	}

	if itemID == "" {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Shipment ID is required",
			RayID:   rayID,
		})
	}

	shipment, issue, err := h.service.GetShipment(c.Context(), itemID)
	if err != nil {
		logger.Get().Error("Failed to fetch shipment",
			zap.String("shipment_id", itemID),
			zap.String("ray_id", rayID),
			zap.Error(err),
		)

		status := http.StatusInternalServerError
		msg := err.Error()

		if errors.Is(err, ports.ErrShipmentNotFound) {
			status = http.StatusNotFound
			msg = "Shipment not found"
		}

		return c.Status(status).JSON(ErrorResponse{
			Message: msg,
			RayID:   rayID,
		})
	}

	return c.Status(http.StatusOK).JSON(toView(shipment, issue))
}

// toView maps a shipment and its preview issue to the response shape.
func toView(shipment *domain.Shipment, issue classification.Issue) ShipmentView {
	return ShipmentView{
		ID:     shipment.ID,
		Name:   shipment.Name,
		Fields: shipment.Fields,
		Issue:  issue,
	}
}
