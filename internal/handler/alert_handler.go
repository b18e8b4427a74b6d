package handler

import (
	"go-branch-stock-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AlertHandler struct {
	alertService service.AlertService
}

func NewAlertHandler(alertService service.AlertService) *AlertHandler {
	return &AlertHandler{alertService: alertService}
}

// GetAlerts returns alerts for a branch
// GET /api/v1/branches/:id/alerts?unresolved_only=true
func (h *AlertHandler) GetAlerts(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid branch ID"})
	}

	unresolvedOnly := c.Query("unresolved_only", "true") != "false"
	alerts, err := h.alertService.ListAlerts(id, unresolvedOnly)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch alerts"})
	}
	return c.JSON(alerts)
}

// MarkRead marks an alert as read
// POST /api/v1/alerts/:id/read
func (h *AlertHandler) MarkRead(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid alert ID"})
	}

	if err := h.alertService.MarkRead(id, user); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Alert marked as read"})
}

// MarkResolved marks an alert as resolved
// POST /api/v1/alerts/:id/resolve
func (h *AlertHandler) MarkResolved(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid alert ID"})
	}

	if err := h.alertService.MarkResolved(id, user); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Alert resolved"})
}

// SweepOverdue manually triggers the overdue-transfer check
// POST /api/v1/alerts/sweep
func (h *AlertHandler) SweepOverdue(c *fiber.Ctx) error {
	created, err := h.alertService.SweepOverdueTransfers()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Sweep failed"})
	}
	return c.JSON(fiber.Map{
		"message":        "Sweep completed",
		"alerts_created": created,
	})
}
