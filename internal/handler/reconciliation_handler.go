package handler

import (
	"go-branch-stock-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ReconciliationHandler struct {
	reconciliationService service.ReconciliationService
}

func NewReconciliationHandler(reconciliationService service.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconciliationService: reconciliationService}
}

// CreateReconciliation records a physical count against a confirmed transfer
// POST /api/v1/transfers/:id/reconciliations
func (h *ReconciliationHandler) CreateReconciliation(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transfer ID"})
	}

	var req service.CreateReconciliationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	rec, err := h.reconciliationService.CreateReconciliation(id, &req, user)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "Reconciliation recorded",
		"data":    rec,
	})
}

// GetReconciliations returns reconciliations recorded against a transfer
// GET /api/v1/transfers/:id/reconciliations
func (h *ReconciliationHandler) GetReconciliations(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transfer ID"})
	}

	recs, err := h.reconciliationService.ListByTransfer(id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(recs)
}
