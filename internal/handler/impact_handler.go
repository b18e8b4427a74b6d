package handler

import (
	"go-branch-stock-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ImpactHandler struct {
	impactService service.ImpactService
}

func NewImpactHandler(impactService service.ImpactService) *ImpactHandler {
	return &ImpactHandler{impactService: impactService}
}

// RecordImpact records a financial impact against a query or transfer
// POST /api/v1/impacts
func (h *ImpactHandler) RecordImpact(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req service.RecordImpactRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	impact, err := h.impactService.RecordImpact(&req, user)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "Financial impact recorded",
		"data":    impact,
	})
}

// RecordRecovery adds a recovered amount to an existing impact
// POST /api/v1/impacts/:id/recover
func (h *ImpactHandler) RecordRecovery(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid impact ID"})
	}

	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	impact, err := h.impactService.RecordRecovery(id, req.Amount, user)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Recovery recorded",
		"data":    impact,
	})
}

// GetImpacts lists financial impacts, optionally scoped to a branch
// GET /api/v1/impacts?branch_id=
func (h *ImpactHandler) GetImpacts(c *fiber.Ctx) error {
	var branchID *uuid.UUID
	if raw := c.Query("branch_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid branch_id"})
		}
		branchID = &id
	}

	impacts, err := h.impactService.ListImpacts(branchID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch impacts"})
	}
	return c.JSON(impacts)
}

// GetImpactTotals returns aggregate impact figures
// GET /api/v1/impacts/totals?branch_id=
func (h *ImpactHandler) GetImpactTotals(c *fiber.Ctx) error {
	var branchID *uuid.UUID
	if raw := c.Query("branch_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid branch_id"})
		}
		branchID = &id
	}

	totals, err := h.impactService.Totals(branchID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to compute totals"})
	}
	return c.JSON(totals)
}
