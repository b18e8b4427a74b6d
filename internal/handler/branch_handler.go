package handler

import (
	"go-branch-stock-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type BranchHandler struct {
	branchService service.BranchService
}

func NewBranchHandler(branchService service.BranchService) *BranchHandler {
	return &BranchHandler{branchService: branchService}
}

// CreateBranch handles branch creation
// POST /api/v1/branches
func (h *BranchHandler) CreateBranch(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req service.CreateBranchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	branch, err := h.branchService.CreateBranch(&req, user)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "Branch created successfully",
		"data":    branch,
	})
}

// GetBranches returns all branches
// GET /api/v1/branches
func (h *BranchHandler) GetBranches(c *fiber.Ctx) error {
	branches, err := h.branchService.GetAllBranches()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch branches"})
	}
	return c.JSON(branches)
}

// GetBranch returns a single branch by ID
// GET /api/v1/branches/:id
func (h *BranchHandler) GetBranch(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid branch ID"})
	}

	branch, err := h.branchService.GetBranchByID(id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Branch not found"})
	}
	return c.JSON(branch)
}

// UpdateBranch handles branch update
// PUT /api/v1/branches/:id
func (h *BranchHandler) UpdateBranch(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid branch ID"})
	}

	var req service.UpdateBranchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	branch, err := h.branchService.UpdateBranch(id, &req, user)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"message": "Branch updated successfully",
		"data":    branch,
	})
}

// GetBranchStock returns current stock levels at a branch
// GET /api/v1/branches/:id/stock
func (h *BranchHandler) GetBranchStock(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid branch ID"})
	}

	stock, err := h.branchService.ListStock(id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(stock)
}

// GetBranchMovements returns the stock movement ledger for a branch
// GET /api/v1/branches/:id/movements
func (h *BranchHandler) GetBranchMovements(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid branch ID"})
	}

	movements, err := h.branchService.ListMovements(id, c.QueryInt("limit", 100))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(movements)
}
