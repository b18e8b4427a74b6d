package handler

import (
	"go-branch-stock-ws/internal/model"
	"go-branch-stock-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetBranchDashboard returns stats and recent activity for one branch.
// Branch managers are pinned to their own branch.
// GET /api/v1/dashboard/branch/:id?days=30
func (h *DashboardHandler) GetBranchDashboard(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid branch ID"})
	}

	if user.Role != nil && user.Role.Code == model.RoleBranchManager {
		if user.BranchID == nil || *user.BranchID != id {
			return c.Status(403).JSON(fiber.Map{"error": "Forbidden: dashboard limited to your own branch"})
		}
	}

	dashboard, err := h.dashboardService.GetBranchDashboard(id, c.QueryInt("days", 30))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to build dashboard"})
	}
	return c.JSON(dashboard)
}

// GetAdminDashboard returns network-wide stats
// GET /api/v1/dashboard/admin?days=30
func (h *DashboardHandler) GetAdminDashboard(c *fiber.Ctx) error {
	stats, err := h.dashboardService.GetAdminDashboard(c.QueryInt("days", 30))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to build dashboard"})
	}
	return c.JSON(stats)
}
