package handler

import (
	"time"

	"go-branch-stock-ws/internal/model"
	"go-branch-stock-ws/internal/repository"
	"go-branch-stock-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type TransferHandler struct {
	transferService service.TransferService
}

func NewTransferHandler(transferService service.TransferService) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

// CreateTransfer starts a new transfer in pending status
// POST /api/v1/transfers
func (h *TransferHandler) CreateTransfer(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req service.CreateTransferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	transfer, err := h.transferService.CreateTransfer(&req, user)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "Transfer created successfully",
		"data":    transfer,
	})
}

// GetTransfers returns transfers matching the query filters
// GET /api/v1/transfers?branch_id=&status=&date_from=&date_to=
func (h *TransferHandler) GetTransfers(c *fiber.Ctx) error {
	filter, err := parseTransferFilter(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	transfers, err := h.transferService.ListTransfers(*filter)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch transfers"})
	}
	return c.JSON(transfers)
}

// GetTransfer returns one transfer with its items
// GET /api/v1/transfers/:id
func (h *TransferHandler) GetTransfer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transfer ID"})
	}

	transfer, err := h.transferService.GetTransfer(id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(transfer)
}

// GetTransferItems returns the line items of a transfer
// GET /api/v1/transfers/:id/items
func (h *TransferHandler) GetTransferItems(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transfer ID"})
	}

	items, err := h.transferService.ListItems(id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(items)
}

// Dispatch moves a pending transfer to dispatched and deducts source stock
// POST /api/v1/transfers/:id/dispatch
func (h *TransferHandler) Dispatch(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transfer ID"})
	}

	transfer, err := h.transferService.Dispatch(id, user)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Transfer dispatched successfully",
		"data":    transfer,
	})
}

// MarkDelivered moves a dispatched transfer to delivered
// POST /api/v1/transfers/:id/deliver
func (h *TransferHandler) MarkDelivered(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transfer ID"})
	}

	var req service.MarkDeliveredRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
		}
	}

	transfer, err := h.transferService.MarkDelivered(id, &req, user)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Transfer marked as delivered",
		"data":    transfer,
	})
}

// Cancel cancels a non-terminal transfer
// POST /api/v1/transfers/:id/cancel
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transfer ID"})
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Reason == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Cancellation reason is required"})
	}

	transfer, err := h.transferService.Cancel(id, req.Reason, user)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Transfer cancelled",
		"data":    transfer,
	})
}

func parseTransferFilter(c *fiber.Ctx) (*repository.TransferFilter, error) {
	filter := repository.TransferFilter{Limit: c.QueryInt("limit", 50)}

	if raw := c.Query("branch_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fiber.NewError(400, "invalid branch_id")
		}
		filter.BranchID = &id
	}
	if raw := c.Query("to_branch_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fiber.NewError(400, "invalid to_branch_id")
		}
		filter.ToBranch = &id
	}
	if raw := c.Query("status"); raw != "" {
		status := model.TransferStatus(raw)
		if !status.Valid() {
			return nil, fiber.NewError(400, "invalid status")
		}
		filter.Status = status
	}
	if raw := c.Query("date_from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fiber.NewError(400, "invalid date_from, use YYYY-MM-DD")
		}
		filter.DateFrom = &t
	}
	if raw := c.Query("date_to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fiber.NewError(400, "invalid date_to, use YYYY-MM-DD")
		}
		filter.DateTo = &t
	}

	return &filter, nil
}
