package handler

import (
	"encoding/json"
	"strconv"

	"go-branch-stock-ws/internal/model"
	"go-branch-stock-ws/internal/service"
	"go-branch-stock-ws/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ReceiptHandler struct {
	receiptService service.ReceiptService
	store          *storage.Store
}

func NewReceiptHandler(receiptService service.ReceiptService, store *storage.Store) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService, store: store}
}

// ConfirmReceipt records the receipt outcome for a delivered transfer
// POST /api/v1/transfers/:id/confirm-receipt
func (h *ReceiptHandler) ConfirmReceipt(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transfer ID"})
	}

	var req service.ConfirmReceiptRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	transfer, err := h.receiptService.ConfirmReceipt(id, &req, user)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Receipt confirmed",
		"data":    transfer,
	})
}

// RecordInspection records a quality inspection on a received item. Accepts
// multipart form-data with an optional "photos" file field; the remaining
// fields arrive as form values.
// POST /api/v1/transfer-items/:id/inspect
func (h *ReceiptHandler) RecordInspection(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	req, err := h.parseInspectionRequest(c, id)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	queries, err := h.receiptService.RecordInspection(id, req, user)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":        "Inspection recorded",
		"queries_raised": len(queries),
		"data":           queries,
	})
}

func (h *ReceiptHandler) parseInspectionRequest(c *fiber.Ctx, itemID uuid.UUID) (*service.InspectionRequest, error) {
	var req service.InspectionRequest

	form, err := c.MultipartForm()
	if err != nil {
		// No multipart body, fall back to plain JSON without photos.
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return nil, fiber.NewError(400, "invalid request body")
		}
		return &req, nil
	}

	req.QualityRating = model.QualityRating(c.FormValue("quality_rating"))
	req.Notes = c.FormValue("notes")
	if raw := c.FormValue("actual_weight"); raw != "" {
		weight, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fiber.NewError(400, "invalid actual_weight")
		}
		req.ActualWeight = &weight
	}

	if files := form.File["photos"]; len(files) > 0 {
		refs, err := h.store.SaveAll(files, "inspections/"+itemID.String())
		if err != nil {
			return nil, err
		}
		req.Photos = refs
	}

	return &req, nil
}
