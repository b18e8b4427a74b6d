package handler

import (
	"encoding/json"

	"go-branch-stock-ws/internal/model"
	"go-branch-stock-ws/internal/repository"
	"go-branch-stock-ws/internal/service"
	"go-branch-stock-ws/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type QueryHandler struct {
	queryService service.QueryService
	store        *storage.Store
}

func NewQueryHandler(queryService service.QueryService, store *storage.Store) *QueryHandler {
	return &QueryHandler{queryService: queryService, store: store}
}

// CreateQuery raises a manual discrepancy query against a transfer
// POST /api/v1/queries
func (h *QueryHandler) CreateQuery(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req service.CreateQueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	query, err := h.queryService.CreateQuery(&req, user)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "Query created successfully",
		"data":    query,
	})
}

// GetQueries returns queries matching the filters
// GET /api/v1/queries?transfer_id=&branch_id=&status=&priority=&assigned_to=
func (h *QueryHandler) GetQueries(c *fiber.Ctx) error {
	filter, err := parseQueryFilter(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	queries, err := h.queryService.ListQueries(*filter)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch queries"})
	}
	return c.JSON(queries)
}

// GetQuery returns one query with its responses
// GET /api/v1/queries/:id
func (h *QueryHandler) GetQuery(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid query ID"})
	}

	query, err := h.queryService.GetQuery(id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(query)
}

// AssignQuery assigns an active query to a user
// POST /api/v1/queries/:id/assign
func (h *QueryHandler) AssignQuery(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid query ID"})
	}

	var req struct {
		AssigneeID string `json:"assignee_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	assigneeID, err := uuid.Parse(req.AssigneeID)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid assignee ID"})
	}

	query, err := h.queryService.AssignQuery(id, assigneeID, user)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Query assigned",
		"data":    query,
	})
}

// StartProgress moves an open query to in_progress
// POST /api/v1/queries/:id/start
func (h *QueryHandler) StartProgress(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid query ID"})
	}

	query, err := h.queryService.StartProgress(id, user)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Query in progress",
		"data":    query,
	})
}

// AddResponse appends a message to the query thread. Accepts multipart
// form-data with optional "attachments" files, or plain JSON.
// POST /api/v1/queries/:id/responses
func (h *QueryHandler) AddResponse(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid query ID"})
	}

	req, err := h.parseResponseRequest(c, id)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	response, err := h.queryService.AddResponse(id, req, user)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "Response added",
		"data":    response,
	})
}

// EscalateQuery escalates an active query
// POST /api/v1/queries/:id/escalate
func (h *QueryHandler) EscalateQuery(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid query ID"})
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	query, err := h.queryService.EscalateQuery(id, req.Reason, user)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Query escalated",
		"data":    query,
	})
}

// ResolveQuery closes a query with a resolution, optionally recording the
// financial impact
// POST /api/v1/queries/:id/resolve
func (h *QueryHandler) ResolveQuery(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid query ID"})
	}

	var req service.ResolveQueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	query, err := h.queryService.ResolveQuery(id, &req, user)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Query resolved",
		"data":    query,
	})
}

// RejectQuery rejects an active query as unfounded
// POST /api/v1/queries/:id/reject
func (h *QueryHandler) RejectQuery(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid query ID"})
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Reason == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Rejection reason is required"})
	}

	query, err := h.queryService.RejectQuery(id, req.Reason, user)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Query rejected",
		"data":    query,
	})
}

func (h *QueryHandler) parseResponseRequest(c *fiber.Ctx, queryID uuid.UUID) (*service.AddResponseRequest, error) {
	var req service.AddResponseRequest

	form, err := c.MultipartForm()
	if err != nil {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return nil, fiber.NewError(400, "invalid request body")
		}
		return &req, nil
	}

	req.Message = c.FormValue("message")
	req.IsInternal = c.FormValue("is_internal") == "true"

	if files := form.File["attachments"]; len(files) > 0 {
		refs, err := h.store.SaveAll(files, "queries/"+queryID.String())
		if err != nil {
			return nil, err
		}
		req.Attachments = refs
	}

	return &req, nil
}

func parseQueryFilter(c *fiber.Ctx) (*repository.QueryFilter, error) {
	filter := repository.QueryFilter{Limit: c.QueryInt("limit", 50)}

	if raw := c.Query("transfer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fiber.NewError(400, "invalid transfer_id")
		}
		filter.TransferID = &id
	}
	if raw := c.Query("branch_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fiber.NewError(400, "invalid branch_id")
		}
		filter.BranchID = &id
	}
	if raw := c.Query("assigned_to"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fiber.NewError(400, "invalid assigned_to")
		}
		filter.AssignedTo = &id
	}
	if raw := c.Query("status"); raw != "" {
		status := model.QueryStatus(raw)
		if !status.Valid() {
			return nil, fiber.NewError(400, "invalid status")
		}
		filter.Status = status
	}
	if raw := c.Query("priority"); raw != "" {
		priority := model.QueryPriority(raw)
		if !priority.Valid() {
			return nil, fiber.NewError(400, "invalid priority")
		}
		filter.Priority = priority
	}

	return &filter, nil
}
