package service

import (
	"errors"
	"fmt"
	"time"

	"go-branch-stock-ws/internal/model"
	"go-branch-stock-ws/internal/repository"
	"go-branch-stock-ws/internal/ws"
	"go-branch-stock-ws/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type QueryService interface {
	CreateQuery(req *CreateQueryRequest, user *model.User) (*model.StockTransferQuery, error)
	GetQuery(id uuid.UUID) (*model.StockTransferQuery, error)
	ListQueries(filter repository.QueryFilter) ([]model.StockTransferQuery, error)
	AssignQuery(id, assigneeID uuid.UUID, user *model.User) (*model.StockTransferQuery, error)
	StartProgress(id uuid.UUID, user *model.User) (*model.StockTransferQuery, error)
	AddResponse(id uuid.UUID, req *AddResponseRequest, user *model.User) (*model.QueryResponse, error)
	EscalateQuery(id uuid.UUID, reason string, user *model.User) (*model.StockTransferQuery, error)
	ResolveQuery(id uuid.UUID, req *ResolveQueryRequest, user *model.User) (*model.StockTransferQuery, error)
	RejectQuery(id uuid.UUID, reason string, user *model.User) (*model.StockTransferQuery, error)
}

type CreateQueryRequest struct {
	StockTransferID     uuid.UUID           `json:"stock_transfer_id" validate:"uuid_required"`
	StockTransferItemID *uuid.UUID          `json:"stock_transfer_item_id"`
	QueryType           model.QueryType     `json:"query_type" validate:"required"`
	Priority            model.QueryPriority `json:"priority"`
	Title               string              `json:"title" validate:"required"`
	Description         string              `json:"description"`
	ExpectedQuantity    *int                `json:"expected_quantity"`
	ActualQuantity      *int                `json:"actual_quantity"`
}

type AddResponseRequest struct {
	Message     string         `json:"message" validate:"required"`
	IsInternal  bool           `json:"is_internal"`
	Attachments model.FileRefs `json:"-"`
}

type ResolveQueryRequest struct {
	Resolution string       `json:"resolution" validate:"required"`
	Impact     *ImpactInput `json:"impact"`
}

// ImpactInput optionally records the monetary consequence while resolving.
// A nil Amount is derived from the quantity shortfall and the product's
// unit price.
type ImpactInput struct {
	ImpactType    model.ImpactType `json:"impact_type"`
	Amount        *decimal.Decimal `json:"amount"`
	IsRecoverable bool             `json:"is_recoverable"`
	Description   string           `json:"description"`
}

type queryService struct {
	queryRepo    repository.QueryRepository
	transferRepo repository.TransferRepository
	userRepo     repository.UserRepository
	impactRepo   repository.ImpactRepository
	alertSvc     AlertService
	db           *gorm.DB
	wsHub        *ws.Hub
	log          *logrus.Logger
}

func NewQueryService(
	queryRepo repository.QueryRepository,
	transferRepo repository.TransferRepository,
	userRepo repository.UserRepository,
	impactRepo repository.ImpactRepository,
	alertSvc AlertService,
	db *gorm.DB,
	hub *ws.Hub,
	log *logrus.Logger,
) QueryService {
	return &queryService{
		queryRepo:    queryRepo,
		transferRepo: transferRepo,
		userRepo:     userRepo,
		impactRepo:   impactRepo,
		alertSvc:     alertSvc,
		db:           db,
		wsHub:        hub,
		log:          log,
	}
}

func (s *queryService) CreateQuery(req *CreateQueryRequest, user *model.User) (*model.StockTransferQuery, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return nil, fmt.Errorf("Validation failed: Field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}
	if !req.QueryType.Valid() {
		return nil, fmt.Errorf("invalid query_type %q", req.QueryType)
	}
	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("invalid priority %q", req.Priority)
	}

	transfer, err := s.transferRepo.FindByID(req.StockTransferID)
	if err != nil {
		return nil, ErrTransferNotFound
	}
	if req.StockTransferItemID != nil {
		item, err := s.transferRepo.FindItem(*req.StockTransferItemID)
		if err != nil || item.TransferID != transfer.ID {
			return nil, errors.New("item does not belong to this transfer")
		}
		exists, err := s.queryRepo.ActiveExists(nil, *req.StockTransferItemID, req.QueryType)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, errors.New("an active query of this type already exists for the item")
		}
	}

	number, err := s.queryRepo.NextQueryNumber(nil)
	if err != nil {
		return nil, err
	}

	userID := user.ID.String()
	query := &model.StockTransferQuery{
		QueryNumber:         number,
		StockTransferID:     req.StockTransferID,
		StockTransferItemID: req.StockTransferItemID,
		QueryType:           req.QueryType,
		Priority:            priority,
		Status:              model.QueryOpen,
		Title:               req.Title,
		Description:         req.Description,
		ExpectedQuantity:    req.ExpectedQuantity,
		ActualQuantity:      req.ActualQuantity,
	}
	query.CreatedBy = userID
	query.UpdatedBy = userID

	if err := s.queryRepo.Create(nil, query); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"query_number": query.QueryNumber,
		"query_type":   query.QueryType,
		"priority":     query.Priority,
	}).Info("query created")
	s.alertSvc.NotifyQueryRaised(query, transfer)

	return s.queryRepo.FindByID(query.ID)
}

func (s *queryService) GetQuery(id uuid.UUID) (*model.StockTransferQuery, error) {
	query, err := s.queryRepo.FindByID(id)
	if err != nil {
		return nil, ErrQueryNotFound
	}
	return query, nil
}

func (s *queryService) ListQueries(filter repository.QueryFilter) ([]model.StockTransferQuery, error) {
	return s.queryRepo.FindAll(filter)
}

// AssignQuery sets the assignee only; moving to in_progress is left to them.
func (s *queryService) AssignQuery(id, assigneeID uuid.UUID, user *model.User) (*model.StockTransferQuery, error) {
	query, err := s.queryRepo.FindByID(id)
	if err != nil {
		return nil, ErrQueryNotFound
	}
	if !query.Status.IsActive() {
		return nil, invalidState("query is not open or in progress")
	}
	assignee, err := s.userRepo.FindByID(assigneeID)
	if err != nil {
		return nil, errors.New("assignee not found")
	}

	query.AssignedToID = &assignee.ID
	query.UpdatedBy = user.ID.String()
	if err := s.queryRepo.Update(query); err != nil {
		return nil, err
	}
	return s.queryRepo.FindByID(id)
}

func (s *queryService) StartProgress(id uuid.UUID, user *model.User) (*model.StockTransferQuery, error) {
	query, err := s.queryRepo.FindByID(id)
	if err != nil {
		return nil, ErrQueryNotFound
	}
	if !query.Status.CanStartProgress() {
		return nil, invalidState("query is not open")
	}

	query.Status = model.QueryInProgress
	query.UpdatedBy = user.ID.String()
	if err := s.queryRepo.Update(query); err != nil {
		return nil, err
	}
	return s.queryRepo.FindByID(id)
}

func (s *queryService) AddResponse(id uuid.UUID, req *AddResponseRequest, user *model.User) (*model.QueryResponse, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return nil, fmt.Errorf("Validation failed: Field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}
	query, err := s.queryRepo.FindByID(id)
	if err != nil {
		return nil, ErrQueryNotFound
	}

	response := &model.QueryResponse{
		QueryID:     query.ID,
		UserID:      user.ID,
		Message:     req.Message,
		Attachments: req.Attachments,
		IsInternal:  req.IsInternal,
	}
	response.CreatedBy = user.ID.String()
	response.UpdatedBy = user.ID.String()

	if err := s.queryRepo.AddResponse(response); err != nil {
		return nil, err
	}
	return response, nil
}

func (s *queryService) EscalateQuery(id uuid.UUID, reason string, user *model.User) (*model.StockTransferQuery, error) {
	if reason == "" {
		return nil, errors.New("escalation reason is required")
	}
	query, err := s.queryRepo.FindByID(id)
	if err != nil {
		return nil, ErrQueryNotFound
	}
	if !query.Status.CanEscalate() {
		return nil, invalidState("only open or in-progress queries can be escalated")
	}

	// Status change and reason response land together or not at all.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		query.Status = model.QueryEscalated
		query.UpdatedBy = user.ID.String()
		if err := tx.Save(query).Error; err != nil {
			return err
		}
		return tx.Create(s.reasonResponse(query, "Escalated: "+reason, user)).Error
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.Publish(ws.Event{
		Type:    "query_update",
		Action:  "query_escalated",
		Data:    map[string]interface{}{"id": query.ID, "query_number": query.QueryNumber},
		Message: fmt.Sprintf("%s escalated %s", user.FullName, query.QueryNumber),
	})
	return s.queryRepo.FindByID(id)
}

func (s *queryService) ResolveQuery(id uuid.UUID, req *ResolveQueryRequest, user *model.User) (*model.StockTransferQuery, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return nil, fmt.Errorf("Validation failed: Field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}
	query, err := s.queryRepo.FindByID(id)
	if err != nil {
		return nil, ErrQueryNotFound
	}
	if !query.Status.CanResolve() {
		return nil, invalidState("query cannot be resolved from status " + string(query.Status))
	}

	userID := user.ID.String()
	now := time.Now()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		query.Status = model.QueryResolved
		query.ResolvedAt = &now
		query.Resolution = req.Resolution
		query.UpdatedBy = userID
		if err := tx.Save(query).Error; err != nil {
			return err
		}

		if req.Impact != nil {
			impact, err := s.buildImpact(query, req.Impact, userID, now)
			if err != nil {
				return err
			}
			if err := s.impactRepo.Create(tx, impact); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithField("query_number", query.QueryNumber).Info("query resolved")
	return s.queryRepo.FindByID(id)
}

func (s *queryService) RejectQuery(id uuid.UUID, reason string, user *model.User) (*model.StockTransferQuery, error) {
	if reason == "" {
		return nil, errors.New("rejection reason is required")
	}
	query, err := s.queryRepo.FindByID(id)
	if err != nil {
		return nil, ErrQueryNotFound
	}
	if !query.Status.CanReject() {
		return nil, invalidState("only open or in-progress queries can be rejected")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		query.Status = model.QueryRejected
		query.UpdatedBy = user.ID.String()
		if err := tx.Save(query).Error; err != nil {
			return err
		}
		return tx.Create(s.reasonResponse(query, "Rejected: "+reason, user)).Error
	})
	if err != nil {
		return nil, err
	}
	return s.queryRepo.FindByID(id)
}

// reasonResponse builds the response row that records why a query changed
// status, written in the same transaction as the status itself.
func (s *queryService) reasonResponse(query *model.StockTransferQuery, message string, user *model.User) *model.QueryResponse {
	response := &model.QueryResponse{
		QueryID: query.ID,
		UserID:  user.ID,
		Message: message,
	}
	response.CreatedBy = user.ID.String()
	response.UpdatedBy = user.ID.String()
	return response
}

func (s *queryService) buildImpact(query *model.StockTransferQuery, input *ImpactInput, userID string, when time.Time) (*model.StockFinancialImpact, error) {
	if query.Transfer == nil {
		return nil, errors.New("query transfer not loaded")
	}

	impactType := input.ImpactType
	if impactType == "" {
		impactType = model.ImpactLoss
	}
	if !impactType.Valid() {
		return nil, fmt.Errorf("invalid impact_type %q", input.ImpactType)
	}

	amount := decimal.Zero
	if input.Amount != nil {
		amount = *input.Amount
	} else if query.ExpectedQuantity != nil && query.ActualQuantity != nil &&
		query.Item != nil && query.Item.Product != nil {
		shortfall := *query.ExpectedQuantity - *query.ActualQuantity
		if shortfall > 0 {
			amount = query.Item.Product.UnitPrice.Mul(decimal.NewFromInt(int64(shortfall)))
		}
	}
	if amount.IsNegative() {
		return nil, errors.New("impact amount cannot be negative")
	}

	impact := &model.StockFinancialImpact{
		BranchID:        query.Transfer.ToBranchID,
		ImpactableType:  model.ImpactableQuery,
		ImpactableID:    query.ID,
		ImpactType:      impactType,
		Amount:          amount,
		IsRecoverable:   input.IsRecoverable,
		RecoveredAmount: decimal.Zero,
		ImpactDate:      when,
		Description:     input.Description,
	}
	impact.CreatedBy = userID
	impact.UpdatedBy = userID
	return impact, nil
}
