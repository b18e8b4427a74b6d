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
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type TransferService interface {
	CreateTransfer(req *CreateTransferRequest, user *model.User) (*model.StockTransfer, error)
	GetTransfer(id uuid.UUID) (*model.StockTransfer, error)
	ListTransfers(filter repository.TransferFilter) ([]model.StockTransfer, error)
	ListItems(transferID uuid.UUID) ([]model.StockTransferItem, error)
	Dispatch(id uuid.UUID, user *model.User) (*model.StockTransfer, error)
	MarkDelivered(id uuid.UUID, req *MarkDeliveredRequest, user *model.User) (*model.StockTransfer, error)
	Cancel(id uuid.UUID, reason string, user *model.User) (*model.StockTransfer, error)
}

type CreateTransferRequest struct {
	FromBranchID     uuid.UUID                   `json:"from_branch_id" validate:"uuid_required"`
	ToBranchID       uuid.UUID                   `json:"to_branch_id" validate:"uuid_required"`
	ExpectedDelivery *time.Time                  `json:"expected_delivery"`
	Notes            string                      `json:"notes"`
	Items            []CreateTransferItemRequest `json:"items" validate:"required,min=1,dive"`
}

type CreateTransferItemRequest struct {
	ProductID    uuid.UUID `json:"product_id" validate:"uuid_required"`
	QuantitySent int       `json:"quantity_sent" validate:"required,gt=0"`
	Notes        string    `json:"notes"`
}

type MarkDeliveredRequest struct {
	DeliveryNotes string `json:"delivery_notes"`
}

type transferService struct {
	transferRepo repository.TransferRepository
	movementRepo repository.MovementRepository
	branchRepo   repository.BranchRepository
	productRepo  repository.ProductRepository
	db           *gorm.DB
	wsHub        *ws.Hub
	log          *logrus.Logger
}

func NewTransferService(
	transferRepo repository.TransferRepository,
	movementRepo repository.MovementRepository,
	branchRepo repository.BranchRepository,
	productRepo repository.ProductRepository,
	db *gorm.DB,
	hub *ws.Hub,
	log *logrus.Logger,
) TransferService {
	return &transferService{
		transferRepo: transferRepo,
		movementRepo: movementRepo,
		branchRepo:   branchRepo,
		productRepo:  productRepo,
		db:           db,
		wsHub:        hub,
		log:          log,
	}
}

func (s *transferService) CreateTransfer(req *CreateTransferRequest, user *model.User) (*model.StockTransfer, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return nil, fmt.Errorf("Validation failed: Field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}

	if req.FromBranchID == req.ToBranchID {
		return nil, errors.New("transfers cannot be made within the same branch")
	}
	if _, err := s.branchRepo.FindByID(req.FromBranchID); err != nil {
		return nil, errors.New("source branch not found")
	}
	if _, err := s.branchRepo.FindByID(req.ToBranchID); err != nil {
		return nil, errors.New("destination branch not found")
	}
	for _, item := range req.Items {
		if _, err := s.productRepo.FindByID(item.ProductID); err != nil {
			return nil, fmt.Errorf("product %s not found", item.ProductID)
		}
	}

	number, err := s.transferRepo.NextTransferNumber()
	if err != nil {
		return nil, err
	}

	userID := user.ID.String()
	transfer := &model.StockTransfer{
		TransferNumber:   number,
		FromBranchID:     req.FromBranchID,
		ToBranchID:       req.ToBranchID,
		Status:           model.TransferPending,
		ExpectedDelivery: req.ExpectedDelivery,
		DeliveryNotes:    req.Notes,
	}
	transfer.CreatedBy = userID
	transfer.UpdatedBy = userID

	for _, item := range req.Items {
		line := model.StockTransferItem{
			ProductID:    item.ProductID,
			QuantitySent: item.QuantitySent,
			ItemNotes:    item.Notes,
		}
		line.CreatedBy = userID
		line.UpdatedBy = userID
		transfer.Items = append(transfer.Items, line)
	}

	if err := s.transferRepo.Create(transfer); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"transfer_number": transfer.TransferNumber,
		"from_branch":     transfer.FromBranchID,
		"to_branch":       transfer.ToBranchID,
		"items":           len(transfer.Items),
	}).Info("stock transfer created")

	s.wsHub.Publish(ws.Event{
		Type:    "transfer_update",
		Action:  "transfer_created",
		Data:    transfer,
		Message: fmt.Sprintf("%s created transfer %s", user.FullName, transfer.TransferNumber),
	})

	return s.transferRepo.FindByID(transfer.ID)
}

func (s *transferService) GetTransfer(id uuid.UUID) (*model.StockTransfer, error) {
	transfer, err := s.transferRepo.FindByID(id)
	if err != nil {
		return nil, ErrTransferNotFound
	}
	return transfer, nil
}

func (s *transferService) ListTransfers(filter repository.TransferFilter) ([]model.StockTransfer, error) {
	return s.transferRepo.FindAll(filter)
}

func (s *transferService) ListItems(transferID uuid.UUID) ([]model.StockTransferItem, error) {
	if _, err := s.transferRepo.FindByID(transferID); err != nil {
		return nil, ErrTransferNotFound
	}
	return s.transferRepo.FindItems(transferID)
}

// Dispatch moves a pending transfer out the door: the status swap and the
// source-branch stock decrements commit or roll back together.
func (s *transferService) Dispatch(id uuid.UUID, user *model.User) (*model.StockTransfer, error) {
	transfer, err := s.transferRepo.FindByID(id)
	if err != nil {
		return nil, ErrTransferNotFound
	}
	if !model.CanActOnTransfer(user, transfer, model.SideSource) {
		return nil, ErrForbidden
	}
	if transfer.Status != model.TransferPending {
		return nil, invalidState("transfer is not in pending status")
	}

	userID := user.ID.String()
	now := time.Now()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		swapped, err := s.transferRepo.UpdateStatus(tx, id, model.TransferPending, model.TransferDispatched, map[string]interface{}{
			"dispatch_date": now,
			"updated_by":    userID,
		})
		if err != nil {
			return err
		}
		if !swapped {
			return invalidState("transfer is not in pending status")
		}

		for _, item := range transfer.Items {
			movement := &model.StockMovement{
				BranchID:   transfer.FromBranchID,
				ProductID:  item.ProductID,
				TransferID: &transfer.ID,
				Type:       model.MovementOut,
				Quantity:   item.QuantitySent,
				Note:       "dispatched on " + transfer.TransferNumber,
			}
			if err := s.movementRepo.Apply(tx, movement, userID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithField("transfer_number", transfer.TransferNumber).Info("transfer dispatched")
	s.wsHub.Publish(ws.Event{
		Type:    "transfer_update",
		Action:  "transfer_dispatched",
		Data:    map[string]interface{}{"id": transfer.ID, "transfer_number": transfer.TransferNumber},
		Message: fmt.Sprintf("%s dispatched transfer %s", user.FullName, transfer.TransferNumber),
	})

	return s.transferRepo.FindByID(id)
}

func (s *transferService) MarkDelivered(id uuid.UUID, req *MarkDeliveredRequest, user *model.User) (*model.StockTransfer, error) {
	transfer, err := s.transferRepo.FindByID(id)
	if err != nil {
		return nil, ErrTransferNotFound
	}
	if !model.CanActOnTransfer(user, transfer, model.SideDestination) {
		return nil, ErrForbidden
	}
	if transfer.Status != model.TransferDispatched {
		return nil, invalidState("transfer is not in dispatched status")
	}

	userID := user.ID.String()
	updates := map[string]interface{}{
		"delivered_date": time.Now(),
		"updated_by":     userID,
	}
	if req != nil && req.DeliveryNotes != "" {
		updates["delivery_notes"] = appendNotes(transfer.DeliveryNotes, req.DeliveryNotes)
	}

	swapped, err := s.transferRepo.UpdateStatus(s.db, id, model.TransferDispatched, model.TransferDelivered, updates)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, invalidState("transfer is not in dispatched status")
	}

	s.wsHub.Publish(ws.Event{
		Type:    "transfer_update",
		Action:  "transfer_delivered",
		Data:    map[string]interface{}{"id": transfer.ID, "transfer_number": transfer.TransferNumber},
		Message: fmt.Sprintf("Transfer %s marked delivered", transfer.TransferNumber),
	})

	return s.transferRepo.FindByID(id)
}

// Cancel is irreversible. Goods already dispatched return to the source
// branch through the ledger.
func (s *transferService) Cancel(id uuid.UUID, reason string, user *model.User) (*model.StockTransfer, error) {
	transfer, err := s.transferRepo.FindByID(id)
	if err != nil {
		return nil, ErrTransferNotFound
	}
	if !model.CanActOnTransfer(user, transfer, model.SideSource) {
		return nil, ErrForbidden
	}
	if transfer.Status.IsTerminal() {
		return nil, invalidState("transfer is already " + string(transfer.Status))
	}

	userID := user.ID.String()
	wasDispatched := transfer.Status == model.TransferDispatched || transfer.Status == model.TransferDelivered

	err = s.db.Transaction(func(tx *gorm.DB) error {
		swapped, err := s.transferRepo.UpdateStatus(tx, id, transfer.Status, model.TransferCancelled, map[string]interface{}{
			"cancel_reason": reason,
			"updated_by":    userID,
		})
		if err != nil {
			return err
		}
		if !swapped {
			return invalidState("transfer status changed, retry")
		}

		if wasDispatched {
			for _, item := range transfer.Items {
				movement := &model.StockMovement{
					BranchID:   transfer.FromBranchID,
					ProductID:  item.ProductID,
					TransferID: &transfer.ID,
					Type:       model.MovementIn,
					Quantity:   item.QuantitySent,
					Note:       "returned by cancellation of " + transfer.TransferNumber,
				}
				if err := s.movementRepo.Apply(tx, movement, userID); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"transfer_number": transfer.TransferNumber,
		"reason":          reason,
	}).Info("transfer cancelled")
	s.wsHub.Publish(ws.Event{
		Type:    "transfer_update",
		Action:  "transfer_cancelled",
		Data:    map[string]interface{}{"id": transfer.ID, "transfer_number": transfer.TransferNumber},
		Message: fmt.Sprintf("Transfer %s cancelled: %s", transfer.TransferNumber, reason),
	})

	return s.transferRepo.FindByID(id)
}

func appendNotes(existing, extra string) string {
	if existing == "" {
		return extra
	}
	return existing + "\n" + extra
}
