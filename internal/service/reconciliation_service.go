package service

import (
	"errors"
	"fmt"

	"go-branch-stock-ws/internal/model"
	"go-branch-stock-ws/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ReconciliationService interface {
	CreateReconciliation(transferID uuid.UUID, req *CreateReconciliationRequest, user *model.User) (*model.StockReconciliation, error)
	ListByTransfer(transferID uuid.UUID) ([]model.StockReconciliation, error)
}

type CreateReconciliationRequest struct {
	Notes string                      `json:"notes"`
	Items []ReconciliationItemRequest `json:"items" validate:"required,min=1,dive"`
}

type ReconciliationItemRequest struct {
	ProductID        uuid.UUID `json:"product_id" validate:"uuid_required"`
	BatchNo          string    `json:"batch_no"`
	SystemQuantity   int       `json:"system_quantity" validate:"gte=0"`
	PhysicalQuantity int       `json:"physical_quantity" validate:"gte=0"`
	Reason           string    `json:"reason"`
}

type reconciliationService struct {
	reconRepo    repository.ReconciliationRepository
	transferRepo repository.TransferRepository
	movementRepo repository.MovementRepository
	db           *gorm.DB
	log          *logrus.Logger
}

func NewReconciliationService(
	reconRepo repository.ReconciliationRepository,
	transferRepo repository.TransferRepository,
	movementRepo repository.MovementRepository,
	db *gorm.DB,
	log *logrus.Logger,
) ReconciliationService {
	return &reconciliationService{
		reconRepo:    reconRepo,
		transferRepo: transferRepo,
		movementRepo: movementRepo,
		db:           db,
		log:          log,
	}
}

// CreateReconciliation adjusts destination branch stock by the counted
// variance. The transfer items themselves are never rewritten; the original
// quantity_received stays as the audit record of what was confirmed.
func (s *reconciliationService) CreateReconciliation(transferID uuid.UUID, req *CreateReconciliationRequest, user *model.User) (*model.StockReconciliation, error) {
	transfer, err := s.transferRepo.FindByID(transferID)
	if err != nil {
		return nil, ErrTransferNotFound
	}
	if !model.CanActOnTransfer(user, transfer, model.SideDestination) {
		return nil, ErrForbidden
	}
	if transfer.Status != model.TransferConfirmed {
		return nil, invalidState("transfer is not in confirmed status")
	}
	if len(req.Items) == 0 {
		return nil, errors.New("reconciliation requires at least one item")
	}

	transferProducts := make(map[uuid.UUID]bool, len(transfer.Items))
	for _, item := range transfer.Items {
		transferProducts[item.ProductID] = true
	}
	for _, line := range req.Items {
		if !transferProducts[line.ProductID] {
			return nil, fmt.Errorf("product %s is not part of this transfer", line.ProductID)
		}
	}

	userID := user.ID.String()
	rec := &model.StockReconciliation{
		TransferID: transferID,
		Notes:      req.Notes,
	}
	rec.CreatedBy = userID
	rec.UpdatedBy = userID

	for _, line := range req.Items {
		item := model.StockReconciliationItem{
			ProductID:        line.ProductID,
			BatchNo:          line.BatchNo,
			SystemQuantity:   line.SystemQuantity,
			PhysicalQuantity: line.PhysicalQuantity,
			Reason:           line.Reason,
		}
		item.CreatedBy = userID
		item.UpdatedBy = userID
		rec.Items = append(rec.Items, item)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.reconRepo.Create(tx, rec); err != nil {
			return err
		}

		for _, item := range rec.Items {
			variance := item.Variance()
			if variance == 0 {
				continue
			}
			movement := &model.StockMovement{
				BranchID:   transfer.ToBranchID,
				ProductID:  item.ProductID,
				TransferID: &transfer.ID,
				Quantity:   variance,
				Note:       "reconciliation of " + transfer.TransferNumber,
			}
			if variance > 0 {
				movement.Type = model.MovementIn
			} else {
				movement.Type = model.MovementOut
				movement.Quantity = -variance
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

	s.log.WithFields(logrus.Fields{
		"transfer_number": transfer.TransferNumber,
		"lines":           len(rec.Items),
	}).Info("stock reconciliation recorded")

	return s.reconRepo.FindByID(rec.ID)
}

func (s *reconciliationService) ListByTransfer(transferID uuid.UUID) ([]model.StockReconciliation, error) {
	if _, err := s.transferRepo.FindByID(transferID); err != nil {
		return nil, ErrTransferNotFound
	}
	return s.reconRepo.FindByTransfer(transferID)
}
