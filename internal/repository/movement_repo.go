package repository

import (
	"errors"

	"go-branch-stock-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInsufficientStock = errors.New("insufficient stock remaining")

type MovementRepository interface {
	// Apply writes a ledger entry and adjusts the branch stock row inside
	// the caller's transaction. OUT with insufficient stock fails the tx.
	Apply(tx *gorm.DB, m *model.StockMovement, userID string) error
	FindByBranch(branchID uuid.UUID, limit int) ([]model.StockMovement, error)
	FindByTransfer(transferID uuid.UUID) ([]model.StockMovement, error)
}

type movementRepo struct {
	db *gorm.DB
}

func NewMovementRepo(db *gorm.DB) MovementRepository {
	return &movementRepo{db}
}

func (r *movementRepo) Apply(tx *gorm.DB, m *model.StockMovement, userID string) error {
	var stock model.BranchStock
	err := tx.Set("gorm:query_option", "FOR UPDATE").
		First(&stock, "branch_id = ? AND product_id = ?", m.BranchID, m.ProductID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stock = model.BranchStock{BranchID: m.BranchID, ProductID: m.ProductID}
		stock.CreatedBy = userID
		stock.UpdatedBy = userID
		if err := tx.Create(&stock).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	newQty := stock.Quantity
	switch m.Type {
	case model.MovementIn:
		newQty += m.Quantity
	case model.MovementOut:
		if stock.Quantity < m.Quantity {
			return ErrInsufficientStock
		}
		newQty -= m.Quantity
	default:
		return errors.New("unknown movement type")
	}

	if err := tx.Model(&model.BranchStock{}).
		Where("id = ?", stock.ID).
		Updates(map[string]interface{}{
			"quantity":   newQty,
			"updated_by": userID,
		}).Error; err != nil {
		return err
	}

	m.CreatedBy = userID
	m.UpdatedBy = userID
	return tx.Create(m).Error
}

func (r *movementRepo) FindByBranch(branchID uuid.UUID, limit int) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	q := r.db.Preload("Product").Where("branch_id = ?", branchID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&movements).Error
	return movements, err
}

func (r *movementRepo) FindByTransfer(transferID uuid.UUID) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := r.db.Preload("Product").Where("transfer_id = ?", transferID).Order("created_at ASC").Find(&movements).Error
	return movements, err
}
