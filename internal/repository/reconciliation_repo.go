package repository

import (
	"go-branch-stock-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReconciliationRepository interface {
	Create(tx *gorm.DB, rec *model.StockReconciliation) error
	FindByID(id uuid.UUID) (*model.StockReconciliation, error)
	FindByTransfer(transferID uuid.UUID) ([]model.StockReconciliation, error)
}

type reconciliationRepo struct {
	db *gorm.DB
}

func NewReconciliationRepo(db *gorm.DB) ReconciliationRepository {
	return &reconciliationRepo{db}
}

func (r *reconciliationRepo) Create(tx *gorm.DB, rec *model.StockReconciliation) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(rec).Error
}

func (r *reconciliationRepo) FindByID(id uuid.UUID) (*model.StockReconciliation, error) {
	var rec model.StockReconciliation
	err := r.db.Preload("Items").Preload("Items.Product").First(&rec, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *reconciliationRepo) FindByTransfer(transferID uuid.UUID) ([]model.StockReconciliation, error) {
	var recs []model.StockReconciliation
	err := r.db.Preload("Items").Where("transfer_id = ?", transferID).Order("created_at DESC").Find(&recs).Error
	return recs, err
}
