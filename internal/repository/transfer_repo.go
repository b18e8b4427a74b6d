package repository

import (
	"fmt"
	"time"

	"go-branch-stock-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransferFilter narrows transfer listings. Zero values mean "any".
type TransferFilter struct {
	BranchID  *uuid.UUID // matches either side
	ToBranch  *uuid.UUID
	Status    model.TransferStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
}

type TransferRepository interface {
	Create(transfer *model.StockTransfer) error
	FindByID(id uuid.UUID) (*model.StockTransfer, error)
	FindAll(filter TransferFilter) ([]model.StockTransfer, error)
	FindItem(itemID uuid.UUID) (*model.StockTransferItem, error)
	FindItems(transferID uuid.UUID) ([]model.StockTransferItem, error)
	// UpdateStatus is a compare-and-swap: the row is only touched when it is
	// still in the expected status, so two racing transitions cannot both
	// succeed. Returns false when the swap lost.
	UpdateStatus(tx *gorm.DB, id uuid.UUID, from, to model.TransferStatus, updates map[string]interface{}) (bool, error)
	FindOverdue(before time.Time) ([]model.StockTransfer, error)
	NextTransferNumber() (string, error)
}

type transferRepo struct {
	db *gorm.DB
}

func NewTransferRepo(db *gorm.DB) TransferRepository {
	return &transferRepo{db}
}

func (r *transferRepo) Create(transfer *model.StockTransfer) error {
	return r.db.Create(transfer).Error
}

func (r *transferRepo) FindByID(id uuid.UUID) (*model.StockTransfer, error) {
	var transfer model.StockTransfer
	err := r.db.
		Preload("FromBranch").
		Preload("ToBranch").
		Preload("Items").
		Preload("Items.Product").
		First(&transfer, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (r *transferRepo) FindAll(filter TransferFilter) ([]model.StockTransfer, error) {
	q := r.db.Preload("FromBranch").Preload("ToBranch").Order("created_at DESC")

	if filter.BranchID != nil {
		q = q.Where("from_branch_id = ? OR to_branch_id = ?", *filter.BranchID, *filter.BranchID)
	}
	if filter.ToBranch != nil {
		q = q.Where("to_branch_id = ?", *filter.ToBranch)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.DateFrom != nil {
		q = q.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		q = q.Where("created_at <= ?", *filter.DateTo)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var transfers []model.StockTransfer
	err := q.Find(&transfers).Error
	return transfers, err
}

func (r *transferRepo) FindItem(itemID uuid.UUID) (*model.StockTransferItem, error) {
	var item model.StockTransferItem
	err := r.db.Preload("Product").Preload("Transfer").First(&item, "id = ?", itemID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *transferRepo) FindItems(transferID uuid.UUID) ([]model.StockTransferItem, error) {
	var items []model.StockTransferItem
	err := r.db.Preload("Product").Where("transfer_id = ?", transferID).Find(&items).Error
	return items, err
}

func (r *transferRepo) UpdateStatus(tx *gorm.DB, id uuid.UUID, from, to model.TransferStatus, updates map[string]interface{}) (bool, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to

	res := tx.Model(&model.StockTransfer{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *transferRepo) FindOverdue(before time.Time) ([]model.StockTransfer, error) {
	var transfers []model.StockTransfer
	err := r.db.Preload("ToBranch").
		Where("status = ? AND expected_delivery IS NOT NULL AND expected_delivery < ?", model.TransferDispatched, before).
		Find(&transfers).Error
	return transfers, err
}

func (r *transferRepo) NextTransferNumber() (string, error) {
	today := time.Now().Format("20060102")
	var count int64
	if err := r.db.Model(&model.StockTransfer{}).
		Where("transfer_number LIKE ?", "TRF-"+today+"-%").
		Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("TRF-%s-%04d", today, count+1), nil
}
