package repository

import (
	"go-branch-stock-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AlertRepository interface {
	Create(alert *model.StockAlert) error
	FindByBranch(branchID uuid.UUID, unresolvedOnly bool) ([]model.StockAlert, error)
	FindByID(id uuid.UUID) (*model.StockAlert, error)
	MarkRead(id uuid.UUID, userID string) error
	MarkResolved(id uuid.UUID, userID string) error
	// UnresolvedExists deduplicates sweep alerts per transfer.
	UnresolvedExists(transferID uuid.UUID, alertType model.AlertType) (bool, error)
	CountUnresolved(branchID uuid.UUID) (int64, error)
}

type alertRepo struct {
	db *gorm.DB
}

func NewAlertRepo(db *gorm.DB) AlertRepository {
	return &alertRepo{db}
}

func (r *alertRepo) Create(alert *model.StockAlert) error {
	return r.db.Create(alert).Error
}

func (r *alertRepo) FindByBranch(branchID uuid.UUID, unresolvedOnly bool) ([]model.StockAlert, error) {
	q := r.db.Where("branch_id = ?", branchID).Order("created_at DESC")
	if unresolvedOnly {
		q = q.Where("is_resolved = ?", false)
	}
	var alerts []model.StockAlert
	err := q.Find(&alerts).Error
	return alerts, err
}

func (r *alertRepo) FindByID(id uuid.UUID) (*model.StockAlert, error) {
	var alert model.StockAlert
	err := r.db.First(&alert, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *alertRepo) MarkRead(id uuid.UUID, userID string) error {
	return r.db.Model(&model.StockAlert{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_read": true, "updated_by": userID}).Error
}

func (r *alertRepo) MarkResolved(id uuid.UUID, userID string) error {
	return r.db.Model(&model.StockAlert{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_resolved": true, "is_read": true, "updated_by": userID}).Error
}

func (r *alertRepo) UnresolvedExists(transferID uuid.UUID, alertType model.AlertType) (bool, error) {
	var count int64
	err := r.db.Model(&model.StockAlert{}).
		Where("transfer_id = ? AND alert_type = ? AND is_resolved = ?", transferID, alertType, false).
		Count(&count).Error
	return count > 0, err
}

func (r *alertRepo) CountUnresolved(branchID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.StockAlert{}).
		Where("branch_id = ? AND is_resolved = ?", branchID, false).
		Count(&count).Error
	return count, err
}
