package repository

import (
	"go-branch-stock-ws/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ImpactTotals is the aggregated financial exposure for a branch.
type ImpactTotals struct {
	TotalAmount     decimal.Decimal `json:"total_amount"`
	RecoveredAmount decimal.Decimal `json:"recovered_amount"`
	Outstanding     decimal.Decimal `json:"outstanding"`
}

type ImpactRepository interface {
	Create(tx *gorm.DB, impact *model.StockFinancialImpact) error
	FindByID(id uuid.UUID) (*model.StockFinancialImpact, error)
	FindByBranch(branchID uuid.UUID) ([]model.StockFinancialImpact, error)
	FindAll() ([]model.StockFinancialImpact, error)
	Update(impact *model.StockFinancialImpact) error
	Totals(branchID *uuid.UUID) (*ImpactTotals, error)
}

type impactRepo struct {
	db *gorm.DB
}

func NewImpactRepo(db *gorm.DB) ImpactRepository {
	return &impactRepo{db}
}

func (r *impactRepo) Create(tx *gorm.DB, impact *model.StockFinancialImpact) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(impact).Error
}

func (r *impactRepo) FindByID(id uuid.UUID) (*model.StockFinancialImpact, error) {
	var impact model.StockFinancialImpact
	err := r.db.First(&impact, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &impact, nil
}

func (r *impactRepo) FindByBranch(branchID uuid.UUID) ([]model.StockFinancialImpact, error) {
	var impacts []model.StockFinancialImpact
	err := r.db.Where("branch_id = ?", branchID).Order("impact_date DESC").Find(&impacts).Error
	return impacts, err
}

func (r *impactRepo) FindAll() ([]model.StockFinancialImpact, error) {
	var impacts []model.StockFinancialImpact
	err := r.db.Preload("Branch").Order("impact_date DESC").Find(&impacts).Error
	return impacts, err
}

func (r *impactRepo) Update(impact *model.StockFinancialImpact) error {
	return r.db.Save(impact).Error
}

func (r *impactRepo) Totals(branchID *uuid.UUID) (*ImpactTotals, error) {
	var impacts []model.StockFinancialImpact
	q := r.db.Model(&model.StockFinancialImpact{})
	if branchID != nil {
		q = q.Where("branch_id = ?", *branchID)
	}
	if err := q.Find(&impacts).Error; err != nil {
		return nil, err
	}

	// Summed in Go: decimal columns survive the round trip, SUM() does not
	// on every dialect we run against.
	totals := &ImpactTotals{
		TotalAmount:     decimal.Zero,
		RecoveredAmount: decimal.Zero,
		Outstanding:     decimal.Zero,
	}
	for _, i := range impacts {
		totals.TotalAmount = totals.TotalAmount.Add(i.Amount)
		totals.RecoveredAmount = totals.RecoveredAmount.Add(i.RecoveredAmount)
	}
	totals.Outstanding = totals.TotalAmount.Sub(totals.RecoveredAmount)
	return totals, nil
}
