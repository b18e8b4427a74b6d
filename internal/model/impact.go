package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ImpactType string

const (
	ImpactLoss      ImpactType = "loss"
	ImpactDamage    ImpactType = "damage"
	ImpactShrinkage ImpactType = "shrinkage"
	ImpactWriteOff  ImpactType = "write_off"
	ImpactRecovery  ImpactType = "recovery"
)

func (t ImpactType) Valid() bool {
	switch t {
	case ImpactLoss, ImpactDamage, ImpactShrinkage, ImpactWriteOff, ImpactRecovery:
		return true
	}
	return false
}

// Impactable type discriminators for the polymorphic reference.
const (
	ImpactableQuery    = "query"
	ImpactableTransfer = "transfer"
)

// StockFinancialImpact records the monetary consequence of a loss or
// discrepancy, attached polymorphically to a query or a transfer.
type StockFinancialImpact struct {
	BaseModel
	BranchID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"branch_id" validate:"uuid_required"`
	ImpactableType  string          `gorm:"type:varchar(20);not null;index:idx_impactable" json:"impactable_type"`
	ImpactableID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_impactable" json:"impactable_id"`
	ImpactType      ImpactType      `gorm:"type:varchar(20);not null" json:"impact_type"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	IsRecoverable   bool            `gorm:"default:false" json:"is_recoverable"`
	RecoveredAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"recovered_amount"`
	ImpactDate      time.Time       `gorm:"not null" json:"impact_date"`
	Description     string          `gorm:"type:text" json:"description"`

	Branch *Branch `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
}

func (StockFinancialImpact) TableName() string {
	return "stock_financial_impacts"
}

// Outstanding is the unrecovered portion of the impact.
func (i StockFinancialImpact) Outstanding() decimal.Decimal {
	return i.Amount.Sub(i.RecoveredAmount)
}
