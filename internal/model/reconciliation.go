package model

import "github.com/google/uuid"

// StockReconciliation is a post-confirmation adjustment matching system
// quantity against a physical count. It corrects branch stock through the
// movement ledger and never rewrites the transfer item it follows.
type StockReconciliation struct {
	BaseModel
	TransferID uuid.UUID `gorm:"type:uuid;not null;index" json:"transfer_id" validate:"uuid_required"`
	Notes      string    `gorm:"type:text" json:"notes"`

	Transfer *StockTransfer            `gorm:"foreignKey:TransferID" json:"transfer,omitempty"`
	Items    []StockReconciliationItem `gorm:"foreignKey:ReconciliationID" json:"items,omitempty"`
}

func (StockReconciliation) TableName() string {
	return "stock_reconciliations"
}

type StockReconciliationItem struct {
	BaseModel
	ReconciliationID uuid.UUID `gorm:"type:uuid;not null;index" json:"reconciliation_id"`
	ProductID        uuid.UUID `gorm:"type:uuid;not null" json:"product_id" validate:"uuid_required"`
	BatchNo          string    `gorm:"type:varchar(50)" json:"batch_no"`
	SystemQuantity   int       `gorm:"not null" json:"system_quantity"`
	PhysicalQuantity int       `gorm:"not null" json:"physical_quantity"`
	Reason           string    `gorm:"type:text" json:"reason"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (StockReconciliationItem) TableName() string {
	return "stock_reconciliation_items"
}

// Variance is physical minus system count; positive means stock was found.
func (i StockReconciliationItem) Variance() int {
	return i.PhysicalQuantity - i.SystemQuantity
}
