package model

import "github.com/google/uuid"

type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

// StockMovement is the append-only ledger entry behind every BranchStock
// change. Dispatch writes OUT at the source, receipt confirmation writes IN
// at the destination, cancellation after dispatch writes the stock back,
// and reconciliations write the counted variance.
type StockMovement struct {
	BaseModel
	BranchID   uuid.UUID    `gorm:"type:uuid;not null;index" json:"branch_id" validate:"uuid_required"`
	ProductID  uuid.UUID    `gorm:"type:uuid;not null;index" json:"product_id" validate:"uuid_required"`
	TransferID *uuid.UUID   `gorm:"type:uuid;index" json:"transfer_id,omitempty"`
	Type       MovementType `gorm:"type:varchar(10);not null" json:"type" validate:"required,oneof=IN OUT"`
	Quantity   int          `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	Note       string       `gorm:"type:text" json:"note"`

	Branch  *Branch  `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (StockMovement) TableName() string {
	return "stock_movements"
}
