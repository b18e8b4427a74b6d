package model

import "github.com/google/uuid"

// Branch represents a retail outlet. It is the unit of stock ownership:
// transfers move goods between branches and users are assigned to one.
type Branch struct {
	BaseModel
	Code     string `gorm:"type:varchar(20);uniqueIndex;not null" json:"code" validate:"required"`
	Name     string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Address  string `gorm:"type:text" json:"address"`
	Phone    string `gorm:"type:varchar(20)" json:"phone"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}

// BranchStock is the on-hand quantity of one product at one branch.
// It is only ever mutated through the movement ledger (see StockMovement).
type BranchStock struct {
	BaseModel
	BranchID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_branch_product" json:"branch_id" validate:"uuid_required"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_branch_product" json:"product_id" validate:"uuid_required"`
	Quantity  int       `gorm:"default:0" json:"quantity"`

	Branch  *Branch  `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (BranchStock) TableName() string {
	return "branch_stocks"
}
