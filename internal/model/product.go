package model

import "github.com/shopspring/decimal"

type Product struct {
	BaseModel
	SKU       string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Unit      string          `gorm:"type:varchar(20)" json:"unit"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"` // feeds financial impact amounts

	// User tracking
	CreatedByUserID *string `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
	UpdatedByUserID *string `gorm:"type:varchar(255)" json:"updated_by_user_id,omitempty"`
	CreatedByUser   *User   `gorm:"foreignKey:CreatedByUserID;references:ID" json:"created_by_user,omitempty"`
	UpdatedByUser   *User   `gorm:"foreignKey:UpdatedByUserID;references:ID" json:"updated_by_user,omitempty"`
}
