package model

import "github.com/google/uuid"

type AlertType string

const (
	AlertTransferOverdue  AlertType = "transfer_overdue"
	AlertCriticalQuery    AlertType = "critical_query"
	AlertLargeDiscrepancy AlertType = "large_discrepancy"
)

type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// StockAlert is a generated notice surfaced on branch dashboards, e.g. an
// overdue transfer or a critical discrepancy query.
type StockAlert struct {
	BaseModel
	BranchID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"branch_id"`
	AlertType  AlertType     `gorm:"type:varchar(30);not null" json:"alert_type"`
	Severity   AlertSeverity `gorm:"type:varchar(10);not null;default:'info'" json:"severity"`
	Title      string        `gorm:"type:varchar(255);not null" json:"title"`
	Message    string        `gorm:"type:text" json:"message"`
	TransferID *uuid.UUID    `gorm:"type:uuid;index" json:"transfer_id,omitempty"`
	QueryID    *uuid.UUID    `gorm:"type:uuid" json:"query_id,omitempty"`
	IsRead     bool          `gorm:"default:false" json:"is_read"`
	IsResolved bool          `gorm:"default:false" json:"is_resolved"`

	Branch *Branch `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
}

func (StockAlert) TableName() string {
	return "stock_alerts"
}
