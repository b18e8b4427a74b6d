package model

import (
	"time"

	"github.com/google/uuid"
)

// QueryType classifies what kind of discrepancy a query tracks.
type QueryType string

const (
	QueryWeightDifference QueryType = "weight_difference"
	QueryQuantityShortage QueryType = "quantity_shortage"
	QueryQualityIssue     QueryType = "quality_issue"
	QueryDamagedGoods     QueryType = "damaged_goods"
	QueryExpiredGoods     QueryType = "expired_goods"
	QueryMissingItems     QueryType = "missing_items"
	QueryOther            QueryType = "other"
)

func (t QueryType) Valid() bool {
	switch t {
	case QueryWeightDifference, QueryQuantityShortage, QueryQualityIssue,
		QueryDamagedGoods, QueryExpiredGoods, QueryMissingItems, QueryOther:
		return true
	}
	return false
}

type QueryPriority string

const (
	PriorityLow      QueryPriority = "low"
	PriorityMedium   QueryPriority = "medium"
	PriorityHigh     QueryPriority = "high"
	PriorityCritical QueryPriority = "critical"
)

func (p QueryPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// QueryStatus drives the query lifecycle:
// open -> in_progress -> resolved, with escalated and rejected branches.
type QueryStatus string

const (
	QueryOpen       QueryStatus = "open"
	QueryInProgress QueryStatus = "in_progress"
	QueryResolved   QueryStatus = "resolved"
	QueryEscalated  QueryStatus = "escalated"
	QueryRejected   QueryStatus = "rejected"
)

func (s QueryStatus) Valid() bool {
	switch s {
	case QueryOpen, QueryInProgress, QueryResolved, QueryEscalated, QueryRejected:
		return true
	}
	return false
}

// IsActive reports whether the query still has an open resolution path.
func (s QueryStatus) IsActive() bool {
	return s == QueryOpen || s == QueryInProgress
}

func (s QueryStatus) CanStartProgress() bool { return s == QueryOpen }
func (s QueryStatus) CanEscalate() bool      { return s.IsActive() }
func (s QueryStatus) CanReject() bool        { return s.IsActive() }
func (s QueryStatus) CanResolve() bool       { return s.IsActive() || s == QueryEscalated }

// StockTransferQuery is a tracked discrepancy/issue raised against a
// transfer or one of its items ("query" in the domain sense).
type StockTransferQuery struct {
	BaseModel
	QueryNumber         string        `gorm:"type:varchar(30);uniqueIndex;not null" json:"query_number"`
	StockTransferID     uuid.UUID     `gorm:"type:uuid;not null;index" json:"stock_transfer_id" validate:"uuid_required"`
	StockTransferItemID *uuid.UUID    `gorm:"type:uuid;index" json:"stock_transfer_item_id,omitempty"`
	QueryType           QueryType     `gorm:"type:varchar(30);not null" json:"query_type"`
	Priority            QueryPriority `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	Status              QueryStatus   `gorm:"type:varchar(15);not null;default:'open';index" json:"status"`

	Title            string `gorm:"type:varchar(255);not null" json:"title" validate:"required"`
	Description      string `gorm:"type:text" json:"description"`
	ExpectedQuantity *int   `json:"expected_quantity,omitempty"`
	ActualQuantity   *int   `json:"actual_quantity,omitempty"`
	Resolution       string `gorm:"type:text" json:"resolution,omitempty"`

	AssignedToID *uuid.UUID `gorm:"type:uuid;index" json:"assigned_to_id,omitempty"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`

	Transfer   *StockTransfer     `gorm:"foreignKey:StockTransferID" json:"transfer,omitempty"`
	Item       *StockTransferItem `gorm:"foreignKey:StockTransferItemID" json:"item,omitempty"`
	AssignedTo *User              `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
	Responses  []QueryResponse    `gorm:"foreignKey:QueryID" json:"responses,omitempty"`
}

func (StockTransferQuery) TableName() string {
	return "stock_transfer_queries"
}

// QueryResponse is one threaded message on a query. Append-only.
type QueryResponse struct {
	BaseModel
	QueryID     uuid.UUID `gorm:"type:uuid;not null;index" json:"query_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	Message     string    `gorm:"type:text;not null" json:"message" validate:"required"`
	Attachments FileRefs  `gorm:"type:text" json:"attachments"`
	IsInternal  bool      `gorm:"default:false" json:"is_internal"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (QueryResponse) TableName() string {
	return "query_responses"
}
