package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TransferStatus is the closed set of states a stock transfer moves through.
// Progression is monotonic (pending -> dispatched -> delivered -> confirmed);
// cancelled is reachable from any pre-confirmed state and is terminal.
type TransferStatus string

const (
	TransferPending    TransferStatus = "pending"
	TransferDispatched TransferStatus = "dispatched"
	TransferDelivered  TransferStatus = "delivered"
	TransferConfirmed  TransferStatus = "confirmed"
	TransferCancelled  TransferStatus = "cancelled"
)

func (s TransferStatus) Valid() bool {
	switch s {
	case TransferPending, TransferDispatched, TransferDelivered, TransferConfirmed, TransferCancelled:
		return true
	}
	return false
}

func (s TransferStatus) IsTerminal() bool {
	return s == TransferConfirmed || s == TransferCancelled
}

// CanTransitionTo reports whether moving from s to next is a legal step.
func (s TransferStatus) CanTransitionTo(next TransferStatus) bool {
	switch next {
	case TransferDispatched:
		return s == TransferPending
	case TransferDelivered:
		return s == TransferDispatched
	case TransferConfirmed:
		return s == TransferDelivered
	case TransferCancelled:
		return !s.IsTerminal()
	}
	return false
}

// ItemCondition is the receiver-reported condition of one transfer line.
type ItemCondition string

const (
	ConditionGood    ItemCondition = "good"
	ConditionDamaged ItemCondition = "damaged"
	ConditionExpired ItemCondition = "expired"
	ConditionPartial ItemCondition = "partial"
)

func (c ItemCondition) Valid() bool {
	switch c {
	case ConditionGood, ConditionDamaged, ConditionExpired, ConditionPartial:
		return true
	}
	return false
}

// QualityRating comes from the standalone inspection endpoint.
type QualityRating string

const (
	RatingGood     QualityRating = "good"
	RatingFair     QualityRating = "fair"
	RatingPoor     QualityRating = "poor"
	RatingRejected QualityRating = "rejected"
)

func (r QualityRating) Valid() bool {
	switch r {
	case RatingGood, RatingFair, RatingPoor, RatingRejected:
		return true
	}
	return false
}

// FileRef records one stored upload (inspection photo, response attachment).
type FileRef struct {
	Path         string    `json:"path"`
	OriginalName string    `json:"original_name"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// FileRefs is stored as a JSON column.
type FileRefs []FileRef

func (f FileRefs) Value() (driver.Value, error) {
	if len(f) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(f)
	return string(b), err
}

func (f *FileRefs) Scan(value interface{}) error {
	if value == nil {
		*f = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	}
	return errors.New("unsupported type for FileRefs")
}

// StockTransfer is one shipment of goods between two branches.
// Never hard-deleted: BaseModel soft delete keeps the audit trail.
type StockTransfer struct {
	BaseModel
	TransferNumber string         `gorm:"type:varchar(30);uniqueIndex;not null" json:"transfer_number"`
	FromBranchID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"from_branch_id" validate:"uuid_required"`
	ToBranchID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"to_branch_id" validate:"uuid_required"`
	Status         TransferStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	DispatchDate     *time.Time `json:"dispatch_date,omitempty"`
	ExpectedDelivery *time.Time `json:"expected_delivery,omitempty"`
	DeliveredDate    *time.Time `json:"delivered_date,omitempty"`
	ConfirmedDate    *time.Time `json:"confirmed_date,omitempty"`
	DeliveryNotes    string     `gorm:"type:text" json:"delivery_notes"`
	CancelReason     string     `gorm:"type:text" json:"cancel_reason,omitempty"`

	FromBranch *Branch             `gorm:"foreignKey:FromBranchID" json:"from_branch,omitempty"`
	ToBranch   *Branch             `gorm:"foreignKey:ToBranchID" json:"to_branch,omitempty"`
	Items      []StockTransferItem `gorm:"foreignKey:TransferID" json:"items,omitempty"`
}

func (StockTransfer) TableName() string {
	return "stock_transfers"
}

// StockTransferItem is one product line within a transfer. QuantityReceived
// and Condition are set exactly once during receipt confirmation; later
// corrections go through a reconciliation record, never back here.
type StockTransferItem struct {
	BaseModel
	TransferID       uuid.UUID     `gorm:"type:uuid;not null;index" json:"transfer_id"`
	ProductID        uuid.UUID     `gorm:"type:uuid;not null" json:"product_id" validate:"uuid_required"`
	QuantitySent     int           `gorm:"not null" json:"quantity_sent" validate:"required,gt=0"`
	QuantityReceived *int          `json:"quantity_received,omitempty"`
	Condition        ItemCondition `gorm:"type:varchar(20)" json:"condition,omitempty"`
	ItemNotes        string        `gorm:"type:text" json:"item_notes"`
	Photos           FileRefs      `gorm:"type:text" json:"photos"`

	// Quality inspection (separate endpoint, optional)
	QualityRating   QualityRating `gorm:"type:varchar(20)" json:"quality_rating,omitempty"`
	ActualWeight    *float64      `json:"actual_weight,omitempty"`
	InspectionNotes string        `gorm:"type:text" json:"inspection_notes,omitempty"`
	InspectedAt     *time.Time    `json:"inspected_at,omitempty"`

	Product  *Product       `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Transfer *StockTransfer `gorm:"foreignKey:TransferID" json:"-"`
}

func (StockTransferItem) TableName() string {
	return "stock_transfer_items"
}

// TransferSide distinguishes which branch of a transfer an action belongs to.
type TransferSide string

const (
	SideSource      TransferSide = "source"
	SideDestination TransferSide = "destination"
)

// CanActOnTransfer is the single capability check for transfer actions:
// elevated roles may act on any transfer, a branch user only on the side
// their branch owns.
func CanActOnTransfer(user *User, transfer *StockTransfer, side TransferSide) bool {
	if user == nil || transfer == nil {
		return false
	}
	if user.Role != nil && (user.Role.Code == RoleSuperAdmin || user.Role.Code == RoleAdmin) {
		return true
	}
	if user.BranchID == nil {
		return false
	}
	switch side {
	case SideSource:
		return *user.BranchID == transfer.FromBranchID
	case SideDestination:
		return *user.BranchID == transfer.ToBranchID
	}
	return false
}
