package service

import (
	"fmt"
	"time"

	"go-branch-stock-ws/internal/model"
	"go-branch-stock-ws/internal/repository"
	"go-branch-stock-ws/internal/ws"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Variance thresholds from the receiving SOP: anything past 5% of the sent
// quantity raises a query, past 15% the query is high priority.
const (
	discrepancyThreshold  = 0.05
	highVarianceThreshold = 0.15
)

type ConfirmationType string

const (
	ConfirmAcceptAll ConfirmationType = "accept_all"
	ConfirmRejectAll ConfirmationType = "reject_all"
	ConfirmPartial   ConfirmationType = "partial"
)

type ConfirmReceiptRequest struct {
	ConfirmationType ConfirmationType     `json:"confirmation_type" validate:"required,oneof=accept_all reject_all partial"`
	Items            []ReceiptLineRequest `json:"items"`
	OverallNotes     string               `json:"overall_notes"`
	RejectionNote    string               `json:"rejection_note"`
}

type ReceiptLineRequest struct {
	ItemID           uuid.UUID           `json:"item_id" validate:"uuid_required"`
	QuantityReceived *int                `json:"quantity_received" validate:"required"`
	Condition        model.ItemCondition `json:"condition"`
	Notes            string              `json:"notes"`
}

type InspectionRequest struct {
	QualityRating model.QualityRating `json:"quality_rating" validate:"required,oneof=good fair poor rejected"`
	ActualWeight  *float64            `json:"actual_weight"`
	Notes         string              `json:"notes"`
	Photos        model.FileRefs      `json:"-"`
}

// QueryDraft is a discrepancy finding not yet persisted as a query.
type QueryDraft struct {
	Type             model.QueryType
	Priority         model.QueryPriority
	Title            string
	Description      string
	ExpectedQuantity *int
	ActualQuantity   *int
}

// DetectQuantityDiscrepancy applies the variance rule to one receipt line.
// Returns nil when the line is within tolerance.
func DetectQuantityDiscrepancy(productName string, sent, received int) *QueryDraft {
	diff := received - sent
	if diff < 0 {
		diff = -diff
	}
	if float64(diff) <= discrepancyThreshold*float64(sent) {
		return nil
	}

	queryType := model.QueryWeightDifference
	if received < sent {
		queryType = model.QueryQuantityShortage
	}
	priority := model.PriorityMedium
	if float64(diff) > highVarianceThreshold*float64(sent) {
		priority = model.PriorityHigh
	}

	expected, actual := sent, received
	return &QueryDraft{
		Type:     queryType,
		Priority: priority,
		Title:    fmt.Sprintf("Quantity discrepancy for %s", productName),
		Description: fmt.Sprintf("Expected %d, received %d, difference of %d units (%.1f%%)",
			sent, received, diff, 100*float64(diff)/float64(sent)),
		ExpectedQuantity: &expected,
		ActualQuantity:   &actual,
	}
}

// DetectConditionIssue fires independently of the quantity rule: damaged or
// expired goods always raise their own high-priority query.
func DetectConditionIssue(productName string, sent, received int, condition model.ItemCondition) *QueryDraft {
	var queryType model.QueryType
	actual := received
	switch condition {
	case model.ConditionDamaged:
		queryType = model.QueryDamagedGoods
	case model.ConditionExpired:
		queryType = model.QueryExpiredGoods
		actual = 0
	default:
		return nil
	}

	expected := sent
	return &QueryDraft{
		Type:             queryType,
		Priority:         model.PriorityHigh,
		Title:            fmt.Sprintf("%s reported for %s", condition, productName),
		Description:      fmt.Sprintf("Item received in %s condition (%d of %d units)", condition, received, sent),
		ExpectedQuantity: &expected,
		ActualQuantity:   &actual,
	}
}

// DetectInspectionIssues covers the quality-inspection path: a poor or
// rejected rating and an out-of-tolerance weight each raise their own query.
func DetectInspectionIssues(productName string, sent int, rating model.QualityRating, actualWeight *float64) []QueryDraft {
	var drafts []QueryDraft

	if rating == model.RatingPoor || rating == model.RatingRejected {
		priority := model.PriorityHigh
		if rating == model.RatingRejected {
			priority = model.PriorityCritical
		}
		expected := sent
		drafts = append(drafts, QueryDraft{
			Type:             model.QueryQualityIssue,
			Priority:         priority,
			Title:            fmt.Sprintf("Quality issue for %s", productName),
			Description:      fmt.Sprintf("Quality inspection rated %s", rating),
			ExpectedQuantity: &expected,
		})
	}

	if actualWeight != nil {
		diff := *actualWeight - float64(sent)
		if diff < 0 {
			diff = -diff
		}
		if diff > discrepancyThreshold*float64(sent) {
			expected := sent
			drafts = append(drafts, QueryDraft{
				Type:     model.QueryWeightDifference,
				Priority: model.PriorityMedium,
				Title:    fmt.Sprintf("Weight difference for %s", productName),
				Description: fmt.Sprintf("Recorded weight %.2f against %d sent (difference %.2f)",
					*actualWeight, sent, diff),
				ExpectedQuantity: &expected,
			})
		}
	}

	return drafts
}

type ReceiptService interface {
	ConfirmReceipt(transferID uuid.UUID, req *ConfirmReceiptRequest, user *model.User) (*model.StockTransfer, error)
	RecordInspection(itemID uuid.UUID, req *InspectionRequest, user *model.User) ([]model.StockTransferQuery, error)
}

type receiptService struct {
	transferRepo repository.TransferRepository
	queryRepo    repository.QueryRepository
	movementRepo repository.MovementRepository
	alertSvc     AlertService
	db           *gorm.DB
	wsHub        *ws.Hub
	log          *logrus.Logger
}

func NewReceiptService(
	transferRepo repository.TransferRepository,
	queryRepo repository.QueryRepository,
	movementRepo repository.MovementRepository,
	alertSvc AlertService,
	db *gorm.DB,
	hub *ws.Hub,
	log *logrus.Logger,
) ReceiptService {
	return &receiptService{
		transferRepo: transferRepo,
		queryRepo:    queryRepo,
		movementRepo: movementRepo,
		alertSvc:     alertSvc,
		db:           db,
		wsHub:        hub,
		log:          log,
	}
}

// resolvedLine is one item with its receipt outcome decided.
type resolvedLine struct {
	item      model.StockTransferItem
	received  int
	condition model.ItemCondition
	notes     string
}

func (s *receiptService) ConfirmReceipt(transferID uuid.UUID, req *ConfirmReceiptRequest, user *model.User) (*model.StockTransfer, error) {
	transfer, err := s.transferRepo.FindByID(transferID)
	if err != nil {
		return nil, ErrTransferNotFound
	}
	if !model.CanActOnTransfer(user, transfer, model.SideDestination) {
		return nil, ErrForbidden
	}
	if transfer.Status != model.TransferDelivered {
		return nil, invalidState("transfer is not in delivered status")
	}

	lines, err := s.resolveLines(transfer, req)
	if err != nil {
		return nil, err
	}

	userID := user.ID.String()
	now := time.Now()
	var createdQueries []model.StockTransferQuery

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"confirmed_date": now,
			"updated_by":     userID,
		}
		if req.OverallNotes != "" {
			updates["delivery_notes"] = appendNotes(transfer.DeliveryNotes, req.OverallNotes)
		}
		swapped, err := s.transferRepo.UpdateStatus(tx, transferID, model.TransferDelivered, model.TransferConfirmed, updates)
		if err != nil {
			return err
		}
		if !swapped {
			return invalidState("transfer is not in delivered status")
		}

		for _, line := range lines {
			itemUpdates := map[string]interface{}{
				"quantity_received": line.received,
				"condition":         line.condition,
				"updated_by":        userID,
			}
			if line.notes != "" {
				itemUpdates["item_notes"] = appendNotes(line.item.ItemNotes, line.notes)
			}
			if err := tx.Model(&model.StockTransferItem{}).
				Where("id = ?", line.item.ID).
				Updates(itemUpdates).Error; err != nil {
				return err
			}

			if line.received > 0 {
				movement := &model.StockMovement{
					BranchID:   transfer.ToBranchID,
					ProductID:  line.item.ProductID,
					TransferID: &transfer.ID,
					Type:       model.MovementIn,
					Quantity:   line.received,
					Note:       "received on " + transfer.TransferNumber,
				}
				if err := s.movementRepo.Apply(tx, movement, userID); err != nil {
					return err
				}
			}

			// Only the partial path compares quantities; accept_all matches
			// by construction and reject_all is an explicit refusal.
			if req.ConfirmationType != ConfirmPartial {
				continue
			}

			drafts := collectLineDrafts(line)
			for _, draft := range drafts {
				query, err := s.persistDraft(tx, transfer, line.item, draft, userID)
				if err != nil {
					return err
				}
				if query != nil {
					createdQueries = append(createdQueries, *query)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"transfer_number": transfer.TransferNumber,
		"type":            req.ConfirmationType,
		"queries_raised":  len(createdQueries),
	}).Info("receipt confirmed")

	s.wsHub.Publish(ws.Event{
		Type:    "transfer_update",
		Action:  "receipt_confirmed",
		Data:    map[string]interface{}{"id": transfer.ID, "transfer_number": transfer.TransferNumber},
		Message: fmt.Sprintf("%s confirmed receipt of %s", user.FullName, transfer.TransferNumber),
	})
	for i := range createdQueries {
		s.alertSvc.NotifyQueryRaised(&createdQueries[i], transfer)
	}

	return s.transferRepo.FindByID(transferID)
}

func collectLineDrafts(line resolvedLine) []QueryDraft {
	productName := line.item.ProductID.String()
	if line.item.Product != nil {
		productName = line.item.Product.Name
	}

	var drafts []QueryDraft
	if d := DetectQuantityDiscrepancy(productName, line.item.QuantitySent, line.received); d != nil {
		drafts = append(drafts, *d)
	}
	if d := DetectConditionIssue(productName, line.item.QuantitySent, line.received, line.condition); d != nil {
		drafts = append(drafts, *d)
	}
	return drafts
}

// resolveLines turns the request into one decided outcome per item. A line
// referencing an item outside the transfer fails the whole request.
func (s *receiptService) resolveLines(transfer *model.StockTransfer, req *ConfirmReceiptRequest) ([]resolvedLine, error) {
	switch req.ConfirmationType {
	case ConfirmAcceptAll:
		lines := make([]resolvedLine, 0, len(transfer.Items))
		for _, item := range transfer.Items {
			lines = append(lines, resolvedLine{
				item:      item,
				received:  item.QuantitySent,
				condition: model.ConditionGood,
			})
		}
		return lines, nil

	case ConfirmRejectAll:
		note := req.RejectionNote
		if note == "" {
			note = "Rejected at receipt"
		}
		lines := make([]resolvedLine, 0, len(transfer.Items))
		for _, item := range transfer.Items {
			lines = append(lines, resolvedLine{
				item:      item,
				received:  0,
				condition: model.ConditionGood,
				notes:     note,
			})
		}
		return lines, nil

	case ConfirmPartial:
		if len(req.Items) == 0 {
			return nil, fmt.Errorf("partial confirmation requires items")
		}
		byID := make(map[uuid.UUID]model.StockTransferItem, len(transfer.Items))
		for _, item := range transfer.Items {
			byID[item.ID] = item
		}

		seen := make(map[uuid.UUID]bool, len(req.Items))
		lines := make([]resolvedLine, 0, len(req.Items))
		for _, lineReq := range req.Items {
			item, ok := byID[lineReq.ItemID]
			if !ok {
				return nil, fmt.Errorf("item %s does not belong to this transfer", lineReq.ItemID)
			}
			if seen[lineReq.ItemID] {
				return nil, fmt.Errorf("item %s appears more than once", lineReq.ItemID)
			}
			seen[lineReq.ItemID] = true
			if lineReq.QuantityReceived == nil || *lineReq.QuantityReceived < 0 {
				return nil, fmt.Errorf("quantity_received is required and must be >= 0")
			}
			condition := lineReq.Condition
			if condition == "" {
				condition = model.ConditionGood
			}
			if !condition.Valid() {
				return nil, fmt.Errorf("invalid condition %q", lineReq.Condition)
			}
			lines = append(lines, resolvedLine{
				item:      item,
				received:  *lineReq.QuantityReceived,
				condition: condition,
				notes:     lineReq.Notes,
			})
		}
		return lines, nil
	}

	return nil, fmt.Errorf("invalid confirmation_type %q", req.ConfirmationType)
}

// persistDraft stores a draft as an open query unless the item already has
// an active one of the same type.
func (s *receiptService) persistDraft(tx *gorm.DB, transfer *model.StockTransfer, item model.StockTransferItem, draft QueryDraft, userID string) (*model.StockTransferQuery, error) {
	exists, err := s.queryRepo.ActiveExists(tx, item.ID, draft.Type)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	number, err := s.queryRepo.NextQueryNumber(tx)
	if err != nil {
		return nil, err
	}

	itemID := item.ID
	query := &model.StockTransferQuery{
		QueryNumber:         number,
		StockTransferID:     transfer.ID,
		StockTransferItemID: &itemID,
		QueryType:           draft.Type,
		Priority:            draft.Priority,
		Status:              model.QueryOpen,
		Title:               draft.Title,
		Description:         draft.Description,
		ExpectedQuantity:    draft.ExpectedQuantity,
		ActualQuantity:      draft.ActualQuantity,
	}
	query.CreatedBy = userID
	query.UpdatedBy = userID

	if err := s.queryRepo.Create(tx, query); err != nil {
		return nil, err
	}
	return query, nil
}

func (s *receiptService) RecordInspection(itemID uuid.UUID, req *InspectionRequest, user *model.User) ([]model.StockTransferQuery, error) {
	item, err := s.transferRepo.FindItem(itemID)
	if err != nil {
		return nil, fmt.Errorf("transfer item not found")
	}
	transfer, err := s.transferRepo.FindByID(item.TransferID)
	if err != nil {
		return nil, ErrTransferNotFound
	}
	if !model.CanActOnTransfer(user, transfer, model.SideDestination) {
		return nil, ErrForbidden
	}
	if transfer.Status != model.TransferDelivered && transfer.Status != model.TransferConfirmed {
		return nil, invalidState("transfer has not been delivered yet")
	}
	if !req.QualityRating.Valid() {
		return nil, fmt.Errorf("invalid quality_rating %q", req.QualityRating)
	}

	userID := user.ID.String()
	now := time.Now()
	var created []model.StockTransferQuery

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"quality_rating":   req.QualityRating,
			"inspection_notes": req.Notes,
			"inspected_at":     now,
			"updated_by":       userID,
		}
		if req.ActualWeight != nil {
			updates["actual_weight"] = *req.ActualWeight
		}
		if len(req.Photos) > 0 {
			updates["photos"] = append(item.Photos, req.Photos...)
		}
		if err := tx.Model(&model.StockTransferItem{}).
			Where("id = ?", item.ID).
			Updates(updates).Error; err != nil {
			return err
		}

		productName := item.ProductID.String()
		if item.Product != nil {
			productName = item.Product.Name
		}
		for _, draft := range DetectInspectionIssues(productName, item.QuantitySent, req.QualityRating, req.ActualWeight) {
			query, err := s.persistDraft(tx, transfer, *item, draft, userID)
			if err != nil {
				return err
			}
			if query != nil {
				created = append(created, *query)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range created {
		s.alertSvc.NotifyQueryRaised(&created[i], transfer)
	}
	return created, nil
}
