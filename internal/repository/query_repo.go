package repository

import (
	"fmt"
	"time"

	"go-branch-stock-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QueryFilter struct {
	TransferID *uuid.UUID
	BranchID   *uuid.UUID // destination branch of the underlying transfer
	Status     model.QueryStatus
	Priority   model.QueryPriority
	AssignedTo *uuid.UUID
	Limit      int
}

type QueryRepository interface {
	Create(tx *gorm.DB, query *model.StockTransferQuery) error
	FindByID(id uuid.UUID) (*model.StockTransferQuery, error)
	FindAll(filter QueryFilter) ([]model.StockTransferQuery, error)
	Update(query *model.StockTransferQuery) error
	// ActiveExists reports whether the item already has an open or
	// in-progress query of the given type (one active resolution path).
	ActiveExists(tx *gorm.DB, itemID uuid.UUID, queryType model.QueryType) (bool, error)
	AddResponse(response *model.QueryResponse) error
	FindResponses(queryID uuid.UUID) ([]model.QueryResponse, error)
	NextQueryNumber(tx *gorm.DB) (string, error)
}

type queryRepo struct {
	db *gorm.DB
}

func NewQueryRepo(db *gorm.DB) QueryRepository {
	return &queryRepo{db}
}

func (r *queryRepo) Create(tx *gorm.DB, query *model.StockTransferQuery) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(query).Error
}

func (r *queryRepo) FindByID(id uuid.UUID) (*model.StockTransferQuery, error) {
	var query model.StockTransferQuery
	err := r.db.
		Preload("Transfer").
		Preload("Transfer.ToBranch").
		Preload("Item").
		Preload("Item.Product").
		Preload("AssignedTo").
		Preload("Responses", func(db *gorm.DB) *gorm.DB {
			return db.Order("query_responses.created_at ASC")
		}).
		Preload("Responses.User").
		First(&query, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &query, nil
}

func (r *queryRepo) FindAll(filter QueryFilter) ([]model.StockTransferQuery, error) {
	q := r.db.Preload("Transfer").Preload("Item").Order("created_at DESC")

	if filter.TransferID != nil {
		q = q.Where("stock_transfer_id = ?", *filter.TransferID)
	}
	if filter.BranchID != nil {
		q = q.Joins("JOIN stock_transfers ON stock_transfers.id = stock_transfer_queries.stock_transfer_id").
			Where("stock_transfers.to_branch_id = ?", *filter.BranchID)
	}
	if filter.Status != "" {
		q = q.Where("stock_transfer_queries.status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("stock_transfer_queries.priority = ?", filter.Priority)
	}
	if filter.AssignedTo != nil {
		q = q.Where("assigned_to_id = ?", *filter.AssignedTo)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var queries []model.StockTransferQuery
	err := q.Find(&queries).Error
	return queries, err
}

func (r *queryRepo) Update(query *model.StockTransferQuery) error {
	return r.db.Save(query).Error
}

func (r *queryRepo) ActiveExists(tx *gorm.DB, itemID uuid.UUID, queryType model.QueryType) (bool, error) {
	if tx == nil {
		tx = r.db
	}
	var count int64
	err := tx.Model(&model.StockTransferQuery{}).
		Where("stock_transfer_item_id = ? AND query_type = ? AND status IN ?",
			itemID, queryType, []model.QueryStatus{model.QueryOpen, model.QueryInProgress}).
		Count(&count).Error
	return count > 0, err
}

func (r *queryRepo) AddResponse(response *model.QueryResponse) error {
	return r.db.Create(response).Error
}

func (r *queryRepo) FindResponses(queryID uuid.UUID) ([]model.QueryResponse, error) {
	var responses []model.QueryResponse
	err := r.db.Preload("User").Where("query_id = ?", queryID).Order("created_at ASC").Find(&responses).Error
	return responses, err
}

func (r *queryRepo) NextQueryNumber(tx *gorm.DB) (string, error) {
	if tx == nil {
		tx = r.db
	}
	today := time.Now().Format("20060102")
	var count int64
	if err := tx.Model(&model.StockTransferQuery{}).
		Where("query_number LIKE ?", "QRY-"+today+"-%").
		Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("QRY-%s-%04d", today, count+1), nil
}
