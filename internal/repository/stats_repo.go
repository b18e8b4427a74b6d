package repository

import (
	"time"

	"go-branch-stock-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatsFilter is the single reporting input: a branch scope (nil for all
// branches) and a date range. Every dashboard number is derived from it, so
// the aggregate queries live in one place instead of being rebuilt per
// handler.
type StatsFilter struct {
	BranchID *uuid.UUID
	From     time.Time
	To       time.Time
}

type TransferStats struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	Dispatched int64 `json:"dispatched"`
	Delivered  int64 `json:"delivered"`
	Confirmed  int64 `json:"confirmed"`
	Cancelled  int64 `json:"cancelled"`
	Incoming   int64 `json:"incoming"`
	Outgoing   int64 `json:"outgoing"`
}

type QueryStats struct {
	Open       int64 `json:"open"`
	InProgress int64 `json:"in_progress"`
	Escalated  int64 `json:"escalated"`
	Resolved   int64 `json:"resolved"`
	Rejected   int64 `json:"rejected"`
	// Active (open/in_progress) counts by priority
	Critical int64 `json:"critical"`
	High     int64 `json:"high"`
	Medium   int64 `json:"medium"`
	Low      int64 `json:"low"`
}

type BranchStats struct {
	Transfers        TransferStats `json:"transfers"`
	Queries          QueryStats    `json:"queries"`
	UnresolvedAlerts int64         `json:"unresolved_alerts"`
	Impact           ImpactTotals  `json:"impact"`
}

type StatsRepository interface {
	GetStats(filter StatsFilter) (*BranchStats, error)
}

type statsRepo struct {
	db *gorm.DB
}

func NewStatsRepo(db *gorm.DB) StatsRepository {
	return &statsRepo{db}
}

func (r *statsRepo) GetStats(filter StatsFilter) (*BranchStats, error) {
	stats := &BranchStats{}

	if err := r.transferStats(filter, &stats.Transfers); err != nil {
		return nil, err
	}
	if err := r.queryStats(filter, &stats.Queries); err != nil {
		return nil, err
	}

	alertQ := r.db.Model(&model.StockAlert{}).Where("is_resolved = ?", false)
	if filter.BranchID != nil {
		alertQ = alertQ.Where("branch_id = ?", *filter.BranchID)
	}
	if err := alertQ.Count(&stats.UnresolvedAlerts).Error; err != nil {
		return nil, err
	}

	totals, err := NewImpactRepo(r.db).Totals(filter.BranchID)
	if err != nil {
		return nil, err
	}
	stats.Impact = *totals

	return stats, nil
}

func (r *statsRepo) transferScope(filter StatsFilter) *gorm.DB {
	q := r.db.Model(&model.StockTransfer{}).
		Where("stock_transfers.created_at BETWEEN ? AND ?", filter.From, filter.To)
	if filter.BranchID != nil {
		q = q.Where("from_branch_id = ? OR to_branch_id = ?", *filter.BranchID, *filter.BranchID)
	}
	return q
}

func (r *statsRepo) transferStats(filter StatsFilter, out *TransferStats) error {
	rows, err := r.transferScope(filter).
		Select("status, COUNT(*) as count").
		Group("status").
		Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var status model.TransferStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return err
		}
		out.Total += count
		switch status {
		case model.TransferPending:
			out.Pending = count
		case model.TransferDispatched:
			out.Dispatched = count
		case model.TransferDelivered:
			out.Delivered = count
		case model.TransferConfirmed:
			out.Confirmed = count
		case model.TransferCancelled:
			out.Cancelled = count
		}
	}

	if filter.BranchID != nil {
		if err := r.db.Model(&model.StockTransfer{}).
			Where("to_branch_id = ? AND created_at BETWEEN ? AND ?", *filter.BranchID, filter.From, filter.To).
			Count(&out.Incoming).Error; err != nil {
			return err
		}
		if err := r.db.Model(&model.StockTransfer{}).
			Where("from_branch_id = ? AND created_at BETWEEN ? AND ?", *filter.BranchID, filter.From, filter.To).
			Count(&out.Outgoing).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *statsRepo) queryScope(filter StatsFilter) *gorm.DB {
	q := r.db.Model(&model.StockTransferQuery{}).
		Where("stock_transfer_queries.created_at BETWEEN ? AND ?", filter.From, filter.To)
	if filter.BranchID != nil {
		q = q.Joins("JOIN stock_transfers ON stock_transfers.id = stock_transfer_queries.stock_transfer_id").
			Where("stock_transfers.to_branch_id = ?", *filter.BranchID)
	}
	return q
}

func (r *statsRepo) queryStats(filter StatsFilter, out *QueryStats) error {
	rows, err := r.queryScope(filter).
		Select("stock_transfer_queries.status, COUNT(*) as count").
		Group("stock_transfer_queries.status").
		Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var status model.QueryStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return err
		}
		switch status {
		case model.QueryOpen:
			out.Open = count
		case model.QueryInProgress:
			out.InProgress = count
		case model.QueryEscalated:
			out.Escalated = count
		case model.QueryResolved:
			out.Resolved = count
		case model.QueryRejected:
			out.Rejected = count
		}
	}

	prows, err := r.queryScope(filter).
		Where("stock_transfer_queries.status IN ?", []model.QueryStatus{model.QueryOpen, model.QueryInProgress}).
		Select("stock_transfer_queries.priority, COUNT(*) as count").
		Group("stock_transfer_queries.priority").
		Rows()
	if err != nil {
		return err
	}
	defer prows.Close()

	for prows.Next() {
		var priority model.QueryPriority
		var count int64
		if err := prows.Scan(&priority, &count); err != nil {
			return err
		}
		switch priority {
		case model.PriorityCritical:
			out.Critical = count
		case model.PriorityHigh:
			out.High = count
		case model.PriorityMedium:
			out.Medium = count
		case model.PriorityLow:
			out.Low = count
		}
	}
	return nil
}
