package service

import (
	"time"

	"go-branch-stock-ws/internal/model"
	"go-branch-stock-ws/internal/repository"

	"github.com/google/uuid"
)

type DashboardService interface {
	GetBranchDashboard(branchID uuid.UUID, days int) (*BranchDashboard, error)
	GetAdminDashboard(days int) (*repository.BranchStats, error)
}

// BranchDashboard bundles the stats with the lists a branch manager acts on.
type BranchDashboard struct {
	Stats           repository.BranchStats     `json:"stats"`
	RecentTransfers []model.StockTransfer      `json:"recent_transfers"`
	OpenQueries     []model.StockTransferQuery `json:"open_queries"`
	Alerts          []model.StockAlert         `json:"alerts"`
}

type dashboardService struct {
	statsRepo    repository.StatsRepository
	transferRepo repository.TransferRepository
	queryRepo    repository.QueryRepository
	alertSvc     AlertService
}

func NewDashboardService(
	statsRepo repository.StatsRepository,
	transferRepo repository.TransferRepository,
	queryRepo repository.QueryRepository,
	alertSvc AlertService,
) DashboardService {
	return &dashboardService{
		statsRepo:    statsRepo,
		transferRepo: transferRepo,
		queryRepo:    queryRepo,
		alertSvc:     alertSvc,
	}
}

func (s *dashboardService) GetBranchDashboard(branchID uuid.UUID, days int) (*BranchDashboard, error) {
	// Loading the dashboard doubles as the overdue check: there is no
	// background scheduler.
	if _, err := s.alertSvc.SweepOverdueTransfers(); err != nil {
		return nil, err
	}

	filter := statsWindow(&branchID, days)
	stats, err := s.statsRepo.GetStats(filter)
	if err != nil {
		return nil, err
	}

	transfers, err := s.transferRepo.FindAll(repository.TransferFilter{BranchID: &branchID, Limit: 10})
	if err != nil {
		return nil, err
	}

	queries, err := s.queryRepo.FindAll(repository.QueryFilter{
		BranchID: &branchID,
		Status:   model.QueryOpen,
		Limit:    10,
	})
	if err != nil {
		return nil, err
	}

	alerts, err := s.alertSvc.ListAlerts(branchID, true)
	if err != nil {
		return nil, err
	}

	return &BranchDashboard{
		Stats:           *stats,
		RecentTransfers: transfers,
		OpenQueries:     queries,
		Alerts:          alerts,
	}, nil
}

func (s *dashboardService) GetAdminDashboard(days int) (*repository.BranchStats, error) {
	if _, err := s.alertSvc.SweepOverdueTransfers(); err != nil {
		return nil, err
	}
	return s.statsRepo.GetStats(statsWindow(nil, days))
}

func statsWindow(branchID *uuid.UUID, days int) repository.StatsFilter {
	if days <= 0 {
		days = 30
	}
	now := time.Now()
	return repository.StatsFilter{
		BranchID: branchID,
		From:     now.AddDate(0, 0, -days),
		To:       now,
	}
}
