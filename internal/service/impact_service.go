package service

import (
	"errors"
	"fmt"
	"time"

	"go-branch-stock-ws/internal/model"
	"go-branch-stock-ws/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ImpactService interface {
	RecordImpact(req *RecordImpactRequest, user *model.User) (*model.StockFinancialImpact, error)
	RecordRecovery(id uuid.UUID, amount decimal.Decimal, user *model.User) (*model.StockFinancialImpact, error)
	ListImpacts(branchID *uuid.UUID) ([]model.StockFinancialImpact, error)
	Totals(branchID *uuid.UUID) (*repository.ImpactTotals, error)
}

type RecordImpactRequest struct {
	BranchID       uuid.UUID        `json:"branch_id" validate:"uuid_required"`
	ImpactableType string           `json:"impactable_type" validate:"required,oneof=query transfer"`
	ImpactableID   uuid.UUID        `json:"impactable_id" validate:"uuid_required"`
	ImpactType     model.ImpactType `json:"impact_type" validate:"required"`
	Amount         decimal.Decimal  `json:"amount"`
	IsRecoverable  bool             `json:"is_recoverable"`
	ImpactDate     *time.Time       `json:"impact_date"`
	Description    string           `json:"description"`
}

type impactService struct {
	impactRepo repository.ImpactRepository
	branchRepo repository.BranchRepository
}

func NewImpactService(impactRepo repository.ImpactRepository, branchRepo repository.BranchRepository) ImpactService {
	return &impactService{impactRepo: impactRepo, branchRepo: branchRepo}
}

func (s *impactService) RecordImpact(req *RecordImpactRequest, user *model.User) (*model.StockFinancialImpact, error) {
	if !req.ImpactType.Valid() {
		return nil, fmt.Errorf("invalid impact_type %q", req.ImpactType)
	}
	if req.Amount.IsNegative() {
		return nil, errors.New("amount cannot be negative")
	}
	if _, err := s.branchRepo.FindByID(req.BranchID); err != nil {
		return nil, errors.New("branch not found")
	}

	when := time.Now()
	if req.ImpactDate != nil {
		when = *req.ImpactDate
	}

	userID := user.ID.String()
	impact := &model.StockFinancialImpact{
		BranchID:        req.BranchID,
		ImpactableType:  req.ImpactableType,
		ImpactableID:    req.ImpactableID,
		ImpactType:      req.ImpactType,
		Amount:          req.Amount,
		IsRecoverable:   req.IsRecoverable,
		RecoveredAmount: decimal.Zero,
		ImpactDate:      when,
		Description:     req.Description,
	}
	impact.CreatedBy = userID
	impact.UpdatedBy = userID

	if err := s.impactRepo.Create(nil, impact); err != nil {
		return nil, err
	}
	return impact, nil
}

// RecordRecovery accumulates recovered money against an impact, capped at
// the impact amount.
func (s *impactService) RecordRecovery(id uuid.UUID, amount decimal.Decimal, user *model.User) (*model.StockFinancialImpact, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("recovery amount must be positive")
	}

	impact, err := s.impactRepo.FindByID(id)
	if err != nil {
		return nil, errors.New("financial impact not found")
	}
	if !impact.IsRecoverable {
		return nil, errors.New("impact is not marked recoverable")
	}

	recovered := impact.RecoveredAmount.Add(amount)
	if recovered.GreaterThan(impact.Amount) {
		recovered = impact.Amount
	}
	impact.RecoveredAmount = recovered
	impact.UpdatedBy = user.ID.String()

	if err := s.impactRepo.Update(impact); err != nil {
		return nil, err
	}
	return impact, nil
}

func (s *impactService) ListImpacts(branchID *uuid.UUID) ([]model.StockFinancialImpact, error) {
	if branchID != nil {
		return s.impactRepo.FindByBranch(*branchID)
	}
	return s.impactRepo.FindAll()
}

func (s *impactService) Totals(branchID *uuid.UUID) (*repository.ImpactTotals, error) {
	return s.impactRepo.Totals(branchID)
}
