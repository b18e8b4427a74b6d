package service

import (
	"errors"
	"fmt"

	"go-branch-stock-ws/internal/model"
	"go-branch-stock-ws/internal/repository"
	"go-branch-stock-ws/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BranchService interface {
	CreateBranch(req *CreateBranchRequest, user *model.User) (*model.Branch, error)
	GetAllBranches() ([]model.Branch, error)
	GetBranchByID(id uuid.UUID) (*model.Branch, error)
	UpdateBranch(id uuid.UUID, req *UpdateBranchRequest, user *model.User) (*model.Branch, error)
	ListStock(branchID uuid.UUID) ([]model.BranchStock, error)
	ListMovements(branchID uuid.UUID, limit int) ([]model.StockMovement, error)
}

type CreateBranchRequest struct {
	Code    string `json:"code" validate:"required,min=2,max=16"`
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type UpdateBranchRequest struct {
	Name     *string `json:"name"`
	Address  *string `json:"address"`
	Phone    *string `json:"phone"`
	IsActive *bool   `json:"is_active"`
}

type branchService struct {
	branchRepo   repository.BranchRepository
	movementRepo repository.MovementRepository
}

func NewBranchService(branchRepo repository.BranchRepository, movementRepo repository.MovementRepository) BranchService {
	return &branchService{branchRepo: branchRepo, movementRepo: movementRepo}
}

func (s *branchService) CreateBranch(req *CreateBranchRequest, user *model.User) (*model.Branch, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return nil, fmt.Errorf("Validation failed: Field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}

	if _, err := s.branchRepo.FindByCode(req.Code); err == nil {
		return nil, errors.New("branch code already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	branch := &model.Branch{
		Code:     req.Code,
		Name:     req.Name,
		Address:  req.Address,
		Phone:    req.Phone,
		IsActive: true,
	}
	branch.CreatedBy = user.ID.String()
	branch.UpdatedBy = user.ID.String()

	if err := s.branchRepo.Create(branch); err != nil {
		return nil, err
	}
	return branch, nil
}

func (s *branchService) GetAllBranches() ([]model.Branch, error) {
	return s.branchRepo.FindAll()
}

func (s *branchService) GetBranchByID(id uuid.UUID) (*model.Branch, error) {
	branch, err := s.branchRepo.FindByID(id)
	if err != nil {
		return nil, errors.New("branch not found")
	}
	return branch, nil
}

func (s *branchService) UpdateBranch(id uuid.UUID, req *UpdateBranchRequest, user *model.User) (*model.Branch, error) {
	branch, err := s.branchRepo.FindByID(id)
	if err != nil {
		return nil, errors.New("branch not found")
	}

	if req.Name != nil {
		branch.Name = *req.Name
	}
	if req.Address != nil {
		branch.Address = *req.Address
	}
	if req.Phone != nil {
		branch.Phone = *req.Phone
	}
	if req.IsActive != nil {
		branch.IsActive = *req.IsActive
	}
	branch.UpdatedBy = user.ID.String()

	if err := s.branchRepo.Update(branch); err != nil {
		return nil, err
	}
	return branch, nil
}

func (s *branchService) ListStock(branchID uuid.UUID) ([]model.BranchStock, error) {
	if _, err := s.branchRepo.FindByID(branchID); err != nil {
		return nil, errors.New("branch not found")
	}
	return s.branchRepo.ListStock(branchID)
}

func (s *branchService) ListMovements(branchID uuid.UUID, limit int) ([]model.StockMovement, error) {
	if _, err := s.branchRepo.FindByID(branchID); err != nil {
		return nil, errors.New("branch not found")
	}
	return s.movementRepo.FindByBranch(branchID, limit)
}
