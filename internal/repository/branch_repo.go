package repository

import (
	"go-branch-stock-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BranchRepository interface {
	Create(branch *model.Branch) error
	FindAll() ([]model.Branch, error)
	FindByID(id uuid.UUID) (*model.Branch, error)
	FindByCode(code string) (*model.Branch, error)
	Update(branch *model.Branch) error
	GetStock(branchID, productID uuid.UUID) (*model.BranchStock, error)
	ListStock(branchID uuid.UUID) ([]model.BranchStock, error)
}

type branchRepo struct {
	db *gorm.DB
}

func NewBranchRepo(db *gorm.DB) BranchRepository {
	return &branchRepo{db}
}

func (r *branchRepo) Create(branch *model.Branch) error {
	return r.db.Create(branch).Error
}

func (r *branchRepo) FindAll() ([]model.Branch, error) {
	var branches []model.Branch
	err := r.db.Order("code ASC").Find(&branches).Error
	return branches, err
}

func (r *branchRepo) FindByID(id uuid.UUID) (*model.Branch, error) {
	var branch model.Branch
	err := r.db.First(&branch, "id = ?", id).Error
	return &branch, err
}

func (r *branchRepo) FindByCode(code string) (*model.Branch, error) {
	var branch model.Branch
	err := r.db.First(&branch, "code = ?", code).Error
	return &branch, err
}

func (r *branchRepo) Update(branch *model.Branch) error {
	return r.db.Save(branch).Error
}

func (r *branchRepo) GetStock(branchID, productID uuid.UUID) (*model.BranchStock, error) {
	var stock model.BranchStock
	err := r.db.First(&stock, "branch_id = ? AND product_id = ?", branchID, productID).Error
	return &stock, err
}

func (r *branchRepo) ListStock(branchID uuid.UUID) ([]model.BranchStock, error) {
	var stocks []model.BranchStock
	err := r.db.Preload("Product").Where("branch_id = ?", branchID).Find(&stocks).Error
	return stocks, err
}
