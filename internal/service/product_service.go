package service

import (
	"errors"
	"fmt"

	"go-branch-stock-ws/internal/model"
	"go-branch-stock-ws/internal/repository"
	"go-branch-stock-ws/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductService interface {
	CreateProduct(req *CreateProductRequest, user *model.User) (*model.Product, error)
	GetAllProducts() ([]model.Product, error)
	GetProductByID(id uuid.UUID) (*model.Product, error)
	UpdateProduct(id uuid.UUID, req *UpdateProductRequest, user *model.User) (*model.Product, error)
}

type CreateProductRequest struct {
	SKU       string          `json:"sku" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	Unit      string          `json:"unit" validate:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type UpdateProductRequest struct {
	Name      *string          `json:"name"`
	Unit      *string          `json:"unit"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) CreateProduct(req *CreateProductRequest, user *model.User) (*model.Product, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return nil, fmt.Errorf("Validation failed: Field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}
	if req.UnitPrice.IsNegative() {
		return nil, errors.New("unit price cannot be negative")
	}

	if _, err := s.productRepo.FindBySKU(req.SKU); err == nil {
		return nil, errors.New("SKU already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	product := &model.Product{
		SKU:       req.SKU,
		Name:      req.Name,
		Unit:      req.Unit,
		UnitPrice: req.UnitPrice,
	}
	product.CreatedBy = user.ID.String()
	product.UpdatedBy = user.ID.String()

	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) GetAllProducts() ([]model.Product, error) {
	return s.productRepo.FindAll()
}

func (s *productService) GetProductByID(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, errors.New("product not found")
	}
	return product, nil
}

func (s *productService) UpdateProduct(id uuid.UUID, req *UpdateProductRequest, user *model.User) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, errors.New("product not found")
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Unit != nil {
		product.Unit = *req.Unit
	}
	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return nil, errors.New("unit price cannot be negative")
		}
		product.UnitPrice = *req.UnitPrice
	}
	product.UpdatedBy = user.ID.String()

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}
