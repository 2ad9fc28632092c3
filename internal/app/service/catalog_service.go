package service

import (
	"errors"
	"strings"

	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/frahspaces/storefront-backend/internal/app/repository"
	apperrors "github.com/frahspaces/storefront-backend/internal/errors"
	"github.com/frahspaces/storefront-backend/pkg/logger"
	"github.com/frahspaces/storefront-backend/pkg/optional"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
	ErrInvalidPrice     = errors.New("price must not be negative")
)

// ProductInput is a new catalog entry.
type ProductInput struct {
	Name         string          `json:"name" binding:"required"`
	CategoryName string          `json:"category_name"`
	Price        decimal.Decimal `json:"price"`
	Unit         string          `json:"unit"`
	Description  string          `json:"description"`
	Image        string          `json:"image"`
	InStock      optional.Bool   `json:"inStock"`
	Featured     optional.Bool   `json:"featured"`
}

// ProductUpdate changes only the fields present in the payload. Every
// product column is required, so an explicit null leaves it unchanged.
type ProductUpdate struct {
	Name         optional.Value[string]          `json:"name"`
	CategoryName optional.Value[string]          `json:"category_name"`
	Price        optional.Value[decimal.Decimal] `json:"price"`
	Unit         optional.Value[string]          `json:"unit"`
	Description  optional.Value[string]          `json:"description"`
	Image        optional.Value[string]          `json:"image"`
	InStock      optional.Value[optional.Bool]   `json:"inStock"`
	Featured     optional.Value[optional.Bool]   `json:"featured"`
}

type CategoryInput struct {
	Name string `json:"name" binding:"required"`
	Icon string `json:"icon"`
}

type CategoryUpdate struct {
	Name optional.Value[string] `json:"name"`
	Icon optional.Value[string] `json:"icon"`
}

type CatalogService interface {
	ListProducts() ([]model.Product, error)
	GetProduct(id string) (*model.Product, error)
	Search(query string) ([]model.Product, error)
	CreateProduct(in ProductInput) (*model.Product, error)
	UpdateProduct(id string, update ProductUpdate) error
	DeleteProduct(id string) error

	ListCategories() ([]model.Category, error)
	CreateCategory(in CategoryInput) (*model.Category, error)
	UpdateCategory(id uint, update CategoryUpdate) error
	DeleteCategory(id uint) error
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

func NewCatalogService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

func (s *catalogService) ListProducts() ([]model.Product, error) {
	return s.productRepo.FindAll()
}

func (s *catalogService) GetProduct(id string) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// Search returns at most repository.SearchLimit products. A blank query
// matches nothing.
func (s *catalogService) Search(query string) ([]model.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Product{}, nil
	}
	return s.productRepo.Search(query, repository.SearchLimit)
}

func (s *catalogService) CreateProduct(in ProductInput) (*model.Product, error) {
	if in.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}

	product := &model.Product{
		Name:         strings.TrimSpace(in.Name),
		CategoryName: strings.TrimSpace(in.CategoryName),
		Price:        in.Price,
		Unit:         in.Unit,
		Description:  in.Description,
		Image:        in.Image,
		InStock:      bool(in.InStock),
		Featured:     bool(in.Featured),
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return product, nil
}

func (s *catalogService) UpdateProduct(id string, update ProductUpdate) error {
	if _, err := s.GetProduct(id); err != nil {
		return err
	}

	fields := map[string]interface{}{}
	if update.Name.HasValue() {
		fields["name"] = strings.TrimSpace(update.Name.V)
	}
	if update.CategoryName.HasValue() {
		fields["category_name"] = strings.TrimSpace(update.CategoryName.V)
	}
	if update.Price.HasValue() {
		if update.Price.V.IsNegative() {
			return ErrInvalidPrice
		}
		fields["price"] = update.Price.V
	}
	if update.Unit.HasValue() {
		fields["unit"] = update.Unit.V
	}
	if update.Description.HasValue() {
		fields["description"] = update.Description.V
	}
	if update.Image.HasValue() {
		fields["image"] = update.Image.V
	}
	if update.InStock.HasValue() {
		fields["in_stock"] = bool(update.InStock.V)
	}
	if update.Featured.HasValue() {
		fields["featured"] = bool(update.Featured.V)
	}

	if err := s.productRepo.UpdateFields(id, fields); err != nil {
		return err
	}

	logger.Info("Product updated", map[string]interface{}{
		"product_id": id,
		"fields":     len(fields),
	})
	return nil
}

func (s *catalogService) DeleteProduct(id string) error {
	if err := s.productRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	return nil
}

func (s *catalogService) ListCategories() ([]model.Category, error) {
	return s.categoryRepo.FindAll()
}

func (s *catalogService) CreateCategory(in CategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidInput
	}

	category := &model.Category{Name: name, Icon: in.Icon}
	if err := s.categoryRepo.Create(category); err != nil {
		if apperrors.IsDuplicateKey(err) {
			return nil, ErrCategoryExists
		}
		return nil, err
	}

	logger.Info("Category created", map[string]interface{}{
		"category_id": category.ID,
		"name":        category.Name,
	})
	return category, nil
}

func (s *catalogService) UpdateCategory(id uint, update CategoryUpdate) error {
	if _, err := s.categoryRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	fields := map[string]interface{}{}
	if update.Name.HasValue() {
		name := strings.TrimSpace(update.Name.V)
		if name == "" {
			return ErrInvalidInput
		}
		fields["name"] = name
	}
	if update.Icon.HasValue() {
		fields["icon"] = update.Icon.V
	}

	if err := s.categoryRepo.UpdateFields(id, fields); err != nil {
		if apperrors.IsDuplicateKey(err) {
			return ErrCategoryExists
		}
		return err
	}
	return nil
}

// DeleteCategory does not touch products filed under the category name.
func (s *catalogService) DeleteCategory(id uint) error {
	if err := s.categoryRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	logger.Info("Category deleted", map[string]interface{}{
		"category_id": id,
	})
	return nil
}
