package repository

import (
	"errors"
	"strings"

	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/frahspaces/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

// SearchLimit caps the number of search results.
const SearchLimit = 10

type ProductRepository interface {
	FindAll() ([]model.Product, error)
	FindByID(id string) (*model.Product, error)
	Search(query string, limit int) ([]model.Product, error)
	Create(product *model.Product) error
	UpdateFields(id string, fields map[string]interface{}) error
	Delete(id string) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) FindAll() ([]model.Product, error) {
	logger.Debug("Fetching all products from database")

	var products []model.Product
	if err := r.db.Order("created_at ASC").Order("name ASC").Find(&products).Error; err != nil {
		logger.Error("Failed to fetch products from database", err)
		return nil, err
	}

	logger.Debug("Products fetched from database", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (r *productRepository) FindByID(id string) (*model.Product, error) {
	logger.Debug("Finding product by ID in database", map[string]interface{}{
		"product_id": id,
	})

	var product model.Product
	if err := r.db.Where("id = ?", id).First(&product).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find product by ID in database", err, map[string]interface{}{
				"product_id": id,
			})
		}
		return nil, err
	}
	return &product, nil
}

// Search matches query as a case-insensitive substring of the name or the
// description. Wildcards in query are matched literally.
func (r *productRepository) Search(query string, limit int) ([]model.Product, error) {
	logger.Debug("Searching products in database", map[string]interface{}{
		"query": query,
		"limit": limit,
	})

	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	var products []model.Product
	err := r.db.
		Where("LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!'", pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		logger.Error("Failed to search products in database", err, map[string]interface{}{
			"query": query,
		})
		return nil, err
	}

	logger.Debug("Product search completed", map[string]interface{}{
		"query": query,
		"count": len(products),
	})
	return products, nil
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name":     product.Name,
		"category": product.CategoryName,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
	})
	return nil
}

func (r *productRepository) UpdateFields(id string, fields map[string]interface{}) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": id,
		"fields":     len(fields),
	})
	if len(fields) == 0 {
		return nil
	}

	if err := r.db.Model(&model.Product{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}
	return nil
}

func (r *productRepository) Delete(id string) error {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": id,
	})

	result := r.db.Where("id = ?", id).Delete(&model.Product{})
	if result.Error != nil {
		logger.Error("Failed to delete product from database", result.Error, map[string]interface{}{
			"product_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
