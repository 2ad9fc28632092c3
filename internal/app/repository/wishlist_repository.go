package repository

import (
	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/frahspaces/storefront-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WishlistRepository interface {
	Add(userID, productID string) error
	Remove(userID, productID string) error
	Exists(userID, productID string) (bool, error)
	FindProducts(userID string) ([]model.Product, error)
}

type wishlistRepository struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

// Add is a no-op when the pair is already present.
func (r *wishlistRepository) Add(userID, productID string) error {
	logger.Debug("Adding product to wishlist", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})

	item := model.WishlistItem{UserID: userID, ProductID: productID}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoNothing: true,
	}).Create(&item).Error
	if err != nil {
		logger.Error("Failed to add product to wishlist", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return err
	}
	return nil
}

func (r *wishlistRepository) Remove(userID, productID string) error {
	logger.Debug("Removing product from wishlist", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})

	err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&model.WishlistItem{}).Error
	if err != nil {
		logger.Error("Failed to remove product from wishlist", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return err
	}
	return nil
}

func (r *wishlistRepository) Exists(userID, productID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check wishlist membership", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return false, err
	}
	return count > 0, nil
}

// FindProducts returns the wishlisted products, most recently added first.
func (r *wishlistRepository) FindProducts(userID string) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Model(&model.Product{}).
		Joins("JOIN wishlist ON wishlist.product_id = products.id").
		Where("wishlist.user_id = ?", userID).
		Order("wishlist.created_at DESC").
		Find(&products).Error
	if err != nil {
		logger.Error("Failed to fetch wishlist products", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return products, nil
}
