package service

import (
	"errors"

	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/frahspaces/storefront-backend/internal/app/repository"
	"github.com/frahspaces/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type WishlistService interface {
	List(userID string) ([]model.Product, error)
	Add(userID, productID string) error
	Remove(userID, productID string) error
	Contains(userID, productID string) (bool, error)
}

type wishlistService struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
}

func NewWishlistService(wishlistRepo repository.WishlistRepository, productRepo repository.ProductRepository) WishlistService {
	return &wishlistService{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
	}
}

func (s *wishlistService) List(userID string) ([]model.Product, error) {
	products, err := s.wishlistRepo.FindProducts(userID)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

// Add is idempotent: adding a product twice keeps a single entry.
func (s *wishlistService) Add(userID, productID string) error {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	if err := s.wishlistRepo.Add(userID, productID); err != nil {
		return err
	}

	logger.Info("Product added to wishlist", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})
	return nil
}

// Remove succeeds even when the product was not on the list.
func (s *wishlistService) Remove(userID, productID string) error {
	return s.wishlistRepo.Remove(userID, productID)
}

func (s *wishlistService) Contains(userID, productID string) (bool, error) {
	return s.wishlistRepo.Exists(userID, productID)
}
