package repository

import (
	"errors"

	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/frahspaces/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id string) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	UsernameTaken(username string) (bool, error)
	List() ([]model.User, error)
	ListByRoles(roles ...model.UserRole) ([]model.User, error)
	UpdateFields(id string, fields map[string]interface{}) error
	Delete(id string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"email": user.Email,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return nil
}

func (r *userRepository) FindByID(id string) (*model.User, error) {
	logger.Debug("Finding user by ID in database", map[string]interface{}{
		"user_id": id,
	})

	var user model.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find user by ID in database", err, map[string]interface{}{
				"user_id": id,
			})
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	logger.Debug("Finding user by email in database", map[string]interface{}{
		"email": email,
	})

	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find user by email in database", err, map[string]interface{}{
				"email": email,
			})
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UsernameTaken(username string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		logger.Error("Failed to check username in database", err, map[string]interface{}{
			"username": username,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) List() ([]model.User, error) {
	logger.Debug("Listing users in database")

	var users []model.User
	if err := r.db.Order("created_at DESC").Find(&users).Error; err != nil {
		logger.Error("Failed to list users in database", err)
		return nil, err
	}

	logger.Debug("Users listed", map[string]interface{}{
		"count": len(users),
	})
	return users, nil
}

func (r *userRepository) ListByRoles(roles ...model.UserRole) ([]model.User, error) {
	logger.Debug("Listing users by role in database", map[string]interface{}{
		"roles": roles,
	})

	var users []model.User
	if err := r.db.Where("role IN ?", roles).Order("full_name ASC").Find(&users).Error; err != nil {
		logger.Error("Failed to list users by role in database", err, map[string]interface{}{
			"roles": roles,
		})
		return nil, err
	}
	return users, nil
}

// UpdateFields writes only the given columns.
func (r *userRepository) UpdateFields(id string, fields map[string]interface{}) error {
	logger.Debug("Updating user in database", map[string]interface{}{
		"user_id": id,
		"fields":  len(fields),
	})
	if len(fields) == 0 {
		return nil
	}

	if err := r.db.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		logger.Error("Failed to update user in database", err, map[string]interface{}{
			"user_id": id,
		})
		return err
	}
	return nil
}

// Delete returns gorm.ErrRecordNotFound when no row matched.
func (r *userRepository) Delete(id string) error {
	logger.Debug("Deleting user from database", map[string]interface{}{
		"user_id": id,
	})

	result := r.db.Where("id = ?", id).Delete(&model.User{})
	if result.Error != nil {
		logger.Error("Failed to delete user from database", result.Error, map[string]interface{}{
			"user_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("User deleted from database", map[string]interface{}{
		"user_id": id,
	})
	return nil
}
