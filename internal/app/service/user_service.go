package service

import (
	"errors"
	"strings"

	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/frahspaces/storefront-backend/internal/app/repository"
	"github.com/frahspaces/storefront-backend/pkg/logger"
	"github.com/frahspaces/storefront-backend/pkg/optional"
	"gorm.io/gorm"
)

// UserUpdate is an administrator's partial update of an account.
type UserUpdate struct {
	Role     optional.Value[model.UserRole] `json:"role"`
	FullName optional.Value[string]         `json:"full_name"`
	Address  optional.Value[string]         `json:"address"`
}

// UserService is the back office view of accounts.
type UserService interface {
	ListUsers() ([]model.User, error)
	ListStaff() ([]model.User, error)
	CreateUser(in NewAccount) (*model.User, error)
	UpdateUser(id string, update UserUpdate) error
	DeleteUser(id string) error
	CurrentRole(id string) (model.UserRole, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) ListUsers() ([]model.User, error) {
	return s.userRepo.List()
}

// ListStaff returns the accounts an order can be assigned to.
func (s *userService) ListStaff() ([]model.User, error) {
	return s.userRepo.ListByRoles(model.RoleStaff, model.RoleAdmin)
}

func (s *userService) CreateUser(in NewAccount) (*model.User, error) {
	user, err := createAccount(s.userRepo, in)
	if err != nil {
		return nil, err
	}

	logger.Info("User created by administrator", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, nil
}

func (s *userService) UpdateUser(id string, update UserUpdate) error {
	if _, err := s.userRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	fields := map[string]interface{}{}
	if update.Role.HasValue() {
		if !update.Role.V.Valid() {
			return ErrInvalidRole
		}
		fields["role"] = update.Role.V
	}
	if update.FullName.HasValue() {
		fields["full_name"] = strings.TrimSpace(update.FullName.V)
	}
	if update.Address.Set {
		fields["address"] = update.Address.Ptr()
	}

	if err := s.userRepo.UpdateFields(id, fields); err != nil {
		return err
	}

	logger.Info("User updated by administrator", map[string]interface{}{
		"user_id": id,
		"fields":  len(fields),
	})
	return nil
}

func (s *userService) DeleteUser(id string) error {
	if err := s.userRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	logger.Info("User deleted by administrator", map[string]interface{}{
		"user_id": id,
	})
	return nil
}

// CurrentRole reads the stored role, so a demotion takes effect on the
// next request even while older tokens are still valid.
func (s *userService) CurrentRole(id string) (model.UserRole, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	return user.Role, nil
}
