package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/frahspaces/storefront-backend/internal/app/repository"
	apperrors "github.com/frahspaces/storefront-backend/internal/errors"
	"github.com/frahspaces/storefront-backend/pkg/util"
	"gorm.io/gorm"
)

// NewAccount describes a user about to be created by registration, checkout
// or an administrator.
type NewAccount struct {
	Username *string
	Email    string
	Password string
	FullName string
	Address  *string
	Role     model.UserRole
}

// createAccount validates, hashes and inserts a new user through users,
// which may be bound to a transaction.
func createAccount(users repository.UserRepository, in NewAccount) (*model.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if in.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	role := in.Role
	if role == "" {
		role = model.RoleUser
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	if _, err := users.FindByEmail(email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	username, err := chooseUsername(users, in.Username, email)
	if err != nil {
		return nil, err
	}

	hash, err := util.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(in.FullName),
		Address:      nonEmpty(in.Address),
		Role:         role,
	}
	if err := users.Create(user); err != nil {
		if apperrors.IsDuplicateKey(err) {
			if strings.Contains(strings.ToLower(err.Error()), "username") {
				return nil, ErrUsernameAlreadyExists
			}
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}
	return user, nil
}

// chooseUsername keeps an explicit username (which must be free) and
// otherwise derives one from the email's local part when that is free.
func chooseUsername(users repository.UserRepository, requested *string, email string) (*string, error) {
	if requested != nil {
		name := strings.TrimSpace(*requested)
		if name != "" {
			taken, err := users.UsernameTaken(name)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrUsernameAlreadyExists
			}
			return &name, nil
		}
	}

	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return nil, nil
	}
	taken, err := users.UsernameTaken(local)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, nil
	}
	return &local, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
