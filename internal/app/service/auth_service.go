package service

import (
	"errors"
	"strings"
	"time"

	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/frahspaces/storefront-backend/internal/app/repository"
	"github.com/frahspaces/storefront-backend/pkg/logger"
	"github.com/frahspaces/storefront-backend/pkg/optional"
	"github.com/frahspaces/storefront-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidRole           = errors.New("invalid role")
	ErrInvalidInput          = errors.New("invalid input")
)

// Identity is the verified caller of a request.
type Identity struct {
	UserID string
	Role   model.UserRole
}

// ProfileUpdate is a partial update of the caller's own profile. A null
// address or profile_image clears it; a null full_name is ignored.
type ProfileUpdate struct {
	FullName     optional.Value[string] `json:"full_name"`
	Address      optional.Value[string] `json:"address"`
	ProfileImage optional.Value[string] `json:"profile_image"`
}

type AuthService interface {
	Register(in NewAccount) (*model.User, error)
	Login(email, password string) (string, *model.User, error)
	Verify(token string) (*Identity, error)
	GetUserByID(id string) (*model.User, error)
	UpdateProfile(userID string, update ProfileUpdate) (*model.User, error)
}

type authService struct {
	userRepo  repository.UserRepository
	jwtSecret string
	expiry    time.Duration
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string, expiry time.Duration) AuthService {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		expiry:    expiry,
	}
}

// Register always creates a customer account, whatever role is requested.
func (s *authService) Register(in NewAccount) (*model.User, error) {
	logger.Info("Attempting user registration", map[string]interface{}{
		"email": in.Email,
	})

	in.Role = model.RoleUser
	user, err := createAccount(s.userRepo, in)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) || errors.Is(err, ErrUsernameAlreadyExists) {
			logger.Warn("Registration rejected: duplicate account", map[string]interface{}{
				"email": in.Email,
				"error": err.Error(),
			})
		} else if !errors.Is(err, ErrInvalidInput) {
			logger.Error("Failed to register user", err, map[string]interface{}{
				"email": in.Email,
			})
		}
		return nil, err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, nil
}

// Login fails with ErrInvalidCredentials for both an unknown email and a
// wrong password.
func (s *authService) Login(email, password string) (string, *model.User, error) {
	email = normalizeEmail(email)
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed", map[string]interface{}{
				"email": email,
			})
			return "", nil, ErrInvalidCredentials
		}
		logger.Error("Failed to find user", err, map[string]interface{}{
			"email": email,
		})
		return "", nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed", map[string]interface{}{
			"email": email,
		})
		return "", nil, ErrInvalidCredentials
	}

	token, err := util.GenerateToken(user.ID, string(user.Role), s.jwtSecret, s.expiry)
	if err != nil {
		logger.Error("Failed to generate token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return "", nil, err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return token, user, nil
}

func (s *authService) Verify(token string) (*Identity, error) {
	claims, err := util.ValidateToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return &Identity{UserID: claims.UserID, Role: model.UserRole(claims.Role)}, nil
}

func (s *authService) GetUserByID(id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) UpdateProfile(userID string, update ProfileUpdate) (*model.User, error) {
	if _, err := s.GetUserByID(userID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if update.FullName.HasValue() {
		fields["full_name"] = strings.TrimSpace(update.FullName.V)
	}
	if update.Address.Set {
		fields["address"] = update.Address.Ptr()
	}
	if update.ProfileImage.Set {
		fields["profile_image"] = update.ProfileImage.Ptr()
	}

	if err := s.userRepo.UpdateFields(userID, fields); err != nil {
		logger.Error("Failed to update profile", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("Profile updated", map[string]interface{}{
		"user_id": userID,
		"fields":  len(fields),
	})
	return s.GetUserByID(userID)
}
