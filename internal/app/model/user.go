package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleStaff UserRole = "staff"
	RoleAdmin UserRole = "admin"
)

// Valid reports whether r is one of the three known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// User is a customer or back office account. Rows are hard deleted.
type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username     *string   `gorm:"type:varchar(100);uniqueIndex" json:"username"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password;not null" json:"-"`
	FullName     string    `gorm:"type:varchar(255)" json:"full_name"`
	Address      *string   `gorm:"type:text" json:"address"`
	Role         UserRole  `gorm:"type:varchar(20);not null;default:'user';index" json:"role"`
	ProfileImage *string   `json:"profile_image"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// DisplayName is the name copied onto reviews.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return "Anonymous"
}
