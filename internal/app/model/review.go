package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review keeps the author's name as it was when the review was written.
type Review struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProductID string    `gorm:"type:varchar(36);not null;index" json:"productId"`
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"userId"`
	UserName  string    `gorm:"type:varchar(255)" json:"userName"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (Review) TableName() string {
	return "reviews"
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
