package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product references its category by name, not by id.
type Product struct {
	ID           string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name         string          `gorm:"type:varchar(255);not null;index" json:"name"`
	CategoryName string          `gorm:"type:varchar(100);index" json:"category_name"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Unit         string          `gorm:"type:varchar(100)" json:"unit"`
	Description  string          `gorm:"type:text" json:"description"`
	Image        string          `gorm:"type:text" json:"image"`
	InStock      bool            `gorm:"column:in_stock;not null" json:"inStock"`
	Featured     bool            `gorm:"not null" json:"featured"`
	CreatedAt    time.Time       `json:"-"`
	UpdatedAt    time.Time       `json:"-"`
}

func (Product) TableName() string {
	return "products"
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Icon string `gorm:"type:varchar(100)" json:"icon"`
}

func (Category) TableName() string {
	return "categories"
}
