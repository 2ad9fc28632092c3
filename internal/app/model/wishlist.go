package model

import "time"

type WishlistItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_wishlist_user_product" json:"userId"`
	ProductID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_wishlist_user_product" json:"productId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (WishlistItem) TableName() string {
	return "wishlist"
}
