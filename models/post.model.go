package models

import (
	"time"
)

const (
	PostStatusActive  = "active"
	PostStatusDeleted = "deleted"
)

type Post struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	SellerID    *uint    `gorm:"index" json:"seller_id"` // nullable FK, a post without a seller is a data fault
	Title       string   `gorm:"size:160;not null" json:"title"`
	Description string   `gorm:"type:text" json:"description"`
	PriceCents  int64    `gorm:"not null" json:"price_cents"`
	Status      string   `gorm:"default:'active';size:20;index" json:"status"` // active, deleted
	ImageURL    string   `json:"image_url"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Seller        *User          `gorm:"foreignKey:SellerID;constraint:OnDelete:SET NULL" json:"-"`
	Conversations []Conversation `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}
