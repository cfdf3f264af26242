package models

import (
	"time"
)

const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusCancelled = "cancelled"
)

type Transaction struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PostID   uint   `gorm:"index;not null" json:"post_id"`
	BuyerID  uint   `gorm:"index;not null" json:"buyer_id"`
	SellerID uint   `gorm:"index;not null" json:"seller_id"`
	Status   string `gorm:"default:'pending';size:20" json:"status"` // pending, completed, cancelled

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Post Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

// Counterparty returns the other side of the transaction, or false if userID is not a party.
func (t Transaction) Counterparty(userID uint) (uint, bool) {
	switch userID {
	case t.BuyerID:
		return t.SellerID, true
	case t.SellerID:
		return t.BuyerID, true
	}
	return 0, false
}
