package models

import (
	"time"
)

// Conversation is the single thread between one buyer and one seller about one post.
type Conversation struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	PostID   uint `gorm:"not null;uniqueIndex:uq_conversation_thread,priority:1" json:"post_id"`
	BuyerID  uint `gorm:"not null;uniqueIndex:uq_conversation_thread,priority:2;index;check:chk_conversations_parties,buyer_id <> seller_id" json:"buyer_id"`
	SellerID uint `gorm:"not null;uniqueIndex:uq_conversation_thread,priority:3;index" json:"seller_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"` // bumped on every new message

	// Relations
	Buyer    User               `gorm:"foreignKey:BuyerID" json:"-"`
	Seller   User               `gorm:"foreignKey:SellerID" json:"-"`
	Messages []Message          `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"-"`
	Reads    []ConversationRead `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"-"`
}

// HasParticipant reports whether userID is the buyer or the seller.
func (c Conversation) HasParticipant(userID uint) bool {
	return c.BuyerID == userID || c.SellerID == userID
}
