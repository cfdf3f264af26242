package models

import (
	"time"
)

// Message rows are immutable once written. ID doubles as the pagination cursor.
type Message struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	ConversationID uint   `gorm:"index;not null" json:"conversation_id"`
	SenderID       uint   `gorm:"index;not null" json:"sender_id"`
	Body           string `gorm:"type:text;not null" json:"body"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Sender User `gorm:"foreignKey:SenderID" json:"-"`
}
