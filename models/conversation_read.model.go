package models

import (
	"time"
)

// ConversationRead is a per-user read cursor. No row means nothing has been read.
type ConversationRead struct {
	ConversationID    uint  `gorm:"primaryKey;autoIncrement:false" json:"conversation_id"`
	UserID            uint  `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	LastReadMessageID *uint `json:"last_read_message_id"`

	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
