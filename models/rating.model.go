package models

import (
	"time"
)

type Rating struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	TransactionID uint   `gorm:"not null;uniqueIndex:uq_rating_transaction_rater,priority:1" json:"transaction_id"`
	RaterID       uint   `gorm:"not null;uniqueIndex:uq_rating_transaction_rater,priority:2" json:"rater_id"`
	RateeID       uint   `gorm:"not null;index" json:"ratee_id"`
	Stars         int    `gorm:"not null;check:chk_ratings_stars,stars BETWEEN 1 AND 5" json:"stars"`
	Comment       string `gorm:"type:text" json:"comment"`

	CreatedAt time.Time `json:"created_at"`

	Transaction Transaction `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"-"`
}
