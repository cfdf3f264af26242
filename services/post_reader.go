package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/minnehack2026-blugolds/backend/models"

	"gorm.io/gorm"
)

// PostRef is the slice of a post the conversation layer needs.
type PostRef struct {
	ID       uint
	SellerID *uint
	Status   string
}

// PostReader resolves posts for the conversation layer.
type PostReader interface {
	GetPost(ctx context.Context, postID uint) (PostRef, error)
}

type gormPostReader struct {
	db *gorm.DB
}

func NewPostReader(db *gorm.DB) PostReader {
	return &gormPostReader{db: db}
}

// GetPost returns ErrNotFound if no post has the id. Deleted posts still resolve.
func (r *gormPostReader) GetPost(ctx context.Context, postID uint) (PostRef, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Select("id", "seller_id", "status").First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return PostRef{}, fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}
	if err != nil {
		return PostRef{}, err
	}
	return PostRef{ID: post.ID, SellerID: post.SellerID, Status: post.Status}, nil
}
