// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"testing"

	"github.com/minnehack2026-blugolds/backend/config"
	"github.com/minnehack2026-blugolds/backend/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB returns a migrated in-memory SQLite database private to t.
// A single connection keeps the in-memory database alive and serializes writers.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := config.OpenDatabase("sqlite", ":memory:?_pragma=foreign_keys(1)", logger.Silent)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := config.Migrate(db, zap.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser inserts a user with a fixed id.
func CreateUser(t *testing.T, db *gorm.DB, id uint, email string) models.User {
	t.Helper()
	u := models.User{ID: id, Email: email, Name: email, PasswordHash: "x"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user %d: %v", id, err)
	}
	return u
}

// CreatePost inserts an active post with a fixed id. sellerID 0 leaves the seller unset.
func CreatePost(t *testing.T, db *gorm.DB, id, sellerID uint) models.Post {
	t.Helper()
	p := models.Post{ID: id, Title: "Desk lamp", PriceCents: 1500, Status: models.PostStatusActive}
	if sellerID != 0 {
		p.SellerID = &sellerID
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create post %d: %v", id, err)
	}
	return p
}
