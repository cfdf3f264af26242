package handlers

import (
	"errors"

	"github.com/minnehack2026-blugolds/backend/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TransactionHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewTransactionHandler(db *gorm.DB, log *zap.Logger) *TransactionHandler {
	return &TransactionHandler{DB: db, Log: log}
}

type CreateTransactionRequest struct {
	PostID uint `json:"post_id"`
}

type UpdateTransactionRequest struct {
	Status string `json:"status"`
}

// CreateTransaction - POST /transactions
// The caller is the buyer; the seller comes from the post.
func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid input")
	}
	if req.PostID == 0 {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "post_id is required")
	}

	var post models.Post
	err = h.DB.WithContext(c.UserContext()).
		Where("id = ? AND status = ?", req.PostID, models.PostStatusActive).
		First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Post not found")
	}
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	if post.SellerID == nil {
		h.Log.Error("post without seller", zap.Uint("post_id", post.ID))
		return fiber.ErrInternalServerError
	}
	if *post.SellerID == user.ID {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot buy your own post")
	}

	tx := models.Transaction{
		PostID:   post.ID,
		BuyerID:  user.ID,
		SellerID: *post.SellerID,
		Status:   models.TransactionStatusPending,
	}
	if err := h.DB.WithContext(c.UserContext()).Create(&tx).Error; err != nil {
		return serviceError(c, h.Log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(tx)
}

// ListTransactions - GET /transactions
func (h *TransactionHandler) ListTransactions(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	txs := []models.Transaction{}
	if err := h.DB.WithContext(c.UserContext()).
		Where("(buyer_id = ? OR seller_id = ?)", user.ID, user.ID).
		Order("created_at desc").
		Order("id desc").
		Find(&txs).Error; err != nil {
		return serviceError(c, h.Log, err)
	}

	return c.JSON(txs)
}

// UpdateTransaction - PATCH /transactions/:id
// Only the seller settles a pending transaction.
func (h *TransactionHandler) UpdateTransaction(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req UpdateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid input")
	}
	if req.Status != models.TransactionStatusCompleted && req.Status != models.TransactionStatusCancelled {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "status must be completed or cancelled")
	}

	var tx models.Transaction
	err = h.DB.WithContext(c.UserContext()).First(&tx, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Transaction not found")
	}
	if err != nil {
		return serviceError(c, h.Log, err)
	}

	if tx.SellerID != user.ID {
		return fiber.NewError(fiber.StatusForbidden, "Not authorized")
	}

	// Only a pending row moves, so concurrent settles cannot both win.
	res := h.DB.WithContext(c.UserContext()).
		Model(&tx).
		Where("status = ?", models.TransactionStatusPending).
		Update("status", req.Status)
	if res.Error != nil {
		return serviceError(c, h.Log, res.Error)
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Transaction is no longer pending")
	}
	tx.Status = req.Status

	return c.JSON(tx)
}
