package handlers

import (
	"errors"
	"strings"

	"github.com/minnehack2026-blugolds/backend/models"
	"github.com/minnehack2026-blugolds/backend/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RatingHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewRatingHandler(db *gorm.DB, log *zap.Logger) *RatingHandler {
	return &RatingHandler{DB: db, Log: log}
}

type CreateRatingRequest struct {
	TransactionID uint   `json:"transaction_id"`
	Stars         int    `json:"stars"`
	Comment       string `json:"comment"`
}

// CreateRating - POST /ratings
// The ratee is whoever sits on the other side of the transaction.
func (h *RatingHandler) CreateRating(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req CreateRatingRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid input")
	}
	if req.Stars < 1 || req.Stars > 5 {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "stars must be between 1 and 5")
	}

	var tx models.Transaction
	err = h.DB.WithContext(c.UserContext()).First(&tx, req.TransactionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Transaction not found")
	}
	if err != nil {
		return serviceError(c, h.Log, err)
	}

	rateeID, ok := tx.Counterparty(user.ID)
	if !ok {
		return fiber.NewError(fiber.StatusForbidden, "Not a party to this transaction")
	}
	if tx.Status != models.TransactionStatusCompleted {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Only completed transactions can be rated")
	}

	rating := models.Rating{
		TransactionID: tx.ID,
		RaterID:       user.ID,
		RateeID:       rateeID,
		Stars:         req.Stars,
		Comment:       strings.TrimSpace(req.Comment),
	}
	if err := h.DB.WithContext(c.UserContext()).Create(&rating).Error; err != nil {
		if services.IsUniqueViolation(err) {
			return fiber.NewError(fiber.StatusConflict, "Transaction already rated")
		}
		return serviceError(c, h.Log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(rating)
}
