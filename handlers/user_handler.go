package handlers

import (
	"database/sql"
	"errors"

	"github.com/minnehack2026-blugolds/backend/models"
	"github.com/minnehack2026-blugolds/backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewUserHandler(db *gorm.DB, log *zap.Logger) *UserHandler {
	return &UserHandler{DB: db, Log: log}
}

// AverageRating - GET /users/:id/average-rating
func (h *UserHandler) AverageRating(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	db := h.DB.WithContext(c.UserContext())
	var user models.User
	err = db.Select("id").First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		return serviceError(c, h.Log, err)
	}

	var avg sql.NullFloat64
	var count int64
	if err := db.Model(&models.Rating{}).
		Select("AVG(stars), COUNT(id)").
		Where("ratee_id = ?", id).
		Row().Scan(&avg, &count); err != nil {
		return serviceError(c, h.Log, err)
	}

	average := 0.0
	if avg.Valid {
		average = utils.Round2(avg.Float64)
	}

	return c.JSON(fiber.Map{
		"user_id":        id,
		"average_rating": average,
		"rating_count":   count,
	})
}
