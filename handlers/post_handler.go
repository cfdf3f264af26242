package handlers

import (
	"errors"
	"math"
	"strings"

	"github.com/minnehack2026-blugolds/backend/models"
	"github.com/minnehack2026-blugolds/backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxTitleLength       = 160
	maxDescriptionLength = 1000
	defaultRadiusMiles   = 10
	defaultPostsPerPage  = 20
	maxPostsPerPage      = 100
)

type PostHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewPostHandler(db *gorm.DB, log *zap.Logger) *PostHandler {
	return &PostHandler{DB: db, Log: log}
}

// CreatePostRequest
type CreatePostRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	PriceCents  *int64   `json:"price_cents"`
	ImageURL    string   `json:"image_url"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// UpdatePostRequest carries only the fields being changed
type UpdatePostRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	PriceCents  *int64   `json:"price_cents"`
	Status      *string  `json:"status"`
	ImageURL    *string  `json:"image_url"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

func validatePostFields(title, description string, priceCents int64) error {
	if title == "" || len(title) > maxTitleLength {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Title must be 1-160 characters")
	}
	if len(description) > maxDescriptionLength {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Description must be at most 1000 characters")
	}
	if priceCents < 0 {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "price_cents must not be negative")
	}
	return nil
}

// CreatePost - POST /posts
func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid input")
	}
	if req.PriceCents == nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "price_cents is required")
	}
	title := strings.TrimSpace(req.Title)
	if err := validatePostFields(title, req.Description, *req.PriceCents); err != nil {
		return err
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "latitude and longitude must be given together")
	}

	post := models.Post{
		SellerID:    &user.ID,
		Title:       title,
		Description: req.Description,
		PriceCents:  *req.PriceCents,
		Status:      models.PostStatusActive,
		ImageURL:    req.ImageURL,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	}
	if err := h.DB.WithContext(c.UserContext()).Create(&post).Error; err != nil {
		return serviceError(c, h.Log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// ListPosts - GET /posts
// Filters: min_price, max_price, seller_id, latitude+longitude+radius_miles. Pagination: page, limit.
func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	minPrice, err := optionalInt(c, "min_price")
	if err != nil {
		return err
	}
	maxPrice, err := optionalInt(c, "max_price")
	if err != nil {
		return err
	}
	sellerID, err := optionalInt(c, "seller_id")
	if err != nil {
		return err
	}
	lat, err := optionalFloat(c, "latitude")
	if err != nil {
		return err
	}
	lng, err := optionalFloat(c, "longitude")
	if err != nil {
		return err
	}
	radius, err := optionalFloat(c, "radius_miles")
	if err != nil {
		return err
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", defaultPostsPerPage)
	if limit < 1 || limit > maxPostsPerPage {
		limit = defaultPostsPerPage
	}
	// bounds (page-1)*limit for the offset and slice below
	if page > math.MaxInt32/limit {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid page")
	}

	query := h.DB.WithContext(c.UserContext()).Model(&models.Post{}).Where("status = ?", models.PostStatusActive)
	if minPrice != nil {
		query = query.Where("price_cents >= ?", *minPrice)
	}
	if maxPrice != nil {
		query = query.Where("price_cents <= ?", *maxPrice)
	}
	if sellerID != nil {
		query = query.Where("seller_id = ?", *sellerID)
	}
	query = query.Order("created_at desc").Order("id desc").Session(&gorm.Session{})

	var posts []models.Post
	var total int64

	if lat != nil && lng != nil {
		r := float64(defaultRadiusMiles)
		if radius != nil {
			r = *radius
		}
		var candidates []models.Post
		if err := query.Where("latitude IS NOT NULL AND longitude IS NOT NULL").Find(&candidates).Error; err != nil {
			return serviceError(c, h.Log, err)
		}
		nearby := make([]models.Post, 0, len(candidates))
		for _, p := range candidates {
			if utils.DistanceMiles(*lat, *lng, *p.Latitude, *p.Longitude) <= r {
				nearby = append(nearby, p)
			}
		}
		total = int64(len(nearby))
		start := (page - 1) * limit
		if start > len(nearby) {
			start = len(nearby)
		}
		end := start + limit
		if end > len(nearby) {
			end = len(nearby)
		}
		posts = nearby[start:end]
	} else {
		if err := query.Count(&total).Error; err != nil {
			return serviceError(c, h.Log, err)
		}
		if err := query.Offset((page - 1) * limit).Limit(limit).Find(&posts).Error; err != nil {
			return serviceError(c, h.Log, err)
		}
	}

	if posts == nil {
		posts = []models.Post{}
	}
	meta := models.NewPaginationMeta(page, limit, total)
	return c.JSON(models.SuccessResponse("Posts retrieved", posts, meta))
}

// GetPost - GET /posts/:id
func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var post models.Post
	err = h.DB.WithContext(c.UserContext()).
		Where("id = ? AND status = ?", id, models.PostStatusActive).
		First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Post not found")
	}
	if err != nil {
		return serviceError(c, h.Log, err)
	}

	return c.JSON(post)
}

// ownedPost loads a post and checks that the caller is its seller.
func (h *PostHandler) ownedPost(c *fiber.Ctx) (*models.Post, error) {
	user, err := currentUser(c)
	if err != nil {
		return nil, err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}

	var post models.Post
	err = h.DB.WithContext(c.UserContext()).First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "Post not found")
	}
	if err != nil {
		return nil, serviceError(c, h.Log, err)
	}

	if post.SellerID == nil || *post.SellerID != user.ID {
		return nil, fiber.NewError(fiber.StatusForbidden, "Not authorized")
	}
	return &post, nil
}

// UpdatePost - PATCH /posts/:id
func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
	post, err := h.ownedPost(c)
	if err != nil {
		return err
	}

	var req UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid input")
	}

	if req.Title != nil {
		post.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		post.Description = *req.Description
	}
	if req.PriceCents != nil {
		post.PriceCents = *req.PriceCents
	}
	if req.ImageURL != nil {
		post.ImageURL = *req.ImageURL
	}
	if req.Latitude != nil {
		post.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		post.Longitude = req.Longitude
	}
	if req.Status != nil {
		if *req.Status != models.PostStatusActive && *req.Status != models.PostStatusDeleted {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "status must be active or deleted")
		}
		post.Status = *req.Status
	}
	if err := validatePostFields(post.Title, post.Description, post.PriceCents); err != nil {
		return err
	}
	if (post.Latitude == nil) != (post.Longitude == nil) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "latitude and longitude must be given together")
	}

	if err := h.DB.WithContext(c.UserContext()).Save(post).Error; err != nil {
		return serviceError(c, h.Log, err)
	}

	return c.JSON(post)
}

// DeletePost - DELETE /posts/:id
// Posts are never removed so existing conversations and transactions keep their reference.
func (h *PostHandler) DeletePost(c *fiber.Ctx) error {
	post, err := h.ownedPost(c)
	if err != nil {
		return err
	}

	if err := h.DB.WithContext(c.UserContext()).Model(post).Update("status", models.PostStatusDeleted).Error; err != nil {
		return serviceError(c, h.Log, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// GetMyPosts - GET /posts/mine
func (h *PostHandler) GetMyPosts(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	posts := []models.Post{}
	if err := h.DB.WithContext(c.UserContext()).
		Where("seller_id = ? AND status = ?", user.ID, models.PostStatusActive).
		Order("created_at desc").
		Find(&posts).Error; err != nil {
		return serviceError(c, h.Log, err)
	}

	return c.JSON(posts)
}
