package handlers

import (
	"net/mail"
	"strings"
	"time"

	"github.com/minnehack2026-blugolds/backend/config"
	"github.com/minnehack2026-blugolds/backend/middleware"
	"github.com/minnehack2026-blugolds/backend/models"
	"github.com/minnehack2026-blugolds/backend/services"
	"github.com/minnehack2026-blugolds/backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type AuthHandler struct {
	DB     *gorm.DB
	Tokens *utils.TokenManager
	Config *config.Config
	Log    *zap.Logger
}

func NewAuthHandler(db *gorm.DB, tokens *utils.TokenManager, cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{DB: db, Tokens: tokens, Config: cfg, Log: log}
}

// SignupRequest defines the payload for registration
type SignupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest defines the payload for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup - POST /auth/signup
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid input")
	}

	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	if _, err := mail.ParseAddress(email); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "A valid email is required")
	}
	if name == "" {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Name is required")
	}
	if len(req.Password) < minPasswordLength {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Password must be at least 8 characters")
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return serviceError(c, h.Log, err)
	}

	user := models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hashedPassword,
	}
	if err := h.DB.WithContext(c.UserContext()).Create(&user).Error; err != nil {
		if services.IsUniqueViolation(err) {
			return fiber.NewError(fiber.StatusConflict, "Email already registered")
		}
		return serviceError(c, h.Log, err)
	}

	if err := h.issueCookie(c, user.ID); err != nil {
		return serviceError(c, h.Log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user.Principal())
}

// Login - POST /auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid input")
	}

	var user models.User
	if err := h.DB.WithContext(c.UserContext()).Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
	}
	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
	}

	if err := h.issueCookie(c, user.ID); err != nil {
		return serviceError(c, h.Log, err)
	}
	return c.JSON(user.Principal())
}

// Logout - POST /auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.Config.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"ok": true})
}

// Me - GET /auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *AuthHandler) issueCookie(c *fiber.Ctx, userID uint) error {
	token, err := h.Tokens.Generate(userID)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.Tokens.TTL().Seconds()),
		HTTPOnly: true,
		Secure:   h.Config.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}
