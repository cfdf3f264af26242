package middleware

import (
	"strings"

	"github.com/minnehack2026-blugolds/backend/models"
	"github.com/minnehack2026-blugolds/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	AccessTokenCookie = "access_token"
	principalKey      = "principal"
)

// RequireAuth resolves the caller from the access_token cookie or a Bearer header.
// Every failure is the same 401 so callers cannot probe which step failed.
func RequireAuth(tm *utils.TokenManager, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(AccessTokenCookie)
		if token == "" {
			if h := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
				token = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
			}
		}
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
		}

		userID, err := tm.Parse(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
		}

		var user models.User
		if err := db.WithContext(c.UserContext()).First(&user, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
		}

		c.Locals(principalKey, user.Principal())
		return c.Next()
	}
}

// CurrentUser returns the principal stored by RequireAuth.
func CurrentUser(c *fiber.Ctx) (models.Principal, bool) {
	p, ok := c.Locals(principalKey).(models.Principal)
	return p, ok
}
