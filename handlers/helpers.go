package handlers

import (
	"errors"
	"strconv"

	"github.com/minnehack2026-blugolds/backend/middleware"
	"github.com/minnehack2026-blugolds/backend/models"
	"github.com/minnehack2026-blugolds/backend/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// serviceError maps service sentinels onto HTTP errors. Anything unrecognised is logged and hidden behind a 500.
func serviceError(c *fiber.Ctx, log *zap.Logger, err error) error {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
	case errors.Is(err, services.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrSelfConversation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidRequest):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}

	log.Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Any("request_id", c.Locals("requestid")),
		zap.Error(err))
	return fiber.ErrInternalServerError
}

// currentUser must only be used behind middleware.RequireAuth.
func currentUser(c *fiber.Ctx) (models.Principal, error) {
	p, ok := middleware.CurrentUser(c)
	if !ok {
		return models.Principal{}, fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
	}
	return p, nil
}

// paramID parses a positive integer path parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

// optionalInt parses an integer query parameter, returning nil when it is absent.
func optionalInt(c *fiber.Ctx, name string) (*int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return &v, nil
}

func optionalFloat(c *fiber.Ctx, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return &v, nil
}
