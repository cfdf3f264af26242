package handlers

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/minnehack2026-blugolds/backend/config"
	"github.com/minnehack2026-blugolds/backend/models"
	"github.com/minnehack2026-blugolds/backend/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	locationCookie       = "user_location"
	locationCookieMaxAge = 7 * 24 * time.Hour
	defaultSchoolRadius  = 5.0
)

type LocationHandler struct {
	Locations *services.LocationService
	Config    *config.Config
	Log       *zap.Logger
}

func NewLocationHandler(locations *services.LocationService, cfg *config.Config, log *zap.Logger) *LocationHandler {
	return &LocationHandler{Locations: locations, Config: cfg, Log: log}
}

type SetLocationRequest struct {
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	RadiusMiles *float64 `json:"radius_miles"`
}

type UpdateRadiusRequest struct {
	RadiusMiles *float64 `json:"radius_miles"`
}

// storedLocation is the user_location cookie: "lat|lng|radius|id,id,..."
type storedLocation struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	RadiusMiles float64 `json:"radius_miles"`
	SchoolIDs   []uint  `json:"school_ids"`
}

func (l storedLocation) String() string {
	ids := make([]string, len(l.SchoolIDs))
	for i, id := range l.SchoolIDs {
		ids[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join([]string{
		strconv.FormatFloat(l.Latitude, 'f', -1, 64),
		strconv.FormatFloat(l.Longitude, 'f', -1, 64),
		strconv.FormatFloat(l.RadiusMiles, 'f', -1, 64),
		strings.Join(ids, ","),
	}, "|")
}

func parseStoredLocation(raw string) (storedLocation, error) {
	parts := strings.Split(raw, "|")
	if len(parts) != 4 {
		return storedLocation{}, fmt.Errorf("want 4 fields, got %d", len(parts))
	}

	var loc storedLocation
	var err error
	if loc.Latitude, err = strconv.ParseFloat(parts[0], 64); err != nil {
		return storedLocation{}, err
	}
	if loc.Longitude, err = strconv.ParseFloat(parts[1], 64); err != nil {
		return storedLocation{}, err
	}
	if loc.RadiusMiles, err = strconv.ParseFloat(parts[2], 64); err != nil {
		return storedLocation{}, err
	}
	for _, v := range []float64{loc.Latitude, loc.Longitude, loc.RadiusMiles} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return storedLocation{}, fmt.Errorf("non-finite value %v", v)
		}
	}
	loc.SchoolIDs = []uint{}
	if parts[3] != "" {
		for _, s := range strings.Split(parts[3], ",") {
			id, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				return storedLocation{}, err
			}
			loc.SchoolIDs = append(loc.SchoolIDs, uint(id))
		}
	}
	return loc, nil
}

// SetLocation - POST /api/location/set
func (h *LocationHandler) SetLocation(c *fiber.Ctx) error {
	var req SetLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid input")
	}
	if req.Latitude == nil || req.Longitude == nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "latitude and longitude are required")
	}
	radius := defaultSchoolRadius
	if req.RadiusMiles != nil {
		radius = *req.RadiusMiles
	}

	schools, err := h.lookup(c, *req.Latitude, *req.Longitude, radius)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Found %d universities within %g miles", len(schools), radius),
		"schools": schools,
	})
}

// GetSchools - GET /api/location/schools
func (h *LocationHandler) GetSchools(c *fiber.Ctx) error {
	loc, err := h.stored(c)
	if err != nil {
		return err
	}
	return c.JSON(loc)
}

// UpdateRadius - PUT /api/location/radius
func (h *LocationHandler) UpdateRadius(c *fiber.Ctx) error {
	loc, err := h.stored(c)
	if err != nil {
		return err
	}

	var req UpdateRadiusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid input")
	}
	if req.RadiusMiles == nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "radius_miles is required")
	}

	schools, err := h.lookup(c, loc.Latitude, loc.Longitude, *req.RadiusMiles)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Updated radius to %g miles", *req.RadiusMiles),
		"schools": schools,
	})
}

// lookup finds schools around the point and remembers the result in the location cookie.
func (h *LocationHandler) lookup(c *fiber.Ctx, lat, lng, radius float64) ([]models.NearbyUniversity, error) {
	schools, err := h.Locations.UniversitiesInRadius(c.UserContext(), lat, lng, radius)
	if err != nil {
		return nil, serviceError(c, h.Log, err)
	}
	if len(schools) == 0 {
		return nil, fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("No universities found within %g miles", radius))
	}

	loc := storedLocation{Latitude: lat, Longitude: lng, RadiusMiles: radius}
	for _, s := range schools {
		loc.SchoolIDs = append(loc.SchoolIDs, s.ID)
	}
	c.Cookie(&fiber.Cookie{
		Name:     locationCookie,
		Value:    loc.String(),
		Path:     "/",
		MaxAge:   int(locationCookieMaxAge.Seconds()),
		HTTPOnly: true,
		Secure:   h.Config.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return schools, nil
}

func (h *LocationHandler) stored(c *fiber.Ctx) (storedLocation, error) {
	raw := c.Cookies(locationCookie)
	if raw == "" {
		return storedLocation{}, fiber.NewError(fiber.StatusNotFound, "Location not set. Please set your location first.")
	}
	loc, err := parseStoredLocation(raw)
	if err != nil {
		return storedLocation{}, fiber.NewError(fiber.StatusBadRequest, "Stored location is malformed")
	}
	return loc, nil
}
