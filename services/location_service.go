package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/minnehack2026-blugolds/backend/cache"
	"github.com/minnehack2026-blugolds/backend/models"
	"github.com/minnehack2026-blugolds/backend/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const nearbyCacheTTL = 10 * time.Minute

type LocationService struct {
	db    *gorm.DB
	cache cache.Cache // nil disables caching
	log   *zap.Logger
}

func NewLocationService(db *gorm.DB, c cache.Cache, log *zap.Logger) *LocationService {
	return &LocationService{db: db, cache: c, log: log}
}

// UniversitiesInRadius returns universities within radiusMiles of the point, nearest first.
func (s *LocationService) UniversitiesInRadius(ctx context.Context, lat, lng, radiusMiles float64) ([]models.NearbyUniversity, error) {
	for _, v := range []float64{lat, lng, radiusMiles} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: coordinates and radius must be finite", ErrInvalidRequest)
		}
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, fmt.Errorf("%w: coordinates out of range", ErrInvalidRequest)
	}
	if radiusMiles <= 0 {
		return nil, fmt.Errorf("%w: radius_miles must be positive", ErrInvalidRequest)
	}

	key := fmt.Sprintf("schools:%g:%g:%g", lat, lng, radiusMiles)
	if hit, ok := s.fromCache(ctx, key); ok {
		return hit, nil
	}

	var universities []models.University
	if err := s.db.WithContext(ctx).Find(&universities).Error; err != nil {
		return nil, fmt.Errorf("load universities: %w", err)
	}

	nearby := []models.NearbyUniversity{}
	for _, u := range universities {
		d := utils.DistanceMiles(lat, lng, u.Latitude, u.Longitude)
		if d > radiusMiles {
			continue
		}
		nearby = append(nearby, models.NearbyUniversity{
			ID:        u.ID,
			Name:      u.Name,
			Distance:  utils.Round2(d),
			Latitude:  u.Latitude,
			Longitude: u.Longitude,
		})
	}
	sort.SliceStable(nearby, func(i, j int) bool { return nearby[i].Distance < nearby[j].Distance })

	s.toCache(ctx, key, nearby)
	return nearby, nil
}

func (s *LocationService) fromCache(ctx context.Context, key string) ([]models.NearbyUniversity, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var out []models.NearbyUniversity
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		s.log.Warn("cache entry unreadable", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return out, true
}

func (s *LocationService) toCache(ctx context.Context, key string, v []models.NearbyUniversity) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), nearbyCacheTTL); err != nil {
		s.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}
