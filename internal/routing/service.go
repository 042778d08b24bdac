package routing

import (
	"context"

	"github.com/chauffio/chauffio/pkg/cache"
	"github.com/chauffio/chauffio/pkg/geo"
	"github.com/chauffio/chauffio/pkg/logger"
	"go.uber.org/zap"
)

// Service fronts the routing provider with a short-lived cache and a
// haversine fallback. Resolve never fails: when the provider is missing or
// errors, the estimate is returned with Estimated set.
type Service struct {
	provider Provider
	cache    *cache.Manager
}

// Resolution is a Route plus how it was obtained.
type Resolution struct {
	Route     Route `json:"route"`
	Estimated bool  `json:"estimated"`
	FromCache bool  `json:"from_cache"`
}

// NewService creates a routing service. Provider and cache may each be nil.
func NewService(provider Provider, cacheManager *cache.Manager) *Service {
	return &Service{provider: provider, cache: cacheManager}
}

// Resolve returns the best available route between two points.
func (s *Service) Resolve(ctx context.Context, from, to geo.Point) Resolution {
	if s.provider == nil {
		return Resolution{Route: Estimate(from, to), Estimated: true}
	}

	key := cache.Keys.Route(from.Lat, from.Lng, to.Lat, to.Lng)
	if s.cache != nil {
		var cached Route
		if err := s.cache.Get(ctx, key, &cached); err == nil && cached.DistanceKm > 0 {
			return Resolution{Route: cached, FromCache: true}
		}
	}

	route, err := s.provider.Route(ctx, from, to)
	if err != nil {
		logger.WarnContext(ctx, "routing provider failed, using haversine estimate",
			zap.Float64("from_lat", from.Lat),
			zap.Float64("from_lng", from.Lng),
			zap.Error(err))
		return Resolution{Route: Estimate(from, to), Estimated: true}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, route, cache.TTL.Route()); err != nil {
			logger.WarnContext(ctx, "route cache write failed", zap.Error(err))
		}
	}
	return Resolution{Route: *route}
}

// Estimate builds a haversine route with a 40 km/h duration estimate.
func Estimate(from, to geo.Point) Route {
	distanceKm := geo.Distance(from, to)
	return Route{
		DistanceKm:      distanceKm,
		DurationMinutes: float64(geo.EstimateDuration(distanceKm)),
		From:            from,
		To:              to,
	}
}
