package costing

import (
	"context"

	"github.com/chauffio/chauffio/pkg/cache"
	"github.com/chauffio/chauffio/pkg/logger"
	"go.uber.org/zap"
)

// FuelPriceProvider fetches the current pump price for a country and fuel
// type, in euros per liter.
type FuelPriceProvider interface {
	CurrentPrice(ctx context.Context, country, fuelType string) (float64, error)
}

// FuelPriceService caches provider quotes. Fuel prices move slowly, so a
// cached quote is served for hours before the provider is asked again.
type FuelPriceService struct {
	provider FuelPriceProvider
	cache    *cache.Manager
}

// NewFuelPriceService creates the service. The cache may be nil, in which
// case every lookup hits the provider.
func NewFuelPriceService(provider FuelPriceProvider, cacheManager *cache.Manager) *FuelPriceService {
	return &FuelPriceService{provider: provider, cache: cacheManager}
}

// Price returns the fuel price for a country/fuel type, falling back to the
// organization default when the provider is unavailable. The second return
// reports whether the value came from the cache.
func (s *FuelPriceService) Price(ctx context.Context, country, fuelType string, settings *OrganizationPricingSettings) (float64, bool) {
	if s.provider == nil {
		return settings.FuelPrice(), false
	}

	if s.cache != nil {
		var cached float64
		if err := s.cache.Get(ctx, cache.Keys.FuelPrice(country, fuelType), &cached); err == nil && cached > 0 {
			return cached, true
		}
	}

	price, err := s.provider.CurrentPrice(ctx, country, fuelType)
	if err != nil || price <= 0 {
		logger.Warn("fuel price lookup failed, using configured rate",
			zap.String("country", country),
			zap.String("fuel_type", fuelType),
			zap.Error(err))
		return settings.FuelPrice(), false
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.Keys.FuelPrice(country, fuelType), price, cache.TTL.FuelPrice()); err != nil {
			logger.Warn("fuel price cache write failed", zap.Error(err))
		}
	}
	return price, false
}
