package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisclient "github.com/chauffio/chauffio/pkg/redis"
)

// Manager handles caching operations with JSON serialization
type Manager struct {
	redis *redisclient.Client
}

// NewManager creates a new cache manager
func NewManager(redis *redisclient.Client) *Manager {
	return &Manager{redis: redis}
}

// Get retrieves a cached value and unmarshals it into result
func (m *Manager) Get(ctx context.Context, key string, result interface{}) error {
	data, err := m.redis.GetString(ctx, key)
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(data), result)
}

// Set marshals and caches a value with expiration
func (m *Manager) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return m.redis.SetWithExpiration(ctx, key, string(data), ttl)
}

// GetOrSet retrieves from cache or executes fn and caches the result
func (m *Manager) GetOrSet(ctx context.Context, key string, ttl time.Duration, result interface{}, fn func() (interface{}, error)) error {
	// Try cache first
	err := m.Get(ctx, key, result)
	if err == nil {
		return nil // Cache hit
	}

	// Cache miss - execute function
	data, err := fn()
	if err != nil {
		return err
	}

	// Cache the result (non-blocking)
	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.Set(cacheCtx, key, data, ttl)
	}()

	// Marshal the result into the result pointer
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return json.Unmarshal(jsonData, result)
}

// Delete removes a key from cache
func (m *Manager) Delete(ctx context.Context, keys ...string) error {
	return m.redis.Delete(ctx, keys...)
}

// CacheKeys defines common cache key patterns
type CacheKeys struct{}

var Keys = CacheKeys{}

// FuelPrice returns the cache key for a country/fuel-type price quote.
func (k CacheKeys) FuelPrice(country, fuelType string) string {
	return fmt.Sprintf("fuel_price:%s:%s", country, fuelType)
}

// Route returns the cache key for a routing provider response, keyed by
// endpoints rounded to ~11 m so nearby requests share an entry.
func (k CacheKeys) Route(fromLat, fromLng, toLat, toLng float64) string {
	return fmt.Sprintf("route:%.4f:%.4f:%.4f:%.4f", fromLat, fromLng, toLat, toLng)
}

// ActiveZones returns the cache key for an organization's active zone set.
func (k CacheKeys) ActiveZones(orgID string) string {
	return fmt.Sprintf("zones:active:%s", orgID)
}

// PricingSettings returns the cache key for organization pricing settings.
func (k CacheKeys) PricingSettings(orgID string) string {
	return fmt.Sprintf("pricing_settings:%s", orgID)
}

// TTL defines common cache TTL durations
type CacheTTL struct{}

var TTL = CacheTTL{}

func (t CacheTTL) Route() time.Duration     { return 10 * time.Minute }
func (t CacheTTL) Zones() time.Duration     { return 5 * time.Minute }
func (t CacheTTL) Settings() time.Duration  { return 15 * time.Minute }
func (t CacheTTL) FuelPrice() time.Duration { return 6 * time.Hour }
