package pricing

import (
	"context"
	"time"

	"github.com/chauffio/chauffio/internal/contacts"
	"github.com/chauffio/chauffio/internal/costing"
	"github.com/chauffio/chauffio/internal/routing"
	"github.com/chauffio/chauffio/internal/vehicles"
	"github.com/chauffio/chauffio/internal/zones"
	"github.com/chauffio/chauffio/pkg/cache"
	"github.com/chauffio/chauffio/pkg/common"
	"github.com/chauffio/chauffio/pkg/config"
	"github.com/chauffio/chauffio/pkg/logger"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// ContactLoader loads a contact with its partner contract.
type ContactLoader interface {
	GetContact(ctx context.Context, orgID, contactID uuid.UUID) (*contacts.Contact, error)
}

// CategoryLoader looks up a vehicle category.
type CategoryLoader interface {
	GetCategory(ctx context.Context, orgID, categoryID uuid.UUID) (*vehicles.Category, error)
}

// Service orchestrates a pricing request: it assembles the engine context
// from repositories and providers, runs the pure engine, and persists the
// snapshot.
type Service struct {
	contacts ContactLoader
	vehicles CategoryLoader
	zones    *zones.Service
	repo     *Repository
	routing  *routing.Service
	cache    *cache.Manager

	defaults config.PricingConfig
}

// NewService wires the pricing service.
func NewService(contactRepo ContactLoader, vehicleRepo CategoryLoader, zoneService *zones.Service, repo *Repository, routingService *routing.Service, cacheManager *cache.Manager, defaults config.PricingConfig) *Service {
	return &Service{
		contacts: contactRepo,
		vehicles: vehicleRepo,
		zones:    zoneService,
		repo:     repo,
		routing:  routingService,
		cache:    cacheManager,
		defaults: defaults,
	}
}

// ComputePrice runs the full pricing flow for an organization.
func (s *Service) ComputePrice(ctx context.Context, orgID uuid.UUID, req Request) (*Result, error) {
	timer := prometheus.NewTimer(pricingDuration)
	defer timer.ObserveDuration()

	contact, err := s.contacts.GetContact(ctx, orgID, req.ContactID)
	if err != nil {
		return nil, err
	}

	category, err := s.vehicles.GetCategory(ctx, orgID, req.VehicleCategoryID)
	if err != nil {
		return nil, err
	}

	zoneSet, zoneIndex, err := s.zones.ActiveZoneIndex(ctx, orgID)
	if err != nil {
		return nil, err
	}

	settings, err := s.cachedSettings(ctx, orgID)
	if err != nil {
		return nil, err
	}

	advancedRates, err := s.repo.ListAdvancedRates(ctx, orgID)
	if err != nil {
		return nil, err
	}
	seasonal, err := s.repo.ListSeasonalMultipliers(ctx, orgID)
	if err != nil {
		return nil, err
	}

	engineCtx := EngineContext{
		Contact:             contact,
		Zones:               zoneSet,
		ZoneIndex:           zoneIndex,
		Category:            category,
		Settings:            settings,
		AdvancedRates:       advancedRates,
		SeasonalMultipliers: seasonal,
		Defaults:            s.defaults,
		Now:                 time.Now().UTC(),
	}

	// Resolve real distance and duration when the caller did not estimate
	// them. Routing problems degrade silently to the haversine estimate.
	if s.routing != nil && (req.EstimatedDistanceKm == nil || req.EstimatedDurationMinutes == nil) {
		res := s.routing.Resolve(ctx, req.Pickup, req.Dropoff)
		if req.EstimatedDistanceKm == nil && res.Route.DistanceKm > 0 {
			d := common.Round2(res.Route.DistanceKm)
			req.EstimatedDistanceKm = &d
		}
		if req.EstimatedDurationMinutes == nil && res.Route.DurationMinutes > 0 {
			m := res.Route.DurationMinutes
			req.EstimatedDurationMinutes = &m
		}
		if res.Route.TollCost != nil {
			engineCtx.RealToll = &costing.RealToll{Amount: *res.Route.TollCost, IsFromCache: res.FromCache}
		}
	}

	result := Compute(req, engineCtx)
	observeResult(result)

	if s.repo != nil {
		if _, err := s.repo.SaveSnapshot(ctx, orgID, req, result); err != nil {
			logger.WarnContext(ctx, "failed to persist pricing snapshot", zap.Error(err))
		}
	}
	return result, nil
}

// OverridePrice applies a manual override to a stored snapshot and persists
// the updated result as a new snapshot.
func (s *Service) OverridePrice(ctx context.Context, orgID, snapshotID uuid.UUID, newPrice float64, reason string, minimumMarginPercent *float64) (*Result, error) {
	result, err := s.repo.GetSnapshot(ctx, orgID, snapshotID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, common.NewNotFoundError("pricing snapshot not found", nil)
	}

	settings, err := s.cachedSettings(ctx, orgID)
	if err != nil {
		return nil, err
	}

	engineCtx := EngineContext{Settings: settings, Defaults: s.defaults, Now: time.Now().UTC()}
	if err := ApplyPriceOverride(result, newPrice, reason, minimumMarginPercent, engineCtx); err != nil {
		pricingOverridesTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	pricingOverridesTotal.WithLabelValues("applied").Inc()

	if _, err := s.repo.SaveSnapshot(ctx, orgID, Request{}, result); err != nil {
		logger.WarnContext(ctx, "failed to persist override snapshot", zap.Error(err))
	}
	return result, nil
}

func (s *Service) cachedSettings(ctx context.Context, orgID uuid.UUID) (*costing.OrganizationPricingSettings, error) {
	if s.cache == nil {
		return s.repo.GetSettings(ctx, orgID)
	}

	var settings costing.OrganizationPricingSettings
	err := s.cache.GetOrSet(ctx, cache.Keys.PricingSettings(orgID.String()), cache.TTL.Settings(), &settings, func() (interface{}, error) {
		return s.repo.GetSettings(ctx, orgID)
	})
	if err != nil {
		return s.repo.GetSettings(ctx, orgID)
	}
	return &settings, nil
}
