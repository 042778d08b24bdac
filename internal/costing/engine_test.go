package costing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chauffio/chauffio/pkg/cache"
	redisclient "github.com/chauffio/chauffio/pkg/redis"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestComputeBreakdown_Defaults(t *testing.T) {
	settings := &OrganizationPricingSettings{}

	// 100 km, 60 min on pure defaults.
	b := ComputeBreakdown(100, 60, settings, nil, nil)

	assert.Equal(t, 14.40, b.Fuel.Amount)   // 100 · 8/100 · 1.80
	assert.Equal(t, 15.00, b.Tolls.Amount)  // 100 · 0.15
	assert.Equal(t, 10.00, b.Wear.Amount)   // 100 · 0.10
	assert.Equal(t, 25.00, b.Driver.Amount) // 1 h · 25
	assert.Equal(t, 64.40, b.Total)
	assert.Equal(t, TollSourceEstimate, b.Tolls.Source)
	assert.Nil(t, b.Parking)
}

func TestComputeBreakdown_CustomSettingsAndParking(t *testing.T) {
	settings := &OrganizationPricingSettings{
		FuelConsumptionL100: floatPtr(6.0),
		FuelPricePerLiter:   floatPtr(2.00),
		TollCostPerKm:       floatPtr(0.20),
		WearCostPerKm:       floatPtr(0.05),
		DriverHourlyCost:    floatPtr(30.0),
	}

	b := ComputeBreakdown(50, 90, settings, &ParkingInput{Amount: 12.5, Description: "Orly P4"}, nil)

	assert.Equal(t, 6.00, b.Fuel.Amount)
	assert.Equal(t, 10.00, b.Tolls.Amount)
	assert.Equal(t, 2.50, b.Wear.Amount)
	assert.Equal(t, 45.00, b.Driver.Amount)
	require.NotNil(t, b.Parking)
	assert.Equal(t, 12.50, b.Parking.Amount)
	assert.Equal(t, "Orly P4", b.Parking.Description)
	assert.Equal(t, 76.00, b.Total)
}

func TestComputeBreakdown_RealTollOverride(t *testing.T) {
	b := ComputeBreakdown(100, 60, &OrganizationPricingSettings{}, nil, &RealToll{Amount: 23.4, IsFromCache: true})

	assert.Equal(t, 23.40, b.Tolls.Amount)
	assert.Equal(t, TollSourceGoogleAPI, b.Tolls.Source)
	assert.True(t, b.Tolls.IsFromCache)
}

func TestShadow_SingleServiceSegment(t *testing.T) {
	analysis := Shadow(100, 60, &OrganizationPricingSettings{}, nil, nil)

	assert.Nil(t, analysis.Approach)
	assert.Nil(t, analysis.Return)
	assert.Equal(t, SegmentService, analysis.Service.Kind)
	assert.Equal(t, 100.0, analysis.TotalDistanceKm)
	assert.Equal(t, 64.40, analysis.TotalInternalCost)
	assert.Equal(t, RoutingSourceHaversineEstimate, analysis.RoutingSource)
}

func TestShadow_ThreeSegments(t *testing.T) {
	sel := &VehicleSelectionInput{
		ApproachDistanceKm: 10, ApproachDurationMinutes: 15,
		ServiceDistanceKm: 100, ServiceDurationMinutes: 60,
		ReturnDistanceKm: 10, ReturnDurationMinutes: 15,
		VehicleID: "veh-42",
	}
	analysis := Shadow(100, 60, &OrganizationPricingSettings{}, sel, nil)

	require.NotNil(t, analysis.Approach)
	require.NotNil(t, analysis.Return)
	assert.Equal(t, SegmentApproach, analysis.Approach.Kind)
	assert.Equal(t, SegmentReturn, analysis.Return.Kind)
	assert.Equal(t, 120.0, analysis.TotalDistanceKm)
	assert.Equal(t, 90.0, analysis.TotalDurationMinutes)
	assert.Equal(t, RoutingSourceVehicleSelection, analysis.RoutingSource)
	assert.Equal(t, "veh-42", analysis.VehicleID)

	// Combined amounts are the sums of the per-leg amounts.
	sum := analysis.Approach.Breakdown.Total + analysis.Service.Breakdown.Total + analysis.Return.Breakdown.Total
	assert.InDelta(t, sum, analysis.TotalInternalCost, 0.01)
	assert.Equal(t, analysis.CombinedBreakdown.Total, analysis.TotalInternalCost)

	// Rate fields come from the first leg with a non-zero amount.
	assert.Equal(t, DefaultFuelPricePerLiter, analysis.CombinedBreakdown.Fuel.Rate)
}

func TestShadow_ZeroLengthLegs(t *testing.T) {
	sel := &VehicleSelectionInput{ServiceDistanceKm: 100, ServiceDurationMinutes: 60}
	analysis := Shadow(100, 60, &OrganizationPricingSettings{}, sel, nil)

	assert.Equal(t, 0.0, analysis.Approach.Breakdown.Total)
	assert.Equal(t, 100.0, analysis.TotalDistanceKm)
	// Rates still reflect the service leg.
	assert.Equal(t, DefaultDriverHourlyCost, analysis.CombinedBreakdown.Driver.Rate)
}

type stubFuelProvider struct {
	price float64
	err   error
	calls int
}

func (s *stubFuelProvider) CurrentPrice(ctx context.Context, country, fuelType string) (float64, error) {
	s.calls++
	return s.price, s.err
}

func TestFuelPriceService_CacheHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	manager := cache.NewManager(&redisclient.Client{Client: db})

	mock.ExpectGet(cache.Keys.FuelPrice("FR", "DIESEL")).SetVal("1.95")

	provider := &stubFuelProvider{price: 2.10}
	svc := NewFuelPriceService(provider, manager)

	price, fromCache := svc.Price(context.Background(), "FR", "DIESEL", &OrganizationPricingSettings{})
	assert.Equal(t, 1.95, price)
	assert.True(t, fromCache)
	assert.Zero(t, provider.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFuelPriceService_CacheMissStoresQuote(t *testing.T) {
	db, mock := redismock.NewClientMock()
	manager := cache.NewManager(&redisclient.Client{Client: db})

	key := cache.Keys.FuelPrice("FR", "SP95")
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, "2.1", 6*time.Hour).SetVal("OK")

	svc := NewFuelPriceService(&stubFuelProvider{price: 2.1}, manager)

	price, fromCache := svc.Price(context.Background(), "FR", "SP95", &OrganizationPricingSettings{})
	assert.Equal(t, 2.1, price)
	assert.False(t, fromCache)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFuelPriceService_ProviderFailureFallsBack(t *testing.T) {
	svc := NewFuelPriceService(&stubFuelProvider{err: errors.New("quota exceeded")}, nil)

	settings := &OrganizationPricingSettings{FuelPricePerLiter: floatPtr(1.75)}
	price, fromCache := svc.Price(context.Background(), "FR", "DIESEL", settings)
	assert.Equal(t, 1.75, price)
	assert.False(t, fromCache)
}

func TestFuelPriceService_NoProvider(t *testing.T) {
	svc := NewFuelPriceService(nil, nil)
	price, fromCache := svc.Price(context.Background(), "FR", "DIESEL", &OrganizationPricingSettings{})
	assert.Equal(t, DefaultFuelPricePerLiter, price)
	assert.False(t, fromCache)
}
