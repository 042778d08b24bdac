package routing

import (
	"context"
	"errors"
	"testing"

	"github.com/chauffio/chauffio/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	route *Route
	err   error
	calls int
}

func (s *stubProvider) Route(ctx context.Context, from, to geo.Point) (*Route, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.route, nil
}

var (
	paris = geo.Point{Lat: 48.8566, Lng: 2.3522}
	lyon  = geo.Point{Lat: 45.764, Lng: 4.8357}
)

func TestResolve_NoProviderEstimates(t *testing.T) {
	svc := NewService(nil, nil)

	res := svc.Resolve(context.Background(), paris, lyon)
	assert.True(t, res.Estimated)
	assert.False(t, res.FromCache)
	assert.Greater(t, res.Route.DistanceKm, 390.0)
	assert.Less(t, res.Route.DistanceKm, 400.0)
	assert.Greater(t, res.Route.DurationMinutes, 0.0)
}

func TestResolve_ProviderRoute(t *testing.T) {
	toll := 32.5
	provider := &stubProvider{route: &Route{
		Polyline:        "abc",
		DistanceKm:      465,
		DurationMinutes: 260,
		TollCost:        &toll,
	}}
	svc := NewService(provider, nil)

	res := svc.Resolve(context.Background(), paris, lyon)
	assert.False(t, res.Estimated)
	assert.Equal(t, 465.0, res.Route.DistanceKm)
	require.NotNil(t, res.Route.TollCost)
	assert.Equal(t, 32.5, *res.Route.TollCost)
	assert.Equal(t, 1, provider.calls)
}

func TestResolve_ProviderErrorFallsBack(t *testing.T) {
	provider := &stubProvider{err: errors.New("quota exhausted")}
	svc := NewService(provider, nil)

	res := svc.Resolve(context.Background(), paris, lyon)
	assert.True(t, res.Estimated)
	assert.Greater(t, res.Route.DistanceKm, 390.0)
	assert.Nil(t, res.Route.TollCost)
}

func TestEstimate_IdenticalPoints(t *testing.T) {
	route := Estimate(paris, paris)
	assert.Equal(t, 0.0, route.DistanceKm)
	assert.Equal(t, 0.0, route.DurationMinutes)
}

func TestParseDurationSeconds(t *testing.T) {
	assert.Equal(t, 3600.0, parseDurationSeconds("3600s"))
	assert.Equal(t, 0.0, parseDurationSeconds("bogus"))
}
