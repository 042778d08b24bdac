package corridor

import (
	"errors"
	"testing"

	"github.com/chauffio/chauffio/pkg/common"
	"github.com/chauffio/chauffio/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Roughly west to east through central Paris.
var parisLine = []geo.Point{
	{Lat: 48.8566, Lng: 2.3000},
	{Lat: 48.8566, Lng: 2.3300},
	{Lat: 48.8566, Lng: 2.3600},
	{Lat: 48.8566, Lng: 2.3900},
}

func buildTestCorridor(t *testing.T, bufferMeters float64) *Corridor {
	t.Helper()
	c, err := Build(geo.EncodePolyline(parisLine), bufferMeters)
	require.NoError(t, err)
	return c
}

func TestBuild_BufferBounds(t *testing.T) {
	encoded := geo.EncodePolyline(parisLine)

	tests := []struct {
		name         string
		bufferMeters float64
		wantErr      bool
	}{
		{"lower bound ok", 100, false},
		{"typical buffer ok", 500, false},
		{"upper bound ok", 5000, false},
		{"below range rejected", 50, true},
		{"above range rejected", 6000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Build(encoded, tt.bufferMeters)
			if tt.wantErr {
				var appErr *common.AppError
				require.True(t, errors.As(err, &appErr))
				assert.Equal(t, common.CodeInvalidConfig, appErr.ErrorCode)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, c.Buffer)
		})
	}
}

func TestBuild_RejectsBadPolyline(t *testing.T) {
	_, err := Build("", 500)
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, common.CodeInvalidConfig, appErr.ErrorCode)
}

func TestBuild_MidpointInsideBuffer(t *testing.T) {
	c := buildTestCorridor(t, 500)

	assert.True(t, c.Contains(c.Midpoint))
	assert.InDelta(t, geo.PolylineLength(c.Centerline), c.LengthKm, 0.001)

	// The ring is closed and the bbox holds every centerline point.
	require.True(t, len(c.Buffer) > 3)
	assert.Equal(t, c.Buffer[0], c.Buffer[len(c.Buffer)-1])
	for _, p := range c.Centerline {
		assert.True(t, p.Lat >= c.BBox.MinLat && p.Lat <= c.BBox.MaxLat)
		assert.True(t, p.Lng >= c.BBox.MinLng && p.Lng <= c.BBox.MaxLng)
	}
}

func TestContains(t *testing.T) {
	c := buildTestCorridor(t, 500)

	onLine := geo.Point{Lat: 48.8566, Lng: 2.3450}
	nearLine := geo.Point{Lat: 48.8590, Lng: 2.3450}  // ~270 m north
	farFromLine := geo.Point{Lat: 48.880, Lng: 2.3450} // ~2.6 km north

	assert.True(t, c.Contains(onLine))
	assert.True(t, c.Contains(nearLine))
	assert.False(t, c.Contains(farFromLine))
}

func TestIntersections_RouteCrossingCorridor(t *testing.T) {
	c := buildTestCorridor(t, 500)

	// South to north, perpendicular to the corridor. Only the middle slice
	// of the route is inside the 500 m buffer.
	route := []geo.Point{
		{Lat: 48.8300, Lng: 2.3450},
		{Lat: 48.8566, Lng: 2.3450},
		{Lat: 48.8800, Lng: 2.3450},
	}
	routeLen := geo.PolylineLength(route)

	result := c.Intersections(route, routeLen)
	require.Len(t, result, 1)

	seg := result[0]
	// 500 m either side of the centerline is about 1 km inside.
	assert.InDelta(t, 1.0, seg.DistanceKm, 0.2)
	assert.True(t, seg.EntryPoint.Lat < seg.ExitPoint.Lat)
	assert.InDelta(t, seg.DistanceKm/routeLen*100, seg.PercentageOfRoute, 0.5)
}

func TestIntersections_RouteFullyInside(t *testing.T) {
	c := buildTestCorridor(t, 500)

	route := []geo.Point{
		{Lat: 48.8566, Lng: 2.3300},
		{Lat: 48.8566, Lng: 2.3600},
	}
	routeLen := geo.PolylineLength(route)

	result := c.Intersections(route, routeLen)
	require.Len(t, result, 1)
	assert.InDelta(t, 100.0, result[0].PercentageOfRoute, 0.5)
}

func TestIntersections_RouteOutside(t *testing.T) {
	c := buildTestCorridor(t, 500)

	route := []geo.Point{
		{Lat: 48.9000, Lng: 2.3300},
		{Lat: 48.9000, Lng: 2.3600},
	}
	assert.Empty(t, c.Intersections(route, geo.PolylineLength(route)))
}

func TestIntersections_DisjointStretches(t *testing.T) {
	c := buildTestCorridor(t, 500)

	// In, out to the north, back in, out again.
	route := []geo.Point{
		{Lat: 48.8566, Lng: 2.3300},
		{Lat: 48.8800, Lng: 2.3400},
		{Lat: 48.8566, Lng: 2.3500},
		{Lat: 48.8300, Lng: 2.3600},
	}
	result := c.Intersections(route, geo.PolylineLength(route))
	assert.Len(t, result, 2)
}
