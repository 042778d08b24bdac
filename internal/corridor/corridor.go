package corridor

import (
	"fmt"
	"math"

	"github.com/chauffio/chauffio/pkg/common"
	"github.com/chauffio/chauffio/pkg/geo"
)

// Buffer width bounds in metres. Below 100 m the buffer degenerates into the
// centerline, above 5 km it stops being a corridor.
const (
	MinBufferMeters = 100.0
	MaxBufferMeters = 5000.0
)

const metersPerDegreeLat = 111320.0

// Corridor is a polygon buffer around a route centerline.
type Corridor struct {
	Centerline   []geo.Point     `json:"centerline"`
	Buffer       []geo.Point     `json:"buffer"`
	BufferMeters float64         `json:"buffer_meters"`
	LengthKm     float64         `json:"length_km"`
	Midpoint     geo.Point       `json:"midpoint"`
	BBox         geo.BoundingBox `json:"bbox"`
}

// Intersection is one contiguous stretch of a route inside a corridor.
type Intersection struct {
	DistanceKm        float64   `json:"distance_km"`
	EntryPoint        geo.Point `json:"entry_point"`
	ExitPoint         geo.Point `json:"exit_point"`
	PercentageOfRoute float64   `json:"percentage_of_route"`
}

// Build decodes the polyline and buffers it by bufferMeters on each side.
func Build(encodedPolyline string, bufferMeters float64) (*Corridor, error) {
	if bufferMeters < MinBufferMeters || bufferMeters > MaxBufferMeters {
		return nil, common.NewUnprocessableError(common.CodeInvalidConfig,
			fmt.Sprintf("buffer must be between %.0f and %.0f meters, got %.0f",
				MinBufferMeters, MaxBufferMeters, bufferMeters))
	}

	centerline, err := geo.DecodePolyline(encodedPolyline)
	if err != nil {
		return nil, common.NewUnprocessableError(common.CodeInvalidConfig,
			"polyline could not be decoded")
	}
	centerline = geo.Simplify(centerline, geo.DefaultSimplifyThresholdKm)

	ring := bufferRing(centerline, bufferMeters)

	lengthKm := geo.PolylineLength(centerline)
	return &Corridor{
		Centerline:   centerline,
		Buffer:       ring,
		BufferMeters: bufferMeters,
		LengthKm:     lengthKm,
		Midpoint:     pointAtDistance(centerline, lengthKm/2),
		BBox:         geo.Bounds(ring),
	}, nil
}

// Contains reports whether the point lies inside the buffered geometry.
func (c *Corridor) Contains(p geo.Point) bool {
	return geo.PointInPolygon(p, c.Buffer)
}

// Intersections walks the route and returns every disjoint stretch inside
// the corridor. Crossing points are approximated by bisection on the
// entering or leaving segment.
func (c *Corridor) Intersections(route []geo.Point, routeLengthKm float64) []Intersection {
	if len(route) < 2 {
		return nil
	}

	var (
		result  []Intersection
		inside  = c.Contains(route[0])
		entry   geo.Point
		current float64
	)
	if inside {
		entry = route[0]
	}

	for i := 0; i < len(route)-1; i++ {
		a, b := route[i], route[i+1]
		segKm := geo.Distance(a, b)
		bInside := c.Contains(b)

		switch {
		case inside && bInside:
			current += segKm
		case inside && !bInside:
			exit := geo.CrossingPoint(a, b, c.Contains)
			current += geo.Distance(a, exit)
			result = append(result, c.intersection(entry, exit, current, routeLengthKm))
			current = 0
			inside = false
		case !inside && bInside:
			entry = geo.CrossingPoint(b, a, c.Contains)
			current = geo.Distance(entry, b)
			inside = true
		}
	}

	if inside {
		result = append(result, c.intersection(entry, route[len(route)-1], current, routeLengthKm))
	}
	return result
}

func (c *Corridor) intersection(entry, exit geo.Point, distanceKm, routeLengthKm float64) Intersection {
	pct := 0.0
	if routeLengthKm > 0 {
		pct = common.Round2(distanceKm / routeLengthKm * 100)
	}
	return Intersection{
		DistanceKm:        common.Round2(distanceKm),
		EntryPoint:        entry,
		ExitPoint:         exit,
		PercentageOfRoute: pct,
	}
}

// bufferRing offsets every centerline point perpendicular to its local
// heading, collecting the left side forward and the right side backward.
// The equirectangular offset is fine at buffer scale.
func bufferRing(centerline []geo.Point, bufferMeters float64) []geo.Point {
	if len(centerline) == 0 {
		return nil
	}
	if len(centerline) == 1 {
		return squareAround(centerline[0], bufferMeters)
	}

	left := make([]geo.Point, 0, len(centerline))
	right := make([]geo.Point, 0, len(centerline))
	for i, p := range centerline {
		heading := segmentHeading(centerline, i)
		left = append(left, offset(p, heading+math.Pi/2, bufferMeters))
		right = append(right, offset(p, heading-math.Pi/2, bufferMeters))
	}

	ring := make([]geo.Point, 0, len(left)+len(right)+1)
	ring = append(ring, left...)
	for i := len(right) - 1; i >= 0; i-- {
		ring = append(ring, right[i])
	}
	ring = append(ring, ring[0])
	return ring
}

// segmentHeading returns the heading at point i, averaging the adjacent
// segments for interior points.
func segmentHeading(centerline []geo.Point, i int) float64 {
	switch {
	case i == 0:
		return heading(centerline[0], centerline[1])
	case i == len(centerline)-1:
		return heading(centerline[i-1], centerline[i])
	default:
		h1 := heading(centerline[i-1], centerline[i])
		h2 := heading(centerline[i], centerline[i+1])
		return math.Atan2(
			(math.Sin(h1)+math.Sin(h2))/2,
			(math.Cos(h1)+math.Cos(h2))/2,
		)
	}
}

func heading(a, b geo.Point) float64 {
	dLat := b.Lat - a.Lat
	dLng := (b.Lng - a.Lng) * math.Cos(a.Lat*math.Pi/180)
	return math.Atan2(dLat, dLng)
}

func offset(p geo.Point, heading, meters float64) geo.Point {
	dLat := meters * math.Sin(heading) / metersPerDegreeLat
	dLng := meters * math.Cos(heading) / (metersPerDegreeLat * math.Cos(p.Lat*math.Pi/180))
	return geo.Point{Lat: p.Lat + dLat, Lng: p.Lng + dLng}
}

func squareAround(p geo.Point, meters float64) []geo.Point {
	dLat := meters / metersPerDegreeLat
	dLng := meters / (metersPerDegreeLat * math.Cos(p.Lat*math.Pi/180))
	return []geo.Point{
		{Lat: p.Lat - dLat, Lng: p.Lng - dLng},
		{Lat: p.Lat - dLat, Lng: p.Lng + dLng},
		{Lat: p.Lat + dLat, Lng: p.Lng + dLng},
		{Lat: p.Lat + dLat, Lng: p.Lng - dLng},
		{Lat: p.Lat - dLat, Lng: p.Lng - dLng},
	}
}

// pointAtDistance walks the centerline and returns the point at targetKm.
func pointAtDistance(centerline []geo.Point, targetKm float64) geo.Point {
	if len(centerline) == 0 {
		return geo.Point{}
	}
	remaining := targetKm
	for i := 0; i < len(centerline)-1; i++ {
		segKm := geo.Distance(centerline[i], centerline[i+1])
		if segKm >= remaining && segKm > 0 {
			return geo.Interpolate(centerline[i], centerline[i+1], remaining/segKm)
		}
		remaining -= segKm
	}
	return centerline[len(centerline)-1]
}
