package geo

import (
	"errors"
	"math"
	"strings"
)

// ErrPolylineTooShort is returned when a decoded polyline has fewer than two
// points, which is not enough for any segmentation work.
var ErrPolylineTooShort = errors.New("polyline must decode to at least 2 points")

// DefaultSimplifyThresholdKm is the minimum spacing kept between consecutive
// polyline points after simplification.
const DefaultSimplifyThresholdKm = 0.05

const polylinePrecision = 1e5

// DecodePolyline decodes a Google-encoded polyline string into points.
func DecodePolyline(encoded string) ([]Point, error) {
	var points []Point
	var lat, lng int64

	for i := 0; i < len(encoded); {
		dLat, next, err := decodeChunk(encoded, i)
		if err != nil {
			return nil, err
		}
		i = next
		lat += dLat

		dLng, next, err := decodeChunk(encoded, i)
		if err != nil {
			return nil, err
		}
		i = next
		lng += dLng

		points = append(points, Point{
			Lat: float64(lat) / polylinePrecision,
			Lng: float64(lng) / polylinePrecision,
		})
	}

	if len(points) < 2 {
		return nil, ErrPolylineTooShort
	}
	return points, nil
}

func decodeChunk(encoded string, start int) (int64, int, error) {
	var result int64
	var shift uint
	i := start

	for {
		if i >= len(encoded) {
			return 0, i, errors.New("truncated polyline chunk")
		}
		b := int64(encoded[i]) - 63
		if b < 0 {
			return 0, i, errors.New("invalid polyline character")
		}
		i++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}

	if result&1 != 0 {
		return ^(result >> 1), i, nil
	}
	return result >> 1, i, nil
}

// EncodePolyline encodes points with the Google polyline algorithm.
func EncodePolyline(points []Point) string {
	var sb strings.Builder
	var prevLat, prevLng int64

	for _, pt := range points {
		lat := int64(math.Round(pt.Lat * polylinePrecision))
		lng := int64(math.Round(pt.Lng * polylinePrecision))
		encodeValue(&sb, lat-prevLat)
		encodeValue(&sb, lng-prevLng)
		prevLat, prevLng = lat, lng
	}
	return sb.String()
}

func encodeValue(sb *strings.Builder, v int64) {
	v <<= 1
	if v < 0 {
		v = ^v
	}
	for v >= 0x20 {
		sb.WriteByte(byte((0x20 | (v & 0x1f)) + 63))
		v >>= 5
	}
	sb.WriteByte(byte(v + 63))
}

// Simplify drops consecutive points closer than thresholdKm while always
// preserving both endpoints. A threshold of 0 keeps every point.
func Simplify(points []Point, thresholdKm float64) []Point {
	if len(points) <= 2 || thresholdKm <= 0 {
		return points
	}

	simplified := []Point{points[0]}
	for i := 1; i < len(points)-1; i++ {
		if Distance(simplified[len(simplified)-1], points[i]) >= thresholdKm {
			simplified = append(simplified, points[i])
		}
	}
	return append(simplified, points[len(points)-1])
}

// PolylineLength accumulates the haversine length of a point sequence in km.
func PolylineLength(points []Point) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}
