package geo

// PointInPolygon reports whether p lies inside the polygon described by ring
// using ray casting on the outer ring. Rings with fewer than 3 points never
// contain anything. Points exactly on an edge are resolved deterministically
// by the crossing test.
func PointInPolygon(p Point, ring []Point) bool {
	if len(ring) < 3 {
		return false
	}

	inside := false
	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		vi, vj := ring[i], ring[j]
		if (vi.Lat > p.Lat) != (vj.Lat > p.Lat) &&
			p.Lng < (vj.Lng-vi.Lng)*(p.Lat-vi.Lat)/(vj.Lat-vi.Lat)+vi.Lng {
			inside = !inside
		}
		j = i
	}
	return inside
}

// Centroid returns the arithmetic centroid of a ring. A closed ring (first
// point repeated last) is handled by dropping the duplicate.
func Centroid(ring []Point) Point {
	if len(ring) == 0 {
		return Point{}
	}

	points := ring
	if len(points) > 1 && points[0] == points[len(points)-1] {
		points = points[:len(points)-1]
	}

	var sumLat, sumLng float64
	for _, pt := range points {
		sumLat += pt.Lat
		sumLng += pt.Lng
	}
	n := float64(len(points))
	return Point{Lat: sumLat / n, Lng: sumLng / n}
}

// BoundingBox returns the axis-aligned bounding box of a point set.
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// Bounds computes the bounding box of points. Empty input yields a zero box.
func Bounds(points []Point) BoundingBox {
	if len(points) == 0 {
		return BoundingBox{}
	}

	box := BoundingBox{
		MinLat: points[0].Lat, MaxLat: points[0].Lat,
		MinLng: points[0].Lng, MaxLng: points[0].Lng,
	}
	for _, pt := range points[1:] {
		if pt.Lat < box.MinLat {
			box.MinLat = pt.Lat
		}
		if pt.Lat > box.MaxLat {
			box.MaxLat = pt.Lat
		}
		if pt.Lng < box.MinLng {
			box.MinLng = pt.Lng
		}
		if pt.Lng > box.MaxLng {
			box.MaxLng = pt.Lng
		}
	}
	return box
}
