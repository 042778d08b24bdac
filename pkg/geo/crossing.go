package geo

// crossingIterations bounds the bisection. 15 halvings resolve a segment to
// better than 1/32768 of its length.
const crossingIterations = 15

// CrossingPoint approximates where the straight segment between inside and
// outside crosses the boundary of the region described by contains. The
// inside point must satisfy contains and the outside point must not; the
// returned point is the last position the bisection still found inside.
func CrossingPoint(inside, outside Point, contains func(Point) bool) Point {
	lo, hi := inside, outside
	for i := 0; i < crossingIterations; i++ {
		mid := Midpoint(lo, hi)
		if contains(mid) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

// CrossingFraction runs the same bisection but reports the fraction of the
// way from a to b where the boundary sits, along with the crossing point.
func CrossingFraction(a, b Point, contains func(Point) bool) (Point, float64) {
	loT, hiT := 0.0, 1.0
	for i := 0; i < crossingIterations; i++ {
		midT := (loT + hiT) / 2
		if contains(Interpolate(a, b, midT)) {
			loT = midT
		} else {
			hiT = midT
		}
	}
	return Interpolate(a, b, loT), loT
}
