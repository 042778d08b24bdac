package common

import "math"

// Monetary amounts are float64 euros rounded half-up at boundaries, never
// mid-formula. Distances round to 2 dp internally, multipliers to 3 dp.

// Round2 rounds to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round3 rounds to 3 decimal places.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Round1 rounds to 1 decimal place, used for display distances.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// SafePercent returns part/total*100, defined as 0 when total <= 0.
func SafePercent(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return part / total * 100
}
