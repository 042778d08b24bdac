package subcontracting

import (
	"sort"

	"github.com/chauffio/chauffio/pkg/common"
	"github.com/google/uuid"
)

// IsUnprofitable reports whether a mission's margin falls at or under the
// threshold. A nil threshold means 0%.
func IsUnprofitable(marginPercent float64, threshold *float64) bool {
	limit := 0.0
	if threshold != nil {
		limit = *threshold
	}
	return marginPercent <= limit
}

// SuggestedPrice is the price to offer a subcontractor: the larger of the
// distance and hourly rates, floored at the minimum fare.
func SuggestedPrice(sub *Subcontractor, distanceKm, durationHours float64) float64 {
	ratePerKm := DefaultRatePerKm
	if sub.RatePerKm != nil {
		ratePerKm = *sub.RatePerKm
	}
	ratePerHour := DefaultRatePerHour
	if sub.RatePerHour != nil {
		ratePerHour = *sub.RatePerHour
	}

	price := distanceKm * ratePerKm
	if byHour := durationHours * ratePerHour; byHour > price {
		price = byHour
	}
	if sub.MinimumFare != nil && price < *sub.MinimumFare {
		price = *sub.MinimumFare
	}
	return common.Round2(price)
}

// ZoneScore rates the zone coverage of a subcontractor: 100 when both ends
// are covered, 50 for one, 0 for none.
func ZoneScore(sub *Subcontractor, pickupZoneIDs, dropoffZoneIDs []uuid.UUID) int {
	if sub.AllZones {
		return 100
	}

	score := 0
	if intersects(sub.OperatingZoneIDs, pickupZoneIDs) {
		score += 50
	}
	if intersects(sub.OperatingZoneIDs, dropoffZoneIDs) {
		score += 50
	}
	return score
}

func intersects(a, b []uuid.UUID) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// servesCategory reports whether the subcontractor covers the vehicle
// category. An empty list means any.
func servesCategory(sub *Subcontractor, categoryID uuid.UUID) bool {
	if len(sub.VehicleCategoryIDs) == 0 {
		return true
	}
	for _, id := range sub.VehicleCategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

// Recommend compares the subcontracted margin against the internal one. The
// stronger option must win by more than 5% of the selling price, otherwise
// the decision goes to review.
func Recommend(sellingPrice, internalCost, subcontractPrice float64) Recommendation {
	internalMargin := sellingPrice - internalCost
	subMargin := sellingPrice - subcontractPrice
	band := sellingPrice * 0.05

	switch {
	case subMargin-internalMargin > band:
		return RecommendSubcontract
	case internalMargin-subMargin > band:
		return RecommendInternal
	default:
		return RecommendReview
	}
}

// MatchScore is the 0-100 composite used to rank candidates: zone coverage
// weighs 40, vehicle fit 30, availability 20 and past performance 10.
func MatchScore(sub *Subcontractor, profile MissionProfile) float64 {
	score := float64(ZoneScore(sub, profile.PickupZoneIDs, profile.DropoffZoneIDs)) * 0.4

	if servesCategory(sub, profile.VehicleCategoryID) {
		score += 30
	}

	switch sub.Availability {
	case AvailabilityAvailable:
		score += 20
	case AvailabilityBusy:
		score += 10
	}

	rating := sub.AvgRating
	if rating > 5 {
		rating = 5
	}
	if rating > 0 {
		score += rating / 5 * 10
	}
	return score
}

// RankCandidates filters and scores subcontractors for a mission, best
// first.
func RankCandidates(subs []Subcontractor, profile MissionProfile) []Candidate {
	var out []Candidate
	for i := range subs {
		sub := subs[i]
		if !sub.IsActive {
			continue
		}
		if !servesCategory(&sub, profile.VehicleCategoryID) {
			continue
		}

		price := SuggestedPrice(&sub, profile.DistanceKm, profile.DurationHours)
		out = append(out, Candidate{
			Subcontractor:  sub,
			SuggestedPrice: price,
			ZoneScore:      ZoneScore(&sub, profile.PickupZoneIDs, profile.DropoffZoneIDs),
			MatchScore:     MatchScore(&sub, profile),
			Margin:         common.Round2(profile.SellingPrice - price),
			Recommendation: Recommend(profile.SellingPrice, profile.InternalCost, price),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MatchScore > out[j].MatchScore
	})
	return out
}
