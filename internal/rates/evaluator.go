package rates

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chauffio/chauffio/internal/zones"
	"github.com/chauffio/chauffio/pkg/common"
)

// weekendDays is the day-list default when a rate configures none.
var weekendDays = map[int]bool{0: true, 6: true}

// ParseHHMM converts "22:30" to minutes since midnight.
func ParseHHMM(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// TimeInRange reports whether the wall-clock minute falls in [start, end).
// Overnight windows (start > end) wrap midnight as two arcs.
func TimeInRange(minuteOfDay, startMinutes, endMinutes int) bool {
	if startMinutes == endMinutes {
		return false
	}
	if startMinutes < endMinutes {
		return minuteOfDay >= startMinutes && minuteOfDay < endMinutes
	}
	return minuteOfDay >= startMinutes || minuteOfDay < endMinutes
}

// DayMatches checks a weekday (0=Sunday) against a comma-separated day list.
// An empty list means weekend.
func DayMatches(day int, daysCSV string) bool {
	daysCSV = strings.TrimSpace(daysCSV)
	if daysCSV == "" {
		return weekendDays[day]
	}
	for _, part := range strings.Split(daysCSV, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if d == day {
			return true
		}
	}
	return false
}

// Matches reports whether the rate triggers at the given local time. Stored
// times are wall-clock values and the caller is expected to pass a time
// already in the organization's timezone.
func (r *AdvancedRate) Matches(at time.Time) bool {
	if !r.IsActive {
		return false
	}

	switch r.AppliesTo {
	case RateNight:
		start, err := ParseHHMM(r.StartTime)
		if err != nil {
			return false
		}
		end, err := ParseHHMM(r.EndTime)
		if err != nil {
			return false
		}
		return TimeInRange(at.Hour()*60+at.Minute(), start, end)
	case RateWeekend:
		return DayMatches(int(at.Weekday()), r.DaysOfWeek)
	default:
		return false
	}
}

// Adjust applies the rate to a price.
func (r *AdvancedRate) Adjust(price float64) float64 {
	switch r.AdjustmentType {
	case AdjustmentPercentage:
		return price * (1 + r.Value/100)
	case AdjustmentFixedAmount:
		return price + r.Value
	default:
		return price
	}
}

// ApplyAdvancedRates runs every matching rate in descending priority,
// producing one audit rule per applied rate.
func ApplyAdvancedRates(price float64, advancedRates []AdvancedRate, at time.Time) (float64, []AppliedRule) {
	ordered := make([]AdvancedRate, len(advancedRates))
	copy(ordered, advancedRates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	var rules []AppliedRule
	for _, r := range ordered {
		if !r.Matches(at) {
			continue
		}
		before := price
		price = common.Round2(r.Adjust(price))
		rules = append(rules, AppliedRule{
			Type:        RuleAdvancedRate,
			Label:       r.Name,
			PriceBefore: before,
			PriceAfter:  price,
			Details: map[string]interface{}{
				"rate_id":         r.ID.String(),
				"applies_to":      string(r.AppliesTo),
				"adjustment_type": string(r.AdjustmentType),
				"value":           r.Value,
			},
		})
	}
	return price, rules
}

// InSeason reports whether pickupAt falls in [startDate, endDate]. The end
// date means end-of-day, so comparison extends it by 24 hours.
func (m *SeasonalMultiplier) InSeason(pickupAt time.Time) bool {
	if !m.IsActive {
		return false
	}
	if pickupAt.Before(m.StartDate) {
		return false
	}
	return pickupAt.Before(m.EndDate.Add(24 * time.Hour))
}

// ApplySeasonalMultipliers scales the price by every in-season multiplier in
// descending priority.
func ApplySeasonalMultipliers(price float64, multipliers []SeasonalMultiplier, pickupAt time.Time) (float64, []AppliedRule) {
	ordered := make([]SeasonalMultiplier, len(multipliers))
	copy(ordered, multipliers)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	var rules []AppliedRule
	for _, m := range ordered {
		if !m.InSeason(pickupAt) {
			continue
		}
		before := price
		price = common.Round2(price * m.Multiplier)
		rules = append(rules, AppliedRule{
			Type:        RuleSeasonalMultiplier,
			Label:       m.Name,
			PriceBefore: before,
			PriceAfter:  price,
			Details: map[string]interface{}{
				"multiplier_id": m.ID.String(),
				"multiplier":    m.Multiplier,
			},
		})
	}
	return price, rules
}

// ZoneMultiplier resolves the zone-based price multiplier: the larger of
// the pickup and dropoff zone multipliers, default 1.0.
func ZoneMultiplier(pickupZone, dropoffZone *zones.Zone) (float64, string) {
	multiplier := 1.0
	side := ""

	if pickupZone != nil && pickupZone.Multiplier() > multiplier {
		multiplier = pickupZone.Multiplier()
		side = "pickup"
	}
	if dropoffZone != nil && dropoffZone.Multiplier() > multiplier {
		multiplier = dropoffZone.Multiplier()
		side = "dropoff"
	}
	return multiplier, side
}

// ApplyZoneMultiplier applies the zone multiplier once and records which
// side supplied it.
func ApplyZoneMultiplier(price float64, pickupZone, dropoffZone *zones.Zone) (float64, *AppliedRule) {
	multiplier, side := ZoneMultiplier(pickupZone, dropoffZone)
	if multiplier == 1.0 {
		return price, nil
	}

	after := common.Round2(price * multiplier)
	rule := &AppliedRule{
		Type:        RuleZoneMultiplier,
		Label:       "Zone multiplier",
		PriceBefore: price,
		PriceAfter:  after,
		Details: map[string]interface{}{
			"multiplier": multiplier,
			"side":       side,
		},
	}
	return after, rule
}
