package vehicles

import (
	"time"

	"github.com/google/uuid"
)

// RegulatoryClass separates light vehicles from heavy coach regulation.
type RegulatoryClass string

const (
	ClassLight RegulatoryClass = "LIGHT"
	ClassHeavy RegulatoryClass = "HEAVY"
)

// Category is a bookable vehicle class (Berline, Van, Autocar).
type Category struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	Code           string    `json:"code" db:"code"`
	Name           string    `json:"name" db:"name"`

	PriceMultiplier float64 `json:"price_multiplier" db:"price_multiplier"`

	// Category-specific rates. When both are set they replace the
	// organization base rates and the multiplier is not applied.
	DefaultRatePerKm   *float64 `json:"default_rate_per_km,omitempty" db:"default_rate_per_km"`
	DefaultRatePerHour *float64 `json:"default_rate_per_hour,omitempty" db:"default_rate_per_hour"`

	RegulatoryClass RegulatoryClass `json:"regulatory_class" db:"regulatory_class"`
	FuelType        string          `json:"fuel_type" db:"fuel_type"`

	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HasOwnRates reports whether the category carries a full rate pair of its
// own. Partial configuration falls back to organization rates.
func (c *Category) HasOwnRates() bool {
	return c.DefaultRatePerKm != nil && c.DefaultRatePerHour != nil
}

// Multiplier returns the category price multiplier, defaulting to 1.0.
func (c *Category) Multiplier() float64 {
	if c.PriceMultiplier <= 0 {
		return 1.0
	}
	return c.PriceMultiplier
}
