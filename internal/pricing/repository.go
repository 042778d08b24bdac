package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chauffio/chauffio/internal/costing"
	"github.com/chauffio/chauffio/internal/rates"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles database operations for pricing
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new pricing repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetSettings loads the organization pricing settings. Organizations
// without a row run entirely on defaults.
func (r *Repository) GetSettings(ctx context.Context, orgID uuid.UUID) (*costing.OrganizationPricingSettings, error) {
	query := `
		SELECT base_rate_per_km, base_rate_per_hour, target_margin_percent,
			   fuel_consumption_l_100km, fuel_price_per_liter, toll_cost_per_km,
			   wear_cost_per_km, driver_hourly_cost,
			   green_margin_threshold_percent, orange_margin_threshold_percent
		FROM organization_pricing_settings
		WHERE organization_id = $1
	`

	var s costing.OrganizationPricingSettings
	err := r.db.QueryRow(ctx, query, orgID).Scan(
		&s.BaseRatePerKm, &s.BaseRatePerHour, &s.TargetMarginPercent,
		&s.FuelConsumptionL100, &s.FuelPricePerLiter, &s.TollCostPerKm,
		&s.WearCostPerKm, &s.DriverHourlyCost,
		&s.GreenMarginThresholdPercent, &s.OrangeMarginThresholdPercent,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &costing.OrganizationPricingSettings{}, nil
		}
		return nil, fmt.Errorf("failed to get pricing settings: %w", err)
	}
	return &s, nil
}

// ListAdvancedRates returns the organization's advanced rates, active first
// by priority.
func (r *Repository) ListAdvancedRates(ctx context.Context, orgID uuid.UUID) ([]rates.AdvancedRate, error) {
	query := `
		SELECT id, name, applies_to, start_time, end_time, days_of_week,
			   adjustment_type, value, priority, is_active
		FROM advanced_rates
		WHERE organization_id = $1 AND is_active = true
		ORDER BY priority DESC
	`

	rows, err := r.db.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list advanced rates: %w", err)
	}
	defer rows.Close()

	var result []rates.AdvancedRate
	for rows.Next() {
		var a rates.AdvancedRate
		if err := rows.Scan(&a.ID, &a.Name, &a.AppliesTo, &a.StartTime, &a.EndTime,
			&a.DaysOfWeek, &a.AdjustmentType, &a.Value, &a.Priority, &a.IsActive); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// ListSeasonalMultipliers returns the organization's seasonal multipliers.
func (r *Repository) ListSeasonalMultipliers(ctx context.Context, orgID uuid.UUID) ([]rates.SeasonalMultiplier, error) {
	query := `
		SELECT id, name, start_date, end_date, multiplier, priority, is_active
		FROM seasonal_multipliers
		WHERE organization_id = $1 AND is_active = true
		ORDER BY priority DESC
	`

	rows, err := r.db.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasonal multipliers: %w", err)
	}
	defer rows.Close()

	var result []rates.SeasonalMultiplier
	for rows.Next() {
		var m rates.SeasonalMultiplier
		if err := rows.Scan(&m.ID, &m.Name, &m.StartDate, &m.EndDate,
			&m.Multiplier, &m.Priority, &m.IsActive); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// SaveSnapshot persists a computed result as a JSONB snapshot. Snapshots
// are immutable; quotes reference them by id.
func (r *Repository) SaveSnapshot(ctx context.Context, orgID uuid.UUID, req Request, result *Result) (uuid.UUID, error) {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode pricing request: %w", err)
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode pricing result: %w", err)
	}

	query := `
		INSERT INTO pricing_snapshots (id, organization_id, contact_id, request, result, calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	id := uuid.New()
	err = r.db.QueryRow(ctx, query, id, orgID, req.ContactID, reqJSON, resultJSON, result.CalculatedAt).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save pricing snapshot: %w", err)
	}
	return id, nil
}

// GetSnapshot loads a stored pricing result.
func (r *Repository) GetSnapshot(ctx context.Context, orgID, snapshotID uuid.UUID) (*Result, error) {
	query := `
		SELECT result FROM pricing_snapshots
		WHERE organization_id = $1 AND id = $2
	`

	var data []byte
	err := r.db.QueryRow(ctx, query, orgID, snapshotID).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pricing snapshot: %w", err)
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode pricing snapshot: %w", err)
	}
	return &result, nil
}
