package zones

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chauffio/chauffio/pkg/geo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles database operations for zones
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new zones repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// ListActiveZones returns the active zones of an organization.
func (r *Repository) ListActiveZones(ctx context.Context, orgID uuid.UUID) ([]Zone, error) {
	query := `
		SELECT id, organization_id, code, name, type, ring, center_lat, center_lng,
			   radius_km, price_multiplier, priority, fixed_parking_surcharge,
			   fixed_access_fee, is_active, created_at, updated_at
		FROM pricing_zones
		WHERE organization_id = $1 AND is_active = true
		ORDER BY code
	`

	rows, err := r.db.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}
	defer rows.Close()

	var result []Zone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, z)
	}
	return result, rows.Err()
}

// GetZone loads a single zone by id.
func (r *Repository) GetZone(ctx context.Context, orgID, zoneID uuid.UUID) (*Zone, error) {
	query := `
		SELECT id, organization_id, code, name, type, ring, center_lat, center_lng,
			   radius_km, price_multiplier, priority, fixed_parking_surcharge,
			   fixed_access_fee, is_active, created_at, updated_at
		FROM pricing_zones
		WHERE organization_id = $1 AND id = $2
	`

	row := r.db.QueryRow(ctx, query, orgID, zoneID)
	z, err := scanZone(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get zone: %w", err)
	}
	return &z, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanZone(row rowScanner) (Zone, error) {
	var (
		z         Zone
		ringJSON  []byte
		centerLat *float64
		centerLng *float64
	)

	err := row.Scan(
		&z.ID,
		&z.OrganizationID,
		&z.Code,
		&z.Name,
		&z.Type,
		&ringJSON,
		&centerLat,
		&centerLng,
		&z.RadiusKm,
		&z.PriceMultiplier,
		&z.Priority,
		&z.FixedParkingSurcharge,
		&z.FixedAccessFee,
		&z.IsActive,
		&z.CreatedAt,
		&z.UpdatedAt,
	)
	if err != nil {
		return Zone{}, err
	}

	if len(ringJSON) > 0 {
		if err := json.Unmarshal(ringJSON, &z.Ring); err != nil {
			return Zone{}, fmt.Errorf("failed to decode zone ring: %w", err)
		}
	}
	if centerLat != nil && centerLng != nil {
		z.Center = &geo.Point{Lat: *centerLat, Lng: *centerLng}
	}
	return z, nil
}
