package subcontracting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chauffio/chauffio/pkg/common"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles database operations for subcontracting
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new subcontracting repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// ListActiveSubcontractors returns the organization's active subcontractors
// with their category and zone coverage.
func (r *Repository) ListActiveSubcontractors(ctx context.Context, orgID uuid.UUID) ([]Subcontractor, error) {
	query := `
		SELECT id, organization_id, name, is_active, vehicle_category_ids,
			   operating_zone_ids, all_zones, rate_per_km, rate_per_hour,
			   minimum_fare, availability, avg_rating
		FROM subcontractors
		WHERE organization_id = $1 AND is_active = true
	`
	rows, err := r.db.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subcontractors: %w", err)
	}
	defer rows.Close()

	var result []Subcontractor
	for rows.Next() {
		var s Subcontractor
		if err := rows.Scan(&s.ID, &s.OrganizationID, &s.Name, &s.IsActive,
			&s.VehicleCategoryIDs, &s.OperatingZoneIDs, &s.AllZones,
			&s.RatePerKm, &s.RatePerHour, &s.MinimumFare,
			&s.Availability, &s.AvgRating); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// ListActiveEmptyLegs returns empty legs whose window has not ended.
func (r *Repository) ListActiveEmptyLegs(ctx context.Context, orgID uuid.UUID, now time.Time) ([]EmptyLeg, error) {
	query := `
		SELECT id, organization_id, vehicle_id,
			   from_lat, from_lng, to_lat, to_lng,
			   window_start, window_end, max_match_distance_km, is_active
		FROM empty_legs
		WHERE organization_id = $1 AND is_active = true AND window_end > $2
	`
	rows, err := r.db.Query(ctx, query, orgID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list empty legs: %w", err)
	}
	defer rows.Close()

	var result []EmptyLeg
	for rows.Next() {
		var e EmptyLeg
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.VehicleID,
			&e.From.Lat, &e.From.Lng, &e.To.Lat, &e.To.Lng,
			&e.WindowStart, &e.WindowEnd, &e.MaxMatchDistanceKm, &e.IsActive); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// Subcontract hands a mission to a subcontractor atomically: the mission is
// flagged, the internal vehicle and driver are released, the assignment
// block is stripped from the stored trip analysis and an audit entry is
// written.
func (r *Repository) Subcontract(ctx context.Context, orgID, missionID, subcontractorID uuid.UUID, agreedPrice float64, changedBy string, now time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	update := `
		UPDATE missions
		SET is_subcontracted = true,
			subcontractor_id = $1,
			subcontract_price = $2,
			vehicle_id = NULL,
			driver_id = NULL,
			trip_analysis = trip_analysis - 'assignment',
			updated_at = $3
		WHERE organization_id = $4 AND id = $5
	`
	tag, err := tx.Exec(ctx, update, subcontractorID, agreedPrice, now, orgID, missionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NewNotFoundError("mission not found", nil)
		}
		return fmt.Errorf("failed to subcontract mission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFoundError("mission not found", nil)
	}

	audit := `
		INSERT INTO mission_audit_log (id, mission_id, action, details, changed_by, changed_at)
		VALUES ($1, $2, 'SUBCONTRACTED', $3, $4, $5)
	`
	details := fmt.Sprintf(`{"subcontractor_id": %q, "agreed_price": %.2f}`, subcontractorID, agreedPrice)
	if _, err := tx.Exec(ctx, audit, uuid.New(), missionID, details, changedBy, now); err != nil {
		return fmt.Errorf("failed to write mission audit entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit subcontract: %w", err)
	}
	return nil
}
