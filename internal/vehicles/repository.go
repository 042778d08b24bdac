package vehicles

import (
	"context"
	"errors"
	"fmt"

	"github.com/chauffio/chauffio/pkg/common"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles database operations for vehicle categories
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new vehicles repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const categoryColumns = `id, organization_id, code, name, price_multiplier,
	default_rate_per_km, default_rate_per_hour, regulatory_class, fuel_type,
	is_active, created_at, updated_at`

// GetCategory loads a vehicle category by id.
func (r *Repository) GetCategory(ctx context.Context, orgID, categoryID uuid.UUID) (*Category, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM vehicle_categories
		WHERE organization_id = $1 AND id = $2
	`, categoryColumns)

	var c Category
	err := r.db.QueryRow(ctx, query, orgID, categoryID).Scan(
		&c.ID, &c.OrganizationID, &c.Code, &c.Name, &c.PriceMultiplier,
		&c.DefaultRatePerKm, &c.DefaultRatePerHour, &c.RegulatoryClass, &c.FuelType,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("vehicle category not found", err)
		}
		return nil, fmt.Errorf("failed to get vehicle category: %w", err)
	}
	return &c, nil
}

// ListActiveCategories returns the organization's active categories.
func (r *Repository) ListActiveCategories(ctx context.Context, orgID uuid.UUID) ([]Category, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM vehicle_categories
		WHERE organization_id = $1 AND is_active = true
		ORDER BY code
	`, categoryColumns)

	rows, err := r.db.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicle categories: %w", err)
	}
	defer rows.Close()

	var result []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(
			&c.ID, &c.OrganizationID, &c.Code, &c.Name, &c.PriceMultiplier,
			&c.DefaultRatePerKm, &c.DefaultRatePerHour, &c.RegulatoryClass, &c.FuelType,
			&c.IsActive, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
