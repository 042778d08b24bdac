package contacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chauffio/chauffio/pkg/common"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles database operations for contacts
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new contacts repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetContact loads a contact and, for partners, the contract with its three
// assignment lists. Assignments are stored as JSONB snapshots of the
// catalog entries plus negotiated overrides.
func (r *Repository) GetContact(ctx context.Context, orgID, contactID uuid.UUID) (*Contact, error) {
	query := `
		SELECT id, organization_id, name, email, is_partner, created_at, updated_at
		FROM contacts
		WHERE organization_id = $1 AND id = $2
	`

	var c Contact
	err := r.db.QueryRow(ctx, query, orgID, contactID).Scan(
		&c.ID, &c.OrganizationID, &c.Name, &c.Email, &c.IsPartner,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("contact not found", err).
				WithErrorCode(common.CodeUnknownContact)
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	if c.IsPartner {
		contract, err := r.getContract(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		c.PartnerContract = contract
	}
	return &c, nil
}

func (r *Repository) getContract(ctx context.Context, contactID uuid.UUID) (*PartnerContract, error) {
	query := `
		SELECT id, contact_id, commission_percent, payment_terms_days, is_active,
			   route_assignments, excursion_assignments, dispo_assignments
		FROM partner_contracts
		WHERE contact_id = $1 AND is_active = true
	`

	var (
		contract       PartnerContract
		routesJSON     []byte
		excursionsJSON []byte
		disposJSON     []byte
	)
	err := r.db.QueryRow(ctx, query, contactID).Scan(
		&contract.ID, &contract.ContactID, &contract.CommissionPercent,
		&contract.PaymentTermsDays, &contract.IsActive,
		&routesJSON, &excursionsJSON, &disposJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get partner contract: %w", err)
	}

	if err := decodeAssignments(routesJSON, &contract.RouteAssignments); err != nil {
		return nil, err
	}
	if err := decodeAssignments(excursionsJSON, &contract.ExcursionAssignments); err != nil {
		return nil, err
	}
	if err := decodeAssignments(disposJSON, &contract.DispoAssignments); err != nil {
		return nil, err
	}
	return &contract, nil
}

func decodeAssignments(data []byte, dest interface{}) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode contract assignments: %w", err)
	}
	return nil
}
