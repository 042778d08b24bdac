package contacts

import (
	"time"

	"github.com/chauffio/chauffio/internal/grids"
	"github.com/google/uuid"
)

// Contact is a billed party: a private client or a partner with a contract.
type Contact struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	Name           string    `json:"name" db:"name"`
	Email          string    `json:"email,omitempty" db:"email"`
	IsPartner      bool      `json:"is_partner" db:"is_partner"`

	PartnerContract *PartnerContract `json:"partner_contract,omitempty"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PartnerContract carries the negotiated catalog assignments of a partner.
type PartnerContract struct {
	ID                uuid.UUID `json:"id" db:"id"`
	ContactID         uuid.UUID `json:"contact_id" db:"contact_id"`
	CommissionPercent float64   `json:"commission_percent" db:"commission_percent"`
	PaymentTermsDays  *int      `json:"payment_terms_days,omitempty" db:"payment_terms_days"`
	IsActive          bool      `json:"is_active" db:"is_active"`

	RouteAssignments     []grids.RouteAssignment     `json:"route_assignments,omitempty"`
	ExcursionAssignments []grids.ExcursionAssignment `json:"excursion_assignments,omitempty"`
	DispoAssignments     []grids.DispoAssignment     `json:"dispo_assignments,omitempty"`
}
