package quotes

import (
	"time"

	"github.com/chauffio/chauffio/internal/grids"
	"github.com/google/uuid"
)

// Status is the lifecycle state of a quote.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSent      Status = "SENT"
	StatusViewed    Status = "VIEWED"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
	StatusExpired   Status = "EXPIRED"
	StatusCancelled Status = "CANCELLED"
)

// LineType classifies a quote line.
type LineType string

const (
	LineCalculated  LineType = "CALCULATED"
	LineManual      LineType = "MANUAL"
	LineOptionalFee LineType = "OPTIONAL_FEE"
	LinePromotion   LineType = "PROMOTION"
)

// Line is one billable row of a quote.
type Line struct {
	ID               uuid.UUID `json:"id" db:"id"`
	QuoteID          uuid.UUID `json:"quote_id" db:"quote_id"`
	Type             LineType  `json:"type" db:"type"`
	Description      string    `json:"description" db:"description"`
	Quantity         float64   `json:"quantity" db:"quantity"`
	UnitPriceExclVat float64   `json:"unit_price_excl_vat" db:"unit_price_excl_vat"`
	VatRate          float64   `json:"vat_rate" db:"vat_rate"`
	TotalExclVat     float64   `json:"total_excl_vat" db:"total_excl_vat"`
	TotalVat         float64   `json:"total_vat" db:"total_vat"`
}

// Quote is a priced commercial proposal.
type Quote struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	Reference      string    `json:"reference" db:"reference"`
	ContactID      uuid.UUID `json:"contact_id" db:"contact_id"`

	Status     Status     `json:"status" db:"status"`
	ValidUntil *time.Time `json:"valid_until,omitempty" db:"valid_until"`
	Notes      string     `json:"notes,omitempty" db:"notes"`

	OrderID           *uuid.UUID `json:"order_id,omitempty" db:"order_id"`
	PricingSnapshotID *uuid.UUID `json:"pricing_snapshot_id,omitempty" db:"pricing_snapshot_id"`

	EndCustomerName string         `json:"end_customer_name,omitempty" db:"end_customer_name"`
	TripType        grids.TripType `json:"trip_type" db:"trip_type"`
	PickupAt        *time.Time     `json:"pickup_at,omitempty" db:"pickup_at"`
	PickupAddress   string         `json:"pickup_address,omitempty" db:"pickup_address"`
	DropoffAddress  string         `json:"dropoff_address,omitempty" db:"dropoff_address"`

	Lines []Line `json:"lines,omitempty"`

	SentAt      *time.Time `json:"sent_at,omitempty" db:"sent_at"`
	ViewedAt    *time.Time `json:"viewed_at,omitempty" db:"viewed_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty" db:"accepted_at"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty" db:"rejected_at"`
	ExpiredAt   *time.Time `json:"expired_at,omitempty" db:"expired_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty" db:"cancelled_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Order is created when a quote is accepted. Missions attach to it.
type Order struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	Reference      string    `json:"reference" db:"reference"`
	QuoteID        uuid.UUID `json:"quote_id" db:"quote_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// AuditEntry records one status change of a quote.
type AuditEntry struct {
	ID         uuid.UUID `json:"id" db:"id"`
	QuoteID    uuid.UUID `json:"quote_id" db:"quote_id"`
	FromStatus Status    `json:"from_status" db:"from_status"`
	ToStatus   Status    `json:"to_status" db:"to_status"`
	Reason     string    `json:"reason,omitempty" db:"reason"`
	ChangedBy  string    `json:"changed_by,omitempty" db:"changed_by"`
	ChangedAt  time.Time `json:"changed_at" db:"changed_at"`
}
