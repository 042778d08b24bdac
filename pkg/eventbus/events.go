package eventbus

import (
	"time"

	"github.com/google/uuid"
)

// QuoteStatusChangedData is emitted after every successful quote transition.
type QuoteStatusChangedData struct {
	QuoteID        uuid.UUID  `json:"quote_id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	PreviousStatus string     `json:"previous_status"`
	NewStatus      string     `json:"new_status"`
	UserID         *uuid.UUID `json:"user_id,omitempty"`
	Reason         *string    `json:"reason,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}

// QuoteAcceptedData is emitted when a quote reaches ACCEPTED, carrying the
// order it was linked to so downstream planners can pick it up.
type QuoteAcceptedData struct {
	QuoteID        uuid.UUID `json:"quote_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	OrderID        uuid.UUID `json:"order_id"`
	OrderReference string    `json:"order_reference"`
	TotalPrice     float64   `json:"total_price"`
	AcceptedAt     time.Time `json:"accepted_at"`
}

// QuoteSubcontractedData is emitted when a mission is handed to a third
// party.
type QuoteSubcontractedData struct {
	MissionID       uuid.UUID `json:"mission_id"`
	OrganizationID  uuid.UUID `json:"organization_id"`
	SubcontractorID uuid.UUID `json:"subcontractor_id"`
	AgreedPrice     float64   `json:"agreed_price"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// InvoiceCreatedData is emitted when an invoice is generated from an order.
type InvoiceCreatedData struct {
	InvoiceID      uuid.UUID `json:"invoice_id"`
	OrderID        uuid.UUID `json:"order_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Reference      string    `json:"reference"`
	TotalInclVat   float64   `json:"total_incl_vat"`
	CreatedAt      time.Time `json:"created_at"`
}
