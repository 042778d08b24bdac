package invoices

import (
	"time"

	"github.com/google/uuid"
)

// LineType classifies an invoice line.
type LineType string

const (
	LineTransport           LineType = "TRANSPORT"
	LineOptionalFee         LineType = "OPTIONAL_FEE"
	LinePromotionAdjustment LineType = "PROMOTION_ADJUSTMENT"
	LineOther               LineType = "OTHER"
)

// DefaultPaymentTermsDays applies when the contact has no contract terms.
const DefaultPaymentTermsDays = 30

// Line is one row of an invoice. QuoteLineID points back to the quote line
// it was copied from.
type Line struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	InvoiceID   uuid.UUID  `json:"invoice_id" db:"invoice_id"`
	QuoteLineID *uuid.UUID `json:"quote_line_id,omitempty" db:"quote_line_id"`

	Type             LineType `json:"type" db:"type"`
	Description      string   `json:"description" db:"description"`
	Quantity         float64  `json:"quantity" db:"quantity"`
	UnitPriceExclVat float64  `json:"unit_price_excl_vat" db:"unit_price_excl_vat"`
	VatRate          float64  `json:"vat_rate" db:"vat_rate"`
	TotalExclVat     float64  `json:"total_excl_vat" db:"total_excl_vat"`
	TotalVat         float64  `json:"total_vat" db:"total_vat"`
}

// Invoice is the billing document produced from an accepted order.
type Invoice struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	Number         string    `json:"number" db:"number"`
	OrderID        uuid.UUID `json:"order_id" db:"order_id"`
	ContactID      uuid.UUID `json:"contact_id" db:"contact_id"`

	Lines []Line `json:"lines"`

	TotalExclVat float64 `json:"total_excl_vat" db:"total_excl_vat"`
	TotalVat     float64 `json:"total_vat" db:"total_vat"`
	TotalInclVat float64 `json:"total_incl_vat" db:"total_incl_vat"`

	IssuedAt time.Time `json:"issued_at" db:"issued_at"`
	DueDate  time.Time `json:"due_date" db:"due_date"`
}
