package invoices

import (
	"fmt"
	"strings"
	"time"

	"github.com/chauffio/chauffio/internal/contacts"
	"github.com/chauffio/chauffio/internal/grids"
	"github.com/chauffio/chauffio/internal/quotes"
	"github.com/chauffio/chauffio/pkg/common"
	"github.com/google/uuid"
)

// mapLineType converts a quote line type to its invoice counterpart.
func mapLineType(t quotes.LineType) LineType {
	switch t {
	case quotes.LineOptionalFee:
		return LineOptionalFee
	case quotes.LinePromotion:
		return LinePromotionAdjustment
	case quotes.LineManual:
		return LineOther
	default:
		return LineTransport
	}
}

// tripTypeLabel returns the French billing label of a trip type.
func tripTypeLabel(t grids.TripType) string {
	switch t {
	case grids.TripDispo:
		return "Mise à disposition"
	case grids.TripStay:
		return "Séjour"
	case grids.TripExcursion:
		return "Excursion"
	default:
		return "Transfert"
	}
}

// InvoiceNumber formats an invoice number. Sequences are at least four
// digits per organization and year.
func InvoiceNumber(year, seq int) string {
	return fmt.Sprintf("INV-%d-%04d", year, seq)
}

// BuildLines copies the quote's lines into invoice lines. Copies are by
// value; mutating either side afterwards leaves the other unchanged. VAT is
// recomputed from the copied base so stale quote totals cannot leak in.
func BuildLines(quote *quotes.Quote, invoiceID uuid.UUID) []Line {
	lines := make([]Line, 0, len(quote.Lines))
	for i := range quote.Lines {
		ql := quote.Lines[i]
		qlID := ql.ID

		line := Line{
			ID:               uuid.New(),
			InvoiceID:        invoiceID,
			QuoteLineID:      &qlID,
			Type:             mapLineType(ql.Type),
			Description:      enrichDescription(quote, &ql, i == 0),
			Quantity:         ql.Quantity,
			UnitPriceExclVat: ql.UnitPriceExclVat,
			VatRate:          ql.VatRate,
			TotalExclVat:     ql.TotalExclVat,
		}
		line.TotalVat = common.Round2(line.TotalExclVat * line.VatRate / 100)
		lines = append(lines, line)
	}
	return lines
}

// enrichDescription builds the billing description. The first line of the
// invoice names the end customer; calculated lines carry the trip details.
func enrichDescription(quote *quotes.Quote, ql *quotes.Line, first bool) string {
	var parts []string

	if first && quote.EndCustomerName != "" {
		parts = append(parts, fmt.Sprintf("Client: %s", quote.EndCustomerName))
	}

	if ql.Description != "" {
		parts = append(parts, ql.Description)
	}

	if ql.Type == quotes.LineCalculated {
		header := tripTypeLabel(quote.TripType)
		if quote.PickupAt != nil {
			header = fmt.Sprintf("%s du %s", header, quote.PickupAt.Format("02/01/2006"))
		}
		parts = append(parts, header)

		if quote.PickupAddress != "" {
			parts = append(parts, fmt.Sprintf("Départ : %s", quote.PickupAddress))
		}
		if quote.DropoffAddress != "" {
			parts = append(parts, fmt.Sprintf("Arrivée : %s", quote.DropoffAddress))
		}
	}

	return strings.Join(parts, "\n")
}

// BuildInvoice assembles an invoice from an accepted quote. The caller
// supplies the allocated number.
func BuildInvoice(quote *quotes.Quote, orderID uuid.UUID, contact *contacts.Contact, number string, today time.Time) (*Invoice, error) {
	if !quote.CanConvertToInvoice() {
		return nil, common.NewUnprocessableError(common.CodeInvalidTransition,
			fmt.Sprintf("quote in status %s cannot be invoiced", quote.Status))
	}

	inv := &Invoice{
		ID:             uuid.New(),
		OrganizationID: quote.OrganizationID,
		Number:         number,
		OrderID:        orderID,
		ContactID:      quote.ContactID,
		IssuedAt:       today,
		DueDate:        today.AddDate(0, 0, paymentTermsDays(contact)),
	}

	inv.Lines = BuildLines(quote, inv.ID)
	for _, l := range inv.Lines {
		inv.TotalExclVat += l.TotalExclVat
		inv.TotalVat += l.TotalVat
	}
	inv.TotalExclVat = common.Round2(inv.TotalExclVat)
	inv.TotalVat = common.Round2(inv.TotalVat)
	inv.TotalInclVat = common.Round2(inv.TotalExclVat + inv.TotalVat)

	return inv, nil
}

func paymentTermsDays(contact *contacts.Contact) int {
	if contact != nil && contact.PartnerContract != nil && contact.PartnerContract.PaymentTermsDays != nil {
		return *contact.PartnerContract.PaymentTermsDays
	}
	return DefaultPaymentTermsDays
}
