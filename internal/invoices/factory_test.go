package invoices

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/chauffio/chauffio/internal/contacts"
	"github.com/chauffio/chauffio/internal/grids"
	"github.com/chauffio/chauffio/internal/quotes"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func acceptedQuote(lines ...quotes.Line) *quotes.Quote {
	pickupAt := time.Date(2026, 9, 15, 9, 30, 0, 0, time.UTC)
	return &quotes.Quote{
		ID:              uuid.New(),
		OrganizationID:  uuid.New(),
		Reference:       "Q-2026-017",
		ContactID:       uuid.New(),
		Status:          quotes.StatusAccepted,
		EndCustomerName: "Société Dupont",
		TripType:        grids.TripTransfer,
		PickupAt:        &pickupAt,
		PickupAddress:   "12 rue de Rivoli, 75001 Paris",
		DropoffAddress:  "Aéroport CDG, Terminal 2E",
		Lines:           lines,
	}
}

func calculatedLine(unitPrice, vatRate float64) quotes.Line {
	return quotes.Line{
		ID:               uuid.New(),
		Type:             quotes.LineCalculated,
		Description:      "Transfert Paris - CDG",
		Quantity:         1,
		UnitPriceExclVat: unitPrice,
		VatRate:          vatRate,
		TotalExclVat:     unitPrice,
		TotalVat:         unitPrice * vatRate / 100,
	}
}

func TestBuildLines_DeepCopy(t *testing.T) {
	quote := acceptedQuote(calculatedLine(100, 10))

	lines := BuildLines(quote, uuid.New())
	require.Len(t, lines, 1)
	assert.Equal(t, 100.0, lines[0].UnitPriceExclVat)
	assert.Equal(t, 10.0, lines[0].TotalVat)

	// Mutating the quote line must not reach the invoice line.
	quote.Lines[0].UnitPriceExclVat = 200
	quote.Lines[0].TotalExclVat = 200
	assert.Equal(t, 100.0, lines[0].UnitPriceExclVat)
	assert.Equal(t, 10.0, lines[0].TotalVat)

	// And the reverse direction.
	lines[0].UnitPriceExclVat = 999
	assert.Equal(t, 200.0, quote.Lines[0].UnitPriceExclVat)
}

func TestBuildLines_TypeMapping(t *testing.T) {
	tests := []struct {
		from quotes.LineType
		want LineType
	}{
		{quotes.LineCalculated, LineTransport},
		{quotes.LineOptionalFee, LineOptionalFee},
		{quotes.LinePromotion, LinePromotionAdjustment},
		{quotes.LineManual, LineOther},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			quote := acceptedQuote(quotes.Line{ID: uuid.New(), Type: tt.from, TotalExclVat: 50, VatRate: 20})
			lines := BuildLines(quote, uuid.New())
			require.Len(t, lines, 1)
			assert.Equal(t, tt.want, lines[0].Type)
		})
	}
}

func TestBuildLines_RecomputesVat(t *testing.T) {
	line := calculatedLine(100, 10)
	line.TotalVat = 999 // stale value must be ignored
	quote := acceptedQuote(line)

	lines := BuildLines(quote, uuid.New())
	require.Len(t, lines, 1)
	assert.Equal(t, 10.0, lines[0].TotalVat)
}

func TestBuildLines_QuoteLineBackreference(t *testing.T) {
	quote := acceptedQuote(calculatedLine(100, 10))
	lines := BuildLines(quote, uuid.New())

	require.NotNil(t, lines[0].QuoteLineID)
	assert.Equal(t, quote.Lines[0].ID, *lines[0].QuoteLineID)
}

func TestEnrichDescription(t *testing.T) {
	quote := acceptedQuote(calculatedLine(100, 10))
	lines := BuildLines(quote, uuid.New())
	require.Len(t, lines, 1)

	desc := lines[0].Description
	assert.True(t, strings.HasPrefix(desc, "Client: Société Dupont"))
	assert.Contains(t, desc, "Transfert du 15/09/2026")
	assert.Contains(t, desc, "Départ : 12 rue de Rivoli, 75001 Paris")
	assert.Contains(t, desc, "Arrivée : Aéroport CDG, Terminal 2E")
}

func TestEnrichDescription_TripLabels(t *testing.T) {
	tests := []struct {
		tripType grids.TripType
		label    string
	}{
		{grids.TripTransfer, "Transfert"},
		{grids.TripDispo, "Mise à disposition"},
		{grids.TripExcursion, "Excursion"},
		{grids.TripStay, "Séjour"},
	}

	for _, tt := range tests {
		t.Run(string(tt.tripType), func(t *testing.T) {
			quote := acceptedQuote(calculatedLine(100, 10))
			quote.TripType = tt.tripType
			lines := BuildLines(quote, uuid.New())
			assert.Contains(t, lines[0].Description, tt.label)
		})
	}
}

func TestEnrichDescription_ClientOnFirstLineOnly(t *testing.T) {
	quote := acceptedQuote(calculatedLine(100, 10), calculatedLine(50, 10))
	lines := BuildLines(quote, uuid.New())
	require.Len(t, lines, 2)

	assert.Contains(t, lines[0].Description, "Client:")
	assert.NotContains(t, lines[1].Description, "Client:")
}

func TestBuildInvoice_Totals(t *testing.T) {
	quote := acceptedQuote(
		calculatedLine(100, 10),
		quotes.Line{ID: uuid.New(), Type: quotes.LineOptionalFee, Description: "Siège bébé", TotalExclVat: 15, VatRate: 20},
	)

	inv, err := BuildInvoice(quote, uuid.New(), nil, "INV-2026-0001", time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 115.0, inv.TotalExclVat)
	assert.Equal(t, 13.0, inv.TotalVat) // 10 + 3
	assert.Equal(t, 128.0, inv.TotalInclVat)
}

func TestBuildInvoice_RequiresAccepted(t *testing.T) {
	quote := acceptedQuote(calculatedLine(100, 10))
	quote.Status = quotes.StatusSent

	_, err := BuildInvoice(quote, uuid.New(), nil, "", time.Now())
	assert.Error(t, err)
}

func TestBuildInvoice_DueDate(t *testing.T) {
	today := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	quote := acceptedQuote(calculatedLine(100, 10))

	inv, err := BuildInvoice(quote, uuid.New(), nil, "", today)
	require.NoError(t, err)
	assert.Equal(t, today.AddDate(0, 0, 30), inv.DueDate)

	partner := &contacts.Contact{
		IsPartner: true,
		PartnerContract: &contacts.PartnerContract{
			PaymentTermsDays: intPtr(45),
		},
	}
	inv, err = BuildInvoice(quote, uuid.New(), partner, "", today)
	require.NoError(t, err)
	assert.Equal(t, today.AddDate(0, 0, 45), inv.DueDate)
}

func TestInvoiceNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^INV-\d{4}-\d{4,}$`)

	assert.Equal(t, "INV-2026-0001", InvoiceNumber(2026, 1))
	assert.Equal(t, "INV-2026-0123", InvoiceNumber(2026, 123))
	assert.Equal(t, "INV-2026-10000", InvoiceNumber(2026, 10000))

	for _, seq := range []int{1, 999, 9999, 10000} {
		assert.Regexp(t, pattern, InvoiceNumber(2026, seq))
	}
}
