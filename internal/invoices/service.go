package invoices

import (
	"context"
	"time"

	"github.com/chauffio/chauffio/internal/contacts"
	"github.com/chauffio/chauffio/internal/quotes"
	"github.com/chauffio/chauffio/pkg/eventbus"
	"github.com/chauffio/chauffio/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service builds invoices from accepted orders.
type Service struct {
	repo     *Repository
	quotes   *quotes.Repository
	contacts *contacts.Repository
	bus      *eventbus.Bus
}

// NewService wires the invoices service. The event bus is optional.
func NewService(repo *Repository, quoteRepo *quotes.Repository, contactRepo *contacts.Repository, bus *eventbus.Bus) *Service {
	return &Service{repo: repo, quotes: quoteRepo, contacts: contactRepo, bus: bus}
}

// CreateFromOrder builds and persists the invoice for an order's accepted
// quote.
func (s *Service) CreateFromOrder(ctx context.Context, orgID, orderID uuid.UUID) (*Invoice, error) {
	order, err := s.repo.GetOrder(ctx, orgID, orderID)
	if err != nil {
		return nil, err
	}

	quote, err := s.quotes.GetQuote(ctx, orgID, order.QuoteID)
	if err != nil {
		return nil, err
	}

	contact, err := s.contacts.GetContact(ctx, orgID, quote.ContactID)
	if err != nil {
		return nil, err
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)

	// The number is provisional here; Save allocates the final sequence
	// inside its transaction.
	inv, err := BuildInvoice(quote, order.ID, contact, "", today)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, inv, today); err != nil {
		return nil, err
	}

	s.publishCreated(ctx, inv)

	logger.InfoContext(ctx, "invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("number", inv.Number),
		zap.String("order_id", orderID.String()),
	)
	return inv, nil
}

// GetInvoice loads an invoice with its lines.
func (s *Service) GetInvoice(ctx context.Context, orgID, invoiceID uuid.UUID) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, orgID, invoiceID)
}

func (s *Service) publishCreated(ctx context.Context, inv *Invoice) {
	if s.bus == nil {
		return
	}

	payload := eventbus.InvoiceCreatedData{
		InvoiceID:      inv.ID,
		OrderID:        inv.OrderID,
		OrganizationID: inv.OrganizationID,
		Reference:      inv.Number,
		TotalInclVat:   inv.TotalInclVat,
		CreatedAt:      inv.IssuedAt,
	}
	event, err := eventbus.NewEvent(eventbus.SubjectInvoiceCreated, "invoices", payload)
	if err != nil {
		logger.WarnContext(ctx, "failed to build invoice event", zap.Error(err))
		return
	}
	if err := s.bus.Publish(ctx, eventbus.SubjectInvoiceCreated, event); err != nil {
		logger.WarnContext(ctx, "failed to publish invoice event", zap.Error(err))
	}
}
