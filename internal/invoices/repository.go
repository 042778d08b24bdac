package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chauffio/chauffio/internal/quotes"
	"github.com/chauffio/chauffio/pkg/common"
	"github.com/chauffio/chauffio/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Repository handles database operations for invoices
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new invoices repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetOrder loads an order by id.
func (r *Repository) GetOrder(ctx context.Context, orgID, orderID uuid.UUID) (*quotes.Order, error) {
	query := `
		SELECT id, organization_id, reference, quote_id, created_at
		FROM orders
		WHERE organization_id = $1 AND id = $2
	`
	var o quotes.Order
	err := r.db.QueryRow(ctx, query, orgID, orderID).Scan(
		&o.ID, &o.OrganizationID, &o.Reference, &o.QuoteID, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("order not found", nil)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &o, nil
}

// nextNumber allocates the next invoice sequence for the organization and
// year. Runs inside the save transaction.
func (r *Repository) nextNumber(ctx context.Context, tx pgx.Tx, orgID uuid.UUID, year int) (int, error) {
	query := `
		SELECT COALESCE(MAX(CAST(SPLIT_PART(number, '-', 3) AS INTEGER)), 0)
		FROM invoices
		WHERE organization_id = $1 AND number LIKE $2
	`
	prefix := fmt.Sprintf("INV-%d-%%", year)

	var maxSeq int
	if err := tx.QueryRow(ctx, query, orgID, prefix).Scan(&maxSeq); err != nil {
		return 0, fmt.Errorf("failed to read invoice sequence: %w", err)
	}
	return maxSeq + 1, nil
}

// Save persists the invoice and its lines, allocating the number inside the
// transaction. On a reference collision the sequence is bumped and retried.
// Serialization and connection failures retry the whole transaction.
func (r *Repository) Save(ctx context.Context, inv *Invoice, today time.Time) error {
	return database.RetryableTransaction(ctx, r.db, func(tx pgx.Tx) error {
		seq, err := r.nextNumber(ctx, tx, inv.OrganizationID, today.Year())
		if err != nil {
			return err
		}

		if err := r.insertNumbered(ctx, tx, inv, today.Year(), seq); err != nil {
			return err
		}

		lineInsert := `
			INSERT INTO invoice_lines (id, invoice_id, quote_line_id, type, description,
				quantity, unit_price_excl_vat, vat_rate, total_excl_vat, total_vat)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		for _, l := range inv.Lines {
			if _, err := tx.Exec(ctx, lineInsert, l.ID, l.InvoiceID, l.QuoteLineID, l.Type,
				l.Description, l.Quantity, l.UnitPriceExclVat, l.VatRate, l.TotalExclVat, l.TotalVat); err != nil {
				return fmt.Errorf("failed to save invoice line: %w", err)
			}
		}
		return nil
	})
}

// insertNumbered inserts the invoice row, bumping the sequence on duplicate
// numbers. Each attempt runs in a savepoint: a collision aborts only the
// attempt, not the enclosing transaction.
func (r *Repository) insertNumbered(ctx context.Context, tx pgx.Tx, inv *Invoice, year, seq int) error {
	insert := `
		INSERT INTO invoices (id, organization_id, number, order_id, contact_id,
			total_excl_vat, total_vat, total_incl_vat, issued_at, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for attempt := 0; attempt < 3; attempt++ {
		inv.Number = InvoiceNumber(year, seq+attempt)

		sp, err := tx.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to open invoice savepoint: %w", err)
		}

		_, err = sp.Exec(ctx, insert, inv.ID, inv.OrganizationID, inv.Number, inv.OrderID,
			inv.ContactID, inv.TotalExclVat, inv.TotalVat, inv.TotalInclVat, inv.IssuedAt, inv.DueDate)
		if err == nil {
			if err := sp.Commit(ctx); err != nil {
				return fmt.Errorf("failed to release invoice savepoint: %w", err)
			}
			return nil
		}
		_ = sp.Rollback(ctx)

		var pgErr *pgconn.PgError
		if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
			return fmt.Errorf("failed to save invoice: %w", err)
		}
	}
	return common.NewUnprocessableError(common.CodeDuplicateReference,
		"could not allocate a unique invoice number")
}

// GetInvoice loads an invoice with its lines.
func (r *Repository) GetInvoice(ctx context.Context, orgID, invoiceID uuid.UUID) (*Invoice, error) {
	query := `
		SELECT id, organization_id, number, order_id, contact_id,
			   total_excl_vat, total_vat, total_incl_vat, issued_at, due_date
		FROM invoices
		WHERE organization_id = $1 AND id = $2
	`
	var inv Invoice
	err := r.db.QueryRow(ctx, query, orgID, invoiceID).Scan(
		&inv.ID, &inv.OrganizationID, &inv.Number, &inv.OrderID, &inv.ContactID,
		&inv.TotalExclVat, &inv.TotalVat, &inv.TotalInclVat, &inv.IssuedAt, &inv.DueDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("invoice not found", nil)
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	lineQuery := `
		SELECT id, invoice_id, quote_line_id, type, description,
			   quantity, unit_price_excl_vat, vat_rate, total_excl_vat, total_vat
		FROM invoice_lines
		WHERE invoice_id = $1
	`
	rows, err := r.db.Query(ctx, lineQuery, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoice lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.QuoteLineID, &l.Type, &l.Description,
			&l.Quantity, &l.UnitPriceExclVat, &l.VatRate, &l.TotalExclVat, &l.TotalVat); err != nil {
			return nil, err
		}
		inv.Lines = append(inv.Lines, l)
	}
	return &inv, rows.Err()
}
