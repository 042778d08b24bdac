package quotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chauffio/chauffio/pkg/common"
	"github.com/chauffio/chauffio/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Repository handles database operations for quotes and orders
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new quotes repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const quoteColumns = `
	id, organization_id, reference, contact_id, status, valid_until, notes,
	order_id, pricing_snapshot_id, end_customer_name, trip_type, pickup_at,
	pickup_address, dropoff_address,
	sent_at, viewed_at, accepted_at, rejected_at, expired_at, cancelled_at,
	created_at, updated_at
`

func scanQuote(row pgx.Row) (*Quote, error) {
	var q Quote
	err := row.Scan(
		&q.ID, &q.OrganizationID, &q.Reference, &q.ContactID, &q.Status,
		&q.ValidUntil, &q.Notes, &q.OrderID, &q.PricingSnapshotID,
		&q.EndCustomerName, &q.TripType, &q.PickupAt,
		&q.PickupAddress, &q.DropoffAddress,
		&q.SentAt, &q.ViewedAt, &q.AcceptedAt, &q.RejectedAt, &q.ExpiredAt, &q.CancelledAt,
		&q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("quote not found", nil)
		}
		return nil, fmt.Errorf("failed to scan quote: %w", err)
	}
	return &q, nil
}

// GetQuote loads a quote with its lines.
func (r *Repository) GetQuote(ctx context.Context, orgID, quoteID uuid.UUID) (*Quote, error) {
	query := fmt.Sprintf(`SELECT %s FROM quotes WHERE organization_id = $1 AND id = $2`, quoteColumns)
	q, err := scanQuote(r.db.QueryRow(ctx, query, orgID, quoteID))
	if err != nil {
		return nil, err
	}

	lines, err := r.listLines(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	q.Lines = lines
	return q, nil
}

func (r *Repository) listLines(ctx context.Context, quoteID uuid.UUID) ([]Line, error) {
	query := `
		SELECT id, quote_id, type, description, quantity,
			   unit_price_excl_vat, vat_rate, total_excl_vat, total_vat
		FROM quote_lines
		WHERE quote_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quote lines: %w", err)
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.QuoteID, &l.Type, &l.Description, &l.Quantity,
			&l.UnitPriceExclVat, &l.VatRate, &l.TotalExclVat, &l.TotalVat); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// getQuoteForUpdate locks the quote row for the duration of the transaction.
func (r *Repository) getQuoteForUpdate(ctx context.Context, tx pgx.Tx, orgID, quoteID uuid.UUID) (*Quote, error) {
	query := fmt.Sprintf(`SELECT %s FROM quotes WHERE organization_id = $1 AND id = $2 FOR UPDATE`, quoteColumns)
	return scanQuote(tx.QueryRow(ctx, query, orgID, quoteID))
}

// Transition moves a quote to a new status atomically: row lock, state
// machine check, timestamp, order creation on acceptance, mission relink
// and audit entry all commit together. Serialization and connection
// failures retry the whole transaction.
func (r *Repository) Transition(ctx context.Context, orgID, quoteID uuid.UUID, to Status, reason, changedBy string, now time.Time) (*Quote, *Order, error) {
	var quote *Quote
	var order *Order

	err := database.RetryableTransaction(ctx, r.db, func(tx pgx.Tx) error {
		quote, order = nil, nil

		q, err := r.getQuoteForUpdate(ctx, tx, orgID, quoteID)
		if err != nil {
			return err
		}

		from := q.Status
		if err := ValidateTransition(from, to); err != nil {
			return err
		}

		q.Status = to
		q.applyTimestamp(to, now)
		q.UpdatedAt = now

		if to == StatusAccepted && q.OrderID == nil {
			o, err := r.createOrder(ctx, tx, q, now)
			if err != nil {
				return err
			}
			q.OrderID = &o.ID
			order = o

			if err := r.relinkMissions(ctx, tx, q.ID, o.ID); err != nil {
				return err
			}
		}

		update := `
			UPDATE quotes
			SET status = $1, order_id = $2, updated_at = $3,
				sent_at = $4, viewed_at = $5, accepted_at = $6,
				rejected_at = $7, expired_at = $8, cancelled_at = $9
			WHERE id = $10
		`
		_, err = tx.Exec(ctx, update, q.Status, q.OrderID, q.UpdatedAt,
			q.SentAt, q.ViewedAt, q.AcceptedAt,
			q.RejectedAt, q.ExpiredAt, q.CancelledAt, q.ID)
		if err != nil {
			return fmt.Errorf("failed to update quote status: %w", err)
		}

		audit := `
			INSERT INTO quote_status_audit_log (id, quote_id, from_status, to_status, reason, changed_by, changed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err = tx.Exec(ctx, audit, uuid.New(), q.ID, from, to, reason, changedBy, now)
		if err != nil {
			return fmt.Errorf("failed to write audit entry: %w", err)
		}

		quote = q
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return quote, order, nil
}

// createOrder allocates the next ORD-YYYY-NNN reference for the
// organization and year, retrying a few sequence bumps when a concurrent
// acceptance grabbed the same number.
func (r *Repository) createOrder(ctx context.Context, tx pgx.Tx, quote *Quote, now time.Time) (*Order, error) {
	year := now.Year()

	var maxSeq int
	seqQuery := `
		SELECT COALESCE(MAX(CAST(SPLIT_PART(reference, '-', 3) AS INTEGER)), 0)
		FROM orders
		WHERE organization_id = $1 AND reference LIKE $2
	`
	prefix := fmt.Sprintf("ORD-%d-%%", year)
	if err := tx.QueryRow(ctx, seqQuery, quote.OrganizationID, prefix).Scan(&maxSeq); err != nil {
		return nil, fmt.Errorf("failed to read order sequence: %w", err)
	}

	insert := `
		INSERT INTO orders (id, organization_id, reference, quote_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	for attempt := 0; attempt < 3; attempt++ {
		order := &Order{
			ID:             uuid.New(),
			OrganizationID: quote.OrganizationID,
			Reference:      OrderReference(year, maxSeq+1+attempt),
			QuoteID:        quote.ID,
			CreatedAt:      now,
		}

		// Each attempt runs in a savepoint: a duplicate reference aborts
		// only the attempt, not the enclosing transaction.
		sp, err := tx.Begin(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to open order savepoint: %w", err)
		}

		_, err = sp.Exec(ctx, insert, order.ID, order.OrganizationID, order.Reference, order.QuoteID, order.CreatedAt)
		if err == nil {
			if err := sp.Commit(ctx); err != nil {
				return nil, fmt.Errorf("failed to release order savepoint: %w", err)
			}
			return order, nil
		}
		_ = sp.Rollback(ctx)

		var pgErr *pgconn.PgError
		if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
	}
	return nil, common.NewUnprocessableError(common.CodeDuplicateReference,
		"could not allocate a unique order reference")
}

// relinkMissions attaches the quote's unassigned missions to the new order.
func (r *Repository) relinkMissions(ctx context.Context, tx pgx.Tx, quoteID, orderID uuid.UUID) error {
	query := `UPDATE missions SET order_id = $1 WHERE quote_id = $2 AND order_id IS NULL`
	if _, err := tx.Exec(ctx, query, orderID, quoteID); err != nil {
		return fmt.Errorf("failed to relink missions: %w", err)
	}
	return nil
}

// ListExpirable returns quotes the auto-expiry batch must move to EXPIRED.
func (r *Repository) ListExpirable(ctx context.Context, now time.Time, limit int) ([]Quote, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM quotes
		WHERE status IN ('DRAFT', 'SENT', 'VIEWED')
		  AND valid_until IS NOT NULL AND valid_until < $1
		ORDER BY valid_until
		LIMIT $2
	`, quoteColumns)

	rows, err := r.db.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expirable quotes: %w", err)
	}
	defer rows.Close()

	var result []Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *q)
	}
	return result, rows.Err()
}

// ListAuditLog returns the status history of a quote, oldest first.
func (r *Repository) ListAuditLog(ctx context.Context, quoteID uuid.UUID) ([]AuditEntry, error) {
	query := `
		SELECT id, quote_id, from_status, to_status, reason, changed_by, changed_at
		FROM quote_status_audit_log
		WHERE quote_id = $1
		ORDER BY changed_at
	`
	rows, err := r.db.Query(ctx, query, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit log: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.QuoteID, &e.FromStatus, &e.ToStatus,
			&e.Reason, &e.ChangedBy, &e.ChangedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
