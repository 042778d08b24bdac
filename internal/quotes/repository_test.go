package quotes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chauffio/chauffio/pkg/common"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTx fails loudly on anything the code under test should not touch.
type stubTx struct{}

func (stubTx) Begin(context.Context) (pgx.Tx, error) { panic("unexpected Begin") }
func (stubTx) Commit(context.Context) error          { panic("unexpected Commit") }
func (stubTx) Rollback(context.Context) error        { panic("unexpected Rollback") }
func (stubTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	panic("unexpected CopyFrom")
}
func (stubTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults {
	panic("unexpected SendBatch")
}
func (stubTx) LargeObjects() pgx.LargeObjects { panic("unexpected LargeObjects") }
func (stubTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	panic("unexpected Prepare")
}
func (stubTx) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	panic("insert must run inside a savepoint")
}
func (stubTx) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	panic("unexpected Query")
}
func (stubTx) QueryRow(context.Context, string, ...interface{}) pgx.Row {
	panic("unexpected QueryRow")
}
func (stubTx) Conn() *pgx.Conn { panic("unexpected Conn") }

type seqRow struct{ seq int }

func (r seqRow) Scan(dest ...interface{}) error {
	*(dest[0].(*int)) = r.seq
	return nil
}

// orderAllocTx simulates the sequence read plus per-savepoint inserts that
// collide dupRemaining times before succeeding.
type orderAllocTx struct {
	stubTx
	seq          int
	dupRemaining int
	insertErr    error
	refs         []string
	commits      int
	rollbacks    int
}

func (f *orderAllocTx) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return seqRow{seq: f.seq}
}

func (f *orderAllocTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return &orderAllocSavepoint{parent: f}, nil
}

type orderAllocSavepoint struct {
	stubTx
	parent *orderAllocTx
}

func (sp *orderAllocSavepoint) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	sp.parent.refs = append(sp.parent.refs, args[2].(string))
	if sp.parent.insertErr != nil {
		return pgconn.CommandTag{}, sp.parent.insertErr
	}
	if sp.parent.dupRemaining > 0 {
		sp.parent.dupRemaining--
		return pgconn.CommandTag{}, &pgconn.PgError{Code: uniqueViolation}
	}
	return pgconn.CommandTag{}, nil
}

func (sp *orderAllocSavepoint) Commit(ctx context.Context) error {
	sp.parent.commits++
	return nil
}

func (sp *orderAllocSavepoint) Rollback(ctx context.Context) error {
	sp.parent.rollbacks++
	return nil
}

func TestCreateOrder_RetriesPastDuplicateReference(t *testing.T) {
	repo := NewRepository(nil)
	tx := &orderAllocTx{seq: 41, dupRemaining: 1}
	quote := &Quote{ID: uuid.New(), OrganizationID: uuid.New()}
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	order, err := repo.createOrder(context.Background(), tx, quote, now)
	require.NoError(t, err)

	assert.Equal(t, "ORD-2026-043", order.Reference)
	assert.Equal(t, []string{"ORD-2026-042", "ORD-2026-043"}, tx.refs)
	assert.Equal(t, 1, tx.rollbacks)
	assert.Equal(t, 1, tx.commits)
	assert.Equal(t, quote.ID, order.QuoteID)
}

func TestCreateOrder_DuplicateReferencesExhaustAttempts(t *testing.T) {
	repo := NewRepository(nil)
	tx := &orderAllocTx{seq: 0, dupRemaining: 3}
	quote := &Quote{ID: uuid.New(), OrganizationID: uuid.New()}
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	order, err := repo.createOrder(context.Background(), tx, quote, now)
	require.Error(t, err)
	assert.Nil(t, order)
	assert.Equal(t, common.CodeDuplicateReference, errorCode(t, err))

	assert.Equal(t, []string{"ORD-2026-001", "ORD-2026-002", "ORD-2026-003"}, tx.refs)
	assert.Equal(t, 3, tx.rollbacks)
	assert.Zero(t, tx.commits)
}

func TestCreateOrder_NonDuplicateErrorStopsRetry(t *testing.T) {
	repo := NewRepository(nil)
	tx := &orderAllocTx{seq: 7, insertErr: errors.New("connection reset")}
	quote := &Quote{ID: uuid.New(), OrganizationID: uuid.New()}
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	order, err := repo.createOrder(context.Background(), tx, quote, now)
	require.Error(t, err)
	assert.Nil(t, order)

	assert.Len(t, tx.refs, 1)
	assert.Equal(t, 1, tx.rollbacks)
	assert.Zero(t, tx.commits)
}
