package database

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	commits   int
	rollbacks int
}

func (f *fakeTx) Begin(context.Context) (pgx.Tx, error) { panic("unexpected Begin") }
func (f *fakeTx) Commit(context.Context) error          { f.commits++; return nil }
func (f *fakeTx) Rollback(context.Context) error        { f.rollbacks++; return nil }
func (f *fakeTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	panic("unexpected CopyFrom")
}
func (f *fakeTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults {
	panic("unexpected SendBatch")
}
func (f *fakeTx) LargeObjects() pgx.LargeObjects { panic("unexpected LargeObjects") }
func (f *fakeTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	panic("unexpected Prepare")
}
func (f *fakeTx) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	panic("unexpected Exec")
}
func (f *fakeTx) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	panic("unexpected Query")
}
func (f *fakeTx) QueryRow(context.Context, string, ...interface{}) pgx.Row {
	panic("unexpected QueryRow")
}
func (f *fakeTx) Conn() *pgx.Conn { panic("unexpected Conn") }

type fakePool struct {
	txs []*fakeTx
}

func (p *fakePool) Begin(context.Context) (pgx.Tx, error) {
	tx := &fakeTx{}
	p.txs = append(p.txs, tx)
	return tx, nil
}

func TestRetryableTransaction_CommitsOnSuccess(t *testing.T) {
	pool := &fakePool{}

	err := RetryableTransaction(context.Background(), pool, func(tx pgx.Tx) error {
		return nil
	})
	require.NoError(t, err)

	require.Len(t, pool.txs, 1)
	assert.Equal(t, 1, pool.txs[0].commits)
	assert.Zero(t, pool.txs[0].rollbacks)
}

func TestRetryableTransaction_RetriesSerializationFailure(t *testing.T) {
	pool := &fakePool{}

	attempts := 0
	err := RetryableTransaction(context.Background(), pool, func(tx pgx.Tx) error {
		attempts++
		if attempts == 1 {
			return &pgconn.PgError{Code: "40001"}
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 2, attempts)
	require.Len(t, pool.txs, 2)
	assert.Equal(t, 1, pool.txs[0].rollbacks)
	assert.Zero(t, pool.txs[0].commits)
	assert.Equal(t, 1, pool.txs[1].commits)
}

func TestRetryableTransaction_DoesNotRetryConstraintViolation(t *testing.T) {
	pool := &fakePool{}

	attempts := 0
	err := RetryableTransaction(context.Background(), pool, func(tx pgx.Tx) error {
		attempts++
		return &pgconn.PgError{Code: "23505"}
	})
	require.Error(t, err)

	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr))
	assert.Equal(t, "23505", pgErr.Code)

	assert.Equal(t, 1, attempts)
	require.Len(t, pool.txs, 1)
	assert.Equal(t, 1, pool.txs[0].rollbacks)
}

func TestRetryableTransaction_DoesNotRetryDomainErrors(t *testing.T) {
	pool := &fakePool{}
	sentinel := errors.New("quote already in requested status")

	attempts := 0
	err := RetryableTransaction(context.Background(), pool, func(tx pgx.Tx) error {
		attempts++
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, attempts)
}

func TestIsPostgresRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"connection exception", &pgconn.PgError{Code: "08006"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"check violation", &pgconn.PgError{Code: "23514"}, false},
		{"data exception", &pgconn.PgError{Code: "22012"}, false},
		{"undefined table", &pgconn.PgError{Code: "42P01"}, false},
		{"context canceled", context.Canceled, false},
		{"no rows", pgx.ErrNoRows, false},
		{"connection reset", errors.New("read tcp: connection reset by peer"), true},
		{"unknown", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isPostgresRetryable(tt.err))
		})
	}
}
