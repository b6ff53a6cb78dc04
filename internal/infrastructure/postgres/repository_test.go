package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
	"github.com/jhoicas/suministros-api/internal/infrastructure/postgres"
)

const someID = "6f1c2a9e-3b4d-4e5f-8a7b-9c0d1e2f3a4b"

// fakeQuerier registra las consultas y responde siempre con err.
type fakeQuerier struct {
	err   error
	calls int
	sql   string
	args  []any
}

func (q *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.record(sql, args)
	return pgconn.NewCommandTag("UPDATE 0"), q.err
}

func (q *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.record(sql, args)
	return nil, q.err
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.record(sql, args)
	return errRow{err: q.err}
}

func (q *fakeQuerier) record(sql string, args []any) {
	q.calls++
	q.sql, q.args = sql, args
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

// ─── Ids mal formados ─────────────────────────────────────────────────────────

func TestRepos_MalformedIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	q := &fakeQuerier{}

	p, err := postgres.NewProductRepository(q).GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = postgres.NewProductRepository(q).GetForUpdate(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, p)

	e, err := postgres.NewLedgerRepository(q).GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, e)

	e, err = postgres.NewLedgerRepository(q).GetForUpdate(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, e)

	c, err := postgres.NewCategoryRepository(q).GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, c)

	u, err := postgres.NewUserRepository(q).GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, u)

	err = postgres.NewProductRepository(q).AdjustStock(ctx, "abc", -1)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	err = postgres.NewProductRepository(q).Update(ctx, &entity.Product{ID: "abc"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	err = postgres.NewLedgerRepository(q).Update(ctx, &entity.LedgerEntry{ID: "abc"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	n, err := postgres.NewLedgerRepository(q).DeleteByProduct(ctx, "abc")
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.Zero(t, q.calls, "un id mal formado no llega a la base de datos")
}

func TestRepos_InvalidTextRepresentationIsNotFound(t *testing.T) {
	ctx := context.Background()
	q := &fakeQuerier{err: &pgconn.PgError{Code: "22P02"}}

	p, err := postgres.NewProductRepository(q).GetByID(ctx, someID)
	require.NoError(t, err)
	assert.Nil(t, p)

	e, err := postgres.NewLedgerRepository(q).GetByID(ctx, someID)
	require.NoError(t, err)
	assert.Nil(t, e)

	err = postgres.NewLedgerRepository(q).Create(ctx, &entity.LedgerEntry{ID: someID, ProductID: "abc"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, 3, q.calls)
}

func TestRepos_GetOneErrors(t *testing.T) {
	ctx := context.Background()

	p, err := postgres.NewProductRepository(&fakeQuerier{err: pgx.ErrNoRows}).GetByID(ctx, someID)
	require.NoError(t, err)
	assert.Nil(t, p)

	boom := errors.New("conexión cerrada")
	_, err = postgres.NewProductRepository(&fakeQuerier{err: boom}).GetByID(ctx, someID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

// ─── Filtros ──────────────────────────────────────────────────────────────────

func TestLedgerRepo_CountWithMalformedProductFilter(t *testing.T) {
	q := &fakeQuerier{}
	n, err := postgres.NewLedgerRepository(q).Count(context.Background(), repository.EntryFilter{ProductID: "abc", Type: "OUT"})
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.Contains(t, q.sql, "WHERE t.type = $1 AND false")
	assert.Equal(t, []any{"OUT"}, q.args)
}

func TestProductRepo_CountWithMalformedCategoryFilter(t *testing.T) {
	q := &fakeQuerier{}
	_, err := postgres.NewProductRepository(q).Count(context.Background(), repository.ProductFilter{CategoryID: "abc"})
	require.NoError(t, err)

	assert.Contains(t, q.sql, "WHERE false")
	assert.Empty(t, q.args)
}
