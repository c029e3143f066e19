package cache

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := OpenSQLStore(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLStore_SQLite(t *testing.T) {
	ctx := context.Background()
	store := setupSQLiteStore(t)

	_, err := store.Get(ctx, "k")
	assert.True(t, IsCacheMiss(err))

	require.NoError(t, store.Set(ctx, "k", []byte("first")))
	require.NoError(t, store.Set(ctx, "k", []byte("second")))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)

	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	assert.True(t, IsCacheMiss(err))

	require.NoError(t, store.Set(ctx, "a", []byte("1")))
	require.NoError(t, store.Clear(ctx))
	_, err = store.Get(ctx, "a")
	assert.True(t, IsCacheMiss(err))
}

func TestSQLStore_Prune(t *testing.T) {
	ctx := context.Background()
	store := setupSQLiteStore(t)

	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	store.nowFunc = func() time.Time { return base }
	require.NoError(t, store.Set(ctx, "old", []byte("1")))

	store.nowFunc = func() time.Time { return base.Add(2 * time.Hour) }
	require.NoError(t, store.Set(ctx, "new", []byte("2")))

	n, err := store.Prune(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.Get(ctx, "old")
	assert.True(t, IsCacheMiss(err))
	_, err = store.Get(ctx, "new")
	assert.NoError(t, err)
}

func TestOpenSQLStore_UnknownDriver(t *testing.T) {
	_, err := OpenSQLStore(context.Background(), "mysql", "")
	assert.Error(t, err)
}

func setupMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLStore(db, DriverPostgres), mock
}

func TestSQLStore_PostgresDialect(t *testing.T) {
	ctx := context.Background()
	store, mock := setupMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("payload BYTEA NOT NULL")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "msgidl_cache" (cache_key, payload, updated_at) VALUES ($1, $2, $3)`)).
		WithArgs("k", []byte("v"), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT payload FROM "msgidl_cache" WHERE cache_key = $1`)).
		WithArgs("k").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow([]byte("v")))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT payload FROM "msgidl_cache" WHERE cache_key = $1`)).
		WithArgs("gone").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "msgidl_cache" WHERE cache_key = $1`)).
		WithArgs("k").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Set(ctx, "k", []byte("v")))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	_, err = store.Get(ctx, "gone")
	assert.True(t, IsCacheMiss(err))

	require.NoError(t, store.Delete(ctx, "k"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_ExecError(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "msgidl_cache"`)).WillReturnError(assert.AnError)

	err := store.Clear(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_DeleteMany(t *testing.T) {
	ctx := context.Background()
	store := setupSQLiteStore(t)

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, store.Set(ctx, k, []byte(k)))
	}
	require.NoError(t, store.DeleteMany(ctx, []string{"a", "c"}))
	require.NoError(t, store.DeleteMany(ctx, nil))

	_, err := store.Get(ctx, "a")
	assert.True(t, IsCacheMiss(err))
	_, err = store.Get(ctx, "b")
	assert.NoError(t, err)
	_, err = store.Get(ctx, "c")
	assert.True(t, IsCacheMiss(err))
}

func TestSQLStore_DeleteManyPostgres(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "msgidl_cache" WHERE cache_key = ANY($1)`)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, store.DeleteMany(context.Background(), []string{"a", "b"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_WithTable(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLStoreTable(ctx, DriverSQLite, filepath.Join(t.TempDir(), "cache.db"), "team-a_cache")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(ctx, "k", []byte("v")))
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestSQLStore_TTL(t *testing.T) {
	ctx := context.Background()
	store := setupSQLiteStore(t).WithTTL(time.Hour)

	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	store.nowFunc = func() time.Time { return base }
	require.NoError(t, store.Set(ctx, "k", []byte("v")))

	store.nowFunc = func() time.Time { return base.Add(30 * time.Minute) }
	_, err := store.Get(ctx, "k")
	assert.NoError(t, err)

	store.nowFunc = func() time.Time { return base.Add(2 * time.Hour) }
	_, err = store.Get(ctx, "k")
	assert.True(t, IsCacheMiss(err))
}

func TestSQLStore_TTLPostgres(t *testing.T) {
	store, mock := setupMockStore(t)
	store.WithTTL(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT payload FROM "msgidl_cache" WHERE cache_key = $1 AND updated_at >= $2`)).
		WithArgs("k", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	_, err := store.Get(context.Background(), "k")
	assert.True(t, IsCacheMiss(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenStore_SQLitePrunesExpiredRows(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	seed, err := OpenSQLStore(ctx, DriverSQLite, path)
	require.NoError(t, err)
	seed.nowFunc = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	require.NoError(t, seed.Set(ctx, "old", []byte("1")))
	seed.nowFunc = time.Now
	require.NoError(t, seed.Set(ctx, "fresh", []byte("2")))
	require.NoError(t, seed.Close())

	store, err := OpenStore(ctx, Options{Backend: BackendSQLite, DSN: path, TTL: time.Hour})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// plain has no TTL, so a miss means the row was deleted.
	plain, err := OpenSQLStore(ctx, DriverSQLite, path)
	require.NoError(t, err)
	defer plain.Close()

	_, err = plain.Get(ctx, "old")
	assert.True(t, IsCacheMiss(err))
	_, err = plain.Get(ctx, "fresh")
	assert.NoError(t, err)
}
