package cache

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQL drivers accepted by OpenSQLStore. DriverLibPQ speaks the same
// dialect as DriverPostgres.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
	DriverLibPQ    = "postgres"
)

// DefaultTable is the cache table used when no prefix is configured
const DefaultTable = "msgidl_cache"

const createTableSQL = `CREATE TABLE IF NOT EXISTS %s (
	cache_key TEXT PRIMARY KEY,
	payload BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// SQLStore keeps values in a single table of a SQL database
type SQLStore struct {
	db      *sql.DB
	driver  string
	table   string
	ownsDB  bool
	ttl     time.Duration
	nowFunc func() time.Time
}

// OpenSQLStore connects to dsn with driver and creates the cache table if
// it does not exist
func OpenSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	return OpenSQLStoreTable(ctx, driver, dsn, DefaultTable)
}

// OpenSQLStoreTable is OpenSQLStore with an explicit table name
func OpenSQLStoreTable(ctx context.Context, driver, dsn, table string) (*SQLStore, error) {
	if driver != DriverSQLite && driver != DriverPostgres && driver != DriverLibPQ {
		return nil, fmt.Errorf("unsupported cache driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache database unreachable: %w", err)
	}

	store := NewSQLStore(db, driver).WithTable(table)
	store.ownsDB = true
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLStore wraps an open database. The caller keeps ownership of db.
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{
		db:      db,
		driver:  driver,
		table:   pq.QuoteIdentifier(DefaultTable),
		nowFunc: time.Now,
	}
}

// WithTable switches the store to another table; call Migrate afterwards
func (s *SQLStore) WithTable(name string) *SQLStore {
	s.table = pq.QuoteIdentifier(name)
	return s
}

// WithTTL makes rows not written within ttl read as misses; zero
// disables expiry. Prune deletes them.
func (s *SQLStore) WithTTL(ttl time.Duration) *SQLStore {
	s.ttl = ttl
	return s
}

func (s *SQLStore) postgres() bool {
	return s.driver == DriverPostgres || s.driver == DriverLibPQ
}

// Migrate creates the cache table
func (s *SQLStore) Migrate(ctx context.Context) error {
	query := fmt.Sprintf(createTableSQL, s.table)
	if s.postgres() {
		query = strings.Replace(query, "BLOB", "BYTEA", 1)
	}
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create cache table: %w", err)
	}
	return nil
}

// placeholder returns the n-th bind parameter in the driver's syntax
func (s *SQLStore) placeholder(n int) string {
	if s.postgres() {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := fmt.Sprintf("SELECT payload FROM %s WHERE cache_key = %s", s.table, s.placeholder(1))
	args := []interface{}{key}
	if s.ttl > 0 {
		query += " AND updated_at >= " + s.placeholder(2)
		args = append(args, s.nowFunc().UTC().Add(-s.ttl))
	}

	var value []byte
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, ErrCacheMiss{Key: key}
	}
	if err != nil {
		return nil, fmt.Errorf("cache lookup failed: %w", err)
	}
	return value, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	query := fmt.Sprintf(
		"INSERT INTO %s (cache_key, payload, updated_at) VALUES (%s, %s, %s) ON CONFLICT (cache_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at",
		s.table, s.placeholder(1), s.placeholder(2), s.placeholder(3))

	if _, err := s.db.ExecContext(ctx, query, key, value, s.nowFunc().UTC()); err != nil {
		return fmt.Errorf("cache write failed: %w", err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE cache_key = %s", s.table, s.placeholder(1))
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("cache delete failed: %w", err)
	}
	return nil
}

// DeleteMany removes several keys in one statement
func (s *SQLStore) DeleteMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if s.postgres() {
		query := fmt.Sprintf("DELETE FROM %s WHERE cache_key = ANY($1)", s.table)
		if _, err := s.db.ExecContext(ctx, query, pq.Array(keys)); err != nil {
			return fmt.Errorf("cache delete failed: %w", err)
		}
		return nil
	}

	args := make([]interface{}, len(keys))
	marks := make([]string, len(keys))
	for i, k := range keys {
		args[i] = k
		marks[i] = "?"
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE cache_key IN (%s)", s.table, strings.Join(marks, ", "))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("cache delete failed: %w", err)
	}
	return nil
}

func (s *SQLStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM "+s.table); err != nil {
		return fmt.Errorf("cache clear failed: %w", err)
	}
	return nil
}

// Prune deletes entries not written within maxAge and returns how many
// were removed
func (s *SQLStore) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE updated_at < %s", s.table, s.placeholder(1))
	res, err := s.db.ExecContext(ctx, query, s.nowFunc().UTC().Add(-maxAge))
	if err != nil {
		return 0, fmt.Errorf("cache prune failed: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database if the store opened it
func (s *SQLStore) Close() error {
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}
