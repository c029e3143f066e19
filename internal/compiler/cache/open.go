package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Backend names accepted in configuration
const (
	BackendNone     = "none"
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Options selects and configures a backing store
type Options struct {
	Backend string
	// DSN is a file path for sqlite, a connection URL for postgres and
	// host:port for redis. A postgres DSN prefixed with "pq+" is opened
	// with lib/pq instead of pgx.
	DSN    string
	Prefix string
	TTL    time.Duration
}

// OpenStore opens the backing store named by opts.Backend. It returns a
// nil Store for BackendNone.
func OpenStore(ctx context.Context, opts Options) (Store, error) {
	cfg := DefaultStoreConfig()
	if opts.Prefix != "" {
		cfg.Prefix = opts.Prefix
	}
	if opts.TTL > 0 {
		cfg.TTL = opts.TTL
	}

	switch opts.Backend {
	case BackendNone:
		return nil, nil
	case BackendMemory, "":
		return NewMemoryStore().WithTTL(cfg.TTL), nil
	case BackendSQLite:
		dsn := opts.DSN
		if dsn == "" {
			dsn = ".msgidl-cache.db"
		}
		return openSQL(ctx, DriverSQLite, dsn, cfg)
	case BackendPostgres:
		if opts.DSN == "" {
			return nil, fmt.Errorf("postgres cache requires a dsn")
		}
		driver := DriverPostgres
		if strings.HasPrefix(opts.DSN, "pq+") {
			driver = DriverLibPQ
		}
		return openSQL(ctx, driver, strings.TrimPrefix(opts.DSN, "pq+"), cfg)
	case BackendRedis:
		rc := DefaultRedisConfig()
		if opts.DSN != "" {
			rc.Addr = opts.DSN
		}
		rc.StoreConfig = cfg
		store, err := NewRedisStore(ctx, rc)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
}

// openSQL names the table after the key prefix and drops rows older
// than the TTL before handing the store out
func openSQL(ctx context.Context, driver, dsn string, cfg StoreConfig) (Store, error) {
	store, err := OpenSQLStoreTable(ctx, driver, dsn, strings.TrimRight(cfg.Prefix, ":")+"_cache")
	if err != nil {
		return nil, err
	}
	if cfg.TTL > 0 {
		store.WithTTL(cfg.TTL)
		if _, err := store.Prune(ctx, cfg.TTL); err != nil {
			store.Close()
			return nil, err
		}
	}
	return store, nil
}
