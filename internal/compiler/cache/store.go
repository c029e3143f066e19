package cache

import (
	"context"
	stderrors "errors"
	"sync"
	"time"
)

// Store is a byte-oriented backend for cached documents
type Store interface {
	// Get retrieves a value, returning ErrCacheMiss when key is absent
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value, replacing any previous one
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a value
	Delete(ctx context.Context, key string) error

	// Clear removes every value owned by the store
	Clear(ctx context.Context) error

	// Close releases the backend connection
	Close() error
}

// BatchDeleter is implemented by stores that remove several keys in one
// round trip
type BatchDeleter interface {
	DeleteMany(ctx context.Context, keys []string) error
}

// StoreConfig holds settings shared by the backends
type StoreConfig struct {
	// Prefix is prepended to keys in shared key spaces
	Prefix string
	// TTL bounds the lifetime of an entry where the backend supports it
	TTL time.Duration
}

// DefaultStoreConfig returns the default backend settings
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Prefix: "msgidl:",
		TTL:    24 * time.Hour,
	}
}

// ErrCacheMiss is returned when a key is not in the store
type ErrCacheMiss struct {
	Key string
}

func (e ErrCacheMiss) Error() string {
	return "cache miss: " + e.Key
}

// IsCacheMiss checks if an error is a cache miss
func IsCacheMiss(err error) bool {
	var miss ErrCacheMiss
	return stderrors.As(err, &miss)
}

// MemoryStore keeps values in process memory
type MemoryStore struct {
	data    map[string]memoryEntry
	ttl     time.Duration
	nowFunc func() time.Time
	mu      sync.RWMutex
}

type memoryEntry struct {
	value []byte
	setAt time.Time
}

// NewMemoryStore creates an empty in-memory store whose entries never
// expire
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]memoryEntry), nowFunc: time.Now}
}

// WithTTL makes entries older than ttl read as misses; zero disables
// expiry
func (m *MemoryStore) WithTTL(ttl time.Duration) *MemoryStore {
	m.ttl = ttl
	return m
}

func (m *MemoryStore) expired(e memoryEntry) bool {
	return m.ttl > 0 && m.nowFunc().Sub(e.setAt) > m.ttl
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	entry, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrCacheMiss{Key: key}
	}
	if m.expired(entry) {
		m.mu.Lock()
		if current, ok := m.data[key]; ok && m.expired(current) {
			delete(m.data, key)
		}
		m.mu.Unlock()
		return nil, ErrCacheMiss{Key: key}
	}
	return entry.value, nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored := make([]byte, len(value))
	copy(stored, value)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = memoryEntry{value: stored, setAt: m.nowFunc()}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]memoryEntry)
	return nil
}

// Len returns the number of stored values, expired ones included
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *MemoryStore) Close() error { return nil }
