package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rclgo/msgidl/compiler/ast"
	"github.com/rclgo/msgidl/internal/compiler/metadata"
)

// CachedInterface is a parsed document remembered for a file path
type CachedInterface struct {
	Interface ast.Interface
	Hash      string
	Path      string
	CachedAt  time.Time
}

// Stats counts lookups since the cache was created
type Stats struct {
	Hits      int64
	Misses    int64
	StoreHits int64
	Entries   int
}

// HitRate returns the hit rate as a percentage
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}
	return float64(s.Hits) / float64(total) * 100.0
}

// InterfaceCache caches successfully parsed documents by content key.
// Lookups check process memory first and then the backing Store, which
// holds gzip-compressed metadata JSON.
type InterfaceCache struct {
	entries map[string]*CachedInterface // by path
	byHash  map[string]*CachedInterface
	store   Store
	mu      sync.RWMutex

	hits      atomic.Int64
	misses    atomic.Int64
	storeHits atomic.Int64
}

// NewInterfaceCache creates a cache. store may be nil for a memory-only
// cache.
func NewInterfaceCache(store Store) *InterfaceCache {
	return &InterfaceCache{
		entries: make(map[string]*CachedInterface),
		byHash:  make(map[string]*CachedInterface),
		store:   store,
	}
}

// Get retrieves a cached document by file path
func (ic *InterfaceCache) Get(path string) (*CachedInterface, bool) {
	ic.mu.RLock()
	defer ic.mu.RUnlock()

	entry, exists := ic.entries[path]
	return entry, exists
}

// Lookup finds the document parsed from content with the given key.
// A hit from the backing store is promoted into memory under path.
// Store failures are reported as misses along with the error.
func (ic *InterfaceCache) Lookup(ctx context.Context, path, key string) (ast.Interface, bool, error) {
	ic.mu.RLock()
	entry, ok := ic.byHash[key]
	ic.mu.RUnlock()
	if ok {
		ic.hits.Add(1)
		if entry.Path != path {
			ic.set(path, key, entry.Interface)
		}
		return entry.Interface, true, nil
	}

	if ic.store == nil {
		ic.misses.Add(1)
		return nil, false, nil
	}

	data, err := ic.store.Get(ctx, key)
	if err != nil {
		ic.misses.Add(1)
		if IsCacheMiss(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	iface, err := decode(data)
	if err != nil {
		ic.misses.Add(1)
		return nil, false, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}

	ic.hits.Add(1)
	ic.storeHits.Add(1)
	ic.set(path, key, iface)
	return iface, true, nil
}

// Set remembers a parsed document for path and writes it through to the
// backing store
func (ic *InterfaceCache) Set(ctx context.Context, path, key string, iface ast.Interface) error {
	ic.set(path, key, iface)
	if ic.store == nil {
		return nil
	}

	data, err := encode(iface, path)
	if err != nil {
		return err
	}
	return ic.store.Set(ctx, key, data)
}

func (ic *InterfaceCache) set(path, key string, iface ast.Interface) {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	if old, ok := ic.entries[path]; ok && ic.byHash[old.Hash] == old {
		delete(ic.byHash, old.Hash)
	}

	entry := &CachedInterface{
		Interface: iface,
		Hash:      key,
		Path:      path,
		CachedAt:  time.Now(),
	}
	ic.entries[path] = entry
	ic.byHash[key] = entry
}

// Forget drops the entries of paths from memory and deletes their
// keys from the backing store, unless another path holds the same
// content
func (ic *InterfaceCache) Forget(ctx context.Context, paths ...string) error {
	ic.mu.Lock()
	var keys []string
	for _, path := range paths {
		entry, ok := ic.entries[path]
		if !ok {
			continue
		}
		delete(ic.entries, path)
		if ic.byHash[entry.Hash] != entry {
			continue
		}
		if other := ic.holder(entry.Hash); other != nil {
			ic.byHash[entry.Hash] = other
			continue
		}
		delete(ic.byHash, entry.Hash)
		keys = append(keys, entry.Hash)
	}
	ic.mu.Unlock()

	if ic.store == nil || len(keys) == 0 {
		return nil
	}
	if bd, ok := ic.store.(BatchDeleter); ok {
		return bd.DeleteMany(ctx, keys)
	}
	for _, key := range keys {
		if err := ic.store.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// holder returns an entry with the given hash; the mutex must be held
func (ic *InterfaceCache) holder(hash string) *CachedInterface {
	for _, entry := range ic.entries {
		if entry.Hash == hash {
			return entry
		}
	}
	return nil
}

// Size returns the number of in-memory entries
func (ic *InterfaceCache) Size() int {
	ic.mu.RLock()
	defer ic.mu.RUnlock()

	return len(ic.entries)
}

// Stats returns lookup counters
func (ic *InterfaceCache) Stats() Stats {
	return Stats{
		Hits:      ic.hits.Load(),
		Misses:    ic.misses.Load(),
		StoreHits: ic.storeHits.Load(),
		Entries:   ic.Size(),
	}
}

// Close closes the backing store
func (ic *InterfaceCache) Close() error {
	if ic.store == nil {
		return nil
	}
	return ic.store.Close()
}

func encode(iface ast.Interface, path string) ([]byte, error) {
	data, err := json.Marshal(metadata.FromInterface(iface, path))
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache entry: %w", err)
	}
	return metadata.Compress(data)
}

func decode(data []byte) (ast.Interface, error) {
	raw, err := metadata.Decompress(data)
	if err != nil {
		return nil, err
	}
	var meta metadata.InterfaceMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, err
	}
	return metadata.ToInterface(meta)
}
