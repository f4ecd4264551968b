package leads

import (
	"context"
	"sync"
)

// Store persists the accumulative kept-leads table and the per-run filtered
// table. Implementations must tolerate a missing table on first Load and
// return it as an empty slice.
type Store interface {
	// Load returns every previously kept lead, oldest discovery first.
	Load(ctx context.Context) ([]Lead, error)

	// WriteKept replaces the kept table with the given leads. Callers pass
	// the full prior set plus this run's additions; the store never merges.
	WriteKept(ctx context.Context, kept []Lead) error

	// WriteFiltered replaces the filtered table with this run's rejects.
	WriteFiltered(ctx context.Context, filtered []Lead) error

	// Close releases any underlying resources.
	Close() error
}

// MemoryStore is an in-memory Store used in tests and dry runs.
type MemoryStore struct {
	mu       sync.Mutex
	Kept     []Lead
	Filtered []Lead
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the kept set.
func (m *MemoryStore) Load(_ context.Context) ([]Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Lead, len(m.Kept))
	copy(out, m.Kept)
	return out, nil
}

// WriteKept replaces the kept set.
func (m *MemoryStore) WriteKept(_ context.Context, kept []Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Kept = make([]Lead, len(kept))
	copy(m.Kept, kept)
	return nil
}

// WriteFiltered replaces the filtered set.
func (m *MemoryStore) WriteFiltered(_ context.Context, filtered []Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Filtered = make([]Lead, len(filtered))
	copy(m.Filtered, filtered)
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
