package prefs

import "sync"

// Compile-time check that *MemStore satisfies [Store].
var _ Store = (*MemStore)(nil)

// MemStore is an in-memory Store for tests and for running without a
// writable data directory.
type MemStore struct {
	mu    sync.Mutex
	saved *Preferences
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Load returns the last saved set, or Defaults when nothing was saved.
func (s *MemStore) Load() (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		return Defaults(), nil
	}
	return *s.saved, nil
}

// Save stores the set in memory.
func (s *MemStore) Save(p Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = &p
	return nil
}

// Close is a no-op.
func (s *MemStore) Close() error { return nil }
