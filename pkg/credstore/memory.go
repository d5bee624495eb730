package credstore

import "sync"

// MemoryStore keeps the credential slot in process memory. Used in tests and
// wherever durability across restarts is not wanted.
type MemoryStore struct {
	mu    sync.RWMutex
	creds Credentials
	set   bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a deep copy of the slot content.
func (s *MemoryStore) Load() (Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.set {
		return Credentials{}, nil
	}
	return s.creds.Clone(), nil
}

// Save replaces the slot.
func (s *MemoryStore) Save(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds = creds.Clone()
	s.set = true
	return nil
}

// Clear empties the slot.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds = Credentials{}
	s.set = false
	return nil
}
