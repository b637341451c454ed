package storage

import "sync"

// Fixed keys for the three persisted records.
const (
	KeySessions       = "starplay_sessions"
	KeyFeedback       = "starplay_feedback"
	KeyCurrentSession = "starplay_current_session"
)

// Store is a synchronous key-value store of JSON blobs. Implementations
// must treat missing or unreadable values as absent rather than failing.
type Store interface {
	Load(key string) ([]byte, bool)
	Save(key string, value []byte) error
	Remove(key string)
}

// MemStore keeps values in memory only. Used in tests and when running
// without a data directory.
type MemStore struct {
	mu     sync.Mutex
	values map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string][]byte)}
}

func (s *MemStore) Load(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemStore) Save(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	s.values[key] = cp
	return nil
}

func (s *MemStore) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}
