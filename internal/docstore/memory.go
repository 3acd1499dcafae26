package docstore

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore keeps documents in process memory. Updates on one key are serialized by a per-key mutex.
type MemoryStore struct {
	mu    sync.RWMutex
	docs  map[string][]byte
	locks sync.Map // key -> *sync.Mutex
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (s *MemoryStore) keyLock(key string) *sync.Mutex {
	l, _ := s.locks.LoadOrStore(key, &sync.Mutex{})
	return l.(*sync.Mutex)
}

func (s *MemoryStore) read(key string) (json.RawMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.docs[key]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, true
}

func (s *MemoryStore) write(key string, value json.RawMessage) {
	b := make([]byte, len(value))
	copy(b, value)
	s.mu.Lock()
	s.docs[key] = b
	s.mu.Unlock()
}

// Get returns a copy of the stored document.
func (s *MemoryStore) Get(_ context.Context, key string) (json.RawMessage, bool, error) {
	b, ok := s.read(key)
	return b, ok, nil
}

// Set replaces the document, waiting for any in-flight Update on the key.
func (s *MemoryStore) Set(_ context.Context, key string, value json.RawMessage) error {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()
	s.write(key, value)
	return nil
}

// Update applies fn while holding the key's mutex.
func (s *MemoryStore) Update(ctx context.Context, key string, fn Mutator) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	current, found := s.read(key)
	next, err := fn(current, found)
	if err != nil {
		return err
	}
	if next != nil {
		s.write(key, next)
	}
	return nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
