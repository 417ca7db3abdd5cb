package otp

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps codes in process memory.
type MemoryStore struct {
	mu sync.Mutex
	c  *gocache.Cache
}

func NewMemoryStore(defaultTTL time.Duration) *MemoryStore {
	return &MemoryStore{c: gocache.New(defaultTTL, time.Minute)}
}

func (m *MemoryStore) Put(_ context.Context, purpose Purpose, email, code string, ttl time.Duration) error {
	m.c.Set(key(purpose, email), digest(code), ttl)
	return nil
}

func (m *MemoryStore) Take(_ context.Context, purpose Purpose, email, code string) (bool, error) {
	k := key(purpose, email)

	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.c.Get(k)
	if !ok {
		return false, nil
	}
	stored, _ := v.([]byte)
	if !matches(stored, code) {
		return false, nil
	}
	m.c.Delete(k)
	return true, nil
}

func (m *MemoryStore) Close() error {
	m.c.Flush()
	return nil
}
