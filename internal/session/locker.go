package session

import (
	"context"
	"sync"
	"time"
)

// Locker guards draft submission. A key is claimed while a submit is in
// flight and completed with the created order id, so a retried submit
// replays the result instead of creating a second order.
type Locker interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Complete(ctx context.Context, key, orderID string, ttl time.Duration) error
	Lookup(ctx context.Context, key string) (orderID string, found bool, err error)
	Release(ctx context.Context, key string) error
}

const claimedMarker = "-"

type memEntry struct {
	value   string
	expires time.Time
}

// MemoryLocker is the single-process Locker used when no redis is configured.
type MemoryLocker struct {
	mu   sync.Mutex
	keys map[string]memEntry
	now  func() time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{keys: make(map[string]memEntry), now: time.Now}
}

func (m *MemoryLocker) get(key string) (memEntry, bool) {
	e, ok := m.keys[key]
	if ok && !m.now().Before(e.expires) {
		delete(m.keys, key)
		return memEntry{}, false
	}
	return e, ok
}

func (m *MemoryLocker) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.get(key); ok {
		return false, nil
	}
	m.keys[key] = memEntry{value: claimedMarker, expires: m.now().Add(ttl)}
	return true, nil
}

func (m *MemoryLocker) Complete(_ context.Context, key, orderID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = memEntry{value: orderID, expires: m.now().Add(ttl)}
	return nil
}

func (m *MemoryLocker) Lookup(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.get(key)
	if !ok || e.value == claimedMarker {
		return "", false, nil
	}
	return e.value, true, nil
}

func (m *MemoryLocker) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}
