// Package session keeps the drafts that console users are composing and
// the lock that guards their submission.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/ariefcatur/go-order-console/internal/draft"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("draft not found")

type entry struct {
	draft   *draft.Draft
	touched time.Time
}

// Registry holds drafts by id. A draft untouched for longer than the TTL is
// dropped.
type Registry struct {
	newDraft func() *draft.Draft
	ttl      time.Duration
	now      func() time.Time

	mu     sync.Mutex
	drafts map[string]*entry
}

func NewRegistry(b draft.Backend, ttl time.Duration) *Registry {
	return &Registry{
		newDraft: func() *draft.Draft { return draft.New(b) },
		ttl:      ttl,
		now:      time.Now,
		drafts:   make(map[string]*entry),
	}
}

func (r *Registry) Create() (string, *draft.Draft) {
	id := uuid.NewString()
	d := r.newDraft()
	r.mu.Lock()
	r.drafts[id] = &entry{draft: d, touched: r.now()}
	r.mu.Unlock()
	return id, d
}

func (r *Registry) Get(id string) (*draft.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.drafts[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := r.now()
	if r.expired(e, now) {
		delete(r.drafts, id)
		return nil, ErrNotFound
	}
	e.touched = now
	return e.draft, nil
}

func (r *Registry) Discard(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.drafts[id]
	delete(r.drafts, id)
	return ok
}

// Sweep drops expired drafts and reports how many went.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	n := 0
	for id, e := range r.drafts {
		if r.expired(e, now) {
			delete(r.drafts, id)
			n++
		}
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.drafts)
}

func (r *Registry) expired(e *entry, now time.Time) bool {
	return r.ttl > 0 && now.Sub(e.touched) > r.ttl
}
