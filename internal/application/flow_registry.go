package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/member-directory/internal/domain/entity"
	"github.com/oksasatya/member-directory/internal/domain/verification"
)

// Flow is one browser's self-service attempt: the verification session plus
// the search results and the record being edited. Flows live in memory only.
type Flow struct {
	ID string

	mu        sync.Mutex
	session   *verification.Session
	criteria  entity.SearchCriteria
	searched  bool
	matches   []entity.Member
	base      entity.Member
	draft     *entity.Member
	expiresAt time.Time
}

// Session returns the verification session driving the flow.
func (f *Flow) Session() *verification.Session { return f.session }

// FlowRegistry holds live flows keyed by an opaque id and drops the ones idle
// for longer than ttl.
type FlowRegistry struct {
	mu         sync.Mutex
	flows      map[string]*Flow
	ttl        time.Duration
	now        func() time.Time
	newSession func() *verification.Session
}

func NewFlowRegistry(ttl time.Duration, newSession func() *verification.Session) *FlowRegistry {
	return &FlowRegistry{
		flows:      make(map[string]*Flow),
		ttl:        ttl,
		now:        time.Now,
		newSession: newSession,
	}
}

// Create starts a fresh flow.
func (r *FlowRegistry) Create() *Flow {
	f := &Flow{ID: uuid.NewString(), session: r.newSession()}
	r.mu.Lock()
	f.expiresAt = r.now().Add(r.ttl)
	r.flows[f.ID] = f
	r.mu.Unlock()
	return f
}

// Get returns a live flow and extends its lifetime.
func (r *FlowRegistry) Get(id string) (*Flow, bool) {
	if id == "" {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flows[id]
	if !ok {
		return nil, false
	}
	now := r.now()
	if now.After(f.expiresAt) {
		delete(r.flows, id)
		return nil, false
	}
	f.expiresAt = now.Add(r.ttl)
	return f, true
}

// GetOrCreate returns the flow for id, or a new one when id is unknown or expired.
func (r *FlowRegistry) GetOrCreate(id string) *Flow {
	if f, ok := r.Get(id); ok {
		return f
	}
	return r.Create()
}

func (r *FlowRegistry) Delete(id string) {
	r.mu.Lock()
	delete(r.flows, id)
	r.mu.Unlock()
}

func (r *FlowRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.flows)
}

// ExpiresAt reports when the flow lapses if left idle.
func (r *FlowRegistry) ExpiresAt(f *Flow) time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return f.expiresAt
}

// Sweep removes expired flows and returns how many were dropped.
func (r *FlowRegistry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	n := 0
	for id, f := range r.flows {
		if now.After(f.expiresAt) {
			delete(r.flows, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (r *FlowRegistry) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Sweep()
		}
	}
}
