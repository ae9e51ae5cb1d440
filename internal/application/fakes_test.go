package application

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/oksasatya/member-directory/internal/domain/entity"
	repo "github.com/oksasatya/member-directory/internal/domain/repository"
)

// memRepo is an in-memory directory store.
type memRepo struct {
	mu        sync.Mutex
	members   map[string]entity.Member
	nextID    int
	writes    []entity.MemberPatch
	writeErr  error
	lookupErr error
}

func newMemRepo(ms ...entity.Member) *memRepo {
	r := &memRepo{members: map[string]entity.Member{}, nextID: 100}
	for _, m := range ms {
		r.members[m.ID] = m
	}
	return r
}

func (r *memRepo) GetByID(_ context.Context, id string) (*entity.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return nil, repo.ErrMemberNotFound
	}
	return &m, nil
}

func (r *memRepo) LookupByEmail(_ context.Context, email string) (*entity.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	for _, m := range r.members {
		if m.Email != "" && strings.EqualFold(m.Email, email) {
			return &m, nil
		}
	}
	return nil, repo.ErrMemberNotFound
}

func (r *memRepo) LookupByCriteria(_ context.Context, c entity.SearchCriteria) ([]entity.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	zip := c.PostalCode
	if len(zip) > 5 {
		zip = zip[:5]
	}
	out := make([]entity.Member, 0)
	for _, m := range r.sorted() {
		if strings.HasPrefix(strings.TrimSpace(m.Address.PostalCode), zip) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memRepo) sorted() []entity.Member {
	out := make([]entity.Member, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memRepo) List(_ context.Context, opts repo.ListOptions) ([]entity.Member, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sorted()
	if opts.Offset >= len(all) {
		return []entity.Member{}, len(all), nil
	}
	end := opts.Offset + opts.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[opts.Offset:end], len(all), nil
}

func (r *memRepo) Write(_ context.Context, id string, p entity.MemberPatch) (entity.WriteAck, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return entity.WriteAck{}, r.writeErr
	}
	r.writes = append(r.writes, p)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var m entity.Member
	if id == entity.NewMemberID {
		r.nextID++
		id = fmt.Sprintf("%d", r.nextID)
		m = entity.Member{ID: id, CreatedAt: now}
	} else {
		var ok bool
		if m, ok = r.members[id]; !ok {
			return entity.WriteAck{}, repo.ErrMemberNotFound
		}
	}
	m = p.ApplyTo(m)
	m.UpdatedAt = now
	r.members[id] = m
	return entity.WriteAck{ID: id, Fields: p, UpdatedAt: now}, nil
}

func (r *memRepo) lastWrite() entity.MemberPatch {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes[len(r.writes)-1]
}

type mockIndexer struct {
	mock.Mock
}

func (m *mockIndexer) Index(ctx context.Context, member entity.Member) error {
	return m.Called(ctx, member).Error(0)
}

type mockPool struct {
	mock.Mock
}

func (m *mockPool) LookupByCriteria(ctx context.Context, c entity.SearchCriteria) ([]entity.Member, error) {
	args := m.Called(ctx, c)
	pool, _ := args.Get(0).([]entity.Member)
	return pool, args.Error(1)
}
