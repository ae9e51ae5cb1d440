package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/member-directory/internal/domain/verification"
)

func newTestRegistry(ttl time.Duration, now *time.Time) *FlowRegistry {
	r := NewFlowRegistry(ttl, func() *verification.Session {
		return verification.New(nil, nil)
	})
	r.now = func() time.Time { return *now }
	return r
}

func TestFlowRegistryGetExtendsLifetime(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	r := newTestRegistry(10*time.Minute, &now)

	f := r.Create()
	require.NotEmpty(t, f.ID)
	require.NotNil(t, f.Session())

	now = now.Add(9 * time.Minute)
	got, ok := r.Get(f.ID)
	require.True(t, ok)
	assert.Same(t, f, got)

	now = now.Add(9 * time.Minute)
	_, ok = r.Get(f.ID)
	assert.True(t, ok, "lifetime was extended by the previous Get")

	now = now.Add(11 * time.Minute)
	_, ok = r.Get(f.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestFlowRegistryGetOrCreate(t *testing.T) {
	now := time.Now()
	r := newTestRegistry(time.Minute, &now)

	f := r.GetOrCreate("")
	assert.Same(t, f, r.GetOrCreate(f.ID))
	assert.NotSame(t, f, r.GetOrCreate("unknown"))
	assert.Equal(t, 2, r.Len())

	r.Delete(f.ID)
	_, ok := r.Get(f.ID)
	assert.False(t, ok)
}

func TestFlowRegistrySweep(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	r := newTestRegistry(time.Minute, &now)

	r.Create()
	r.Create()
	now = now.Add(30 * time.Second)
	live := r.Create()

	now = now.Add(45 * time.Second)
	assert.Equal(t, 2, r.Sweep())
	_, ok := r.Get(live.ID)
	assert.True(t, ok)
}

func TestFlowRegistryRunStopsWithContext(t *testing.T) {
	now := time.Now()
	r := newTestRegistry(time.Minute, &now)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
