//go:build integration

package application

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/member-directory/internal/domain/verification"
	"github.com/oksasatya/member-directory/pkg/helpers"
)

func TestCodeRequestThrottle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	c, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, c)
	require.NoError(t, err)

	url, err := c.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })

	r := newMemRepo()
	codes := map[string]string{}
	flows := NewFlowRegistry(time.Hour, func() *verification.Session {
		return verification.New(LookupFromRepo(r),
			verification.DispatcherFunc(func(_ context.Context, email, code string) error { codes[email] = code; return nil }),
			verification.WithPolicy(verification.Policy{CodeTTL: time.Minute, MaxAttempts: 5, HashCost: bcrypt.MinCost}))
	})
	svc := NewMemberService(r, nil, nil, flows, rdb, nil)
	svc.RequestsPerEmail = 2
	svc.RequestWindow = time.Minute

	// Fresh flows do not reset the per-address budget.
	_, err = svc.StartVerification(ctx, "", "a@example.com")
	require.NoError(t, err)
	f, err := svc.StartVerification(ctx, "", "A@example.com ")
	require.NoError(t, err)
	_, err = svc.StartVerification(ctx, "", "a@example.com")
	require.ErrorIs(t, err, ErrThrottled)

	// A successful confirmation clears it.
	_, _, err = svc.Confirm(ctx, f.ID, codes["a@example.com"])
	require.NoError(t, err)
	n, err := rdb.Exists(ctx, helpers.KeyOTPRequests("a@example.com")).Result()
	require.NoError(t, err)
	require.Zero(t, n)
}
