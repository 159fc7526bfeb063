//go:build integration

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingua/internal/auth"
	dErrors "lingua/pkg/domain-errors"
	"lingua/pkg/testutil/containers"
)

func TestLoginLimiterAgainstRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rc := containers.StartRedis(t)
	ctx := context.Background()

	limiter := auth.NewLoginLimiter(rc.Client, 3, time.Minute)

	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Allow(ctx, "frieda"))
	}
	err := limiter.Allow(ctx, "frieda")
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeRateLimited, dErrors.CodeOf(err))

	// unrelated usernames keep their own budget
	assert.NoError(t, limiter.Allow(ctx, "bob"))

	limiter.Reset(ctx, "frieda")
	assert.NoError(t, limiter.Allow(ctx, "frieda"))
}

func TestLoginLimiterWindowExpiry(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rc := containers.StartRedis(t)
	ctx := context.Background()

	limiter := auth.NewLoginLimiter(rc.Client, 1, time.Second)

	require.NoError(t, limiter.Allow(ctx, "frieda"))
	require.Error(t, limiter.Allow(ctx, "frieda"))

	time.Sleep(1500 * time.Millisecond)
	assert.NoError(t, limiter.Allow(ctx, "frieda"))
}
