package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	dErrors "lingua/pkg/domain-errors"
)

const loginAttemptKeyPrefix = "login_attempts:"

// LoginLimiter throttles password attempts per username with a fixed Redis
// window. A nil limiter (or nil client) allows everything, so deployments
// without Redis still work.
type LoginLimiter struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
}

func NewLoginLimiter(client *redis.Client, maxAttempts int64, window time.Duration) *LoginLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &LoginLimiter{client: client, maxAttempts: maxAttempts, window: window}
}

// Allow counts one attempt and rejects once the window budget is spent.
func (l *LoginLimiter) Allow(ctx context.Context, username string) error {
	if l == nil || l.client == nil {
		return nil
	}
	key := loginAttemptKeyPrefix + username
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		// Redis being down must not lock users out.
		return nil
	}
	if count == 1 {
		l.client.Expire(ctx, key, l.window)
	}
	if count > l.maxAttempts {
		return dErrors.New(dErrors.CodeRateLimited,
			fmt.Sprintf("too many login attempts, retry in %s", l.window))
	}
	return nil
}

// Reset clears the attempt counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, username string) {
	if l == nil || l.client == nil {
		return
	}
	l.client.Del(ctx, loginAttemptKeyPrefix+username)
}
