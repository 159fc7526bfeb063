package tokenusage

import (
	"context"
	"time"
)

// Filter narrows usage queries. Zero times mean unbounded.
type Filter struct {
	Start time.Time
	End   time.Time
}

// Store persists usage records.
type Store interface {
	Record(ctx context.Context, u *Usage) error
	ListByUser(ctx context.Context, userID string, filter Filter) ([]*Usage, error)
	// TotalsSince sums total tokens and counts records across all users since
	// the cutoff. The admin overview uses it.
	TotalsSince(ctx context.Context, since time.Time) (totalTokens int64, count int64, err error)
	// TotalsForUserSince is the same rollup scoped to one user.
	TotalsForUserSince(ctx context.Context, userID string, since time.Time) (totalTokens int64, count int64, err error)
}
