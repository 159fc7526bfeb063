package tokenusage

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps usage records in a slice. Used in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*Usage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Record(_ context.Context, u *Usage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = primitive.NewObjectID().Hex()
	}
	if u.Timestamp.IsZero() {
		u.Timestamp = time.Now().UTC()
	}
	clone := *u
	s.records = append(s.records, &clone)
	return nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID string, filter Filter) ([]*Usage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Usage
	for _, u := range s.records {
		if u.UserID != userID {
			continue
		}
		if !filter.Start.IsZero() && u.Timestamp.Before(filter.Start) {
			continue
		}
		if !filter.End.IsZero() && u.Timestamp.After(filter.End) {
			continue
		}
		clone := *u
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *MemoryStore) TotalsSince(_ context.Context, since time.Time) (int64, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tokens, count int64
	for _, u := range s.records {
		if u.Timestamp.Before(since) {
			continue
		}
		tokens += int64(u.TotalTokens)
		count++
	}
	return tokens, count, nil
}

func (s *MemoryStore) TotalsForUserSince(_ context.Context, userID string, since time.Time) (int64, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tokens, count int64
	for _, u := range s.records {
		if u.UserID != userID || u.Timestamp.Before(since) {
			continue
		}
		tokens += int64(u.TotalTokens)
		count++
	}
	return tokens, count, nil
}
