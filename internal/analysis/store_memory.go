package analysis

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	dErrors "lingua/pkg/domain-errors"
)

// MemoryFeedbackStore keeps conversation feedback in memory. Used in tests
// and local development.
type MemoryFeedbackStore struct {
	mu      sync.RWMutex
	entries []*ConversationFeedback
}

func NewMemoryFeedbackStore() *MemoryFeedbackStore {
	return &MemoryFeedbackStore{}
}

func (s *MemoryFeedbackStore) Create(_ context.Context, f *ConversationFeedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.ID == "" {
		f.ID = primitive.NewObjectID().Hex()
	}
	f.CreatedAt = time.Now().UTC()
	clone := *f
	s.entries = append(s.entries, &clone)
	return nil
}

func (s *MemoryFeedbackStore) LatestBySession(_ context.Context, userID, sessionID string) (*ConversationFeedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *ConversationFeedback
	for _, f := range s.entries {
		if f.UserID != userID || f.SessionID != sessionID {
			continue
		}
		if latest == nil || f.CreatedAt.After(latest.CreatedAt) {
			latest = f
		}
	}
	if latest == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "analysis not found")
	}
	clone := *latest
	return &clone, nil
}

// MemoryMeetingStore keeps meeting analyses in memory.
type MemoryMeetingStore struct {
	mu       sync.RWMutex
	analyses map[string]*MeetingAnalysis
}

func NewMemoryMeetingStore() *MemoryMeetingStore {
	return &MemoryMeetingStore{analyses: make(map[string]*MeetingAnalysis)}
}

func (s *MemoryMeetingStore) Create(_ context.Context, a *MeetingAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = primitive.NewObjectID().Hex()
	}
	a.CreatedAt = time.Now().UTC()
	clone := *a
	s.analyses[a.ID] = &clone
	return nil
}

func (s *MemoryMeetingStore) Get(_ context.Context, id, userID string) (*MeetingAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.analyses[id]
	if !ok || a.UserID != userID {
		return nil, dErrors.New(dErrors.CodeNotFound, "meeting analysis not found")
	}
	clone := *a
	return &clone, nil
}

func (s *MemoryMeetingStore) ListByUser(_ context.Context, userID string, limit int) ([]*MeetingAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*MeetingAnalysis
	for _, a := range s.analyses {
		if a.UserID == userID {
			clone := *a
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryMeetingStore) Delete(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.analyses[id]
	if !ok || a.UserID != userID {
		return dErrors.New(dErrors.CodeNotFound, "meeting analysis not found")
	}
	delete(s.analyses, id)
	return nil
}

// MemorySuggestionStore keeps response suggestions in memory.
type MemorySuggestionStore struct {
	mu      sync.RWMutex
	entries []*ResponseSuggestion
}

func NewMemorySuggestionStore() *MemorySuggestionStore {
	return &MemorySuggestionStore{}
}

func (s *MemorySuggestionStore) Create(_ context.Context, sg *ResponseSuggestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sg.ID == "" {
		sg.ID = primitive.NewObjectID().Hex()
	}
	sg.CreatedAt = time.Now().UTC()
	clone := *sg
	s.entries = append(s.entries, &clone)
	return nil
}

func (s *MemorySuggestionStore) LatestByAnalysis(_ context.Context, analysisID string) (*ResponseSuggestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *ResponseSuggestion
	for _, sg := range s.entries {
		if sg.AnalysisID != analysisID {
			continue
		}
		if latest == nil || sg.CreatedAt.After(latest.CreatedAt) {
			latest = sg
		}
	}
	if latest == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "response suggestions not found")
	}
	clone := *latest
	return &clone, nil
}
