package analysis

import "context"

// FeedbackStore persists conversation feedback documents.
type FeedbackStore interface {
	Create(ctx context.Context, feedback *ConversationFeedback) error
	// LatestBySession returns the newest feedback for a session, scoped to
	// its owner.
	LatestBySession(ctx context.Context, userID, sessionID string) (*ConversationFeedback, error)
}

// MeetingStore persists meeting analyses.
type MeetingStore interface {
	Create(ctx context.Context, analysis *MeetingAnalysis) error
	Get(ctx context.Context, id, userID string) (*MeetingAnalysis, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*MeetingAnalysis, error)
	Delete(ctx context.Context, id, userID string) error
}

// SuggestionStore persists generated response suggestions.
type SuggestionStore interface {
	Create(ctx context.Context, suggestion *ResponseSuggestion) error
	LatestByAnalysis(ctx context.Context, analysisID string) (*ResponseSuggestion, error)
}
