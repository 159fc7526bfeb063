package chat

import "context"

// SessionStore persists sessions.
type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	// Get returns the session only when it belongs to userID, not-found
	// otherwise so ownership is never revealed.
	Get(ctx context.Context, id, userID string) (*Session, error)
	// ListByUser returns the user's active sessions, most recently updated
	// first.
	ListByUser(ctx context.Context, userID string, skip, limit int) ([]*Session, error)
	Update(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	// Touch bumps updated_at after message activity.
	Touch(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
}

// MessageStore persists messages.
type MessageStore interface {
	Append(ctx context.Context, m *Message) error
	// ListBySession returns messages in timestamp order.
	ListBySession(ctx context.Context, sessionID string, skip, limit int) ([]*Message, error)
	DeleteBySession(ctx context.Context, sessionID string) error
}
