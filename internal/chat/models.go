// Package chat manages conversation sessions, their messages and the send
// pipeline against the completion provider.
package chat

import "time"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ScenarioMeta describes the role-play context a session was started with.
type ScenarioMeta struct {
	ID          string `json:"id,omitempty" bson:"id,omitempty"`
	Type        string `json:"type,omitempty" bson:"type,omitempty"`
	Title       string `json:"title,omitempty" bson:"title,omitempty"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Role        string `json:"role,omitempty" bson:"role,omitempty"`
}

// SessionMetadata is stored alongside a session.
type SessionMetadata struct {
	Scenario *ScenarioMeta `json:"scenario,omitempty" bson:"scenario,omitempty"`
	Language string        `json:"language,omitempty" bson:"language,omitempty"`
}

// Session groups the messages of one conversation.
type Session struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Title     string          `json:"title,omitempty"`
	Active    bool            `json:"is_active"`
	Metadata  SessionMetadata `json:"metadata"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Message is one turn within a session.
type Message struct {
	ID         string            `json:"id"`
	SessionID  string            `json:"session_id"`
	Role       string            `json:"role"`
	Content    string            `json:"content"`
	TokenCount int               `json:"token_count,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// SendRequest is the payload for the send-message operation.
type SendRequest struct {
	Message     string  `json:"message"`
	SessionID   string  `json:"session_id,omitempty"`
	Temperature float32 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// SendResult is what the send-message operation returns.
type SendResult struct {
	Response  string      `json:"response"`
	SessionID string      `json:"session_id"`
	Usage     UsageDetail `json:"usage"`
	Model     string      `json:"model"`
}

// UsageDetail mirrors the completion usage block in responses.
type UsageDetail struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CreateSessionRequest is the payload for explicit session creation.
type CreateSessionRequest struct {
	Title    string          `json:"title,omitempty"`
	Metadata SessionMetadata `json:"metadata"`
}

// UpdateSessionRequest carries optional session changes.
type UpdateSessionRequest struct {
	Title  *string `json:"title"`
	Active *bool   `json:"is_active"`
}
