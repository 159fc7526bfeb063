package audit

import "time"

// Actions emitted by the domain services.
const (
	ActionUserRegistered  = "user_registered"
	ActionUserLogin       = "user_login"
	ActionChatMessage     = "chat_message"
	ActionQuizCompleted   = "quiz_completed"
	ActionAnalysisCreated = "analysis_created"
	ActionAdminChange     = "admin_change"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so tests can swap sinks easily.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	UserID    string            `json:"user_id"`
	Action    string            `json:"action"`
	Subject   string            `json:"subject,omitempty"`
	Detail    map[string]string `json:"detail,omitempty"`
}
