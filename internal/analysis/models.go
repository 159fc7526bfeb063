// Package analysis turns conversation transcripts and meeting transcriptions
// into structured language feedback.
package analysis

import "time"

// ConversationAnalysisRequest asks for feedback on a chat session.
type ConversationAnalysisRequest struct {
	SessionID       string `json:"session_id"`
	Language        string `json:"language"`
	ForceReanalysis bool   `json:"force_reanalysis"`
}

// ConversationFeedback is the stored review of one practice conversation.
// Analysis carries the model's full JSON payload; the score fields are
// lifted out for querying and display.
type ConversationFeedback struct {
	ID                 string         `json:"id"`
	UserID             string         `json:"user_id"`
	SessionID          string         `json:"session_id"`
	LanguageCode       string         `json:"language_code"`
	Transcript         string         `json:"transcript"`
	Analysis           map[string]any `json:"analysis"`
	Strengths          []string       `json:"strengths"`
	Suggestions        []string       `json:"suggestions"`
	OverallScore       int            `json:"overall_score"`
	FluencyScore       int            `json:"fluency_score"`
	GrammarScore       int            `json:"grammar_score"`
	VocabularyScore    int            `json:"vocabulary_score"`
	PronunciationScore int            `json:"pronunciation_score"`
	CreatedAt          time.Time      `json:"created_at"`
}

// MeetingAnalysisRequest asks for feedback on a meeting transcription.
type MeetingAnalysisRequest struct {
	MeetingName   string `json:"meeting_name"`
	Transcription string `json:"transcription"`
	Language      string `json:"language"`
	CustomContext string `json:"custom_context"`
}

// MeetingAnalysis is the stored review of one meeting transcription.
type MeetingAnalysis struct {
	ID              string         `json:"id"`
	UserID          string         `json:"user_id"`
	LanguageCode    string         `json:"language_code"`
	MeetingName     string         `json:"meeting_name"`
	Transcription   string         `json:"transcription"`
	CustomContext   string         `json:"custom_context,omitempty"`
	Analysis        map[string]any `json:"analysis"`
	OverallScore    int            `json:"overall_score"`
	GrammarScore    int            `json:"grammar_score"`
	FluencyScore    int            `json:"fluency_score"`
	VocabularyScore int            `json:"vocabulary_score"`
	AccuracyScore   int            `json:"accuracy_score"`
	Feedback        []string       `json:"feedback"`
	Suggestions     []string       `json:"suggestions"`
	CreatedAt       time.Time      `json:"created_at"`
}

// ResponseSuggestion pairs a meeting analysis with improved response
// alternatives for the participant.
type ResponseSuggestion struct {
	ID                 string           `json:"id"`
	UserID             string           `json:"user_id"`
	AnalysisID         string           `json:"analysis_id"`
	LanguageCode       string           `json:"language_code"`
	OriginalResponses  []map[string]any `json:"original_responses"`
	SuggestedResponses []map[string]any `json:"suggested_responses"`
	CreatedAt          time.Time        `json:"created_at"`
}
