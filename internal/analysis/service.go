package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"lingua/internal/audit"
	"lingua/internal/chat"
	"lingua/internal/learning"
	"lingua/internal/llm"
	"lingua/internal/platform/metrics"
	"lingua/internal/prompt"
	"lingua/internal/tokenusage"
	dErrors "lingua/pkg/domain-errors"
)

const (
	analysisTemperature = 0.3
	// reuseWindow keeps analyze idempotent: a second request for the same
	// session within the window returns the stored result.
	reuseWindow         = time.Hour
	neutralScore        = 70
	meetingDefaultScore = 75
	meetingListLimit    = 10
)

// LanguageResolver maps a language code to its configured record.
// *learning.Service satisfies it.
type LanguageResolver interface {
	LanguageByCode(ctx context.Context, code string) (*learning.Language, error)
}

// ActivityLogger records practice activity. *learning.Service satisfies it.
type ActivityLogger interface {
	LogActivity(ctx context.Context, entry learning.ActivityEntry) error
}

// Service runs transcript analysis against the completion provider and
// stores the results.
type Service struct {
	feedback    FeedbackStore
	meetings    MeetingStore
	suggestions SuggestionStore
	sessions    chat.SessionStore
	messages    chat.MessageStore
	languages   LanguageResolver
	activity    ActivityLogger
	provider    llm.Provider
	usage       *tokenusage.Service
	publisher   *audit.Publisher
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// Option configures optional service collaborators.
type Option func(*Service)

func WithAudit(p *audit.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithActivityLogger(a ActivityLogger) Option {
	return func(s *Service) { s.activity = a }
}

type Stores struct {
	Feedback    FeedbackStore
	Meetings    MeetingStore
	Suggestions SuggestionStore
}

func NewService(
	stores Stores,
	sessions chat.SessionStore,
	messages chat.MessageStore,
	languages LanguageResolver,
	provider llm.Provider,
	usage *tokenusage.Service,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		feedback:    stores.Feedback,
		meetings:    stores.Meetings,
		suggestions: stores.Suggestions,
		sessions:    sessions,
		messages:    messages,
		languages:   languages,
		provider:    provider,
		usage:       usage,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeConversation reviews a chat session's transcript. A fresh analysis
// within the reuse window is returned as-is unless the caller forces a
// re-run.
func (s *Service) AnalyzeConversation(ctx context.Context, userID string, req ConversationAnalysisRequest) (*ConversationFeedback, error) {
	if req.SessionID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "session_id is required")
	}
	if _, err := s.sessions.Get(ctx, req.SessionID, userID); err != nil {
		return nil, err
	}

	if !req.ForceReanalysis {
		if existing, err := s.feedback.LatestBySession(ctx, userID, req.SessionID); err == nil {
			if time.Since(existing.CreatedAt) < reuseWindow {
				s.logger.InfoContext(ctx, "returning recent analysis",
					"session_id", req.SessionID, "created_at", existing.CreatedAt)
				return existing, nil
			}
		}
	}

	msgs, err := s.messages.ListBySession(ctx, req.SessionID, 0, 0)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "session has no messages to analyze")
	}

	language, err := s.languages.LanguageByCode(ctx, req.Language)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown language code")
	}

	transcript := buildTranscript(msgs)
	resp, err := s.provider.Generate(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: prompt.ConversationAnalysis(language.Name, transcript)},
	}, llm.Options{Temperature: analysisTemperature})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "conversation analysis failed")
	}
	s.usage.Record(ctx, userID, req.SessionID, resp.Model, tokenusage.ContextConversationAnalysis,
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	feedback := &ConversationFeedback{
		UserID:       userID,
		SessionID:    req.SessionID,
		LanguageCode: language.Code,
		Transcript:   transcript,
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(llm.ExtractJSON(resp.Content)), &parsed); err != nil {
		s.logger.WarnContext(ctx, "conversation analysis not parseable, using neutral fallback",
			"session_id", req.SessionID, "error", err)
		feedback.Analysis = map[string]any{}
		feedback.Strengths = []string{"Good effort in the conversation"}
		feedback.Suggestions = []string{"Keep practicing"}
		feedback.OverallScore = neutralScore
		feedback.FluencyScore = neutralScore
		feedback.GrammarScore = neutralScore
		feedback.VocabularyScore = neutralScore
		feedback.PronunciationScore = neutralScore
	} else {
		feedback.Analysis = parsed
		feedback.Strengths = stringsOf(parsed["user_strengths"])
		feedback.Suggestions = stringsOf(parsed["response_improvement_suggestions"])
		feedback.OverallScore = scoreOf(parsed, "overall_score", neutralScore)
		feedback.FluencyScore = scoreOf(parsed, "fluency_score", neutralScore)
		feedback.GrammarScore = scoreOf(parsed, "grammar_score", neutralScore)
		feedback.VocabularyScore = scoreOf(parsed, "vocabulary_score", neutralScore)
		feedback.PronunciationScore = scoreOf(parsed, "pronunciation_score", neutralScore)
	}

	if err := s.feedback.Create(ctx, feedback); err != nil {
		return nil, err
	}
	s.metrics.RecordAnalysis("conversation")
	if s.publisher != nil {
		s.publisher.Emit(audit.Event{
			UserID:  userID,
			Action:  audit.ActionAnalysisCreated,
			Subject: feedback.ID,
			Detail:  map[string]string{"kind": "conversation", "session_id": req.SessionID},
		})
	}
	return feedback, nil
}

// ConversationAnalysis returns the latest stored feedback for a session.
func (s *Service) ConversationAnalysis(ctx context.Context, userID, sessionID string) (*ConversationFeedback, error) {
	if _, err := s.sessions.Get(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	return s.feedback.LatestBySession(ctx, userID, sessionID)
}

// AnalyzeMeeting reviews a meeting transcription and logs the practice
// activity with a duration estimated from the transcription length.
func (s *Service) AnalyzeMeeting(ctx context.Context, userID string, req MeetingAnalysisRequest) (*MeetingAnalysis, error) {
	if strings.TrimSpace(req.Transcription) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "transcription is required")
	}
	language, err := s.languages.LanguageByCode(ctx, req.Language)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown language code")
	}

	contextInfo := ""
	if req.CustomContext != "" {
		contextInfo = fmt.Sprintf("\n\nAdditional context from the user: %s\n", req.CustomContext)
	}
	resp, err := s.provider.Generate(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: prompt.MeetingAnalysis(language.Name, req.Transcription, contextInfo)},
	}, llm.Options{Temperature: analysisTemperature})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "meeting analysis failed")
	}
	s.usage.Record(ctx, userID, "", resp.Model, tokenusage.ContextMeetingAnalysis,
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	analysis := &MeetingAnalysis{
		UserID:        userID,
		LanguageCode:  language.Code,
		MeetingName:   req.MeetingName,
		Transcription: req.Transcription,
		CustomContext: req.CustomContext,
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(llm.ExtractJSON(resp.Content)), &parsed); err != nil {
		s.logger.WarnContext(ctx, "meeting analysis not parseable, using default scores", "error", err)
		analysis.Analysis = map[string]any{}
		analysis.OverallScore = meetingDefaultScore
		analysis.GrammarScore = meetingDefaultScore
		analysis.FluencyScore = meetingDefaultScore
		analysis.VocabularyScore = meetingDefaultScore
		analysis.AccuracyScore = meetingDefaultScore
		analysis.Feedback = []string{"Good overall communication skills demonstrated"}
		analysis.Suggestions = []string{"Focus on grammar accuracy", "Expand professional vocabulary"}
	} else {
		analysis.Analysis = parsed
		scores, _ := parsed["scores"].(map[string]any)
		analysis.OverallScore = scoreOf(scores, "overall_communication", meetingDefaultScore)
		analysis.GrammarScore = scoreOf(scores, "grammar_accuracy", meetingDefaultScore)
		analysis.FluencyScore = scoreOf(scores, "fluency", meetingDefaultScore)
		analysis.VocabularyScore = scoreOf(scores, "vocabulary", meetingDefaultScore)
		analysis.AccuracyScore = scoreOf(scores, "meeting_effectiveness", meetingDefaultScore)
		analysis.Feedback = stringsOf(parsed["detailed_feedback"])
		analysis.Suggestions = roadmapSuggestions(parsed)
	}

	if err := s.meetings.Create(ctx, analysis); err != nil {
		return nil, err
	}
	s.metrics.RecordAnalysis("meeting")

	if s.activity != nil {
		duration := len(req.Transcription) / 100
		if duration < 10 {
			duration = 10
		}
		score := analysis.OverallScore
		if err := s.activity.LogActivity(ctx, learning.ActivityEntry{
			UserID:       userID,
			Type:         learning.ActivityMeetingAnalysis,
			ActivityID:   analysis.ID,
			Duration:     duration,
			LanguageCode: language.Code,
			Completed:    true,
			Score:        &score,
		}); err != nil {
			s.logger.WarnContext(ctx, "activity log failed", "user_id", userID, "error", err)
		}
	}
	if s.publisher != nil {
		s.publisher.Emit(audit.Event{
			UserID:  userID,
			Action:  audit.ActionAnalysisCreated,
			Subject: analysis.ID,
			Detail:  map[string]string{"kind": "meeting"},
		})
	}
	return analysis, nil
}

// MeetingAnalyses lists the caller's analyses, newest first.
func (s *Service) MeetingAnalyses(ctx context.Context, userID string, limit int) ([]*MeetingAnalysis, error) {
	if limit <= 0 {
		limit = meetingListLimit
	}
	return s.meetings.ListByUser(ctx, userID, limit)
}

func (s *Service) MeetingAnalysisByID(ctx context.Context, id, userID string) (*MeetingAnalysis, error) {
	return s.meetings.Get(ctx, id, userID)
}

func (s *Service) DeleteMeetingAnalysis(ctx context.Context, id, userID string) error {
	return s.meetings.Delete(ctx, id, userID)
}

// GenerateResponseSuggestions asks the model for improved alternatives to
// the participant's meeting responses.
func (s *Service) GenerateResponseSuggestions(ctx context.Context, userID, analysisID string) (*ResponseSuggestion, error) {
	analysis, err := s.meetings.Get(ctx, analysisID, userID)
	if err != nil {
		return nil, err
	}
	language, err := s.languages.LanguageByCode(ctx, analysis.LanguageCode)
	if err != nil {
		return nil, err
	}

	userName := extractParticipantName(analysis.CustomContext)
	customContext := analysis.CustomContext
	if customContext == "" {
		customContext = "No additional context provided."
	}
	resp, err := s.provider.Generate(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: prompt.ResponseSuggestions(
			language.Name, userName, analysis.MeetingName, analysis.Transcription, customContext)},
	}, llm.Options{Temperature: analysisTemperature})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "response suggestion generation failed")
	}
	s.usage.Record(ctx, userID, "", resp.Model, tokenusage.ContextResponseSuggestions,
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	suggestion := &ResponseSuggestion{
		UserID:       userID,
		AnalysisID:   analysis.ID,
		LanguageCode: analysis.LanguageCode,
	}
	var parsed struct {
		OriginalResponses  []map[string]any `json:"original_responses"`
		SuggestedResponses []map[string]any `json:"suggested_responses"`
	}
	if err := json.Unmarshal([]byte(llm.ExtractJSON(resp.Content)), &parsed); err != nil || len(parsed.SuggestedResponses) == 0 {
		s.logger.WarnContext(ctx, "response suggestions not parseable, using fallback", "analysis_id", analysisID)
		suggestion.OriginalResponses = []map[string]any{{
			"context":           "General meeting participation",
			"original_response": "Unable to extract specific responses",
			"timing":            "Throughout meeting",
		}}
		suggestion.SuggestedResponses = []map[string]any{{
			"context":           "General meeting participation",
			"improved_response": "I'd like to contribute by sharing my perspective on this topic.",
			"improvements": []string{
				"Grammar: Use clear, direct language",
				"Vocabulary: Professional meeting terminology",
				"Structure: Organized thought presentation",
				"Confidence: Assertive but respectful tone",
			},
			"explanation": "This response shows initiative and uses professional language appropriate for meetings.",
		}}
	} else {
		suggestion.OriginalResponses = parsed.OriginalResponses
		suggestion.SuggestedResponses = parsed.SuggestedResponses
	}

	if err := s.suggestions.Create(ctx, suggestion); err != nil {
		return nil, err
	}
	return suggestion, nil
}

// ResponseSuggestions returns the latest stored suggestions for an analysis.
func (s *Service) ResponseSuggestions(ctx context.Context, userID, analysisID string) (*ResponseSuggestion, error) {
	if _, err := s.meetings.Get(ctx, analysisID, userID); err != nil {
		return nil, err
	}
	return s.suggestions.LatestByAnalysis(ctx, analysisID)
}

func buildTranscript(msgs []*chat.Message) string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, strings.ToUpper(m.Role)+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}

var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:my name is|i'm|i am)\s+([a-zA-Z\s]+)`),
	regexp.MustCompile(`name:\s*([a-zA-Z\s]+)`),
	regexp.MustCompile(`^([a-zA-Z\s]+)\s*(?:here|speaking)`),
}

func extractParticipantName(customContext string) string {
	lowered := strings.ToLower(customContext)
	for _, pattern := range namePatterns {
		if match := pattern.FindStringSubmatch(lowered); match != nil {
			return titleCase(strings.TrimSpace(match[1]))
		}
	}
	return "the user"
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func scoreOf(m map[string]any, key string, fallback int) int {
	if m == nil {
		return fallback
	}
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}

func stringsOf(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func roadmapSuggestions(parsed map[string]any) []string {
	roadmap, _ := parsed["improvement_roadmap"].(map[string]any)
	suggestions := stringsOf(roadmap["immediate_priorities"])
	weekly := stringsOf(roadmap["weekly_practice_goals"])
	if len(weekly) > 2 {
		weekly = weekly[:2]
	}
	return append(suggestions, weekly...)
}
