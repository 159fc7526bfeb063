package analysis

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingua/internal/chat"
	"lingua/internal/learning"
	"lingua/internal/llm"
	"lingua/internal/llm/llmtest"
	"lingua/internal/tokenusage"
	dErrors "lingua/pkg/domain-errors"
)

type analysisFixture struct {
	svc      *Service
	learning *learning.Service
	sessions *chat.MemorySessionStore
	messages *chat.MemoryMessageStore
	provider *llmtest.Fake
	usage    *tokenusage.MemoryStore
	activity *learning.MemoryActivityStore
}

func newAnalysisFixture(t *testing.T, responses ...llm.Response) *analysisFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	provider := llmtest.New(responses...)
	usageStore := tokenusage.NewMemoryStore()
	usage := tokenusage.NewService(usageStore, nil, logger)

	activity := learning.NewMemoryActivityStore()
	languages := learning.NewMemoryLanguageStore()
	require.NoError(t, languages.Create(context.Background(), &learning.Language{Code: "en", Name: "English"}))
	learningSvc := learning.NewService(learning.Stores{
		Languages: languages,
		Lessons:   learning.NewMemoryLessonStore(),
		Quizzes:   learning.NewMemoryQuizStore(),
		Progress:  learning.NewMemoryProgressStore(),
		Activity:  activity,
		Scenarios: learning.NewMemoryScenarioStore(),
	}, provider, usage, logger)

	sessions := chat.NewMemorySessionStore()
	messages := chat.NewMemoryMessageStore()
	svc := NewService(
		Stores{
			Feedback:    NewMemoryFeedbackStore(),
			Meetings:    NewMemoryMeetingStore(),
			Suggestions: NewMemorySuggestionStore(),
		},
		sessions,
		messages,
		learningSvc,
		provider,
		usage,
		logger,
		WithActivityLogger(learningSvc),
	)
	return &analysisFixture{
		svc:      svc,
		learning: learningSvc,
		sessions: sessions,
		messages: messages,
		provider: provider,
		usage:    usageStore,
		activity: activity,
	}
}

func (f *analysisFixture) seedConversation(t *testing.T, userID string) *chat.Session {
	t.Helper()
	ctx := context.Background()
	sess := &chat.Session{UserID: userID, Title: "practice", Active: true}
	require.NoError(t, f.sessions.Create(ctx, sess))
	require.NoError(t, f.messages.Append(ctx, &chat.Message{SessionID: sess.ID, Role: chat.RoleAssistant, Content: "How are you?"}))
	require.NoError(t, f.messages.Append(ctx, &chat.Message{SessionID: sess.ID, Role: chat.RoleUser, Content: "I is fine."}))
	return sess
}

const conversationAnalysisJSON = `{
  "user_strengths": ["brave attempt"],
  "response_improvement_suggestions": ["review to-be conjugation"],
  "overall_score": 62,
  "fluency_score": 60,
  "grammar_score": 55,
  "vocabulary_score": 70,
  "pronunciation_score": 65
}`

func TestAnalyzeConversationParsesScores(t *testing.T) {
	f := newAnalysisFixture(t, llmtest.Reply(conversationAnalysisJSON))
	ctx := context.Background()
	sess := f.seedConversation(t, "u1")

	feedback, err := f.svc.AnalyzeConversation(ctx, "u1", ConversationAnalysisRequest{
		SessionID: sess.ID,
		Language:  "en",
	})
	require.NoError(t, err)

	assert.Equal(t, 62, feedback.OverallScore)
	assert.Equal(t, 55, feedback.GrammarScore)
	assert.Equal(t, []string{"brave attempt"}, feedback.Strengths)
	assert.Contains(t, feedback.Transcript, "ASSISTANT: How are you?")
	assert.Contains(t, feedback.Transcript, "USER: I is fine.")

	usage, err := f.usage.ListByUser(ctx, "u1", tokenusage.Filter{})
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, tokenusage.ContextConversationAnalysis, usage[0].Context)
	assert.Equal(t, sess.ID, usage[0].SessionID)

	// the analysis prompt carries the transcript
	require.Len(t, f.provider.Requests, 1)
	assert.Contains(t, f.provider.Requests[0][0].Content, "USER: I is fine.")
}

func TestAnalyzeConversationReusesRecentResult(t *testing.T) {
	f := newAnalysisFixture(t,
		llmtest.Reply(conversationAnalysisJSON),
		llmtest.Reply(conversationAnalysisJSON),
	)
	ctx := context.Background()
	sess := f.seedConversation(t, "u1")
	req := ConversationAnalysisRequest{SessionID: sess.ID, Language: "en"}

	first, err := f.svc.AnalyzeConversation(ctx, "u1", req)
	require.NoError(t, err)
	second, err := f.svc.AnalyzeConversation(ctx, "u1", req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.provider.Requests, 1)

	req.ForceReanalysis = true
	third, err := f.svc.AnalyzeConversation(ctx, "u1", req)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
	assert.Len(t, f.provider.Requests, 2)
}

func TestAnalyzeConversationNeutralFallback(t *testing.T) {
	f := newAnalysisFixture(t, llmtest.Reply("I could not produce the requested format"))
	sess := f.seedConversation(t, "u1")

	feedback, err := f.svc.AnalyzeConversation(context.Background(), "u1", ConversationAnalysisRequest{
		SessionID: sess.ID,
		Language:  "en",
	})
	require.NoError(t, err)

	assert.Equal(t, 70, feedback.OverallScore)
	assert.Equal(t, 70, feedback.PronunciationScore)
	assert.Equal(t, []string{"Good effort in the conversation"}, feedback.Strengths)
	assert.Equal(t, []string{"Keep practicing"}, feedback.Suggestions)
}

func TestAnalyzeConversationForeignSession(t *testing.T) {
	f := newAnalysisFixture(t)
	sess := f.seedConversation(t, "owner")

	_, err := f.svc.AnalyzeConversation(context.Background(), "stranger", ConversationAnalysisRequest{
		SessionID: sess.ID,
		Language:  "en",
	})
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
}

const meetingAnalysisJSON = `{
  "detailed_feedback": ["clear status updates"],
  "improvement_roadmap": {
    "immediate_priorities": ["slow down when presenting"],
    "weekly_practice_goals": ["rehearse summaries", "prepare questions", "extra goal"]
  },
  "scores": {
    "overall_communication": 81,
    "grammar_accuracy": 78,
    "fluency": 80,
    "vocabulary": 76,
    "meeting_effectiveness": 83
  }
}`

func TestAnalyzeMeetingExtractsScoresAndLogsActivity(t *testing.T) {
	f := newAnalysisFixture(t, llmtest.Reply(meetingAnalysisJSON))
	ctx := context.Background()

	analysis, err := f.svc.AnalyzeMeeting(ctx, "u1", MeetingAnalysisRequest{
		MeetingName:   "Sprint review",
		Transcription: "ALICE: status update. BOB: sounds good.",
		Language:      "en",
		CustomContext: "My name is Alice",
	})
	require.NoError(t, err)

	assert.Equal(t, 81, analysis.OverallScore)
	assert.Equal(t, 83, analysis.AccuracyScore)
	assert.Equal(t, []string{"clear status updates"}, analysis.Feedback)
	// immediate priorities plus the first two weekly goals
	assert.Equal(t, []string{"slow down when presenting", "rehearse summaries", "prepare questions"}, analysis.Suggestions)

	usage, err := f.usage.ListByUser(ctx, "u1", tokenusage.Filter{})
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, tokenusage.ContextMeetingAnalysis, usage[0].Context)

	entries, err := f.activity.ListActivities(ctx, "u1", learning.ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, learning.ActivityMeetingAnalysis, entries[0].Type)
	// short transcriptions floor at a ten minute estimate
	assert.Equal(t, 10, entries[0].Duration)
	require.NotNil(t, entries[0].Score)
	assert.Equal(t, 81, *entries[0].Score)
}

func TestMeetingAnalysisOwnerScoping(t *testing.T) {
	f := newAnalysisFixture(t, llmtest.Reply(meetingAnalysisJSON))
	ctx := context.Background()

	analysis, err := f.svc.AnalyzeMeeting(ctx, "owner", MeetingAnalysisRequest{
		Transcription: "short meeting",
		Language:      "en",
	})
	require.NoError(t, err)

	_, err = f.svc.MeetingAnalysisByID(ctx, analysis.ID, "stranger")
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))

	err = f.svc.DeleteMeetingAnalysis(ctx, analysis.ID, "stranger")
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))

	listed, err := f.svc.MeetingAnalyses(ctx, "owner", 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, f.svc.DeleteMeetingAnalysis(ctx, analysis.ID, "owner"))
}

func TestGenerateResponseSuggestionsUsesExtractedName(t *testing.T) {
	f := newAnalysisFixture(t,
		llmtest.Reply(meetingAnalysisJSON),
		llmtest.Reply(`{"original_responses":[{"context":"status","original_response":"we done it"}],"suggested_responses":[{"context":"status","improved_response":"we completed it"}]}`),
	)
	ctx := context.Background()

	analysis, err := f.svc.AnalyzeMeeting(ctx, "u1", MeetingAnalysisRequest{
		MeetingName:   "Standup",
		Transcription: "we done it yesterday",
		Language:      "en",
		CustomContext: "my name is jane smith",
	})
	require.NoError(t, err)

	suggestion, err := f.svc.GenerateResponseSuggestions(ctx, "u1", analysis.ID)
	require.NoError(t, err)
	require.Len(t, suggestion.SuggestedResponses, 1)
	assert.Equal(t, "we completed it", suggestion.SuggestedResponses[0]["improved_response"])

	require.Len(t, f.provider.Requests, 2)
	assert.Contains(t, f.provider.Requests[1][0].Content, "Jane Smith")

	stored, err := f.svc.ResponseSuggestions(ctx, "u1", analysis.ID)
	require.NoError(t, err)
	assert.Equal(t, suggestion.ID, stored.ID)
}

func TestGenerateResponseSuggestionsFallback(t *testing.T) {
	f := newAnalysisFixture(t,
		llmtest.Reply(meetingAnalysisJSON),
		llmtest.Reply("not json at all"),
	)
	ctx := context.Background()

	analysis, err := f.svc.AnalyzeMeeting(ctx, "u1", MeetingAnalysisRequest{
		Transcription: "short meeting",
		Language:      "en",
	})
	require.NoError(t, err)

	suggestion, err := f.svc.GenerateResponseSuggestions(ctx, "u1", analysis.ID)
	require.NoError(t, err)
	require.Len(t, suggestion.SuggestedResponses, 1)
	assert.Equal(t, "General meeting participation", suggestion.SuggestedResponses[0]["context"])
}

func TestExtractParticipantName(t *testing.T) {
	tests := []struct {
		context string
		want    string
	}{
		{"My name is Alice", "Alice"},
		{"i'm bob martin and I lead the team", "Bob Martin And I Lead The Team"},
		{"name: carol", "Carol"},
		{"dave here, taking notes", "Dave"},
		{"", "the user"},
		{"no names mentioned", "the user"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractParticipantName(tt.context), "context %q", tt.context)
	}
}
