package chat

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingua/internal/llm"
	"lingua/internal/llm/llmtest"
	"lingua/internal/tokenusage"
	dErrors "lingua/pkg/domain-errors"
)

type chatFixture struct {
	svc      *Service
	provider *llmtest.Fake
	usage    *tokenusage.MemoryStore
	messages *MemoryMessageStore
}

func newChatFixture(t *testing.T, responses ...llm.Response) *chatFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	provider := llmtest.New(responses...)
	usageStore := tokenusage.NewMemoryStore()
	messages := NewMemoryMessageStore()
	svc := NewService(
		NewMemorySessionStore(),
		messages,
		provider,
		tokenusage.NewService(usageStore, nil, logger),
		logger,
	)
	return &chatFixture{svc: svc, provider: provider, usage: usageStore, messages: messages}
}

func TestSendMessageCreatesSessionAndPersistsTurns(t *testing.T) {
	f := newChatFixture(t, llmtest.Reply("Hello there!"))
	ctx := context.Background()

	result, err := f.svc.SendMessage(ctx, "u1", SendRequest{Message: "Hi"})
	require.NoError(t, err)

	assert.Equal(t, "Hello there!", result.Response)
	assert.NotEmpty(t, result.SessionID)
	assert.Equal(t, 30, result.Usage.TotalTokens)

	msgs, err := f.messages.ListBySession(ctx, result.SessionID, 0, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, RoleAssistant, msgs[1].Role)

	usage, err := f.usage.ListByUser(ctx, "u1", tokenusage.Filter{})
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, tokenusage.ContextChat, usage[0].Context)
	assert.Equal(t, result.SessionID, usage[0].SessionID)
}

func TestSendMessageInjectsScenarioPromptOnceOnFirstExchange(t *testing.T) {
	f := newChatFixture(t, llmtest.Reply("Willkommen!"), llmtest.Reply("Danke."))
	ctx := context.Background()

	sess, err := f.svc.CreateSession(ctx, "u1", CreateSessionRequest{
		Metadata: SessionMetadata{
			Language: "German",
			Scenario: &ScenarioMeta{ID: "job_interview", Type: "predefined", Title: "Job Interview"},
		},
	})
	require.NoError(t, err)

	_, err = f.svc.SendMessage(ctx, "u1", SendRequest{Message: "Guten Tag", SessionID: sess.ID})
	require.NoError(t, err)

	require.Len(t, f.provider.Requests, 1)
	first := f.provider.Requests[0]
	require.GreaterOrEqual(t, len(first), 2)
	assert.Equal(t, llm.RoleSystem, first[0].Role)
	assert.Contains(t, first[0].Content, "job interview in German")

	_, err = f.svc.SendMessage(ctx, "u1", SendRequest{Message: "Mir geht es gut", SessionID: sess.ID})
	require.NoError(t, err)

	second := f.provider.Requests[1]
	for _, m := range second {
		assert.NotEqual(t, llm.RoleSystem, m.Role, "system prompt must only be injected on the first exchange")
	}
}

func TestSendMessageRejectsForeignSession(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	sess, err := f.svc.CreateSession(ctx, "owner", CreateSessionRequest{})
	require.NoError(t, err)

	_, err = f.svc.SendMessage(ctx, "intruder", SendRequest{Message: "Hi", SessionID: sess.ID})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestDeleteSessionRemovesMessages(t *testing.T) {
	f := newChatFixture(t, llmtest.Reply("ok"))
	ctx := context.Background()

	result, err := f.svc.SendMessage(ctx, "u1", SendRequest{Message: "Hi"})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteSession(ctx, result.SessionID, "u1"))

	msgs, err := f.messages.ListBySession(ctx, result.SessionID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	_, err = f.svc.GetSession(ctx, result.SessionID, "u1")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestListSessionsNewestFirstActiveOnly(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	first, err := f.svc.CreateSession(ctx, "u1", CreateSessionRequest{Title: "first"})
	require.NoError(t, err)
	second, err := f.svc.CreateSession(ctx, "u1", CreateSessionRequest{Title: "second"})
	require.NoError(t, err)

	inactive := false
	_, err = f.svc.UpdateSession(ctx, first.ID, "u1", UpdateSessionRequest{Active: &inactive})
	require.NoError(t, err)

	sessions, err := f.svc.ListSessions(ctx, "u1", 0, 50)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, second.ID, sessions[0].ID)
}
