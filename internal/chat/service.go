package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"lingua/internal/audit"
	"lingua/internal/llm"
	"lingua/internal/platform/metrics"
	"lingua/internal/prompt"
	"lingua/internal/tokenusage"
	dErrors "lingua/pkg/domain-errors"
)

const defaultTemperature = 0.7

// Service orchestrates sessions, history and the completion provider.
type Service struct {
	sessions  SessionStore
	messages  MessageStore
	provider  llm.Provider
	usage     *tokenusage.Service
	publisher *audit.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// Option configures optional service collaborators.
type Option func(*Service)

func WithAudit(p *audit.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(sessions SessionStore, messages MessageStore, provider llm.Provider, usage *tokenusage.Service, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		sessions: sessions,
		messages: messages,
		provider: provider,
		usage:    usage,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession opens a session, defaulting the title to a timestamp.
func (s *Service) CreateSession(ctx context.Context, userID string, req CreateSessionRequest) (*Session, error) {
	title := req.Title
	if title == "" {
		title = "Chat " + time.Now().UTC().Format("2006-01-02 15:04")
	}
	sess := &Session{
		UserID:   userID,
		Title:    title,
		Active:   true,
		Metadata: req.Metadata,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "session created",
		"session_id", sess.ID, "user_id", userID, "has_scenario", sess.Metadata.Scenario != nil)
	return sess, nil
}

func (s *Service) GetSession(ctx context.Context, id, userID string) (*Session, error) {
	return s.sessions.Get(ctx, id, userID)
}

func (s *Service) ListSessions(ctx context.Context, userID string, skip, limit int) ([]*Session, error) {
	return s.sessions.ListByUser(ctx, userID, skip, limit)
}

// UpdateSession applies title / active changes after an ownership check.
func (s *Service) UpdateSession(ctx context.Context, id, userID string, req UpdateSessionRequest) (*Session, error) {
	sess, err := s.sessions.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		sess.Title = *req.Title
	}
	if req.Active != nil {
		sess.Active = *req.Active
	}
	if err := s.sessions.Update(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// ListMessages returns a session's messages in order, owner only.
func (s *Service) ListMessages(ctx context.Context, sessionID, userID string, skip, limit int) ([]*Message, error) {
	if _, err := s.sessions.Get(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	return s.messages.ListBySession(ctx, sessionID, skip, limit)
}

// DeleteSession removes the session and every message in it.
func (s *Service) DeleteSession(ctx context.Context, id, userID string) error {
	if _, err := s.sessions.Get(ctx, id, userID); err != nil {
		return err
	}
	if err := s.messages.DeleteBySession(ctx, id); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, id)
}

// SendMessage runs the full exchange: resolve or create the session, replay
// history (injecting the scenario system prompt on the first exchange),
// generate a reply, persist both turns and bill the tokens.
func (s *Service) SendMessage(ctx context.Context, userID string, req SendRequest) (*SendResult, error) {
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "message is required")
	}

	var sess *Session
	var err error
	if req.SessionID != "" {
		sess, err = s.sessions.Get(ctx, req.SessionID, userID)
		if err != nil {
			return nil, err
		}
	} else {
		sess, err = s.CreateSession(ctx, userID, CreateSessionRequest{})
		if err != nil {
			return nil, err
		}
	}

	history, err := s.messages.ListBySession(ctx, sess.ID, 0, 0)
	if err != nil {
		return nil, err
	}

	var turns []llm.Message
	if sess.Metadata.Scenario != nil && len(history) == 0 {
		language := sess.Metadata.Language
		if language == "" {
			language = "English"
		}
		sc := sess.Metadata.Scenario
		if system, ok := prompt.ChatScenarioSystem(sc.Type, sc.ID, sc.Title, sc.Description, sc.Role, language); ok {
			turns = append(turns, llm.Message{Role: llm.RoleSystem, Content: system})
		}
	}
	for _, m := range history {
		turns = append(turns, llm.Message{Role: m.Role, Content: m.Content})
	}
	turns = append(turns, llm.Message{Role: llm.RoleUser, Content: text})

	if err := s.messages.Append(ctx, &Message{
		SessionID:  sess.ID,
		Role:       RoleUser,
		Content:    text,
		TokenCount: s.provider.CountTokens(text),
	}); err != nil {
		return nil, err
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}
	resp, err := s.provider.Generate(ctx, turns, llm.Options{
		Temperature: temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	if err := s.messages.Append(ctx, &Message{
		SessionID:  sess.ID,
		Role:       RoleAssistant,
		Content:    resp.Content,
		TokenCount: resp.Usage.CompletionTokens,
		Metadata:   map[string]string{"model": resp.Model},
	}); err != nil {
		return nil, err
	}

	s.usage.Record(ctx, userID, sess.ID, resp.Model, tokenusage.ContextChat,
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	if err := s.sessions.Touch(ctx, sess.ID); err != nil {
		s.logger.WarnContext(ctx, "touch session", "session_id", sess.ID, "error", err.Error())
	}

	s.metrics.IncrementChatMessages()
	s.publisher.Emit(audit.Event{
		UserID:  userID,
		Action:  audit.ActionChatMessage,
		Subject: sess.ID,
		Detail:  map[string]string{"model": resp.Model},
	})

	return &SendResult{
		Response:  resp.Content,
		SessionID: sess.ID,
		Usage: UsageDetail{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		Model: resp.Model,
	}, nil
}
