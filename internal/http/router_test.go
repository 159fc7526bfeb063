package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingua/internal/admin"
	"lingua/internal/analysis"
	"lingua/internal/auth"
	"lingua/internal/chat"
	"lingua/internal/jwttoken"
	"lingua/internal/learning"
	"lingua/internal/llm/llmtest"
	"lingua/internal/tokenusage"
	"lingua/internal/user"
	"lingua/internal/ws"
)

func newTestRouter(t *testing.T, health ...HealthCheck) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	provider := llmtest.New()
	tokens := jwttoken.NewService("test-signing-key", "lingua", "lingua-api")
	usage := tokenusage.NewService(tokenusage.NewMemoryStore(), nil, logger)

	users := user.NewMemoryStore()
	userSvc := user.NewService(users, logger)
	authSvc := auth.NewService(users, tokens, time.Hour, logger)

	sessions := chat.NewMemorySessionStore()
	messages := chat.NewMemoryMessageStore()
	chatSvc := chat.NewService(sessions, messages, provider, usage, logger)

	languages := learning.NewMemoryLanguageStore()
	require.NoError(t, languages.Create(context.Background(), &learning.Language{Code: "en", Name: "English"}))
	learningSvc := learning.NewService(learning.Stores{
		Languages: languages,
		Lessons:   learning.NewMemoryLessonStore(),
		Quizzes:   learning.NewMemoryQuizStore(),
		Progress:  learning.NewMemoryProgressStore(),
		Activity:  learning.NewMemoryActivityStore(),
		Scenarios: learning.NewMemoryScenarioStore(),
	}, provider, usage, logger)

	analysisSvc := analysis.NewService(analysis.Stores{
		Feedback:    analysis.NewMemoryFeedbackStore(),
		Meetings:    analysis.NewMemoryMeetingStore(),
		Suggestions: analysis.NewMemorySuggestionStore(),
	}, sessions, messages, learningSvc, provider, usage, logger)

	adminSvc := admin.NewService(users, sessions, tokenusage.NewMemoryStore(), languages, logger)

	return New(Deps{
		Logger:   logger,
		Auth:     auth.NewHandler(authSvc, logger),
		Users:    user.NewHandler(userSvc, logger, tokens),
		Chat:     chat.NewHandler(chatSvc, logger, tokens),
		Tokens:   tokenusage.NewHandler(usage, logger, tokens),
		Learning: learning.NewHandler(learningSvc, logger, tokens),
		Analysis: analysis.NewHandler(analysisSvc, logger, tokens),
		Admin:    admin.NewHandler(adminSvc, logger, tokens),
		WS:       ws.NewHandler(chatSvc, analysisSvc, learningSvc, ws.NewHub(), tokens, logger),
		Health:   health,
	})
}

func TestRegisterLoginAndAuthorizedRoute(t *testing.T) {
	router := newTestRouter(t)

	body, _ := json.Marshal(map[string]any{
		"username": "frieda",
		"email":    "frieda@example.com",
		"password": "sehr-geheim-123",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body, _ = json.Marshal(map[string]string{"username": "frieda", "password": "sehr-geheim-123"})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var token struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &token))
	require.NotEmpty(t, token.AccessToken)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/learning/languages", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// non-superusers are turned away at the admin boundary
	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/api/v1/chat/sessions", "/api/v1/learning/lessons", "/api/v1/tokens/usage", "/api/v1/admin/users"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestHealthReportsComponents(t *testing.T) {
	router := newTestRouter(t,
		HealthCheck{Name: "mongo", Check: func(context.Context) error { return nil }},
		HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }},
	)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "ok", body.Components["mongo"])
	assert.Equal(t, "connection refused", body.Components["redis"])
}

func TestContentTypeGuard(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte("username=frieda")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestMetricsEndpointExposed(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
