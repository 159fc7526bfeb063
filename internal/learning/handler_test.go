package learning

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingua/internal/jwttoken"
)

type handlerFixture struct {
	*learningFixture
	router http.Handler
	tokens *jwttoken.Service
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := newLearningFixture(t)
	tokens := jwttoken.NewService("test-signing-key", "lingua", "lingua-api")
	h := NewHandler(f.svc, logger, tokens)

	r := chi.NewRouter()
	r.Route("/learning", h.Register)
	return &handlerFixture{learningFixture: f, router: r, tokens: tokens}
}

func (f *handlerFixture) bearer(t *testing.T, userID string) string {
	t.Helper()
	token, err := f.tokens.GenerateAccessToken(userID, "tester", false, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func (f *handlerFixture) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req.Header.Set("Authorization", f.bearer(t, userID))
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestLearningRoutesRequireAuth(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodGet, "/learning/languages", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListLanguagesEndpoint(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedLanguage(t, "de", "German")
	f.seedLanguage(t, "es", "Spanish")

	rec := f.do(t, http.MethodGet, "/learning/languages", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var languages []Language
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &languages))
	require.Len(t, languages, 2)
	assert.Equal(t, "German", languages[0].Name)
}

func TestLessonLifecycleEndpoints(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedLanguage(t, "de", "German")

	rec := f.do(t, http.MethodPost, "/learning/lessons", "u1", map[string]any{
		"title":         "Greetings",
		"language_code": "de",
		"level":         "beginner",
		"is_public":     true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var lesson Lesson
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lesson))

	rec = f.do(t, http.MethodGet, "/learning/lessons?language_code=de", "u2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var lessons []Lesson
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lessons))
	require.Len(t, lessons, 1)

	rec = f.do(t, http.MethodDelete, "/learning/lessons/"+lesson.ID, "u2", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodDelete, "/learning/lessons/"+lesson.ID, "u1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSubmitQuizEndpoint(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedLanguage(t, "de", "German")
	quiz := f.seedQuiz(t, "owner", "", 70)

	rec := f.do(t, http.MethodPost, "/learning/quizzes/"+quiz.ID+"/submit", "u1", map[string]any{
		"answers": []map[string]string{
			{"answer": "hallo"}, {"answer": "danke"}, {"answer": "tschuess"}, {"answer": "ja"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result QuizResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 100, result.Score)
	assert.True(t, result.Passed)
}

func TestDailyLessonEndpoint(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedLanguage(t, "de", "German")
	f.seedLesson(t, "owner", true, 1)

	rec := f.do(t, http.MethodGet, "/learning/lessons/daily/de", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var daily DailyLesson
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &daily))
	require.NotNil(t, daily.Lesson)
	assert.Equal(t, "Greetings", daily.Lesson.Title)
}

func TestDashboardStatsEndpointRejectsBadDays(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodGet, "/learning/stats/dashboard?days=abc", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	score := 90
	require.NoError(t, f.svc.LogActivity(context.Background(), ActivityEntry{
		UserID: "u1", Type: ActivityQuiz, Completed: true, Score: &score,
	}))

	rec = f.do(t, http.MethodGet, "/learning/stats/dashboard", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats DashboardStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.QuizzesCompleted)
	assert.Equal(t, 90, stats.AverageScore)
}
