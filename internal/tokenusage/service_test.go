package tokenusage

import (
	"context"
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

func TestCalculateCost(t *testing.T) {
	tests := []struct {
		model      string
		prompt     int
		completion int
		want       float64
	}{
		{"gpt-3.5-turbo", 1000, 1000, 0.002},
		{"gpt-4", 1000, 500, 0.06},
		{"gpt-4-turbo", 2000, 1000, 0.05},
		{"unknown-model", 5000, 5000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.InDelta(t, tt.want, CalculateCost(tt.model, tt.prompt, tt.completion), 1e-9)
		})
	}
}

func TestSummaryBreaksDownByModel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(NewMemoryStore(), nil, logger)
	ctx := context.Background()

	svc.Record(ctx, "u1", "s1", "gpt-3.5-turbo", ContextChat, 100, 50)
	svc.Record(ctx, "u1", "s1", "gpt-3.5-turbo", ContextChat, 200, 100)
	svc.Record(ctx, "u1", "", "gpt-4", ContextMeetingAnalysis, 1000, 500)
	svc.Record(ctx, "other", "", "gpt-4", ContextChat, 999, 999)

	summary, err := svc.SummaryForDays(ctx, "u1", 30)
	require.NoError(t, err)

	assert.Equal(t, 1950, summary.TotalTokens)
	require.Contains(t, summary.ModelBreakdown, "gpt-3.5-turbo")
	require.Contains(t, summary.ModelBreakdown, "gpt-4")
	assert.Equal(t, 2, summary.ModelBreakdown["gpt-3.5-turbo"].Count)
	assert.Equal(t, 450, summary.ModelBreakdown["gpt-3.5-turbo"].TotalTokens)
	assert.InDelta(t, CalculateCost("gpt-3.5-turbo", 300, 150)+CalculateCost("gpt-4", 1000, 500), summary.TotalCost, 1e-9)
}

func TestListFiltersByDateWindow(t *testing.T) {
	store := NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(store, nil, logger)
	ctx := context.Background()

	old := &Usage{UserID: "u1", Model: "gpt-4", TotalTokens: 10, Timestamp: time.Now().UTC().AddDate(0, 0, -40)}
	require.NoError(t, store.Record(ctx, old))
	svc.Record(ctx, "u1", "", "gpt-4", ContextChat, 5, 5)

	usage, err := svc.List(ctx, "u1", Filter{Start: time.Now().UTC().AddDate(0, 0, -7)})
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, 10, usage[0].TotalTokens)
}

func TestUsageEndpoints(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(NewMemoryStore(), nil, logger)
	tokens := jwttoken.NewService("test-signing-key", "lingua", "lingua-api")

	r := chi.NewRouter()
	NewHandler(svc, logger, tokens).Register(r)

	svc.Record(context.Background(), "u1", "s1", "gpt-3.5-turbo", ContextChat, 100, 50)

	bearer, err := tokens.GenerateAccessToken("u1", "maria", false, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/tokens/usage", nil)
	req.Header.Set("Authorization", "Bearer "+bearer)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/tokens/usage/summary?days=7", nil)
	req.Header.Set("Authorization", "Bearer "+bearer)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/tokens/usage?start_date=not-a-date", nil)
	req.Header.Set("Authorization", "Bearer "+bearer)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
