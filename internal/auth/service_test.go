package auth

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
	"lingua/internal/user"
	dErrors "lingua/pkg/domain-errors"
)

func newAuthFixture(t *testing.T) (*Service, *user.Service) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := user.NewMemoryStore()
	users := user.NewService(store, logger)
	tokens := jwttoken.NewService("test-signing-key", "lingua", "lingua-api")
	return NewService(store, tokens, 30*time.Minute, logger), users
}

func TestLoginIssuesToken(t *testing.T) {
	svc, users := newAuthFixture(t)
	ctx := context.Background()

	_, err := users.Register(ctx, user.CreateRequest{
		Username: "maria", Email: "maria@example.com", Password: "longenough",
	})
	require.NoError(t, err)

	token, err := svc.Login(ctx, LoginRequest{Username: "maria", Password: "longenough"})
	require.NoError(t, err)

	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "bearer", token.TokenType)
	assert.Equal(t, int64(1800), token.ExpiresIn)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, users := newAuthFixture(t)
	ctx := context.Background()

	_, err := users.Register(ctx, user.CreateRequest{
		Username: "maria", Email: "maria@example.com", Password: "longenough",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Username: "maria", Password: "wrong-password"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = svc.Login(ctx, LoginRequest{Username: "nobody", Password: "longenough"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	svc, users := newAuthFixture(t)
	ctx := context.Background()

	u, err := users.Register(ctx, user.CreateRequest{
		Username: "maria", Email: "maria@example.com", Password: "longenough",
	})
	require.NoError(t, err)
	inactive := false
	_, err = users.Update(ctx, u.ID, user.UpdateRequest{Active: &inactive})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Username: "maria", Password: "longenough"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
}

func TestLoginEndpoint(t *testing.T) {
	svc, users := newAuthFixture(t)
	ctx := context.Background()

	_, err := users.Register(ctx, user.CreateRequest{
		Username: "maria", Email: "maria@example.com", Password: "longenough",
	})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	NewHandler(svc, logger).Register(r)

	body, _ := json.Marshal(LoginRequest{Username: "maria", Password: "longenough"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var token Token
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&token))
	assert.NotEmpty(t, token.AccessToken)
}
