package user

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

type userFixture struct {
	router http.Handler
	svc    *Service
	tokens *jwttoken.Service
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(NewMemoryStore(), logger)
	tokens := jwttoken.NewService("test-signing-key", "lingua", "lingua-api")

	h := NewHandler(svc, logger, tokens)
	r := chi.NewRouter()
	h.Register(r)
	return &userFixture{router: r, svc: svc, tokens: tokens}
}

func (f *userFixture) bearer(t *testing.T, u *User) string {
	t.Helper()
	token, err := f.tokens.GenerateAccessToken(u.ID, u.Username, u.Superuser, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRegisterEndpoint(t *testing.T) {
	f := newUserFixture(t)

	body, _ := json.Marshal(map[string]any{
		"username": "maria",
		"email":    "maria@example.com",
		"password": "longenough",
	})
	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "maria", resp["username"])
	assert.NotEmpty(t, resp["id"])
	_, leaked := resp["hashed_password"]
	assert.False(t, leaked, "password hash must not appear in responses")
}

func TestMeRequiresToken(t *testing.T) {
	f := newUserFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeReturnsCurrentUser(t *testing.T) {
	f := newUserFixture(t)
	u, err := f.svc.Register(context.Background(), CreateRequest{
		Username: "maria", Email: "maria@example.com", Password: "longenough",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", f.bearer(t, u))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, u.ID, resp.ID)
}

func TestAdminRoutesRequireSuperuser(t *testing.T) {
	f := newUserFixture(t)
	u, err := f.svc.Register(context.Background(), CreateRequest{
		Username: "maria", Email: "maria@example.com", Password: "longenough",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", f.bearer(t, u))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminUserCRUD(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	admin, err := f.svc.Register(ctx, CreateRequest{Username: "admin", Email: "admin@example.com", Password: "longenough"})
	require.NoError(t, err)
	superuser := true
	admin, err = f.svc.Update(ctx, admin.ID, UpdateRequest{Superuser: &superuser})
	require.NoError(t, err)

	target, err := f.svc.Register(ctx, CreateRequest{Username: "maria", Email: "maria@example.com", Password: "longenough"})
	require.NoError(t, err)

	auth := f.bearer(t, admin)

	req := httptest.NewRequest(http.MethodGet, "/users/"+target.ID, nil)
	req.Header.Set("Authorization", auth)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := json.Marshal(map[string]any{"full_name": "Maria G"})
	req = httptest.NewRequest(http.MethodPut, "/users/"+target.ID, bytes.NewReader(body))
	req.Header.Set("Authorization", auth)
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/users/"+target.ID, nil)
	req.Header.Set("Authorization", auth)
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/users/"+target.ID, nil)
	req.Header.Set("Authorization", auth)
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
