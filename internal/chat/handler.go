package chat

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lingua/internal/platform/middleware"
	"lingua/pkg/httputil"
)

// Handler exposes the chat surface under /chat.
type Handler struct {
	svc          *Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
}

func NewHandler(svc *Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{svc: svc, logger: logger, jwtValidator: jwtValidator}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/chat", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/chat", h.handleSend)
		r.Post("/sessions", h.handleCreateSession)
		r.Get("/sessions", h.handleListSessions)
		r.Get("/sessions/{id}", h.handleGetSession)
		r.Put("/sessions/{id}", h.handleUpdateSession)
		r.Delete("/sessions/{id}", h.handleDeleteSession)
		r.Get("/sessions/{id}/messages", h.handleListMessages)
	})
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.svc.SendMessage(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	sess, err := h.svc.CreateSession(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, sess)
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	skip, limit := httputil.Pagination(r, 50)
	sessions, err := h.svc.ListSessions(r.Context(), middleware.GetUserID(r.Context()), skip, limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if sessions == nil {
		sessions = []*Session{}
	}
	httputil.WriteJSON(w, http.StatusOK, sessions)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.GetSession(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sess)
}

func (h *Handler) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	var req UpdateSessionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	sess, err := h.svc.UpdateSession(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sess)
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSession(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context())); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.NoContent(w)
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	skip, limit := httputil.Pagination(r, 100)
	messages, err := h.svc.ListMessages(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()), skip, limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if messages == nil {
		messages = []*Message{}
	}
	httputil.WriteJSON(w, http.StatusOK, messages)
}
