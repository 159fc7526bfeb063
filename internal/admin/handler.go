package admin

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lingua/internal/platform/middleware"
	"lingua/pkg/httputil"
)

// Handler exposes the admin surface under /admin. Every route requires the
// superuser claim.
type Handler struct {
	svc          *Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
}

func NewHandler(svc *Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{svc: svc, logger: logger, jwtValidator: jwtValidator}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Use(middleware.RequireSuperuser(h.logger))

		r.Get("/users", h.handleListUsers)
		r.Get("/users/{id}", h.handleGetUser)
		r.Put("/users/{id}", h.handleUpdateUser)
		r.Post("/users/{id}/toggle-active", h.handleToggleActive)
		r.Post("/users/{id}/toggle-admin", h.handleToggleAdmin)
		r.Delete("/users/{id}", h.handleDeleteUser)

		r.Get("/stats/overview", h.handleStatsOverview)

		r.Get("/languages", h.handleListLanguages)
		r.Post("/languages", h.handleCreateLanguage)
		r.Put("/languages/{id}", h.handleUpdateLanguage)
		r.Delete("/languages/{id}", h.handleDeleteLanguage)
	})
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	skip, limit := httputil.Pagination(r, 50)
	page, err := h.svc.ListUsers(r.Context(), r.URL.Query().Get("search"), skip, limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UserUpdateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	view, err := h.svc.UpdateUser(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleToggleActive(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.ToggleActive(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleToggleAdmin(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.ToggleAdmin(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeactivateUser(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.NoContent(w)
}

func (h *Handler) handleStatsOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.svc.StatsOverview(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, overview)
}

func (h *Handler) handleListLanguages(w http.ResponseWriter, r *http.Request) {
	languages, err := h.svc.ListLanguages(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, languages)
}

func (h *Handler) handleCreateLanguage(w http.ResponseWriter, r *http.Request) {
	var req LanguageRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	language, err := h.svc.CreateLanguage(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, language)
}

func (h *Handler) handleUpdateLanguage(w http.ResponseWriter, r *http.Request) {
	var req LanguageRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	language, err := h.svc.UpdateLanguage(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, language)
}

func (h *Handler) handleDeleteLanguage(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteLanguage(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.NoContent(w)
}
