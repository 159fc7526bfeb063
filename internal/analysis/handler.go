package analysis

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lingua/internal/platform/middleware"
	dErrors "lingua/pkg/domain-errors"
	"lingua/pkg/httputil"
)

// Handler exposes the analysis surface. Register expects the /learning
// subrouter shared with the learning handler.
type Handler struct {
	svc          *Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
}

func NewHandler(svc *Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{svc: svc, logger: logger, jwtValidator: jwtValidator}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		r.Post("/conversation/analyze", h.handleAnalyzeConversation)
		r.Get("/conversation/{session_id}/analysis", h.handleGetConversationAnalysis)

		r.Post("/meeting/analyze", h.handleAnalyzeMeeting)
		r.Get("/meeting/analyses", h.handleListMeetingAnalyses)
		r.Get("/meeting/analyses/{id}", h.handleGetMeetingAnalysis)
		r.Delete("/meeting/analyses/{id}", h.handleDeleteMeetingAnalysis)
		r.Get("/meeting/analyses/{id}/response-suggestions", h.handleGetResponseSuggestions)
		r.Post("/meeting/analyses/{id}/response-suggestions", h.handleGenerateResponseSuggestions)
	})
}

func (h *Handler) handleAnalyzeConversation(w http.ResponseWriter, r *http.Request) {
	var req ConversationAnalysisRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	feedback, err := h.svc.AnalyzeConversation(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, feedback)
}

func (h *Handler) handleGetConversationAnalysis(w http.ResponseWriter, r *http.Request) {
	feedback, err := h.svc.ConversationAnalysis(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "session_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, feedback)
}

func (h *Handler) handleAnalyzeMeeting(w http.ResponseWriter, r *http.Request) {
	var req MeetingAnalysisRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	analysis, err := h.svc.AnalyzeMeeting(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, analysis)
}

func (h *Handler) handleListMeetingAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}
	analyses, err := h.svc.MeetingAnalyses(r.Context(), middleware.GetUserID(r.Context()), limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if analyses == nil {
		analyses = []*MeetingAnalysis{}
	}
	httputil.WriteJSON(w, http.StatusOK, analyses)
}

func (h *Handler) handleGetMeetingAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.svc.MeetingAnalysisByID(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, analysis)
}

func (h *Handler) handleDeleteMeetingAnalysis(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteMeetingAnalysis(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context())); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.NoContent(w)
}

func (h *Handler) handleGetResponseSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestion, err := h.svc.ResponseSuggestions(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, suggestion)
}

func (h *Handler) handleGenerateResponseSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestion, err := h.svc.GenerateResponseSuggestions(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, suggestion)
}
