package tokenusage

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"lingua/internal/platform/middleware"
	dErrors "lingua/pkg/domain-errors"
	"lingua/pkg/httputil"
)

// Handler exposes the caller's usage under /tokens.
type Handler struct {
	svc          *Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
}

func NewHandler(svc *Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{svc: svc, logger: logger, jwtValidator: jwtValidator}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/tokens", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Get("/usage", h.handleUsage)
		r.Get("/usage/summary", h.handleSummary)
	})
}

func (h *Handler) handleUsage(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	usage, err := h.svc.List(r.Context(), middleware.GetUserID(r.Context()), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if usage == nil {
		usage = []*Usage{}
	}
	httputil.WriteJSON(w, http.StatusOK, usage)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "days must be a positive integer"))
			return
		}
		days = n
	}

	summary, err := h.svc.SummaryForDays(r.Context(), middleware.GetUserID(r.Context()), days)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func parseFilter(r *http.Request) (Filter, error) {
	var filter Filter
	if v := r.URL.Query().Get("start_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return Filter{}, dErrors.New(dErrors.CodeInvalidInput, "start_date must be RFC 3339")
		}
		filter.Start = t
	}
	if v := r.URL.Query().Get("end_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return Filter{}, dErrors.New(dErrors.CodeInvalidInput, "end_date must be RFC 3339")
		}
		filter.End = t
	}
	return filter, nil
}
