package learning

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lingua/internal/platform/middleware"
	dErrors "lingua/pkg/domain-errors"
	"lingua/pkg/httputil"
)

var errInvalidDays = dErrors.New(dErrors.CodeInvalidInput, "days must be a positive integer")

// Handler exposes the learning surface. Register expects the /learning
// subrouter so that sibling handlers can share the prefix.
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

		r.Get("/languages", h.handleListLanguages)

		r.Post("/lessons", h.handleCreateLesson)
		r.Get("/lessons", h.handleListLessons)
		r.Get("/lessons/daily/{language_code}", h.handleDailyLesson)
		r.Get("/lessons/{id}", h.handleGetLesson)
		r.Put("/lessons/{id}", h.handleUpdateLesson)
		r.Delete("/lessons/{id}", h.handleDeleteLesson)

		r.Post("/quizzes", h.handleCreateQuiz)
		r.Get("/quizzes", h.handleListQuizzes)
		r.Get("/quizzes/{id}", h.handleGetQuiz)
		r.Put("/quizzes/{id}", h.handleUpdateQuiz)
		r.Delete("/quizzes/{id}", h.handleDeleteQuiz)
		r.Post("/quizzes/{id}/submit", h.handleSubmitQuiz)

		r.Get("/progress/{language_code}", h.handleUserProgress)
		r.Get("/stats/dashboard", h.handleDashboardStats)

		r.Post("/scenario/generate", h.handleGenerateScenario)
		r.Get("/scenarios/custom", h.handleCustomScenarios)
	})
}

func (h *Handler) handleListLanguages(w http.ResponseWriter, r *http.Request) {
	languages, err := h.svc.ListLanguages(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if languages == nil {
		languages = []*Language{}
	}
	httputil.WriteJSON(w, http.StatusOK, languages)
}

func (h *Handler) handleCreateLesson(w http.ResponseWriter, r *http.Request) {
	var req LessonCreateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	lesson, err := h.svc.CreateLesson(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, lesson)
}

func (h *Handler) handleListLessons(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	filter := LessonFilter{
		LanguageCode: r.URL.Query().Get("language_code"),
		Level:        r.URL.Query().Get("level"),
	}
	if r.URL.Query().Get("my_lessons_only") == "true" {
		filter.CreatedBy = userID
	}
	skip, limit := httputil.Pagination(r, 50)
	lessons, err := h.svc.ListLessons(r.Context(), userID, filter, skip, limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if lessons == nil {
		lessons = []*Lesson{}
	}
	httputil.WriteJSON(w, http.StatusOK, lessons)
}

func (h *Handler) handleDailyLesson(w http.ResponseWriter, r *http.Request) {
	daily, err := h.svc.DailyLesson(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "language_code"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, daily)
}

func (h *Handler) handleGetLesson(w http.ResponseWriter, r *http.Request) {
	lesson, err := h.svc.GetLesson(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, lesson)
}

func (h *Handler) handleUpdateLesson(w http.ResponseWriter, r *http.Request) {
	var req LessonUpdateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	lesson, err := h.svc.UpdateLesson(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, lesson)
}

func (h *Handler) handleDeleteLesson(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteLesson(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context())); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.NoContent(w)
}

func (h *Handler) handleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req QuizCreateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	quiz, err := h.svc.CreateQuiz(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, quiz)
}

func (h *Handler) handleListQuizzes(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	filter := QuizFilter{
		LanguageCode: r.URL.Query().Get("language_code"),
		Level:        r.URL.Query().Get("level"),
		LessonID:     r.URL.Query().Get("lesson_id"),
	}
	if r.URL.Query().Get("my_quizzes_only") == "true" {
		filter.CreatedBy = userID
	}
	skip, limit := httputil.Pagination(r, 50)
	quizzes, err := h.svc.ListQuizzes(r.Context(), userID, filter, skip, limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if quizzes == nil {
		quizzes = []*Quiz{}
	}
	httputil.WriteJSON(w, http.StatusOK, quizzes)
}

func (h *Handler) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.svc.GetQuiz(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, quiz)
}

func (h *Handler) handleUpdateQuiz(w http.ResponseWriter, r *http.Request) {
	var req QuizUpdateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	quiz, err := h.svc.UpdateQuiz(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, quiz)
}

func (h *Handler) handleDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteQuiz(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context())); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.NoContent(w)
}

func (h *Handler) handleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	var sub QuizSubmission
	if err := httputil.DecodeJSON(r, &sub); err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.svc.SubmitQuiz(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()), sub)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleUserProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.svc.UserProgress(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "language_code"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if progress == nil {
		progress = []*Progress{}
	}
	httputil.WriteJSON(w, http.StatusOK, progress)
}

func (h *Handler) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httputil.WriteError(w, errInvalidDays)
			return
		}
		days = parsed
	}
	stats, err := h.svc.DashboardStats(r.Context(), middleware.GetUserID(r.Context()), days)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleGenerateScenario(w http.ResponseWriter, r *http.Request) {
	var req ScenarioGenerateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	scenario, err := h.svc.GenerateCustomScenario(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, scenario)
}

func (h *Handler) handleCustomScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := h.svc.CustomScenarios(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if scenarios == nil {
		scenarios = []*Scenario{}
	}
	httputil.WriteJSON(w, http.StatusOK, scenarios)
}
