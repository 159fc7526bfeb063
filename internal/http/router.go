// Package httpapi composes the HTTP surface: the shared middleware chain,
// health and metrics endpoints, and every feature handler's routes.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lingua/internal/admin"
	"lingua/internal/analysis"
	"lingua/internal/auth"
	"lingua/internal/chat"
	"lingua/internal/learning"
	"lingua/internal/platform/metrics"
	"lingua/internal/platform/middleware"
	"lingua/internal/tokenusage"
	"lingua/internal/user"
	"lingua/internal/ws"
	"lingua/pkg/httputil"
)

const requestTimeout = 60 * time.Second

// HealthCheck probes one backing dependency for the health endpoint.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps carries everything the router wires together.
type Deps struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	Auth     *auth.Handler
	Users    *user.Handler
	Chat     *chat.Handler
	Tokens   *tokenusage.Handler
	Learning *learning.Handler
	Analysis *analysis.Handler
	Admin    *admin.Handler
	WS       *ws.Handler

	Health []HealthCheck
}

// New builds the router. WebSocket routes skip the request timeout and the
// JSON content-type guard since they hold the connection open.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.LatencyMiddleware(deps.Metrics))

	r.Get("/health", handleHealth(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Use(middleware.ContentTypeJSON)

		deps.Auth.Register(r)
		deps.Users.Register(r)
		deps.Chat.Register(r)
		deps.Tokens.Register(r)
		r.Route("/learning", func(r chi.Router) {
			deps.Learning.Register(r)
			deps.Analysis.Register(r)
		})
		deps.Admin.Register(r)
	})

	deps.WS.Register(r)
	return r
}

func handleHealth(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := http.StatusOK
		components := make(map[string]string, len(checks))
		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				components[c.Name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			components[c.Name] = "ok"
		}

		body := map[string]any{"status": "ok"}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		if len(components) > 0 {
			body["components"] = components
		}
		httputil.WriteJSON(w, status, body)
	}
}
