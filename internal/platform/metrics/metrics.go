// Package metrics creates and registers all Prometheus metrics for the
// application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics is
// safe to use everywhere; recording becomes a no-op.
type Metrics struct {
	UsersCreated      prometheus.Counter
	ChatMessages      prometheus.Counter
	LLMRequests       *prometheus.CounterVec
	LLMTokens         *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	WSConnections     prometheus.Gauge
	AnalysesPerformed *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		UsersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lingua_users_created_total",
			Help: "Total number of users created in the system",
		}),
		ChatMessages: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lingua_chat_messages_total",
			Help: "Total number of chat exchanges processed",
		}),
		LLMRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lingua_llm_requests_total",
			Help: "Total number of LLM completion requests by model and context",
		}, []string{"model", "context"}),
		LLMTokens: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lingua_llm_tokens_total",
			Help: "Total tokens consumed by model and kind (prompt/completion)",
		}, []string{"model", "kind"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lingua_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status class",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
		WSConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "lingua_ws_connections",
			Help: "Currently open conversation WebSocket connections",
		}),
		AnalysesPerformed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lingua_analyses_total",
			Help: "Total transcript analyses by kind (conversation/meeting/suggestions)",
		}, []string{"kind"}),
	}
}

// IncrementUsersCreated increments the users created counter by 1.
func (m *Metrics) IncrementUsersCreated() {
	if m == nil {
		return
	}
	m.UsersCreated.Inc()
}

// IncrementChatMessages increments the chat exchange counter by 1.
func (m *Metrics) IncrementChatMessages() {
	if m == nil {
		return
	}
	m.ChatMessages.Inc()
}

// RecordLLMUsage records one completion request and its token counts.
func (m *Metrics) RecordLLMUsage(model, context string, promptTokens, completionTokens int) {
	if m == nil {
		return
	}
	m.LLMRequests.WithLabelValues(model, context).Inc()
	m.LLMTokens.WithLabelValues(model, "prompt").Add(float64(promptTokens))
	m.LLMTokens.WithLabelValues(model, "completion").Add(float64(completionTokens))
}

// WSConnectionOpened tracks a conversation socket going live.
func (m *Metrics) WSConnectionOpened() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

// WSConnectionClosed tracks a conversation socket going away.
func (m *Metrics) WSConnectionClosed() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}

// RecordAnalysis counts one transcript analysis of the given kind.
func (m *Metrics) RecordAnalysis(kind string) {
	if m == nil {
		return
	}
	m.AnalysesPerformed.WithLabelValues(kind).Inc()
}
