package tokenusage

import (
	"context"
	"log/slog"
	"time"

	"lingua/internal/platform/metrics"
)

// Service records priced usage and computes summaries.
type Service struct {
	store   Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewService(store Store, metrics *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{store: store, metrics: metrics, logger: logger}
}

// Record prices and persists one completion call. Recording failures are
// logged but never propagated: the user-facing operation already succeeded.
func (s *Service) Record(ctx context.Context, userID, sessionID, model, usageContext string, promptTokens, completionTokens int) {
	u := &Usage{
		UserID:           userID,
		SessionID:        sessionID,
		Model:            model,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
		Cost:             CalculateCost(model, promptTokens, completionTokens),
		Context:          usageContext,
	}
	if err := s.store.Record(ctx, u); err != nil {
		s.logger.ErrorContext(ctx, "record token usage",
			"user_id", userID, "model", model, "error", err.Error())
		return
	}
	s.metrics.RecordLLMUsage(model, usageContext, promptTokens, completionTokens)
}

// List returns the caller's usage records within the optional window.
func (s *Service) List(ctx context.Context, userID string, filter Filter) ([]*Usage, error) {
	return s.store.ListByUser(ctx, userID, filter)
}

// SummaryForDays rolls up the caller's usage over the trailing N days.
func (s *Service) SummaryForDays(ctx context.Context, userID string, days int) (*Summary, error) {
	if days <= 0 {
		days = 30
	}
	end := time.Now().UTC()
	usage, err := s.store.ListByUser(ctx, userID, Filter{Start: end.AddDate(0, 0, -days), End: end})
	if err != nil {
		return nil, err
	}

	summary := &Summary{ModelBreakdown: make(map[string]*ModelBreakdown)}
	for _, u := range usage {
		summary.TotalTokens += u.TotalTokens
		summary.TotalCost += u.Cost

		b, ok := summary.ModelBreakdown[u.Model]
		if !ok {
			b = &ModelBreakdown{}
			summary.ModelBreakdown[u.Model] = b
		}
		b.PromptTokens += u.PromptTokens
		b.CompletionTokens += u.CompletionTokens
		b.TotalTokens += u.TotalTokens
		b.Count++
	}
	return summary, nil
}
