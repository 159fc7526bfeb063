// Package tokenusage records and reports LLM token consumption per user.
package tokenusage

import "time"

// Contexts tag what a usage record paid for.
const (
	ContextChat                 = "chat"
	ContextConversationAnalysis = "conversation_analysis"
	ContextMeetingAnalysis      = "meeting_analysis"
	ContextResponseSuggestions  = "response_suggestions"
	ContextScenarioGeneration   = "scenario_generation"
)

// Usage is one completion call's token bill.
type Usage struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	SessionID        string    `json:"session_id,omitempty"`
	Model            string    `json:"model"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens"`
	Cost             float64   `json:"cost"`
	Context          string    `json:"context,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// ModelBreakdown aggregates usage per model inside a summary.
type ModelBreakdown struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
	Count            int `json:"count"`
}

// Summary is the per-user rollup over a time window.
type Summary struct {
	TotalTokens    int                        `json:"total_tokens"`
	TotalCost      float64                    `json:"total_cost"`
	ModelBreakdown map[string]*ModelBreakdown `json:"model_breakdown"`
}

// Per-1K-token pricing. Models absent from the table cost zero.
var modelPricing = map[string]struct{ prompt, completion float64 }{
	"gpt-3.5-turbo": {prompt: 0.0005, completion: 0.0015},
	"gpt-4":         {prompt: 0.03, completion: 0.06},
	"gpt-4-turbo":   {prompt: 0.01, completion: 0.03},
}

// CalculateCost prices a completion call from the model's per-1K rates.
func CalculateCost(model string, promptTokens, completionTokens int) float64 {
	pricing, ok := modelPricing[model]
	if !ok {
		return 0
	}
	return float64(promptTokens)/1000*pricing.prompt +
		float64(completionTokens)/1000*pricing.completion
}
