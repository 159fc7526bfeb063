// Package llm abstracts the chat completion provider so services depend on a
// narrow interface instead of a vendor SDK.
package llm

import (
	"context"
	"strings"
)

// Message roles mirror the chat completion wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation sent to the provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage reports token consumption for one completion call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the provider-agnostic completion result.
type Response struct {
	Content      string
	Usage        Usage
	Model        string
	FinishReason string
}

// Options tune a single completion request. MaxTokens zero means provider
// default.
type Options struct {
	Temperature float32
	MaxTokens   int
}

// Provider generates chat completions and counts tokens locally.
type Provider interface {
	Generate(ctx context.Context, messages []Message, opts Options) (*Response, error)
	CountTokens(text string) int
}

// ExtractJSON strips markdown code fences around a JSON payload, a common
// artifact of structured-output prompts. Input without fences is returned
// trimmed.
func ExtractJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		return strings.TrimSpace(s)
	}
	// Some models wrap JSON in prose; fall back to the outermost braces.
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
