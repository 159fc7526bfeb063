// Package llmtest provides a scripted provider for service and handler tests.
package llmtest

import (
	"context"
	"strings"
	"sync"

	"lingua/internal/llm"
)

// Fake replays canned responses in order and records every request it saw.
// With no scripted responses it echoes the last user message.
type Fake struct {
	mu        sync.Mutex
	responses []llm.Response
	next      int

	Err      error
	Requests [][]llm.Message
}

func New(responses ...llm.Response) *Fake {
	return &Fake{responses: responses}
}

// Reply is a shorthand for scripting a plain-text response.
func Reply(content string) llm.Response {
	return llm.Response{
		Content:      content,
		Usage:        llm.Usage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30},
		Model:        "fake-model",
		FinishReason: "stop",
	}
}

func (f *Fake) Generate(_ context.Context, messages []llm.Message, _ llm.Options) (*llm.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Requests = append(f.Requests, messages)
	if f.Err != nil {
		return nil, f.Err
	}
	if f.next < len(f.responses) {
		resp := f.responses[f.next]
		f.next++
		return &resp, nil
	}

	content := ""
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llm.RoleUser {
			content = messages[i].Content
			break
		}
	}
	resp := Reply("echo: " + content)
	return &resp, nil
}

func (f *Fake) CountTokens(text string) int {
	// Rough whitespace split stands in for a real tokenizer.
	return len(strings.Fields(text))
}
