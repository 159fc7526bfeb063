package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
	"github.com/pkoukk/tiktoken-go"

	dErrors "lingua/pkg/domain-errors"
)

// OpenAI implements Provider against the OpenAI chat completions API.
type OpenAI struct {
	client  *openai.Client
	model   string
	encoder *tiktoken.Tiktoken
}

// OpenAIOption configures an OpenAI provider.
type OpenAIOption func(*OpenAI)

// WithModel overrides the default completion model.
func WithModel(model string) OpenAIOption {
	return func(o *OpenAI) {
		if model != "" {
			o.model = model
		}
	}
}

// NewOpenAI builds a provider using the given API key. The tokenizer is
// loaded eagerly so CountTokens never fails at call time.
func NewOpenAI(apiKey string, opts ...OpenAIOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "openai api key is required")
	}
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load tokenizer")
	}
	p := &OpenAI{
		client:  openai.NewClient(apiKey),
		model:   openai.GPT3Dot5Turbo,
		encoder: enc,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Model returns the configured completion model name.
func (o *OpenAI) Model() string { return o.model }

// Generate sends a chat completion request and maps the result to the
// provider-agnostic response.
func (o *OpenAI) Generate(ctx context.Context, messages []Message, opts Options) (*Response, error) {
	req := openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: opts.Temperature,
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = opts.MaxTokens
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "chat completion")
	}
	if len(resp.Choices) == 0 {
		return nil, dErrors.New(dErrors.CodeUnavailable, "completion returned no choices")
	}

	choice := resp.Choices[0]
	return &Response{
		Content: choice.Message.Content,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		Model:        resp.Model,
		FinishReason: string(choice.FinishReason),
	}, nil
}

// CountTokens estimates the token length of text using the cl100k_base
// encoding shared by the supported chat models.
func (o *OpenAI) CountTokens(text string) int {
	return len(o.encoder.Encode(text, nil, nil))
}
