package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "fenced with language tag",
			in:   "```json\n{\"score\": 7}\n```",
			want: `{"score": 7}`,
		},
		{
			name: "fenced without language tag",
			in:   "```\n{\"a\":1}\n```",
			want: `{"a":1}`,
		},
		{
			name: "bare json",
			in:   `{"ok":true}`,
			want: `{"ok":true}`,
		},
		{
			name: "json wrapped in prose",
			in:   "Here is the result: {\"x\": 1} Hope that helps!",
			want: `{"x": 1}`,
		},
		{
			name: "no json at all",
			in:   "plain text",
			want: "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}
