package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{
			name: "bare object",
			text: `{"a": 1}`,
			want: `{"a": 1}`,
			ok:   true,
		},
		{
			name: "bare array",
			text: `[1, 2, 3]`,
			want: `[1, 2, 3]`,
			ok:   true,
		},
		{
			name: "fenced json",
			text: "```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
			ok:   true,
		},
		{
			name: "fence without language tag",
			text: "```\n[\"x\"]\n```",
			want: `["x"]`,
			ok:   true,
		},
		{
			name: "prose before object",
			text: `Here is the JSON you asked for: {"a": {"b": 2}} hope it helps`,
			want: `{"a": {"b": 2}}`,
			ok:   true,
		},
		{
			name: "braces inside strings",
			text: `{"text": "a } inside \" a string {"}`,
			want: `{"text": "a } inside \" a string {"}`,
			ok:   true,
		},
		{
			name: "no json at all",
			text: "I could not produce a result.",
			ok:   false,
		},
		{
			name: "unbalanced",
			text: `{"a": 1`,
			ok:   false,
		},
		{
			name: "empty",
			text: "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSON(tt.text)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
				assert.True(t, json.Valid([]byte(got)), "extracted text must be valid JSON")
			}
		})
	}
}

func TestExtractJSONNestedFenceProse(t *testing.T) {
	text := "Sure! The criteria are below.\n\n```json\n[{\"title\": \"t\", \"priority\": \"must\"}]\n```\n\nLet me know."
	got, ok := ExtractJSON(text)
	require.True(t, ok)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(got), &decoded))
	assert.Len(t, decoded, 1)
	assert.Equal(t, "t", decoded[0]["title"])
}
