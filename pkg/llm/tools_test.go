package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolConversion(t *testing.T) {
	tools := []Tool{{
		Name:        "propose_suggestion",
		Description: "Propose one improvement suggestion.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"title":{"type":"string"}},"required":["title"]}`),
	}}

	t.Run("anthropic", func(t *testing.T) {
		converted := toAnthropicTools(tools)
		require.Len(t, converted, 1)
		require.NotNil(t, converted[0].OfTool)
		assert.Equal(t, "propose_suggestion", converted[0].OfTool.Name)

		props, ok := converted[0].OfTool.InputSchema.Properties.(map[string]any)
		require.True(t, ok)
		assert.Contains(t, props, "title")
		assert.Equal(t, []string{"title"}, converted[0].OfTool.InputSchema.Required)
	})

	t.Run("openai", func(t *testing.T) {
		converted := toLangchainTools(tools)
		require.Len(t, converted, 1)
		assert.Equal(t, "function", converted[0].Type)
		require.NotNil(t, converted[0].Function)
		assert.Equal(t, "propose_suggestion", converted[0].Function.Name)
	})
}
