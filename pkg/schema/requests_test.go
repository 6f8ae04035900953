package schema

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qa-canvas/canvasd/pkg/models"
)

func TestParseAnalyzeTicketRequest(t *testing.T) {
	body := []byte(`{
		"qa_profile": {
			"test_case_format": "gherkin",
			"qa_categories": {"functional": true, "negative": true}
		},
		"ticket_json": {
			"issue_key": "TEST-123",
			"summary": "Login broken",
			"description": "Users cannot log in after the upgrade."
		}
	}`)

	req, ticket, err := ParseAnalyzeTicketRequest(body)
	require.NoError(t, err)
	assert.Equal(t, models.FormatGherkin, req.QAProfile.TestCaseFormat)
	assert.Equal(t, "TEST-123", ticket.IssueKey)
}

func TestParseAnalyzeTicketRequestErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing ticket_json",
			body: `{"qa_profile": {"test_case_format": "gherkin"}}`,
		},
		{
			name: "invalid format enum",
			body: `{"qa_profile": {"test_case_format": "cucumber"}, "ticket_json": {"issue_key": "T-1"}}`,
		},
		{
			name: "ticket without issue key",
			body: `{"qa_profile": {"test_case_format": "steps"}, "ticket_json": {"summary": "no key"}}`,
		},
		{
			name: "not json",
			body: `ticket please`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseAnalyzeTicketRequest([]byte(tt.body))
			require.Error(t, err)
			var schemaErr *Error
			assert.ErrorAs(t, err, &schemaErr)
		})
	}
}

func TestParseUpdateCanvasRequestEmptyMessages(t *testing.T) {
	_, err := ParseUpdateCanvasRequest([]byte(`{"messages": []}`))
	require.Error(t, err)

	var schemaErr *Error
	require.ErrorAs(t, err, &schemaErr)
	require.Len(t, schemaErr.Issues, 1)
	assert.Equal(t, "messages", schemaErr.Issues[0].Path)
	assert.Equal(t, CodeRange, schemaErr.Issues[0].Code)
}

func TestParseUpdateCanvasRequest(t *testing.T) {
	canvasJSON, err := json.Marshal(validCanvas())
	require.NoError(t, err)

	body := fmt.Sprintf(`{
		"messages": [
			{"role": "user", "content": "add a negative test for expired tokens"}
		],
		"current_document": %s,
		"session_id": "sess-1"
	}`, canvasJSON)

	req, err := ParseUpdateCanvasRequest([]byte(body))
	require.NoError(t, err)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, models.RoleUser, req.Messages[0].Role)
	require.NotNil(t, req.CurrentDocument)
	assert.Equal(t, "TEST-123", req.CurrentDocument.Metadata.TicketID)
}

func TestParseUpdateCanvasRequestBadMessage(t *testing.T) {
	_, err := ParseUpdateCanvasRequest([]byte(`{
		"messages": [{"role": "moderator", "content": ""}]
	}`))
	require.Error(t, err)

	var schemaErr *Error
	require.ErrorAs(t, err, &schemaErr)
	paths := make([]string, 0, len(schemaErr.Issues))
	for _, issue := range schemaErr.Issues {
		paths = append(paths, issue.Path)
	}
	assert.Contains(t, paths, "messages[0].role")
	assert.Contains(t, paths, "messages[0].content")
}

func TestParseGenerateSuggestionsRequest(t *testing.T) {
	canvasJSON, err := json.Marshal(validCanvas())
	require.NoError(t, err)

	t.Run("valid with limit", func(t *testing.T) {
		body := fmt.Sprintf(`{"current_document": %s, "max_suggestions": 5, "focus_areas": ["edge_case"]}`, canvasJSON)
		req, err := ParseGenerateSuggestionsRequest([]byte(body))
		require.NoError(t, err)
		require.NotNil(t, req.MaxSuggestions)
		assert.Equal(t, 5, *req.MaxSuggestions)
	})

	t.Run("explicit zero is allowed", func(t *testing.T) {
		body := fmt.Sprintf(`{"current_document": %s, "max_suggestions": 0}`, canvasJSON)
		req, err := ParseGenerateSuggestionsRequest([]byte(body))
		require.NoError(t, err)
		require.NotNil(t, req.MaxSuggestions)
		assert.Equal(t, 0, *req.MaxSuggestions)
	})

	t.Run("limit above cap", func(t *testing.T) {
		body := fmt.Sprintf(`{"current_document": %s, "max_suggestions": 11}`, canvasJSON)
		_, err := ParseGenerateSuggestionsRequest([]byte(body))
		require.Error(t, err)
		var schemaErr *Error
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, "max_suggestions", schemaErr.Issues[0].Path)
	})

	t.Run("missing document", func(t *testing.T) {
		_, err := ParseGenerateSuggestionsRequest([]byte(`{"max_suggestions": 3}`))
		require.Error(t, err)
		var schemaErr *Error
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, "current_document", schemaErr.Issues[0].Path)
	})

	t.Run("unknown focus area", func(t *testing.T) {
		body := fmt.Sprintf(`{"current_document": %s, "focus_areas": ["chaos_monkey"]}`, canvasJSON)
		_, err := ParseGenerateSuggestionsRequest([]byte(body))
		require.Error(t, err)
		var schemaErr *Error
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, "focus_areas[0]", schemaErr.Issues[0].Path)
	})
}

func TestParseTestCasesFormatMismatch(t *testing.T) {
	data := []byte(`[
		{"id": "tc-1", "format": "gherkin", "priority": "high",
		 "scenario": "s", "given": ["g"], "when": ["w"], "then": ["t"]},
		{"id": "tc-2", "format": "table", "priority": "low",
		 "title": "t", "description": "d", "expected_outcome": "o"}
	]`)

	_, err := ParseTestCases(data, models.FormatGherkin)
	require.Error(t, err)

	var schemaErr *Error
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "[1].format", schemaErr.Issues[0].Path)
	assert.Equal(t, CodeInvalidEnum, schemaErr.Issues[0].Code)
}

func TestParseAcceptanceCriteriaEmpty(t *testing.T) {
	_, err := ParseAcceptanceCriteria([]byte(`[]`))
	require.Error(t, err)

	var schemaErr *Error
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, CodeRange, schemaErr.Issues[0].Code)
}
