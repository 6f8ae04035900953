package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qa-canvas/canvasd/pkg/apperr"
	"github.com/qa-canvas/canvasd/pkg/models"
)

const analyzeBody = `{
	"qa_profile": {"test_case_format": "gherkin"},
	"ticket_json": {"issue_key": "TEST-1", "summary": "Login broken"}
}`

func TestAnalyzeTicketHandler(t *testing.T) {
	t.Run("complete canvas returns 200", func(t *testing.T) {
		s := newTestServer()
		s.analyzer = &fakeAnalyzer{canvas: minimalCanvas()}

		rec := doJSON(s, http.MethodPost, "/api/analyze-ticket", analyzeBody)
		assert.Equal(t, http.StatusOK, rec.Code)

		var canvas models.Canvas
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &canvas))
		assert.Equal(t, "TEST-1", canvas.Metadata.TicketID)
	})

	t.Run("partial canvas returns 206", func(t *testing.T) {
		canvas := minimalCanvas()
		canvas.Metadata.IsPartialResult = true

		s := newTestServer()
		s.analyzer = &fakeAnalyzer{canvas: canvas}

		rec := doJSON(s, http.MethodPost, "/api/analyze-ticket", analyzeBody)
		assert.Equal(t, http.StatusPartialContent, rec.Code)
	})

	t.Run("missing ticket_json returns 400 with issues", func(t *testing.T) {
		s := newTestServer()
		s.analyzer = &fakeAnalyzer{canvas: minimalCanvas()}

		rec := doJSON(s, http.MethodPost, "/api/analyze-ticket", `{"qa_profile": {}}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "validation", resp.Error)
		assert.False(t, resp.Retryable)
		assert.NotEmpty(t, resp.RequestID)
		assert.NotNil(t, resp.Details)
	})

	t.Run("invalid profile enum returns 400", func(t *testing.T) {
		s := newTestServer()
		s.analyzer = &fakeAnalyzer{canvas: minimalCanvas()}

		body := `{"qa_profile": {"test_case_format": "prose"}, "ticket_json": {"issue_key": "TEST-1"}}`
		rec := doJSON(s, http.MethodPost, "/api/analyze-ticket", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("all circuits open returns 503 retryable", func(t *testing.T) {
		s := newTestServer()
		s.analyzer = &fakeAnalyzer{err: apperr.New(apperr.KindCircuitOpenAll, "all provider circuits are open")}

		rec := doJSON(s, http.MethodPost, "/api/analyze-ticket", analyzeBody)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "circuit_open_all", resp.Error)
		assert.True(t, resp.Retryable)
	})
}
