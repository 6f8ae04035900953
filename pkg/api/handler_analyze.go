package api

import (
	"io"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/qa-canvas/canvasd/pkg/schema"
)

// analyzeTicketHandler handles POST /api/analyze-ticket. A degraded
// canvas (one or more sections replaced by placeholders) is returned
// with 206 instead of 200.
func (s *Server) analyzeTicketHandler(c *echo.Context) error {
	reqID := requestID(c)

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read request body")
	}

	req, ticket, err := schema.ParseAnalyzeTicketRequest(body)
	if err != nil {
		return writeError(c, reqID, err)
	}

	canvas, err := s.analyzer.Analyze(c.Request().Context(), reqID, ticket, &req.QAProfile)
	if err != nil {
		return writeError(c, reqID, err)
	}

	status := http.StatusOK
	if canvas.Metadata.IsPartialResult {
		status = http.StatusPartialContent
	}
	return c.JSON(status, canvas)
}
