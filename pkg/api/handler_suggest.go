package api

import (
	"io"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/qa-canvas/canvasd/pkg/schema"
)

// generateSuggestionsHandler handles POST /api/generate-suggestions.
func (s *Server) generateSuggestionsHandler(c *echo.Context) error {
	reqID := requestID(c)

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read request body")
	}

	req, err := schema.ParseGenerateSuggestionsRequest(body)
	if err != nil {
		return writeError(c, reqID, err)
	}

	result, err := s.suggester.Generate(c.Request().Context(), reqID, req)
	if err != nil {
		return writeError(c, reqID, err)
	}
	return c.JSON(http.StatusOK, result)
}
