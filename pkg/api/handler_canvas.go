package api

import (
	"io"
	"net/http"
	"strings"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/qa-canvas/canvasd/pkg/intent"
	"github.com/qa-canvas/canvasd/pkg/models"
	"github.com/qa-canvas/canvasd/pkg/schema"
)

// updateCanvasHandler handles POST /api/update-canvas. The response is
// JSON by default; clarification and information turns stream as SSE
// when the client accepts text/event-stream.
func (s *Server) updateCanvasHandler(c *echo.Context) error {
	reqID := requestID(c)

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read request body")
	}

	req, err := schema.ParseUpdateCanvasRequest(body)
	if err != nil {
		return writeError(c, reqID, err)
	}

	sess, _ := s.sessions.GetOrCreate(req.SessionID)

	ticketContext := ""
	if req.OriginalTicketData != nil {
		profile := &models.QAProfile{}
		if req.CurrentDocument != nil {
			profile = &req.CurrentDocument.Metadata.QAProfile
		}
		ticketContext = s.prompts.TicketContext(req.OriginalTicketData, profile)
	}

	outcome, err := s.turns.Handle(c.Request().Context(), reqID, req.Messages, req.CurrentDocument, ticketContext)
	if err != nil {
		return writeError(c, reqID, err)
	}

	now := time.Now()
	sess.BeginIntent(outcome.Classification, now)

	switch outcome.Type {
	case intent.ResponseModification:
		sess.Complete(outcome.Result.Canvas, now)
		return c.JSON(http.StatusOK, &UpdateCanvasResponse{
			Type:            intent.ResponseModification,
			ChangesSummary:  changesSummary(outcome.Result.Changes),
			UpdatedDocument: outcome.Result.Canvas,
			TargetSections:  outcome.Classification.TargetSections,
			Changes:         outcome.Result.Changes,
			Dependency:      outcome.Dependency,
			SessionID:       sess.ID,
		})

	case intent.ResponseClarification:
		sess.AwaitClarification(outcome.Questions, now)
		if wantsStream(c) {
			return s.streamClarification(c, sess.ID, outcome)
		}
		return c.JSON(http.StatusOK, &UpdateCanvasResponse{
			Type:           intent.ResponseClarification,
			ChangesSummary: "I need more detail before changing the document.",
			Questions:      outcome.Questions,
			SessionID:      sess.ID,
		})

	case intent.ResponseInformation:
		if wantsStream(c) {
			return s.streamInformation(c, reqID, sess, outcome)
		}
		text, err := collectStream(outcome.Contextual.Stream)
		if err != nil {
			return writeError(c, reqID, err)
		}
		sess.Complete(nil, time.Now())
		return c.JSON(http.StatusOK, &UpdateCanvasResponse{
			Type:               intent.ResponseInformation,
			Response:           text,
			Citations:          outcome.Contextual.Citations,
			SuggestedFollowUps: outcome.Contextual.FollowUps,
			SessionID:          sess.ID,
		})

	default:
		return c.JSON(http.StatusOK, &UpdateCanvasResponse{
			Type:           intent.ResponseRejection,
			ChangesSummary: outcome.Message,
			SessionID:      sess.ID,
		})
	}
}

// wantsStream reports whether the client asked for SSE.
func wantsStream(c *echo.Context) bool {
	return strings.Contains(c.Request().Header.Get("Accept"), "text/event-stream")
}
