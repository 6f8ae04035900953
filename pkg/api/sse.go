package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/qa-canvas/canvasd/pkg/intent"
	"github.com/qa-canvas/canvasd/pkg/llm"
	"github.com/qa-canvas/canvasd/pkg/models"
	"github.com/qa-canvas/canvasd/pkg/session"
)

// sseChunk is one SSE frame. Kind discriminates; clients tolerate
// unknown kinds.
type sseChunk struct {
	Kind      string                        `json:"kind"`
	Type      intent.ResponseType           `json:"type,omitempty"`
	SessionID string                        `json:"session_id,omitempty"`
	Content   string                        `json:"content,omitempty"`
	Question  *models.ClarificationQuestion `json:"question,omitempty"`
	Section   models.CanvasSection          `json:"section,omitempty"`
	FollowUp  string                        `json:"follow_up,omitempty"`
	Error     *ErrorResponse                `json:"error,omitempty"`
}

const (
	chunkKindHeader   = "header"
	chunkKindContent  = "content"
	chunkKindCitation = "citation"
	chunkKindFollowUp = "follow_up"
	chunkKindDone     = "done"
	chunkKindError    = "error"
)

// sseWriter frames chunks as `data: <json>` lines and flushes each one.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newSSEWriter(c *echo.Context) (*sseWriter, error) {
	var w http.ResponseWriter = c.Response()
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "streaming is not supported on this connection")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	return &sseWriter{w: w, flusher: flusher}, nil
}

func (s *sseWriter) send(chunk *sseChunk) error {
	b, err := json.Marshal(chunk)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", b); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// streamClarification emits clarification questions as an SSE stream.
func (s *Server) streamClarification(c *echo.Context, sessionID string, outcome *intent.Outcome) error {
	sw, err := newSSEWriter(c)
	if err != nil {
		return err
	}

	if err := sw.send(&sseChunk{Kind: chunkKindHeader, Type: intent.ResponseClarification, SessionID: sessionID}); err != nil {
		return err
	}
	for i := range outcome.Questions {
		if err := sw.send(&sseChunk{Kind: chunkKindContent, Question: &outcome.Questions[i]}); err != nil {
			return err
		}
	}
	return sw.send(&sseChunk{Kind: chunkKindDone})
}

// streamInformation relays the contextual answer's chunk source as SSE,
// then appends citations and follow-ups. A completed stream finishes
// the turn and returns the session to its initial phase; a provider
// failure mid-stream emits a terminal error chunk instead.
func (s *Server) streamInformation(c *echo.Context, reqID string, sess *session.Session, outcome *intent.Outcome) error {
	sw, err := newSSEWriter(c)
	if err != nil {
		return err
	}

	if err := sw.send(&sseChunk{Kind: chunkKindHeader, Type: intent.ResponseInformation, SessionID: sess.ID}); err != nil {
		return err
	}

	ctx := c.Request().Context()
stream:
	for {
		select {
		case <-ctx.Done():
			return nil
		case chunk, ok := <-outcome.Contextual.Stream:
			if !ok {
				break stream
			}
			switch ch := chunk.(type) {
			case *llm.TextChunk:
				if err := sw.send(&sseChunk{Kind: chunkKindContent, Content: ch.Content}); err != nil {
					return err
				}
			case *llm.ErrorChunk:
				_, body := errorBody(reqID, ch.Err)
				_ = sw.send(&sseChunk{Kind: chunkKindError, Error: body})
				return nil
			case *llm.DoneChunk:
				break stream
			}
		}
	}

	for _, section := range outcome.Contextual.Citations {
		if err := sw.send(&sseChunk{Kind: chunkKindCitation, Section: section}); err != nil {
			return err
		}
	}
	for _, followUp := range outcome.Contextual.FollowUps {
		if err := sw.send(&sseChunk{Kind: chunkKindFollowUp, FollowUp: followUp}); err != nil {
			return err
		}
	}
	sess.Complete(nil, time.Now())
	return sw.send(&sseChunk{Kind: chunkKindDone})
}

// collectStream drains a chunk source into the full answer text for the
// non-streaming JSON response.
func collectStream(stream <-chan llm.Chunk) (string, error) {
	var sb strings.Builder
	for chunk := range stream {
		switch ch := chunk.(type) {
		case *llm.TextChunk:
			sb.WriteString(ch.Content)
		case *llm.ErrorChunk:
			return "", ch.Err
		}
	}
	return sb.String(), nil
}
