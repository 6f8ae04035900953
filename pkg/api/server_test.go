package api

import (
	"context"
	"net/http/httptest"
	"strings"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/qa-canvas/canvasd/pkg/config"
	"github.com/qa-canvas/canvasd/pkg/intent"
	"github.com/qa-canvas/canvasd/pkg/llm"
	"github.com/qa-canvas/canvasd/pkg/models"
	"github.com/qa-canvas/canvasd/pkg/prompt"
	"github.com/qa-canvas/canvasd/pkg/session"
	"github.com/qa-canvas/canvasd/pkg/suggest"
)

type fakeAnalyzer struct {
	canvas *models.Canvas
	err    error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ string, _ *models.Ticket, _ *models.QAProfile) (*models.Canvas, error) {
	return f.canvas, f.err
}

type fakeTurns struct {
	outcome *intent.Outcome
	err     error
}

func (f *fakeTurns) Handle(_ context.Context, _ string, _ []models.ChatMessage, _ *models.Canvas, _ string) (*intent.Outcome, error) {
	return f.outcome, f.err
}

type fakeSuggester struct {
	result *suggest.Result
	err    error
}

func (f *fakeSuggester) Generate(_ context.Context, _ string, _ *models.GenerateSuggestionsRequest) (*suggest.Result, error) {
	return f.result, f.err
}

type fakeAdmin struct {
	health   map[string]llm.ProviderHealth
	names    []string
	resetErr error
	resets   []string
	resetAll bool
}

func (f *fakeAdmin) Health() map[string]llm.ProviderHealth { return f.health }
func (f *fakeAdmin) ProviderNames() []string               { return f.names }
func (f *fakeAdmin) ResetAllProviders()                    { f.resetAll = true }

func (f *fakeAdmin) ResetProvider(name string) error {
	if f.resetErr != nil {
		return f.resetErr
	}
	f.resets = append(f.resets, name)
	return nil
}

// newTestServer builds a Server with fake engines and real routing, so
// requests flow through the middleware chain like in production.
func newTestServer() *Server {
	s := &Server{
		cfg:       &config.Config{},
		providers: &fakeAdmin{},
		sessions:  session.NewManager(time.Minute),
		prompts:   prompt.NewBuilder(),
		started:   time.Now(),
	}
	s.echo = echo.New()
	s.setupRoutes()
	return s
}

func doJSON(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func minimalCanvas() *models.Canvas {
	return &models.Canvas{
		TicketSummary: models.TicketSummary{
			Problem:  "Login fails on mobile",
			Solution: "Fix the touch handler",
			Context:  "Mobile web",
		},
		AcceptanceCriteria: []models.AcceptanceCriterion{
			{ID: "ac-1", Title: "Login works", Description: "Tapping login reaches the dashboard", Priority: models.PriorityMust},
		},
		Metadata: models.CanvasMetadata{
			TicketID:        "TEST-1",
			DocumentVersion: "1.0",
		},
	}
}

func sseFrames(body string) []string {
	var frames []string
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "data: ") {
			frames = append(frames, strings.TrimPrefix(line, "data: "))
		}
	}
	return frames
}
