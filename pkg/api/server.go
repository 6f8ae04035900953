// Package api is the HTTP boundary: three POST endpoints for the
// document pipeline, provider administration, and health. Handlers
// validate with the schema layer, delegate to the engines, and map
// typed errors to stable response shapes.
package api

import (
	"context"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/qa-canvas/canvasd/pkg/analyzer"
	"github.com/qa-canvas/canvasd/pkg/config"
	"github.com/qa-canvas/canvasd/pkg/intent"
	"github.com/qa-canvas/canvasd/pkg/llm"
	"github.com/qa-canvas/canvasd/pkg/models"
	"github.com/qa-canvas/canvasd/pkg/prompt"
	"github.com/qa-canvas/canvasd/pkg/regen"
	"github.com/qa-canvas/canvasd/pkg/session"
	"github.com/qa-canvas/canvasd/pkg/suggest"
)

// TicketAnalyzer produces a canvas from a ticket.
type TicketAnalyzer interface {
	Analyze(ctx context.Context, requestID string, ticket *models.Ticket, profile *models.QAProfile) (*models.Canvas, error)
}

// TurnEngine routes one conversation turn.
type TurnEngine interface {
	Handle(ctx context.Context, requestID string, messages []models.ChatMessage, canvas *models.Canvas, ticketContext string) (*intent.Outcome, error)
}

// SuggestionEngine produces suggestions for a canvas.
type SuggestionEngine interface {
	Generate(ctx context.Context, requestID string, req *models.GenerateSuggestionsRequest) (*suggest.Result, error)
}

// ProviderAdmin exposes the gateway's health and reset surface.
type ProviderAdmin interface {
	Health() map[string]llm.ProviderHealth
	ResetProvider(name string) error
	ResetAllProviders()
	ProviderNames() []string
}

// Server is the HTTP server.
type Server struct {
	echo      *echo.Echo
	http      *http.Server
	cfg       *config.Config
	providers ProviderAdmin
	sessions  *session.Manager
	analyzer  TicketAnalyzer
	turns     TurnEngine
	suggester SuggestionEngine
	prompts   *prompt.Builder
	started   time.Time
}

// NewServer wires the engines onto a gateway and registers all routes.
func NewServer(cfg *config.Config, gateway *llm.Gateway, sessions *session.Manager) *Server {
	s := &Server{
		cfg:       cfg,
		providers: gateway,
		sessions:  sessions,
		analyzer:  analyzer.New(gateway),
		turns:     intent.New(gateway, regen.New(gateway)),
		suggester: suggest.New(gateway),
		prompts:   prompt.NewBuilder(),
		started:   time.Now(),
	}
	s.echo = echo.New()
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.Use(requestIDMiddleware(), securityHeaders())

	s.echo.POST("/api/analyze-ticket", s.analyzeTicketHandler)
	s.echo.POST("/api/update-canvas", s.updateCanvasHandler)
	s.echo.POST("/api/generate-suggestions", s.generateSuggestionsHandler)

	s.echo.GET("/health", s.healthHandler)
	s.echo.GET("/api/providers/health", s.providersHealthHandler)
	s.echo.POST("/api/providers/reset", s.resetProvidersHandler)
}

// Start begins serving on addr. Blocks until the listener fails or
// Shutdown is called.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
