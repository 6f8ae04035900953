package api

import (
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/qa-canvas/canvasd/pkg/config"
	"github.com/qa-canvas/canvasd/pkg/llm"
)

const (
	healthStatusHealthy   = "healthy"
	healthStatusDegraded  = "degraded"
	healthStatusUnhealthy = "unhealthy"
)

// HealthResponse is the body for GET /health.
type HealthResponse struct {
	Status         string                        `json:"status"`
	UptimeS        int64                         `json:"uptime_s"`
	Providers      map[string]llm.ProviderHealth `json:"providers"`
	ActiveSessions int                           `json:"active_sessions"`
	Config         config.Stats                  `json:"config"`
}

// healthHandler handles GET /health. Degraded means at least one
// provider circuit is open; unhealthy means every circuit is open.
func (s *Server) healthHandler(c *echo.Context) error {
	providers := s.providers.Health()

	open := 0
	for _, ph := range providers {
		if ph.CircuitOpen {
			open++
		}
	}
	status := healthStatusHealthy
	if open > 0 {
		status = healthStatusDegraded
	}
	if len(providers) > 0 && open == len(providers) {
		status = healthStatusUnhealthy
	}

	httpStatus := http.StatusOK
	if status == healthStatusUnhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, &HealthResponse{
		Status:         status,
		UptimeS:        int64(time.Since(s.started).Seconds()),
		Providers:      providers,
		ActiveSessions: s.sessions.Count(),
		Config:         s.cfg.Stats(),
	})
}

// providersHealthHandler handles GET /api/providers/health.
func (s *Server) providersHealthHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, s.providers.Health())
}

// ResetProvidersRequest is the optional body for POST /api/providers/reset.
// An empty or absent provider resets every circuit.
type ResetProvidersRequest struct {
	Provider string `json:"provider,omitempty"`
}

// ResetProvidersResponse reports which providers were reset.
type ResetProvidersResponse struct {
	Status    string   `json:"status"`
	Providers []string `json:"providers"`
}

// resetProvidersHandler handles POST /api/providers/reset.
func (s *Server) resetProvidersHandler(c *echo.Context) error {
	reqID := requestID(c)

	var req ResetProvidersRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	if req.Provider != "" {
		if err := s.providers.ResetProvider(req.Provider); err != nil {
			return writeError(c, reqID, err)
		}
		return c.JSON(http.StatusOK, &ResetProvidersResponse{
			Status:    "reset",
			Providers: []string{req.Provider},
		})
	}

	s.providers.ResetAllProviders()
	return c.JSON(http.StatusOK, &ResetProvidersResponse{
		Status:    "reset",
		Providers: s.providers.ProviderNames(),
	})
}
