package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/qa-canvas/canvasd/pkg/apperr"
	"github.com/qa-canvas/canvasd/pkg/config"
	"github.com/qa-canvas/canvasd/pkg/metrics"
	"github.com/qa-canvas/canvasd/pkg/schema"
)

// Gateway fronts the provider chain. Each pass tries every provider
// once in weight order; an exhausted pass waits with exponential
// backoff before the chain restarts. Circuit state gates which
// providers are tried at all.
type Gateway struct {
	providers       []Provider
	health          *HealthStore
	recorder        *metrics.Recorder
	disableFailover bool
	maxRetries      int
	retryDelay      time.Duration
	backoffFactor   float64
	logger          *slog.Logger
}

// NewGateway builds the gateway from loaded configuration. Providers
// whose credentials are absent are skipped with a warning so a partially
// configured environment still starts.
func NewGateway(cfg *config.Config, recorder *metrics.Recorder) (*Gateway, error) {
	var providers []Provider
	for _, name := range cfg.FailoverOrder() {
		pc, err := cfg.GetProvider(name)
		if err != nil {
			return nil, err
		}
		provider, err := buildProvider(name, pc)
		if err != nil {
			slog.Warn("Skipping provider", "provider", name, "error", err)
			continue
		}
		providers = append(providers, provider)
	}
	if len(providers) == 0 {
		return nil, fmt.Errorf("no usable providers configured")
	}

	return NewGatewayWithProviders(providers, cfg.Service, recorder), nil
}

// NewGatewayWithProviders wires an explicit provider chain. Used by
// NewGateway and by tests.
func NewGatewayWithProviders(providers []Provider, service *config.ServiceConfig, recorder *metrics.Recorder) *Gateway {
	health := NewHealthStore(service.CircuitBreakerThreshold, service.CircuitBreakerResetTimeout)
	for _, p := range providers {
		health.Track(p.Name())
	}
	return &Gateway{
		providers:       providers,
		health:          health,
		recorder:        recorder,
		disableFailover: service.DisableFailover,
		maxRetries:      service.MaxRetries,
		retryDelay:      service.RetryDelay,
		backoffFactor:   service.BackoffFactor,
		logger:          slog.Default(),
	}
}

func buildProvider(name string, pc *config.ProviderConfig) (Provider, error) {
	switch pc.Type {
	case config.ProviderTypeAnthropic:
		return NewAnthropicProvider(name, pc)
	case config.ProviderTypeOpenAI:
		return NewOpenAIProvider(name, pc)
	default:
		return nil, fmt.Errorf("unknown provider type %q", pc.Type)
	}
}

// Health returns the circuit snapshot for every provider.
func (g *Gateway) Health() map[string]ProviderHealth {
	return g.health.Snapshot()
}

// ResetProvider manually closes one provider's circuit.
func (g *Gateway) ResetProvider(name string) error {
	for _, p := range g.providers {
		if p.Name() == name {
			g.health.Reset(name)
			return nil
		}
	}
	return apperr.New(apperr.KindNotFound, fmt.Sprintf("unknown provider %q", name))
}

// ResetAllProviders manually closes every circuit.
func (g *Gateway) ResetAllProviders() {
	g.health.ResetAll()
}

// ProviderNames returns the chain in failover order.
func (g *Gateway) ProviderNames() []string {
	names := make([]string, len(g.providers))
	for i, p := range g.providers {
		names[i] = p.Name()
	}
	return names
}

// GenerateText runs the failover chain for a text generation. One
// attempt per provider per pass; the delay before pass n is
// retryDelay * backoffFactor^(n-1). Total attempts across all
// providers are capped at maxRetries+1.
func (g *Gateway) GenerateText(ctx context.Context, req *Request) (*Response, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = g.retryDelay
	policy.Multiplier = g.backoffFactor
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0

	maxAttempts := g.maxRetries + 1
	attempts := 0
	excluded := make(map[string]bool)
	var lastErr *apperr.AppError

	providers := g.providers
	if g.disableFailover {
		providers = providers[:1]
	}

	for pass := 0; attempts < maxAttempts; pass++ {
		attempted := false
		for _, provider := range providers {
			if excluded[provider.Name()] {
				continue
			}
			if !g.health.Available(provider.Name()) {
				g.record(req, provider, metrics.OutcomeCircuitOpen, "", 0, pass)
				continue
			}
			attempted = true

			start := time.Now()
			resp, err := provider.GenerateText(ctx, req)
			latency := time.Since(start).Milliseconds()
			if err == nil {
				g.record(req, provider, metrics.OutcomeSuccess, "", latency, pass)
				g.health.RecordSuccess(provider.Name())
				return resp, nil
			}

			lastErr = Normalize(provider.Name(), provider.Model(), err)
			lastErr.RequestID = req.RequestID
			g.record(req, provider, metrics.OutcomeError, string(lastErr.Kind), latency, pass)
			if TripsCircuit(lastErr.Kind) {
				g.health.RecordFailure(provider.Name())
			}
			if !RetryableWithinProvider(lastErr.Kind) {
				excluded[provider.Name()] = true
			}
			attempts++
			if attempts >= maxAttempts || g.disableFailover {
				break
			}
			g.logger.Warn("Provider failed, trying next in chain",
				"request_id", req.RequestID,
				"provider", provider.Name(),
				"error_kind", lastErr.Kind)
		}

		if attempts >= maxAttempts || !attempted {
			break
		}
		select {
		case <-ctx.Done():
			appErr := Normalize("", "", ctx.Err())
			appErr.RequestID = req.RequestID
			return nil, appErr
		case <-time.After(policy.NextBackOff()):
		}
	}

	if g.disableFailover && lastErr != nil {
		return nil, lastErr
	}
	return nil, g.chainError(req, lastErr, lastErr == nil)
}

// GenerateObject runs GenerateText and extracts the JSON payload from
// the response text. Providers are not required to return strict JSON.
func (g *Gateway) GenerateObject(ctx context.Context, req *Request) (json.RawMessage, error) {
	resp, err := g.GenerateText(ctx, req)
	if err != nil {
		return nil, err
	}
	payload, ok := schema.ExtractJSON(resp.Text)
	if !ok {
		appErr := apperr.New(apperr.KindAIGeneration, "model response did not contain JSON")
		appErr.Provider = resp.Provider
		appErr.Model = resp.Model
		return nil, appErr
	}
	return json.RawMessage(payload), nil
}

// StreamText starts a streaming generation on the first healthy
// provider. A provider that errors before emitting any text hands over
// to the next one; once text has flowed the stream is committed.
func (g *Gateway) StreamText(ctx context.Context, req *Request) (<-chan Chunk, error) {
	out := make(chan Chunk, 64)

	go func() {
		defer close(out)

		var lastErr *apperr.AppError
		allSkipped := true

		for _, provider := range g.providers {
			if !g.health.Available(provider.Name()) {
				g.record(req, provider, metrics.OutcomeCircuitOpen, "", 0, 0)
				if g.disableFailover {
					break
				}
				continue
			}
			allSkipped = false

			start := time.Now()
			upstream, err := provider.StreamText(ctx, req)
			if err != nil {
				lastErr = Normalize(provider.Name(), provider.Model(), err)
				g.record(req, provider, metrics.OutcomeError, string(lastErr.Kind), time.Since(start).Milliseconds(), 0)
				if TripsCircuit(lastErr.Kind) {
					g.health.RecordFailure(provider.Name())
				}
				if g.disableFailover {
					break
				}
				continue
			}

			committed, streamErr := g.pipe(ctx, provider, req, upstream, out, start)
			if streamErr == nil {
				return
			}
			lastErr = streamErr
			if committed || g.disableFailover {
				emit(ctx, out, &ErrorChunk{Err: lastErr})
				return
			}
		}

		emit(ctx, out, &ErrorChunk{Err: g.chainError(req, lastErr, allSkipped)})
	}()

	return out, nil
}

// pipe forwards upstream chunks, tracking health and metrics. Returns
// committed=true once any text reached the consumer.
func (g *Gateway) pipe(ctx context.Context, provider Provider, req *Request, upstream <-chan Chunk, out chan<- Chunk, start time.Time) (bool, *apperr.AppError) {
	committed := false
	for chunk := range upstream {
		switch c := chunk.(type) {
		case *TextChunk:
			committed = true
			if !emit(ctx, out, c) {
				return committed, Normalize(provider.Name(), provider.Model(), ctx.Err())
			}
		case *DoneChunk:
			g.health.RecordSuccess(provider.Name())
			g.record(req, provider, metrics.OutcomeSuccess, "", time.Since(start).Milliseconds(), 0)
			emit(ctx, out, c)
			return committed, nil
		case *ErrorChunk:
			appErr := Normalize(provider.Name(), provider.Model(), c.Err)
			g.record(req, provider, metrics.OutcomeError, string(appErr.Kind), time.Since(start).Milliseconds(), 0)
			if TripsCircuit(appErr.Kind) {
				g.health.RecordFailure(provider.Name())
			}
			return committed, appErr
		}
	}
	// Upstream closed without a terminal chunk
	appErr := apperr.New(apperr.KindProviderOutage, "stream ended unexpectedly")
	appErr.Provider = provider.Name()
	appErr.Model = provider.Model()
	g.health.RecordFailure(provider.Name())
	return committed, appErr
}

// chainError produces the terminal error after the whole chain failed.
func (g *Gateway) chainError(req *Request, lastErr *apperr.AppError, allSkipped bool) *apperr.AppError {
	if allSkipped {
		appErr := apperr.New(apperr.KindCircuitOpenAll, "all provider circuits are open")
		appErr.RequestID = req.RequestID
		appErr.RetryAfterS = int(g.health.resetTimeout / time.Second)
		return appErr
	}
	if lastErr == nil {
		appErr := apperr.New(apperr.KindInternal, "provider chain produced no result")
		appErr.RequestID = req.RequestID
		return appErr
	}
	appErr := apperr.Wrap(apperr.KindFailoverExhausted, "every provider in the chain failed", lastErr)
	appErr.RequestID = req.RequestID
	appErr.Provider = lastErr.Provider
	appErr.Model = lastErr.Model
	return appErr
}

func (g *Gateway) record(req *Request, provider Provider, outcome metrics.Outcome, errorKind string, latencyMS int64, retryIndex int) {
	if g.recorder == nil {
		return
	}
	g.recorder.Record(metrics.AttemptEvent{
		RequestID:  req.RequestID,
		Provider:   provider.Name(),
		Model:      provider.Model(),
		Operation:  req.Operation,
		Outcome:    outcome,
		ErrorKind:  errorKind,
		LatencyMS:  latencyMS,
		RetryIndex: retryIndex,
	})
}
