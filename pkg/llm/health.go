package llm

import (
	"log/slog"
	"sync"
	"time"
)

// ProviderHealth is a point-in-time view of one provider's circuit.
type ProviderHealth struct {
	Provider      string     `json:"provider"`
	FailureCount  int        `json:"failure_count"`
	CircuitOpen   bool       `json:"circuit_open"`
	LastFailureAt *time.Time `json:"last_failure_at,omitempty"`
	OpenedAt      *time.Time `json:"opened_at,omitempty"`
}

type providerState struct {
	failureCount  int
	circuitOpen   bool
	lastFailureAt time.Time
	openedAt      time.Time
}

// HealthStore tracks consecutive failures per provider and opens a
// circuit after a threshold. An open circuit closes on its own once the
// reset timeout elapses; there is no half-open probe state.
type HealthStore struct {
	mu           sync.Mutex
	states       map[string]*providerState
	threshold    int
	resetTimeout time.Duration
	now          func() time.Time
	logger       *slog.Logger
}

// NewHealthStore creates a health store with the given trip threshold
// and reset timeout.
func NewHealthStore(threshold int, resetTimeout time.Duration) *HealthStore {
	if threshold < 1 {
		threshold = 1
	}
	return &HealthStore{
		states:       make(map[string]*providerState),
		threshold:    threshold,
		resetTimeout: resetTimeout,
		now:          time.Now,
		logger:       slog.Default(),
	}
}

func (h *HealthStore) state(provider string) *providerState {
	s, ok := h.states[provider]
	if !ok {
		s = &providerState{}
		h.states[provider] = s
	}
	return s
}

// maybeClose closes an expired circuit in place. Caller holds the lock.
func (h *HealthStore) maybeClose(provider string, s *providerState) {
	if s.circuitOpen && h.now().Sub(s.openedAt) >= h.resetTimeout {
		s.circuitOpen = false
		s.failureCount = 0
		h.logger.Info("Circuit closed after reset timeout", "provider", provider)
	}
}

// Available reports whether the provider may be called right now.
func (h *HealthStore) Available(provider string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.state(provider)
	h.maybeClose(provider, s)
	return !s.circuitOpen
}

// RecordSuccess clears the provider's failure streak.
func (h *HealthStore) RecordSuccess(provider string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.state(provider)
	s.failureCount = 0
	s.circuitOpen = false
}

// RecordFailure counts one failure and opens the circuit when the streak
// reaches the threshold. Returns true if this call opened the circuit.
func (h *HealthStore) RecordFailure(provider string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.state(provider)
	h.maybeClose(provider, s)

	s.failureCount++
	s.lastFailureAt = h.now()
	if !s.circuitOpen && s.failureCount >= h.threshold {
		s.circuitOpen = true
		s.openedAt = h.now()
		h.logger.Warn("Circuit opened",
			"provider", provider,
			"failure_count", s.failureCount,
			"reset_timeout", h.resetTimeout)
		return true
	}
	return false
}

// Reset manually closes one provider's circuit and clears its streak.
func (h *HealthStore) Reset(provider string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.state(provider)
	s.failureCount = 0
	s.circuitOpen = false
	h.logger.Info("Circuit manually reset", "provider", provider)
}

// ResetAll manually closes every tracked circuit.
func (h *HealthStore) ResetAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, s := range h.states {
		s.failureCount = 0
		s.circuitOpen = false
	}
	h.logger.Info("All circuits manually reset")
}

// Snapshot returns the current health of every tracked provider.
func (h *HealthStore) Snapshot() map[string]ProviderHealth {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[string]ProviderHealth, len(h.states))
	for provider, s := range h.states {
		h.maybeClose(provider, s)
		health := ProviderHealth{
			Provider:     provider,
			FailureCount: s.failureCount,
			CircuitOpen:  s.circuitOpen,
		}
		if !s.lastFailureAt.IsZero() {
			t := s.lastFailureAt
			health.LastFailureAt = &t
		}
		if s.circuitOpen {
			t := s.openedAt
			health.OpenedAt = &t
		}
		out[provider] = health
	}
	return out
}

// Track registers a provider so it appears in snapshots before its
// first call.
func (h *HealthStore) Track(provider string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state(provider)
}
