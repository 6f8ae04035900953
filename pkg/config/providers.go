package config

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// ProviderConfig defines one AI provider in the failover chain.
type ProviderConfig struct {
	// Provider type (required)
	Type ProviderType `yaml:"type" validate:"required"`

	// Failover role (required)
	Role ProviderRole `yaml:"role" validate:"required"`

	// Model name (required)
	Model string `yaml:"model" validate:"required"`

	// Environment variable name for the API key
	APIKeyEnv string `yaml:"api_key_env,omitempty"`

	// Resolved API key override; set from LLM_PROXY_API_KEY when the
	// proxy supplies credentials. Never read from YAML.
	APIKey string `yaml:"-"`

	// Optional custom endpoint/base URL
	BaseURL string `yaml:"base_url,omitempty"`

	// Selection weight; higher wins when both providers are healthy
	Weight int `yaml:"weight" validate:"required,min=1"`

	// Per-request timeout
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// ProviderRegistry stores provider configurations in memory with thread-safe access
type ProviderRegistry struct {
	providers map[string]*ProviderConfig
	mu        sync.RWMutex
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry(providers map[string]*ProviderConfig) *ProviderRegistry {
	// Defensive copy to prevent external mutation
	copied := make(map[string]*ProviderConfig, len(providers))
	for k, v := range providers {
		copied[k] = v
	}
	return &ProviderRegistry{
		providers: copied,
	}
}

// Get retrieves a provider configuration by name (thread-safe)
func (r *ProviderRegistry) Get(name string) (*ProviderConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	return provider, nil
}

// GetAll returns all provider configurations (thread-safe, returns copy)
func (r *ProviderRegistry) GetAll() map[string]*ProviderConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*ProviderConfig, len(r.providers))
	for k, v := range r.providers {
		result[k] = v
	}
	return result
}

// Has checks if a provider exists in the registry (thread-safe)
func (r *ProviderRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.providers[name]
	return exists
}

// Len returns the number of providers in the registry (thread-safe)
func (r *ProviderRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

// Names returns provider names sorted by descending weight, name as
// tiebreak. This is the failover order.
func (r *ProviderRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		wi, wj := r.providers[names[i]].Weight, r.providers[names[j]].Weight
		if wi != wj {
			return wi > wj
		}
		return names[i] < names[j]
	})
	return names
}
