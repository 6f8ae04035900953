package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ProvidersYAMLConfig represents the complete providers.yaml file structure
type ProvidersYAMLConfig struct {
	Providers map[string]ProviderConfig `yaml:"providers"`
}

// Initialize loads, validates, and returns ready-to-use configuration.
// This is the primary entry point for configuration loading.
//
// Steps performed:
//  1. Resolve service settings from the environment
//  2. Load providers.yaml from configDir if present
//  3. Expand environment variables in the YAML
//  4. Merge built-in + user-defined provider definitions
//  5. Apply environment overrides (AI_MODEL, proxy, timeouts)
//  6. Build the provider registry
//  7. Validate all configuration
//  8. Return Config ready for use
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("Initializing configuration")

	cfg, err := load(ctx, configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	stats := cfg.Stats()
	log.Info("Configuration initialized successfully",
		"providers", stats.Providers,
		"failover_order", cfg.FailoverOrder())

	return cfg, nil
}

// load is the internal loader (not exported)
func load(_ context.Context, configDir string) (*Config, error) {
	service := LoadServiceConfig()

	// providers.yaml is optional; the built-in chain covers the common case
	userProviders, err := loadProvidersYAML(configDir)
	if err != nil {
		return nil, NewLoadError("providers.yaml", err)
	}

	builtin := GetBuiltinConfig()
	merged := mergeProviders(builtin.Providers, userProviders)
	applyServiceOverrides(merged, service)

	return &Config{
		configDir: configDir,
		Service:   service,
		Providers: NewProviderRegistry(merged),
	}, nil
}

func loadProvidersYAML(configDir string) (map[string]ProviderConfig, error) {
	var config ProvidersYAMLConfig
	config.Providers = make(map[string]ProviderConfig)

	path := filepath.Join(configDir, "providers.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config.Providers, nil
		}
		return nil, err
	}

	// Expand environment variables using {{.VAR}} template syntax.
	// ExpandEnv passes through original data on parse/execution errors,
	// letting the YAML parser surface a clearer message.
	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return config.Providers, nil
}

// mergeProviders overlays user definitions on built-in ones. A user entry
// replaces same-name built-in fields only where it sets them.
func mergeProviders(builtin map[string]*ProviderConfig, user map[string]ProviderConfig) map[string]*ProviderConfig {
	merged := make(map[string]*ProviderConfig, len(builtin)+len(user))
	for name, p := range builtin {
		cp := *p
		merged[name] = &cp
	}
	for name, p := range user {
		base, exists := merged[name]
		if !exists {
			cp := p
			merged[name] = &cp
			continue
		}
		if p.Type != "" {
			base.Type = p.Type
		}
		if p.Role != "" {
			base.Role = p.Role
		}
		if p.Model != "" {
			base.Model = p.Model
		}
		if p.APIKeyEnv != "" {
			base.APIKeyEnv = p.APIKeyEnv
		}
		if p.BaseURL != "" {
			base.BaseURL = p.BaseURL
		}
		if p.Weight != 0 {
			base.Weight = p.Weight
		}
		if p.Timeout != 0 {
			base.Timeout = p.Timeout
		}
	}
	return merged
}

// applyServiceOverrides pushes environment-level settings into every
// provider definition.
func applyServiceOverrides(providers map[string]*ProviderConfig, service *ServiceConfig) {
	for _, p := range providers {
		if service.AIModel != "" {
			p.Model = service.AIModel
		}
		if service.ProxyBaseURL != "" {
			p.BaseURL = service.ProxyBaseURL
		}
		if service.ProxyAPIKey != "" {
			p.APIKey = service.ProxyAPIKey
		}
		switch p.Role {
		case ProviderRolePrimary:
			p.Timeout = service.PrimaryTimeout
		case ProviderRoleSecondary:
			p.Timeout = service.SecondaryTimeout
		}
	}
}

// validate performs comprehensive validation on loaded configuration
func validate(cfg *Config) error {
	v := validator.New()

	if cfg.Service.CircuitBreakerThreshold < 1 {
		return NewValidationError("service", "env", "CIRCUIT_BREAKER_THRESHOLD",
			fmt.Errorf("%w: must be at least 1", ErrInvalidValue))
	}
	if cfg.Service.MaxRetries < 0 {
		return NewValidationError("service", "env", "MAX_RETRIES",
			fmt.Errorf("%w: must not be negative", ErrInvalidValue))
	}

	if cfg.Providers.Len() == 0 {
		return errors.New("at least one provider is required")
	}

	primaries := 0
	for name, p := range cfg.Providers.GetAll() {
		if err := v.Struct(p); err != nil {
			return NewValidationError("provider", name, "", err)
		}
		if !p.Type.IsValid() {
			return NewValidationError("provider", name, "type",
				fmt.Errorf("%w: %s", ErrInvalidValue, p.Type))
		}
		if !p.Role.IsValid() {
			return NewValidationError("provider", name, "role",
				fmt.Errorf("%w: %s", ErrInvalidValue, p.Role))
		}
		if p.Role == ProviderRolePrimary {
			primaries++
		}
	}
	if primaries == 0 {
		return errors.New("exactly one provider must have role primary, found none")
	}
	if primaries > 1 {
		return fmt.Errorf("exactly one provider must have role primary, found %d", primaries)
	}

	return nil
}
