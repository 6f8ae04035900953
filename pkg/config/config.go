package config

// Config is the umbrella configuration object returned by Initialize()
// and used throughout the application.
type Config struct {
	configDir string // Configuration directory path (for reference)

	// Environment-resolved service settings
	Service *ServiceConfig

	// Provider chain registry
	Providers *ProviderRegistry
}

// Stats contains statistics about loaded configuration
type Stats struct {
	Providers int
}

// Stats returns configuration statistics for logging/monitoring
func (c *Config) Stats() Stats {
	s := Stats{}
	if c.Providers != nil {
		s.Providers = c.Providers.Len()
	}
	return s
}

// ConfigDir returns the configuration directory path
func (c *Config) ConfigDir() string {
	return c.configDir
}

// GetProvider retrieves a provider configuration by name.
// This is a convenience method that wraps Providers.Get().
func (c *Config) GetProvider(name string) (*ProviderConfig, error) {
	return c.Providers.Get(name)
}

// FailoverOrder returns provider names in descending weight order.
func (c *Config) FailoverOrder() []string {
	return c.Providers.Names()
}
