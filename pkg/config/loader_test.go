package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeWithBuiltinsOnly(t *testing.T) {
	cfg, err := Initialize(context.Background(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Stats().Providers)
	assert.Equal(t, []string{"anthropic", "openai"}, cfg.FailoverOrder())

	anthropic, err := cfg.GetProvider("anthropic")
	require.NoError(t, err)
	assert.Equal(t, ProviderTypeAnthropic, anthropic.Type)
	assert.Equal(t, ProviderRolePrimary, anthropic.Role)
	assert.Equal(t, 10, anthropic.Weight)
	assert.Equal(t, 60*time.Second, anthropic.Timeout)
}

func TestInitializeWithProvidersYAML(t *testing.T) {
	dir := t.TempDir()
	yamlContent := `
providers:
  anthropic:
    model: {{.TEST_MODEL_OVERRIDE}}
  openai:
    base_url: http://openai.internal/v1
`
	t.Setenv("TEST_MODEL_OVERRIDE", "claude-haiku-4-5")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "providers.yaml"), []byte(yamlContent), 0o644))

	cfg, err := Initialize(context.Background(), dir)
	require.NoError(t, err)

	anthropic, err := cfg.GetProvider("anthropic")
	require.NoError(t, err)
	assert.Equal(t, "claude-haiku-4-5", anthropic.Model)
	// Unset fields keep their built-in values
	assert.Equal(t, "ANTHROPIC_API_KEY", anthropic.APIKeyEnv)
	assert.Equal(t, 10, anthropic.Weight)

	openai, err := cfg.GetProvider("openai")
	require.NoError(t, err)
	assert.Equal(t, "http://openai.internal/v1", openai.BaseURL)
}

func TestInitializeEnvOverrides(t *testing.T) {
	t.Setenv("AI_MODEL", "claude-opus-4-1")
	t.Setenv("LLM_PROXY_BASE_URL", "http://llm-proxy:4000")
	t.Setenv("PRIMARY_PROVIDER_TIMEOUT", "30")
	t.Setenv("SECONDARY_PROVIDER_TIMEOUT", "90")

	cfg, err := Initialize(context.Background(), t.TempDir())
	require.NoError(t, err)

	for _, p := range cfg.Providers.GetAll() {
		assert.Equal(t, "claude-opus-4-1", p.Model)
		assert.Equal(t, "http://llm-proxy:4000", p.BaseURL)
	}

	anthropic, _ := cfg.GetProvider("anthropic")
	assert.Equal(t, 30*time.Second, anthropic.Timeout)
	openai, _ := cfg.GetProvider("openai")
	assert.Equal(t, 90*time.Second, openai.Timeout)
}

func TestInitializeProxyCredentials(t *testing.T) {
	t.Setenv("LLM_PROXY_BASE_URL", "http://llm-proxy:4000")
	t.Setenv("LLM_PROXY_API_KEY", "proxy-secret")

	cfg, err := Initialize(context.Background(), t.TempDir())
	require.NoError(t, err)

	for _, p := range cfg.Providers.GetAll() {
		assert.Equal(t, "http://llm-proxy:4000", p.BaseURL)
		assert.Equal(t, "proxy-secret", p.APIKey)
	}
}

func TestInitializeInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "providers.yaml"),
		[]byte("providers:\n  broken\n    indentation: here"), 0o644))

	_, err := Initialize(context.Background(), dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidYAML)

	var loadErr *LoadError
	assert.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "providers.yaml", loadErr.File)
}

func TestInitializeRejectsInvalidProvider(t *testing.T) {
	dir := t.TempDir()
	yamlContent := `
providers:
  mystery:
    type: cohere
    role: secondary
    model: command-r
    weight: 1
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "providers.yaml"), []byte(yamlContent), 0o644))

	_, err := Initialize(context.Background(), dir)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "mystery", valErr.ID)
	assert.Equal(t, "type", valErr.Field)
}

func TestServiceConfigDefaults(t *testing.T) {
	svc := LoadServiceConfig()

	assert.Equal(t, 5, svc.CircuitBreakerThreshold)
	assert.Equal(t, 60*time.Second, svc.CircuitBreakerResetTimeout)
	assert.Equal(t, 3, svc.MaxRetries)
	assert.Equal(t, time.Second, svc.RetryDelay)
	assert.Equal(t, 2.0, svc.BackoffFactor)
	assert.False(t, svc.DisableFailover)
	assert.Equal(t, 30*time.Minute, svc.SessionTTL)
}

func TestServiceConfigFromEnv(t *testing.T) {
	t.Setenv("CIRCUIT_BREAKER_THRESHOLD", "2")
	t.Setenv("CIRCUIT_BREAKER_RESET_TIMEOUT", "10")
	t.Setenv("MAX_RETRIES", "1")
	t.Setenv("RETRY_DELAY_MS", "50")
	t.Setenv("DISABLE_FAILOVER", "true")
	t.Setenv("SESSION_TTL_MINUTES", "5")

	svc := LoadServiceConfig()

	assert.Equal(t, 2, svc.CircuitBreakerThreshold)
	assert.Equal(t, 10*time.Second, svc.CircuitBreakerResetTimeout)
	assert.Equal(t, 1, svc.MaxRetries)
	assert.Equal(t, 50*time.Millisecond, svc.RetryDelay)
	assert.True(t, svc.DisableFailover)
	assert.Equal(t, 5*time.Minute, svc.SessionTTL)
}

func TestServiceConfigIgnoresMalformedValues(t *testing.T) {
	t.Setenv("MAX_RETRIES", "many")
	t.Setenv("DISABLE_FAILOVER", "sometimes")

	svc := LoadServiceConfig()

	assert.Equal(t, 3, svc.MaxRetries)
	assert.False(t, svc.DisableFailover)
}

func TestProviderRegistryFailoverOrderTiebreak(t *testing.T) {
	registry := NewProviderRegistry(map[string]*ProviderConfig{
		"b": {Type: ProviderTypeOpenAI, Role: ProviderRoleSecondary, Model: "m", Weight: 5},
		"a": {Type: ProviderTypeOpenAI, Role: ProviderRoleSecondary, Model: "m", Weight: 5},
		"c": {Type: ProviderTypeAnthropic, Role: ProviderRolePrimary, Model: "m", Weight: 10},
	})

	assert.Equal(t, []string{"c", "a", "b"}, registry.Names())
}
