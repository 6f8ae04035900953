package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// ServiceConfig holds process-wide settings resolved from the environment.
type ServiceConfig struct {
	// HTTP listen port
	Port int

	// Circuit breaker: consecutive failures before a circuit opens
	CircuitBreakerThreshold int
	// Circuit breaker: how long an open circuit stays open
	CircuitBreakerResetTimeout time.Duration

	// Retry policy within one provider
	MaxRetries    int
	RetryDelay    time.Duration
	BackoffFactor float64

	// When true the gateway never advances past the first provider
	DisableFailover bool

	// Optional model override applied to every provider
	AIModel string

	// Per-provider request timeouts
	PrimaryTimeout   time.Duration
	SecondaryTimeout time.Duration

	// Conversation session expiry
	SessionTTL time.Duration

	// Optional observability proxy; when set both providers route
	// through it instead of their default endpoints
	ProxyBaseURL string
	ProxyAPIKey  string
}

// LoadServiceConfig resolves service settings from environment variables,
// falling back to defaults. Malformed values are logged and ignored.
func LoadServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		Port:                       envInt("PORT", 8080),
		CircuitBreakerThreshold:    envInt("CIRCUIT_BREAKER_THRESHOLD", 5),
		CircuitBreakerResetTimeout: envSeconds("CIRCUIT_BREAKER_RESET_TIMEOUT", 60*time.Second),
		MaxRetries:                 envInt("MAX_RETRIES", 3),
		RetryDelay:                 envMillis("RETRY_DELAY_MS", time.Second),
		BackoffFactor:              envFloat("BACKOFF_FACTOR", 2.0),
		DisableFailover:            envBool("DISABLE_FAILOVER", false),
		AIModel:                    os.Getenv("AI_MODEL"),
		PrimaryTimeout:             envSeconds("PRIMARY_PROVIDER_TIMEOUT", 60*time.Second),
		SecondaryTimeout:           envSeconds("SECONDARY_PROVIDER_TIMEOUT", 60*time.Second),
		SessionTTL:                 envMinutes("SESSION_TTL_MINUTES", 30*time.Minute),
		ProxyBaseURL:               os.Getenv("LLM_PROXY_BASE_URL"),
		ProxyAPIKey:                os.Getenv("LLM_PROXY_API_KEY"),
	}
}

func envInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		slog.Warn("Invalid integer in environment, using default",
			"var", key, "value", raw, "default", def)
		return def
	}
	return v
}

func envFloat(key string, def float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		slog.Warn("Invalid float in environment, using default",
			"var", key, "value", raw, "default", def)
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("Invalid boolean in environment, using default",
			"var", key, "value", raw, "default", def)
		return def
	}
	return v
}

func envSeconds(key string, def time.Duration) time.Duration {
	if v := envInt(key, -1); v >= 0 {
		return time.Duration(v) * time.Second
	}
	return def
}

func envMillis(key string, def time.Duration) time.Duration {
	if v := envInt(key, -1); v >= 0 {
		return time.Duration(v) * time.Millisecond
	}
	return def
}

func envMinutes(key string, def time.Duration) time.Duration {
	if v := envInt(key, -1); v >= 0 {
		return time.Duration(v) * time.Minute
	}
	return def
}
