package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindIsValid(t *testing.T) {
	valid := []Kind{
		KindValidation, KindAIGeneration, KindRateLimited, KindContextLimit,
		KindAuthConfig, KindTimeout, KindContentFilter, KindProviderOutage,
		KindCircuitOpenAll, KindFailoverExhausted, KindNotFound, KindInternal,
	}
	for _, k := range valid {
		assert.True(t, k.IsValid(), "kind %s", k)
	}
	assert.False(t, Kind("mystery").IsValid())
	assert.False(t, Kind("").IsValid())
}

func TestRetryableDefaults(t *testing.T) {
	tests := []struct {
		kind      Kind
		retryable bool
	}{
		{KindRateLimited, true},
		{KindTimeout, true},
		{KindProviderOutage, true},
		{KindCircuitOpenAll, true},
		{KindFailoverExhausted, true},
		{KindAuthConfig, false},
		{KindContentFilter, false},
		{KindValidation, false},
		{KindInternal, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.retryable, New(tt.kind, "x").Retryable)
		})
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindProviderOutage, "provider unreachable", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindProviderOutage, KindOf(err))

	// Wrapped deeper in a chain, the kind is still extractable.
	chained := fmt.Errorf("analyze failed: %w", err)
	assert.Equal(t, KindProviderOutage, KindOf(chained))
	assert.True(t, Is(chained, KindProviderOutage))
	assert.False(t, Is(chained, KindTimeout))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestErrorMessageIncludesProvider(t *testing.T) {
	err := &AppError{Kind: KindRateLimited, Message: "too many requests", Provider: "primary"}
	assert.Contains(t, err.Error(), "primary")
	assert.Contains(t, err.Error(), "rate_limited")
}
