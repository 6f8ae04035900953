// Package apperr defines the typed error taxonomy shared by all
// components and the mapping metadata the HTTP boundary needs to build
// stable response shapes.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the closed set of internal error categories.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindAIGeneration      Kind = "ai_generation"
	KindRateLimited       Kind = "rate_limited"
	KindContextLimit      Kind = "context_limit"
	KindAuthConfig        Kind = "auth_config"
	KindTimeout           Kind = "timeout"
	KindContentFilter     Kind = "content_filter"
	KindProviderOutage    Kind = "provider_outage"
	KindCircuitOpenAll    Kind = "circuit_open_all"
	KindFailoverExhausted Kind = "failover_exhausted"
	KindNotFound          Kind = "not_found"
	KindInternal          Kind = "internal"
)

// IsValid checks if the error kind is valid
func (k Kind) IsValid() bool {
	switch k {
	case KindValidation, KindAIGeneration, KindRateLimited, KindContextLimit,
		KindAuthConfig, KindTimeout, KindContentFilter, KindProviderOutage,
		KindCircuitOpenAll, KindFailoverExhausted, KindNotFound, KindInternal:
		return true
	default:
		return false
	}
}

// AppError is the typed error carried between components. Retryable and
// RetryAfterS drive the client-facing retry hints; Provider and Model are
// populated for gateway-originated failures.
type AppError struct {
	Kind        Kind
	Message     string
	RequestID   string
	Retryable   bool
	RetryAfterS int
	Provider    string
	Model       string
	Suggestions []string
	Err         error
}

// Error returns the formatted error message
func (e *AppError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s (provider %s): %s", e.Kind, e.Provider, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError of the given kind.
func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message, Retryable: retryableByDefault(kind)}
}

// Wrap creates an AppError wrapping an underlying cause.
func Wrap(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err, Retryable: retryableByDefault(kind)}
}

// retryableByDefault encodes the taxonomy's retry policy: rate limits,
// timeouts, and outage-class failures are retryable; auth and content
// filter never are.
func retryableByDefault(kind Kind) bool {
	switch kind {
	case KindRateLimited, KindTimeout, KindProviderOutage,
		KindCircuitOpenAll, KindFailoverExhausted:
		return true
	default:
		return false
	}
}

// KindOf extracts the Kind from an error chain, or KindInternal when the
// chain carries no AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// As extracts an AppError from an error chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// Is reports whether the error chain carries an AppError of the given kind.
func Is(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
