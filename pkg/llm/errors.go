package llm

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/qa-canvas/canvasd/pkg/apperr"
)

// Normalize classifies a raw provider error into the shared taxonomy and
// stamps provider/model attribution. AppErrors pass through with
// attribution added.
func Normalize(provider, model string, err error) *apperr.AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := apperr.As(err); ok {
		if appErr.Provider == "" {
			appErr.Provider = provider
		}
		if appErr.Model == "" {
			appErr.Model = model
		}
		return appErr
	}

	appErr := classify(err)
	appErr.Provider = provider
	appErr.Model = model
	return appErr
}

func classify(err error) *apperr.AppError {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.KindTimeout, "provider call timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return apperr.Wrap(apperr.KindTimeout, "provider call canceled", err)
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.StatusCode, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return apperr.Wrap(apperr.KindTimeout, "provider call timed out", err)
		}
		return apperr.Wrap(apperr.KindProviderOutage, "provider unreachable", err)
	}

	return classifyMessage(err)
}

func classifyStatus(status int, err error) *apperr.AppError {
	switch {
	case status == 401 || status == 403:
		return apperr.Wrap(apperr.KindAuthConfig, "provider rejected credentials", err)
	case status == 429:
		return apperr.Wrap(apperr.KindRateLimited, "provider rate limit exceeded", err)
	case status == 400 && mentionsContextLimit(err):
		return apperr.Wrap(apperr.KindContextLimit, "request exceeds the model context window", err)
	case status == 400 && mentionsContentFilter(err):
		return apperr.Wrap(apperr.KindContentFilter, "provider content filter blocked the request", err)
	case status >= 500, status == 529:
		return apperr.Wrap(apperr.KindProviderOutage, "provider returned a server error", err)
	default:
		return apperr.Wrap(apperr.KindAIGeneration, "provider request failed", err)
	}
}

// classifyMessage is the fallback for SDKs that surface plain errors.
// The OpenAI-compatible client embeds the status in the message text.
func classifyMessage(err error) *apperr.AppError {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "status code: 401"), strings.Contains(msg, "status code: 403"),
		strings.Contains(msg, "invalid api key"), strings.Contains(msg, "incorrect api key"):
		return apperr.Wrap(apperr.KindAuthConfig, "provider rejected credentials", err)
	case strings.Contains(msg, "status code: 429"), strings.Contains(msg, "rate limit"):
		return apperr.Wrap(apperr.KindRateLimited, "provider rate limit exceeded", err)
	case mentionsContextLimit(err):
		return apperr.Wrap(apperr.KindContextLimit, "request exceeds the model context window", err)
	case mentionsContentFilter(err):
		return apperr.Wrap(apperr.KindContentFilter, "provider content filter blocked the request", err)
	case strings.Contains(msg, "status code: 5"), strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no such host"), strings.Contains(msg, "eof"):
		return apperr.Wrap(apperr.KindProviderOutage, "provider unreachable", err)
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline"):
		return apperr.Wrap(apperr.KindTimeout, "provider call timed out", err)
	default:
		return apperr.Wrap(apperr.KindAIGeneration, "provider request failed", err)
	}
}

func mentionsContextLimit(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "context length") ||
		strings.Contains(msg, "context window") ||
		strings.Contains(msg, "maximum context") ||
		strings.Contains(msg, "prompt is too long") ||
		strings.Contains(msg, "too many tokens")
}

func mentionsContentFilter(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "content filter") ||
		strings.Contains(msg, "content_filter") ||
		strings.Contains(msg, "content policy") ||
		strings.Contains(msg, "safety")
}

// TripsCircuit reports whether a failure of this kind counts against the
// provider's circuit breaker. Credential and content problems are caller
// issues, not provider health signals.
func TripsCircuit(kind apperr.Kind) bool {
	switch kind {
	case apperr.KindAuthConfig, apperr.KindContentFilter, apperr.KindValidation:
		return false
	default:
		return true
	}
}

// RetryableWithinProvider reports whether the retry loop should try the
// same provider again for this failure kind.
func RetryableWithinProvider(kind apperr.Kind) bool {
	switch kind {
	case apperr.KindRateLimited, apperr.KindTimeout, apperr.KindProviderOutage, apperr.KindAIGeneration:
		return true
	default:
		return false
	}
}
