package api

import (
	"errors"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/qa-canvas/canvasd/pkg/apperr"
	"github.com/qa-canvas/canvasd/pkg/masking"
	"github.com/qa-canvas/canvasd/pkg/schema"
)

// redactor strips provider credentials from error text before it is
// logged or returned. SDK errors can echo the failing request.
var redactor = masking.NewRedactor()

// ErrorResponse is the stable error body every endpoint returns.
type ErrorResponse struct {
	Error       string   `json:"error"`
	Message     string   `json:"message"`
	RequestID   string   `json:"request_id"`
	Retryable   bool     `json:"retryable"`
	RetryAfterS int      `json:"retry_after_s,omitempty"`
	Suggestions []string `json:"suggestions"`
	Details     any      `json:"details,omitempty"`
}

// ValidationDetails groups field-level issues for 400 responses.
type ValidationDetails struct {
	Subject string         `json:"subject"`
	Issues  []schema.Issue `json:"issues"`
}

// statusForKind maps the error taxonomy to HTTP status codes.
func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindRateLimited:
		return http.StatusTooManyRequests
	case apperr.KindContextLimit:
		return http.StatusRequestEntityTooLarge
	case apperr.KindAuthConfig:
		return http.StatusUnauthorized
	case apperr.KindTimeout:
		return http.StatusGatewayTimeout
	case apperr.KindContentFilter:
		return http.StatusUnprocessableEntity
	case apperr.KindProviderOutage, apperr.KindFailoverExhausted, apperr.KindAIGeneration:
		return http.StatusBadGateway
	case apperr.KindCircuitOpenAll:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorBody converts any error into the stable response shape.
func errorBody(reqID string, err error) (int, *ErrorResponse) {
	var schemaErr *schema.Error
	if errors.As(err, &schemaErr) {
		return http.StatusBadRequest, &ErrorResponse{
			Error:       string(apperr.KindValidation),
			Message:     "request validation failed",
			RequestID:   reqID,
			Retryable:   false,
			Suggestions: []string{"Fix the listed fields and retry the request."},
			Details:     &ValidationDetails{Subject: schemaErr.Subject, Issues: schemaErr.Issues},
		}
	}

	appErr, ok := apperr.As(err)
	if !ok {
		slog.Error("Unexpected error at HTTP boundary",
			"request_id", reqID, "error", redactor.RedactError(err))
		return http.StatusInternalServerError, &ErrorResponse{
			Error:       string(apperr.KindInternal),
			Message:     "internal server error",
			RequestID:   reqID,
			Retryable:   false,
			Suggestions: []string{},
		}
	}

	resp := &ErrorResponse{
		Error:       string(appErr.Kind),
		Message:     redactor.Redact(appErr.Message),
		RequestID:   reqID,
		Retryable:   appErr.Retryable,
		RetryAfterS: appErr.RetryAfterS,
		Suggestions: appErr.Suggestions,
	}
	if resp.RequestID == "" {
		resp.RequestID = appErr.RequestID
	}
	if resp.Suggestions == nil {
		resp.Suggestions = []string{}
	}
	return statusForKind(appErr.Kind), resp
}

// writeError sends the mapped error response.
func writeError(c *echo.Context, reqID string, err error) error {
	status, body := errorBody(reqID, err)
	return c.JSON(status, body)
}
