package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// ValidationError reports caller-fixable input problems. It is the only
// error kind that crosses the analyzer boundary as a failure.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NewValidationError builds a ValidationError with a formatted reason.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrorKind categorizes AI invocation failures.
type ErrorKind string

const (
	KindNetwork            ErrorKind = "network"
	KindAuth               ErrorKind = "auth"
	KindBadRequest         ErrorKind = "bad_request"
	KindNotFound           ErrorKind = "not_found"
	KindRateLimit          ErrorKind = "rate_limit"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindMalformedResponse  ErrorKind = "malformed_response"
	KindTimeout            ErrorKind = "timeout"
)

// AnalysisError is a classified AI invocation failure. HTTPStatus is zero
// when no status was available (network and timeout failures).
type AnalysisError struct {
	Kind       ErrorKind
	Message    string
	HTTPStatus int
	Err        error
}

func (e *AnalysisError) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

func newAnalysisError(kind ErrorKind, status int, err error, format string, args ...any) *AnalysisError {
	return &AnalysisError{
		Kind:       kind,
		Message:    fmt.Sprintf(format, args...),
		HTTPStatus: status,
		Err:        err,
	}
}

// classifyGenerateError maps an error from the Gemini SDK into the analysis
// error taxonomy. Classification is by HTTP status when one is available;
// deadline expiry and transport-level failures have no status.
func classifyGenerateError(err error) *AnalysisError {
	var already *AnalysisError
	if errors.As(err, &already) {
		return already
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return newAnalysisError(KindTimeout, 0, err, "AI request deadline exceeded")
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
			return newAnalysisError(KindAuth, apiErr.Code, err, "AI credential rejected: %s", apiErr.Message)
		case apiErr.Code == http.StatusBadRequest:
			return newAnalysisError(KindBadRequest, apiErr.Code, err, "AI request rejected: %s", apiErr.Message)
		case apiErr.Code == http.StatusNotFound:
			return newAnalysisError(KindNotFound, apiErr.Code, err, "AI endpoint or model not found: %s", apiErr.Message)
		case apiErr.Code == http.StatusTooManyRequests:
			return newAnalysisError(KindRateLimit, apiErr.Code, err, "AI rate limit exceeded: %s", apiErr.Message)
		case apiErr.Code >= 500:
			return newAnalysisError(KindServiceUnavailable, apiErr.Code, err, "AI service unavailable: %s", apiErr.Message)
		default:
			return newAnalysisError(KindMalformedResponse, apiErr.Code, err, "unexpected AI response: %s", apiErr.Message)
		}
	}

	return newAnalysisError(KindNetwork, 0, err, "AI request failed: %v", err)
}
