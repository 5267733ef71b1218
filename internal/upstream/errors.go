package upstream

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// Error type identifiers used in caller-facing error bodies.
const (
	ErrTypeConfiguration  = "configuration_error"
	ErrTypeModelLoading   = "model_loading_error"
	ErrTypeRateLimit      = "rate_limit_error"
	ErrTypeUpstream       = "upstream_error"
	ErrTypeInvalidRequest = "invalid_request_error"
)

// APIError is a classified proxy error. Code is the HTTP status returned to
// the caller and Type is the machine-readable error kind.
type APIError struct {
	Type    string
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// NewConfigurationError reports a missing or unusable proxy configuration,
// surfaced before any upstream call is attempted.
func NewConfigurationError(message string) *APIError {
	return &APIError{Type: ErrTypeConfiguration, Code: http.StatusInternalServerError, Message: message}
}

// NewModelLoadingError reports that the upstream model is still being
// loaded. The message carries a human-readable retry hint.
func NewModelLoadingError(message string) *APIError {
	if message == "" {
		message = "model is loading on the upstream service, retry in a few seconds"
	}
	return &APIError{Type: ErrTypeModelLoading, Code: http.StatusServiceUnavailable, Message: message}
}

// NewRateLimitError reports an upstream 429.
func NewRateLimitError(message string) *APIError {
	if message == "" {
		message = "upstream rate limit exceeded"
	}
	return &APIError{Type: ErrTypeRateLimit, Code: http.StatusTooManyRequests, Message: message}
}

// NewUpstreamError reports any other upstream failure, including network
// errors and timeouts.
func NewUpstreamError(message string) *APIError {
	if message == "" {
		message = "upstream request failed"
	}
	return &APIError{Type: ErrTypeUpstream, Code: http.StatusInternalServerError, Message: message}
}

// NewInvalidRequestError reports a malformed caller request or an unknown
// route.
func NewInvalidRequestError(code int, message string) *APIError {
	return &APIError{Type: ErrTypeInvalidRequest, Code: code, Message: message}
}

// AsAPIError returns err as an *APIError, wrapping anything unclassified as
// a generic upstream error.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return NewUpstreamError(err.Error())
}

// mapHTTPError classifies a non-2xx upstream response. The Hugging Face
// Inference API reports 503 while a model is loading and 429 when rate
// limited; everything else collapses into a generic upstream error carrying
// the upstream detail when one can be parsed from the body.
func mapHTTPError(status int, body []byte) *APIError {
	message := extractErrorMessage(body)

	switch {
	case status == http.StatusServiceUnavailable:
		if message != "" {
			message += "; retry in a few seconds"
		}
		return NewModelLoadingError(message)
	case status == http.StatusTooManyRequests:
		return NewRateLimitError(message)
	default:
		if message == "" {
			message = fmt.Sprintf("upstream returned HTTP %d", status)
		}
		return NewUpstreamError(message)
	}
}

// mapNetworkError classifies transport-level failures (connection refused,
// DNS, timeout).
func mapNetworkError(err error) *APIError {
	return NewUpstreamError(fmt.Sprintf("upstream connection error: %v", err))
}

// extractErrorMessage pulls the error detail out of an upstream error body.
// The upstream reports either {"error":"..."} or {"error":["...",...]}.
func extractErrorMessage(body []byte) string {
	result := gjson.GetBytes(body, "error")
	if result.IsArray() {
		result = gjson.GetBytes(body, "error.0")
	}
	return result.String()
}
