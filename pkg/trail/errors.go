package trail

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for common failure scenarios.
var (
	// ErrUnauthorized indicates the backend rejected the credential as
	// missing, expired, or invalid.
	ErrUnauthorized = errors.New("unauthorized: credential missing, expired, or invalid")

	// ErrNotAuthenticated indicates an operation that requires a session
	// was attempted without one.
	ErrNotAuthenticated = errors.New("not authenticated: no credential stored")
)

// FieldError describes a validation error on a single request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

// APIError is a non-2xx response from the backend, carrying the decoded
// error payload. Callers can inspect StatusCode to decide display
// behavior; 401 handling has already happened inside the client by the
// time an APIError surfaces.
type APIError struct {
	StatusCode int
	ErrorText  string       // short error class, e.g. "Validation Error"
	Detail     string       // human-readable detail
	Fields     []FieldError // field-level validation errors, if any
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "HTTP %d", e.StatusCode)
	if e.ErrorText != "" {
		fmt.Fprintf(&b, " %s", e.ErrorText)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	for _, f := range e.Fields {
		fmt.Fprintf(&b, "; %s: %s", f.Field, f.Message)
	}
	return b.String()
}

// Unwrap maps 401 responses onto ErrUnauthorized so callers can test
// with errors.Is.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// Error wraps a failed API operation with context.
type Error struct {
	Op  string // operation that failed, e.g. "login"
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// IsAuthError reports whether err is an authorization failure.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNotAuthenticated)
}

// IsNotFound reports whether err is an HTTP 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// apiErrorPayload matches the backend's error body. The detail field is
// either a plain string or a list of field errors (validation failures),
// and plain FastAPI-style bodies carry only {"detail": "..."}.
type apiErrorPayload struct {
	Error  string          `json:"error"`
	Detail json.RawMessage `json:"detail"`
}

// decodeAPIError builds an *APIError from a non-2xx response body.
// Undecodable bodies still yield a usable error carrying the raw text.
func decodeAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	var payload apiErrorPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		apiErr.Detail = strings.TrimSpace(string(body))
		return apiErr
	}
	apiErr.ErrorText = payload.Error

	if len(payload.Detail) > 0 {
		var detail string
		if json.Unmarshal(payload.Detail, &detail) == nil {
			apiErr.Detail = detail
		} else {
			var fields []FieldError
			if json.Unmarshal(payload.Detail, &fields) == nil {
				apiErr.Fields = fields
			}
		}
	}
	return apiErr
}
