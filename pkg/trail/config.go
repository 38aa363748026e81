// Package trail provides a Go client for the Audit Trail & Task Management
// REST API. It covers credential persistence, an authenticated HTTP gateway
// that reacts globally to rejected credentials, and a session controller
// that reconciles a stored credential with a live user identity.
package trail

import (
	"strings"
	"time"
)

// Default client settings.
const (
	DefaultBaseURL = "http://localhost:8000/api"
	DefaultTimeout = 30 * time.Second
)

// Default page sizes for paginated listings.
const (
	DefaultTaskPageSize  = 20
	DefaultAuditPageSize = 50
	DefaultUserPageSize  = 50
)

// Config holds configuration for the API client.
type Config struct {
	// BaseURL is the root of the backend API, without a trailing slash.
	BaseURL string

	// Timeout is the HTTP client timeout for each request. Zero means
	// DefaultTimeout.
	Timeout time.Duration
}

// DefaultConfig returns a Config with default settings.
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// WithBaseURL returns a copy of the config pointed at the given base URL.
func (c Config) WithBaseURL(url string) Config {
	c.BaseURL = strings.TrimRight(url, "/")
	return c
}

// WithTimeout returns a copy of the config with the specified timeout.
func (c Config) WithTimeout(timeout time.Duration) Config {
	c.Timeout = timeout
	return c
}
