package trail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/me/trailctl/pkg/model"
)

// UnauthorizedHandler reacts to the backend rejecting the credential.
// It runs after the credential store has been cleared and before the
// error reaches the caller. The application shell supplies it, e.g. to
// tell the user to sign in again.
type UnauthorizedHandler func()

// Client dispatches requests to the backend. Every outgoing request
// picks up the stored bearer credential; every 401 response clears the
// store and fires the unauthorized handler regardless of which call
// site triggered it. All other failures propagate to the caller
// unchanged.
type Client struct {
	httpClient     *http.Client
	config         Config
	creds          CredentialStore
	logger         *slog.Logger
	onUnauthorized UnauthorizedHandler
}

// NewClient creates an API client. The credential store must not be
// nil; logger may be nil to discard logs.
func NewClient(config Config, creds CredentialStore, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
		creds:      creds,
		logger:     logger.With("component", "trail-client"),
	}
}

// SetUnauthorizedHandler installs the global 401 reaction.
func (c *Client) SetUnauthorizedHandler(h UnauthorizedHandler) {
	c.onUnauthorized = h
}

// Credentials returns the client's credential store.
func (c *Client) Credentials() CredentialStore {
	return c.creds
}

// do performs one HTTP round trip. The credential is re-read from the
// store on every call so that a login or forced clear is picked up
// immediately. A 2xx JSON body is decoded into out when out is non-nil.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	u := c.config.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Err: fmt.Errorf("marshal request: %w", err)}
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return &Error{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", "req_"+uuid.New().String()[:8])
	if token := c.creds.Get(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("request", "method", method, "url", u)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Op: op, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug("response", "status", resp.StatusCode, "bytes", len(respBody))

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Op: op, Err: decodeAPIError(resp.StatusCode, respBody)}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return &Error{Op: op, Err: fmt.Errorf("parse response (status %d): %w", resp.StatusCode, err)}
		}
	}
	return nil
}

// handleUnauthorized clears the stored credential and fires the
// injected handler. This runs for every 401, from any endpoint, before
// the error is returned.
func (c *Client) handleUnauthorized() {
	if err := c.creds.Clear(); err != nil {
		c.logger.Warn("clear credentials", "error", err)
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	return c.do(ctx, op, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	return c.do(ctx, op, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, op, path string, body, out any) error {
	return c.do(ctx, op, http.MethodPut, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, op, path string) error {
	return c.do(ctx, op, http.MethodDelete, path, nil, nil, nil)
}

// pageQuery encodes 1-based pagination parameters, applying defaultSize
// when the caller left the options zero-valued.
func pageQuery(opts model.Page, defaultSize int) url.Values {
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultSize
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(opts.Page))
	q.Set("page_size", strconv.Itoa(opts.PageSize))
	return q
}
