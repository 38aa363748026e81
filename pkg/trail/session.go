package trail

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/me/trailctl/pkg/model"
)

// Session owns the in-memory user identity and keeps it consistent with
// the persisted credential. It is created once at application start and
// driven from a single goroutine; it is not safe for concurrent use.
//
// Lifecycle: INITIALIZING until Init resolves, then permanently resolved
// as authenticated or anonymous. Login, Register, and Logout move between
// the resolved states; Init never runs twice.
type Session struct {
	client   *Client
	creds    CredentialStore
	logger   *slog.Logger
	user     *model.User
	loading  bool
	resolved bool
}

// NewSession creates a session controller on top of the given client.
// Loading starts true: the identity is unknown until Init has run.
func NewSession(client *Client, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		client:  client,
		creds:   client.Credentials(),
		logger:  logger.With("component", "session"),
		loading: true,
	}
}

// Init performs the one-time startup reconciliation between the
// persisted credential and the backend's idea of the current user:
//
//   - no credential: resolve anonymous without any network call
//   - credential + current-user success: resolve authenticated
//   - credential + any failure: clear the credential, resolve anonymous
//
// Failures are swallowed: a dead backend and a genuinely invalid
// credential both reset the session silently. Init never returns an
// error and calling it again after resolution is a no-op. Loading
// becomes false exactly once, at the end, in every branch.
func (s *Session) Init(ctx context.Context) {
	if s.resolved {
		return
	}
	defer func() {
		s.loading = false
		s.resolved = true
	}()

	if !s.creds.Has() {
		return
	}

	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		// The client may already have cleared the store on a 401;
		// Clear is idempotent.
		s.logger.Debug("session reconciliation failed, resetting to anonymous", "error", err)
		if err := s.creds.Clear(); err != nil {
			s.logger.Warn("clear credentials", "error", err)
		}
		return
	}
	s.user = user
}

// Login authenticates with the backend, persists the returned
// credential, and adopts the returned identity. On failure nothing is
// mutated and the error propagates untouched.
func (s *Session) Login(ctx context.Context, email, password string) (*model.User, error) {
	resp, err := s.client.Login(ctx, LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	if err := s.creds.Set(resp.AccessToken); err != nil {
		return nil, fmt.Errorf("persist credential: %w", err)
	}
	u := resp.User
	s.user = &u
	return s.user, nil
}

// Register creates an account with the same contract as Login: a
// successful registration is an immediately authenticated session.
func (s *Session) Register(ctx context.Context, email, password, fullName string) (*model.User, error) {
	resp, err := s.client.Register(ctx, RegisterRequest{Email: email, Password: password, FullName: fullName})
	if err != nil {
		return nil, err
	}
	if err := s.creds.Set(resp.AccessToken); err != nil {
		return nil, fmt.Errorf("persist credential: %w", err)
	}
	u := resp.User
	s.user = &u
	return s.user, nil
}

// Logout tears the session down. The backend call is best-effort: its
// failure is logged and swallowed because the local teardown must
// proceed regardless of backend reachability.
func (s *Session) Logout(ctx context.Context) {
	if err := s.client.Logout(ctx); err != nil {
		s.logger.Debug("backend logout failed", "error", err)
	}
	if err := s.creds.Clear(); err != nil {
		s.logger.Warn("clear credentials", "error", err)
	}
	s.user = nil
}

// User returns the current identity, or nil while anonymous.
func (s *Session) User() *model.User {
	return s.user
}

// Loading reports whether the startup reconciliation is still pending.
// Consumers must treat a loading session as "identity unknown".
func (s *Session) Loading() bool {
	return s.loading
}

// IsAuthenticated reports whether a user identity is present.
func (s *Session) IsAuthenticated() bool {
	return s.user != nil
}

// IsAdmin reports whether the session belongs to an admin user.
func (s *Session) IsAdmin() bool {
	return s.user != nil && s.user.IsAdmin()
}
