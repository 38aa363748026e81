package trail

import (
	"context"

	"github.com/me/trailctl/pkg/model"
)

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by login and register: a bearer credential
// plus the authenticated identity.
type AuthResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type,omitempty"`
	User        model.User `json:"user"`
}

// Register creates a new account. A successful registration is an
// immediately authenticated session on the backend; persisting the
// returned credential is the session controller's job.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.post(ctx, "register", "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login exchanges email and password for a credential and identity.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.post(ctx, "login", "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout invalidates the current credential on the backend.
func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "logout", "/auth/logout", nil, nil)
}

// CurrentUser fetches the identity bound to the stored credential.
func (c *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.get(ctx, "current user", "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
