// Package store is the persistence layer for the local stand-in API
// server: accounts, issued tokens, tasks, and the audit trail.
package store

import (
	"context"
	"time"

	"github.com/me/trailctl/pkg/model"
)

// Account couples a user identity with server-side credentials. The
// password hash never leaves this package's consumers.
type Account struct {
	User         model.User
	PasswordHash string
}

// Token is an issued bearer credential.
type Token struct {
	Token     string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token is past its expiry.
func (t *Token) Expired() bool {
	return time.Now().After(t.ExpiresAt)
}

// Store defines the persistence operations the API server needs.
// Get methods return (nil, nil) when the entity does not exist.
type Store interface {
	// Accounts
	CreateAccount(ctx context.Context, acct *Account) error
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	GetAccountByID(ctx context.Context, id string) (*Account, error)
	ListAccounts(ctx context.Context, page model.Page) ([]*model.User, int, error)
	CountAccounts(ctx context.Context) (int, error)
	SetLastLogin(ctx context.Context, id string, when time.Time) error

	// Tokens
	CreateToken(ctx context.Context, tok *Token) error
	GetToken(ctx context.Context, token string) (*Token, error)
	DeleteToken(ctx context.Context, token string) error

	// Tasks
	CreateTask(ctx context.Context, task *model.Task) error
	GetTask(ctx context.Context, id string) (*model.Task, error)
	ListTasks(ctx context.Context, page model.Page) ([]*model.Task, int, error)
	UpdateTask(ctx context.Context, task *model.Task) error
	DeleteTask(ctx context.Context, id string) error

	// Audit trail. userID "" lists all entries.
	AppendAuditLog(ctx context.Context, entry *model.AuditLog) error
	ListAuditLogs(ctx context.Context, userID string, page model.Page) ([]*model.AuditLog, int, error)
	AuditStats(ctx context.Context) (*model.AuditStats, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// clampPage enforces sane pagination bounds (page >= 1, 1 <= size <= 100).
func clampPage(p model.Page, defaultSize int) model.Page {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultSize
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	return p
}
