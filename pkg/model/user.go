package model

import "time"

// Role represents the access level of a user account.
type Role string

const (
	// RoleUser is a standard authenticated user.
	RoleUser Role = "USER"
	// RoleAdmin can read the full audit trail and list user accounts.
	RoleAdmin Role = "ADMIN"
)

// User represents the authenticated principal as returned by the backend.
// It is never persisted client-side; it is re-derived from the stored
// credential on each fresh start.
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	Role      Role       `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
