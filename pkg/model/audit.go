package model

import "time"

// AuditAction names the operation recorded by an audit trail entry.
type AuditAction string

const (
	ActionRegister AuditAction = "REGISTER"
	ActionLogin    AuditAction = "LOGIN"
	ActionLogout   AuditAction = "LOGOUT"
	ActionCreate   AuditAction = "CREATE"
	ActionUpdate   AuditAction = "UPDATE"
	ActionDelete   AuditAction = "DELETE"
)

// Audit entry outcomes.
const (
	AuditStatusSuccess = "SUCCESS"
	AuditStatusFailure = "FAILURE"
)

// AuditLog is one immutable audit trail entry.
type AuditLog struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id"`
	UserEmail    string      `json:"user_email"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Status       string      `json:"status"`
	Detail       string      `json:"detail,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// AuditStats summarizes the audit trail.
type AuditStats struct {
	Total     int            `json:"total"`
	ByAction  map[string]int `json:"by_action"`
	ByStatus  map[string]int `json:"by_status"`
	LastEntry *time.Time     `json:"last_entry,omitempty"`
}
