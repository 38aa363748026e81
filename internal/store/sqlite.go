package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/trailctl/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// WAL improves concurrent read behavior.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// --- Accounts ---

func (s *SQLiteStore) CreateAccount(ctx context.Context, acct *Account) error {
	s.logger.Debug("sql", "op", "insert", "table", "accounts", "id", acct.User.ID)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, email, full_name, role, is_active, password_hash, created_at, last_login)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		acct.User.ID, acct.User.Email, acct.User.FullName, string(acct.User.Role),
		boolToInt(acct.User.IsActive), acct.PasswordHash,
		acct.User.CreatedAt.UTC().Format(time.RFC3339Nano), nullTime(acct.User.LastLogin),
	)
	return err
}

func (s *SQLiteStore) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	s.logger.Debug("sql", "op", "select", "table", "accounts", "email", email)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, full_name, role, is_active, password_hash, created_at, last_login
		 FROM accounts WHERE email = ?`, email)
	return scanAccount(row)
}

func (s *SQLiteStore) GetAccountByID(ctx context.Context, id string) (*Account, error) {
	s.logger.Debug("sql", "op", "select", "table", "accounts", "id", id)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, full_name, role, is_active, password_hash, created_at, last_login
		 FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

func (s *SQLiteStore) ListAccounts(ctx context.Context, page model.Page) ([]*model.User, int, error) {
	page = clampPage(page, 50)
	s.logger.Debug("sql", "op", "list", "table", "accounts", "page", page.Page)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, full_name, role, is_active, password_hash, created_at, last_login
		 FROM accounts ORDER BY created_at LIMIT ? OFFSET ?`,
		page.PageSize, (page.Page-1)*page.PageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		u := acct.User
		users = append(users, &u)
	}
	return users, total, rows.Err()
}

func (s *SQLiteStore) CountAccounts(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n)
	return n, err
}

func (s *SQLiteStore) SetLastLogin(ctx context.Context, id string, when time.Time) error {
	s.logger.Debug("sql", "op", "update", "table", "accounts", "id", id)
	_, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET last_login = ? WHERE id = ?`,
		when.UTC().Format(time.RFC3339Nano), id)
	return err
}

// --- Tokens ---

func (s *SQLiteStore) CreateToken(ctx context.Context, tok *Token) error {
	s.logger.Debug("sql", "op", "insert", "table", "tokens", "user_id", tok.UserID)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tokens (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		tok.Token, tok.UserID,
		tok.CreatedAt.UTC().Format(time.RFC3339Nano),
		tok.ExpiresAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (s *SQLiteStore) GetToken(ctx context.Context, token string) (*Token, error) {
	var tok Token
	var createdAt, expiresAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT token, user_id, created_at, expires_at FROM tokens WHERE token = ?`, token,
	).Scan(&tok.Token, &tok.UserID, &createdAt, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	tok.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	tok.ExpiresAt, _ = time.Parse(time.RFC3339Nano, expiresAt)
	return &tok, nil
}

func (s *SQLiteStore) DeleteToken(ctx context.Context, token string) error {
	s.logger.Debug("sql", "op", "delete", "table", "tokens")
	_, err := s.db.ExecContext(ctx, `DELETE FROM tokens WHERE token = ?`, token)
	return err
}

// --- Tasks ---

func (s *SQLiteStore) CreateTask(ctx context.Context, task *model.Task) error {
	s.logger.Debug("sql", "op", "insert", "table", "tasks", "id", task.ID)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, status, priority, owner_id, assignee_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Title, task.Description, string(task.Status), string(task.Priority),
		task.OwnerID, task.AssigneeID,
		task.CreatedAt.UTC().Format(time.RFC3339Nano),
		task.UpdatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (s *SQLiteStore) GetTask(ctx context.Context, id string) (*model.Task, error) {
	s.logger.Debug("sql", "op", "select", "table", "tasks", "id", id)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, status, priority, owner_id, assignee_id, created_at, updated_at
		 FROM tasks WHERE id = ?`, id)
	return scanTask(row)
}

func (s *SQLiteStore) ListTasks(ctx context.Context, page model.Page) ([]*model.Task, int, error) {
	page = clampPage(page, 20)
	s.logger.Debug("sql", "op", "list", "table", "tasks", "page", page.Page)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, status, priority, owner_id, assignee_id, created_at, updated_at
		 FROM tasks ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`,
		page.PageSize, (page.Page-1)*page.PageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, task)
	}
	return tasks, total, rows.Err()
}

func (s *SQLiteStore) UpdateTask(ctx context.Context, task *model.Task) error {
	s.logger.Debug("sql", "op", "update", "table", "tasks", "id", task.ID)
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, assignee_id = ?, updated_at = ?
		 WHERE id = ?`,
		task.Title, task.Description, string(task.Status), string(task.Priority),
		task.AssigneeID, task.UpdatedAt.UTC().Format(time.RFC3339Nano), task.ID)
	return err
}

func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "delete", "table", "tasks", "id", id)
	_, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	return err
}

// --- Audit trail ---

func (s *SQLiteStore) AppendAuditLog(ctx context.Context, entry *model.AuditLog) error {
	s.logger.Debug("sql", "op", "insert", "table", "audit_logs", "action", string(entry.Action))
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, user_id, user_email, action, resource_type, resource_id, status, detail, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.UserEmail, string(entry.Action),
		entry.ResourceType, entry.ResourceID, entry.Status, entry.Detail,
		entry.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (s *SQLiteStore) ListAuditLogs(ctx context.Context, userID string, page model.Page) ([]*model.AuditLog, int, error) {
	page = clampPage(page, 50)
	s.logger.Debug("sql", "op", "list", "table", "audit_logs", "user_id", userID, "page", page.Page)

	whereSQL := ""
	var args []any
	if userID != "" {
		whereSQL = " WHERE user_id = ?"
		args = append(args, userID)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs`+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, page.PageSize, (page.Page-1)*page.PageSize)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, user_email, action, resource_type, resource_id, status, detail, created_at
		 FROM audit_logs`+whereSQL+` ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []*model.AuditLog
	for rows.Next() {
		var entry model.AuditLog
		var action, createdAt string
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.UserEmail, &action,
			&entry.ResourceType, &entry.ResourceID, &entry.Status, &entry.Detail, &createdAt); err != nil {
			return nil, 0, err
		}
		entry.Action = model.AuditAction(action)
		entry.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		entries = append(entries, &entry)
	}
	return entries, total, rows.Err()
}

func (s *SQLiteStore) AuditStats(ctx context.Context) (*model.AuditStats, error) {
	s.logger.Debug("sql", "op", "stats", "table", "audit_logs")

	stats := &model.AuditStats{
		ByAction: map[string]int{},
		ByStatus: map[string]int{},
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs`).Scan(&stats.Total); err != nil {
		return nil, err
	}

	if err := s.groupCount(ctx, `SELECT action, COUNT(*) FROM audit_logs GROUP BY action`, stats.ByAction); err != nil {
		return nil, err
	}
	if err := s.groupCount(ctx, `SELECT status, COUNT(*) FROM audit_logs GROUP BY status`, stats.ByStatus); err != nil {
		return nil, err
	}

	var last sql.NullString
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(created_at) FROM audit_logs`).Scan(&last); err != nil {
		return nil, err
	}
	if last.Valid {
		if ts, err := time.Parse(time.RFC3339Nano, last.String); err == nil {
			stats.LastEntry = &ts
		}
	}
	return stats, nil
}

func (s *SQLiteStore) groupCount(ctx context.Context, query string, into map[string]int) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		into[key] = n
	}
	return rows.Err()
}

// --- Scan helpers ---

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*Account, error) {
	var acct Account
	var role, createdAt string
	var isActive int
	var lastLogin sql.NullString

	err := row.Scan(&acct.User.ID, &acct.User.Email, &acct.User.FullName, &role,
		&isActive, &acct.PasswordHash, &createdAt, &lastLogin)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	acct.User.Role = model.Role(role)
	acct.User.IsActive = isActive != 0
	acct.User.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if lastLogin.Valid {
		if ts, err := time.Parse(time.RFC3339Nano, lastLogin.String); err == nil {
			acct.User.LastLogin = &ts
		}
	}
	return &acct, nil
}

func scanTask(row scanner) (*model.Task, error) {
	var task model.Task
	var status, priority, createdAt, updatedAt string

	err := row.Scan(&task.ID, &task.Title, &task.Description, &status, &priority,
		&task.OwnerID, &task.AssigneeID, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	task.Status = model.TaskStatus(status)
	task.Priority = model.TaskPriority(priority)
	task.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	task.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &task, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}
