package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/me/trailctl/internal/logging"
	"github.com/me/trailctl/pkg/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLiteStore(":memory:", logging.Discard())
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })
	return st
}

func testAccount(id, email string, role model.Role) *Account {
	return &Account{
		User: model.User{
			ID:        id,
			Email:     email,
			FullName:  "Test User",
			Role:      role,
			IsActive:  true,
			CreatedAt: time.Now().UTC(),
		},
		PasswordHash: "$2a$10$fakehash",
	}
}

func TestSQLiteStore_Accounts(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	n, err := st.CountAccounts(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, st.CreateAccount(ctx, testAccount("u1", "a@b.com", model.RoleAdmin)))

	// Duplicate emails are rejected by the unique index.
	err = st.CreateAccount(ctx, testAccount("u2", "a@b.com", model.RoleUser))
	assert.Error(t, err)

	got, err := st.GetAccountByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.User.ID)
	assert.Equal(t, model.RoleAdmin, got.User.Role)
	assert.True(t, got.User.IsActive)
	assert.Nil(t, got.User.LastLogin)

	missing, err := st.GetAccountByEmail(ctx, "nobody@b.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	when := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, st.SetLastLogin(ctx, "u1", when))
	got, err = st.GetAccountByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got.User.LastLogin)
	assert.True(t, got.User.LastLogin.Equal(when))
}

func TestSQLiteStore_ListAccounts(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		acct := testAccount(
			string(rune('a'+i))+"1",
			string(rune('a'+i))+"@b.com",
			model.RoleUser,
		)
		acct.User.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Second)
		require.NoError(t, st.CreateAccount(ctx, acct))
	}

	users, total, err := st.ListAccounts(ctx, model.Page{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, users, 2)

	users, _, err = st.ListAccounts(ctx, model.Page{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestSQLiteStore_Tokens(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	tok := &Token{Token: "tok123", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(24 * time.Hour)}
	require.NoError(t, st.CreateToken(ctx, tok))

	got, err := st.GetToken(ctx, "tok123")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UserID)
	assert.False(t, got.Expired())

	missing, err := st.GetToken(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, st.DeleteToken(ctx, "tok123"))
	got, err = st.GetToken(ctx, "tok123")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting a deleted token is a no-op.
	require.NoError(t, st.DeleteToken(ctx, "tok123"))
}

func TestToken_Expired(t *testing.T) {
	past := &Token{ExpiresAt: time.Now().Add(-time.Minute)}
	assert.True(t, past.Expired())

	future := &Token{ExpiresAt: time.Now().Add(time.Minute)}
	assert.False(t, future.Expired())
}

func TestSQLiteStore_TaskCRUD(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	task := &model.Task{
		ID:        "task_1",
		Title:     "write report",
		Status:    model.TaskStatusTodo,
		Priority:  model.PriorityHigh,
		OwnerID:   "u1",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, st.CreateTask(ctx, task))

	got, err := st.GetTask(ctx, "task_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "write report", got.Title)
	assert.Equal(t, model.PriorityHigh, got.Priority)

	got.Status = model.TaskStatusDone
	got.UpdatedAt = now.Add(time.Minute)
	require.NoError(t, st.UpdateTask(ctx, got))

	got, err = st.GetTask(ctx, "task_1")
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusDone, got.Status)

	require.NoError(t, st.DeleteTask(ctx, "task_1"))
	got, err = st.GetTask(ctx, "task_1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_ListTasksPagination(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		ts := base.Add(time.Duration(i) * time.Second)
		require.NoError(t, st.CreateTask(ctx, &model.Task{
			ID:        "task_" + string(rune('a'+i)),
			Title:     "t",
			Status:    model.TaskStatusTodo,
			Priority:  model.PriorityMedium,
			OwnerID:   "u1",
			CreatedAt: ts,
			UpdatedAt: ts,
		}))
	}

	tasks, total, err := st.ListTasks(ctx, model.Page{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, tasks, 2)
	// Newest first.
	assert.Equal(t, "task_e", tasks[0].ID)

	tasks, _, err = st.ListTasks(ctx, model.Page{Page: 3, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestSQLiteStore_AuditTrail(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	entries := []*model.AuditLog{
		{ID: "a1", UserID: "u1", UserEmail: "a@b.com", Action: model.ActionLogin, ResourceType: "session", Status: model.AuditStatusSuccess, CreatedAt: base},
		{ID: "a2", UserID: "u1", UserEmail: "a@b.com", Action: model.ActionCreate, ResourceType: "task", ResourceID: "task_1", Status: model.AuditStatusSuccess, CreatedAt: base.Add(time.Second)},
		{ID: "a3", UserID: "u2", UserEmail: "c@d.com", Action: model.ActionLogin, ResourceType: "session", Status: model.AuditStatusFailure, CreatedAt: base.Add(2 * time.Second)},
	}
	for _, e := range entries {
		require.NoError(t, st.AppendAuditLog(ctx, e))
	}

	all, total, err := st.ListAuditLogs(ctx, "", model.Page{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, all, 3)
	assert.Equal(t, "a3", all[0].ID, "newest entry first")

	mine, total, err := st.ListAuditLogs(ctx, "u1", model.Page{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, mine, 2)
	for _, e := range mine {
		assert.Equal(t, "u1", e.UserID)
	}

	stats, err := st.AuditStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByAction[string(model.ActionLogin)])
	assert.Equal(t, 1, stats.ByAction[string(model.ActionCreate)])
	assert.Equal(t, 2, stats.ByStatus[model.AuditStatusSuccess])
	assert.Equal(t, 1, stats.ByStatus[model.AuditStatusFailure])
	require.NotNil(t, stats.LastEntry)
}

func TestSQLiteStore_AuditStatsEmpty(t *testing.T) {
	st := newTestStore(t)

	stats, err := st.AuditStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Empty(t, stats.ByAction)
	assert.Nil(t, stats.LastEntry)
}
