package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/me/trailctl/pkg/model"
	"github.com/me/trailctl/pkg/trail"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r, trail.DefaultTaskPageSize)
	tasks, total, err := s.store.ListTasks(r.Context(), page)
	if err != nil {
		s.logger.Error("list tasks failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error", "could not list tasks")
		return
	}
	respondPage(w, tasks, total, page)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req model.TaskCreate
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" {
		respondValidation(w, []fieldErr{{Field: "title", Message: "must not be empty", Type: "value_error"}})
		return
	}
	if req.Priority == "" {
		req.Priority = model.PriorityMedium
	}

	ctx := r.Context()
	acct := accountFromContext(ctx)
	now := time.Now().UTC()
	task := &model.Task{
		ID:          "task_" + uuid.New().String()[:8],
		Title:       req.Title,
		Description: req.Description,
		Status:      model.TaskStatusTodo,
		Priority:    req.Priority,
		OwnerID:     acct.User.ID,
		AssigneeID:  req.AssigneeID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		s.logger.Error("create task failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error", "could not create task")
		return
	}
	s.audit(ctx, &acct.User, model.ActionCreate, "task", task.ID, model.AuditStatusSuccess, "task created")
	respondJSON(w, http.StatusCreated, task)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, ok := s.lookupTask(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	task, ok := s.lookupTask(w, r)
	if !ok {
		return
	}
	var req model.TaskUpdate
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Title != nil {
		if *req.Title == "" {
			respondValidation(w, []fieldErr{{Field: "title", Message: "must not be empty", Type: "value_error"}})
			return
		}
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.AssigneeID != nil {
		task.AssigneeID = *req.AssigneeID
	}
	task.UpdatedAt = time.Now().UTC()

	ctx := r.Context()
	if err := s.store.UpdateTask(ctx, task); err != nil {
		s.logger.Error("update task failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error", "could not update task")
		return
	}
	acct := accountFromContext(ctx)
	s.audit(ctx, &acct.User, model.ActionUpdate, "task", task.ID, model.AuditStatusSuccess, "task updated")
	respondJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	task, ok := s.lookupTask(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	if err := s.store.DeleteTask(ctx, task.ID); err != nil {
		s.logger.Error("delete task failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error", "could not delete task")
		return
	}
	acct := accountFromContext(ctx)
	s.audit(ctx, &acct.User, model.ActionDelete, "task", task.ID, model.AuditStatusSuccess, "task deleted")
	w.WriteHeader(http.StatusNoContent)
}

// lookupTask fetches the task named by the URL, writing a 404 when it
// does not exist.
func (s *Server) lookupTask(w http.ResponseWriter, r *http.Request) (*model.Task, bool) {
	id := chi.URLParam(r, "id")
	task, err := s.store.GetTask(r.Context(), id)
	if err != nil {
		s.logger.Error("get task failed", "error", err, "task_id", id)
		respondError(w, http.StatusInternalServerError, "Internal Server Error", "could not load task")
		return nil, false
	}
	if task == nil {
		respondError(w, http.StatusNotFound, "Not Found", "task "+id+" not found")
		return nil, false
	}
	return task, true
}

// audit appends an audit trail entry, logging rather than failing the
// request when the write does not succeed.
func (s *Server) audit(ctx context.Context, user *model.User, action model.AuditAction, resourceType, resourceID, status, detail string) {
	entry := &model.AuditLog{
		ID:           "audit_" + uuid.New().String()[:8],
		UserID:       user.ID,
		UserEmail:    user.Email,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Status:       status,
		Detail:       detail,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.AppendAuditLog(ctx, entry); err != nil {
		s.logger.Error("append audit log failed", "error", err, "action", action)
	}
}
