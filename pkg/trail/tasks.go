package trail

import (
	"context"

	"github.com/me/trailctl/pkg/model"
)

// ListTasks fetches one page of tasks. Zero-valued options default to
// page 1 with DefaultTaskPageSize entries.
func (c *Client) ListTasks(ctx context.Context, opts model.Page) (*model.Paginated[model.Task], error) {
	var page model.Paginated[model.Task]
	if err := c.get(ctx, "list tasks", "/tasks", pageQuery(opts, DefaultTaskPageSize), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetTask fetches a single task by ID.
func (c *Client) GetTask(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	if err := c.get(ctx, "get task", "/tasks/"+id, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTask creates a task and returns the stored representation.
func (c *Client) CreateTask(ctx context.Context, req model.TaskCreate) (*model.Task, error) {
	var task model.Task
	if err := c.post(ctx, "create task", "/tasks", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask applies a partial update and returns the new state.
func (c *Client) UpdateTask(ctx context.Context, id string, req model.TaskUpdate) (*model.Task, error) {
	var task model.Task
	if err := c.put(ctx, "update task", "/tasks/"+id, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.delete(ctx, "delete task", "/tasks/"+id)
}
