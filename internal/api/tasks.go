package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/existflow/pmdesk/internal/model"
)

type statusRequest struct {
	Status string `json:"status"`
}

// Tasks lists all tasks
func (c *Client) Tasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.get(ctx, "/tasks", &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask creates a task and returns the created record
func (c *Client) CreateTask(ctx context.Context, req model.TaskCreate) (*model.Task, error) {
	var task model.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", nil, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Task returns a single task with its project embedded
func (c *Client) Task(ctx context.Context, id int) (*model.Task, error) {
	var task model.Task
	if err := c.get(ctx, fmt.Sprintf("/tasks/%d", id), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask edits a task and returns the updated record
func (c *Client) UpdateTask(ctx context.Context, id int, upd model.TaskUpdate) (*model.Task, error) {
	var task model.Task
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/tasks/%d", id), nil, upd, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task
func (c *Client) DeleteTask(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), nil, nil, nil)
}

// SetTaskStatus changes only the task's status and returns the updated
// record for in-place patching
func (c *Client) SetTaskStatus(ctx context.Context, id int, status string) (*model.Task, error) {
	var task model.Task
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/tasks/%d/status", id), nil, statusRequest{Status: status}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// TaskHistory returns the task's audit trail
func (c *Client) TaskHistory(ctx context.Context, id int) ([]model.HistoryRecord, error) {
	var history []model.HistoryRecord
	if err := c.get(ctx, fmt.Sprintf("/tasks/%d/history", id), &history); err != nil {
		return nil, err
	}
	return history, nil
}
