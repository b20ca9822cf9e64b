package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/existflow/pmdesk/internal/model"
)

type commentRequest struct {
	Content string `json:"content"`
	TaskID  int    `json:"task_id"`
}

// TimeLogCreate is the body for logging work against a task
type TimeLogCreate struct {
	Hours       float64   `json:"hours"`
	Description string    `json:"description,omitempty"`
	LogDate     time.Time `json:"log_date"`
}

// TaskComments lists comments on a task, oldest first
func (c *Client) TaskComments(ctx context.Context, taskID int) ([]model.Comment, error) {
	var comments []model.Comment
	if err := c.get(ctx, fmt.Sprintf("/comments/task/%d", taskID), &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CreateComment posts a comment and returns the created record
func (c *Client) CreateComment(ctx context.Context, taskID int, content string) (*model.Comment, error) {
	var comment model.Comment
	if err := c.do(ctx, http.MethodPost, "/comments", nil, commentRequest{Content: content, TaskID: taskID}, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes a comment. The server enforces that only the author
// may do this; the client hides the control for everyone else.
func (c *Client) DeleteComment(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/comments/%d", id), nil, nil, nil)
}

// TimeLogs lists work logged against a task
func (c *Client) TimeLogs(ctx context.Context, taskID int) ([]model.TimeLogEntry, error) {
	var entries []model.TimeLogEntry
	if err := c.get(ctx, fmt.Sprintf("/timelogs/tasks/%d", taskID), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// LogWork appends a time-log entry to a task. This is the only way
// actual_hours ever changes; the client never writes that field directly.
func (c *Client) LogWork(ctx context.Context, taskID int, req TimeLogCreate) (*model.TimeLogEntry, error) {
	var entry model.TimeLogEntry
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/timelogs/tasks/%d", taskID), nil, req, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
