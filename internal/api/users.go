package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/existflow/pmdesk/internal/model"
)

// UserUpdate is the body for editing the current user's profile
type UserUpdate struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Me returns the full profile of the authenticated user
func (c *Client) Me(ctx context.Context) (*model.UserSummary, error) {
	var user model.UserSummary
	if err := c.get(ctx, "/users/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateMe edits the current user's profile and returns the updated record
func (c *Client) UpdateMe(ctx context.Context, upd UserUpdate) (*model.UserSummary, error) {
	var user model.UserSummary
	if err := c.do(ctx, http.MethodPatch, "/users/me", nil, upd, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Users lists all users
func (c *Client) Users(ctx context.Context) ([]model.UserSummary, error) {
	var users []model.UserSummary
	if err := c.get(ctx, "/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// User returns a single user by id
func (c *Client) User(ctx context.Context, id int) (*model.UserSummary, error) {
	var user model.UserSummary
	if err := c.get(ctx, fmt.Sprintf("/users/%d", id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user account
func (c *Client) DeleteUser(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil, nil)
}

// ToggleActivation flips a user's active flag and returns the updated record
func (c *Client) ToggleActivation(ctx context.Context, id int) (*model.UserSummary, error) {
	var user model.UserSummary
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/users/%d/toggle-activation", id), nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// AssignedTasks lists tasks assigned to the user
func (c *Client) AssignedTasks(ctx context.Context, userID int) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.get(ctx, fmt.Sprintf("/users/%d/assigned-tasks", userID), &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// UserTasks lists the tasks visible to the user: assigned tasks for a
// developer, everything for admins and managers
func (c *Client) UserTasks(ctx context.Context, userID int) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.get(ctx, fmt.Sprintf("/users/%d/tasks", userID), &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// UploadAvatar replaces the user's avatar image
func (c *Client) UploadAvatar(ctx context.Context, userID int, filename string, file io.Reader) (*model.UserSummary, error) {
	var user model.UserSummary
	if err := c.upload(ctx, fmt.Sprintf("/users/%d/avatar", userID), "file", filename, file, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteAvatar removes the user's avatar image
func (c *Client) DeleteAvatar(ctx context.Context, userID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d/avatar", userID), nil, nil, nil)
}
