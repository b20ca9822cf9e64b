package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/existflow/pmdesk/internal/model"
)

type memberIDsRequest struct {
	MemberIDs []int `json:"member_ids"`
}

// Projects lists all projects visible to the user
func (c *Client) Projects(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	if err := c.get(ctx, "/projects", &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// CreateProject creates a project and returns the created record
func (c *Client) CreateProject(ctx context.Context, req model.ProjectCreate) (*model.Project, error) {
	var project model.Project
	if err := c.do(ctx, http.MethodPost, "/projects", nil, req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// Project returns a project with its members and tasks embedded
func (c *Client) Project(ctx context.Context, id int) (*model.ProjectDetail, error) {
	var detail model.ProjectDetail
	if err := c.get(ctx, fmt.Sprintf("/projects/%d", id), &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// UpdateProject edits a project and returns the updated record
func (c *Client) UpdateProject(ctx context.Context, id int, upd model.ProjectUpdate) (*model.Project, error) {
	var project model.Project
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/projects/%d", id), nil, upd, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject removes a project
func (c *Client) DeleteProject(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/projects/%d", id), nil, nil, nil)
}

// ProjectProgress returns the server-computed completion aggregate
func (c *Client) ProjectProgress(ctx context.Context, id int) (*model.ProjectProgress, error) {
	var progress model.ProjectProgress
	if err := c.get(ctx, fmt.Sprintf("/projects/%d/progress", id), &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

// ProjectHistory returns the project's audit trail
func (c *Client) ProjectHistory(ctx context.Context, id int) ([]model.HistoryRecord, error) {
	var history []model.HistoryRecord
	if err := c.get(ctx, fmt.Sprintf("/projects/%d/history", id), &history); err != nil {
		return nil, err
	}
	return history, nil
}

// CreateProjectTask creates a task inside the project
func (c *Client) CreateProjectTask(ctx context.Context, projectID int, req model.TaskCreate) (*model.Task, error) {
	var task model.Task
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/projects/%d/tasks", projectID), nil, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// AddMembers adds users to the project's member list
func (c *Client) AddMembers(ctx context.Context, projectID int, memberIDs []int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/projects/%d/add_members", projectID), nil,
		memberIDsRequest{MemberIDs: memberIDs}, nil)
}

// RemoveMembers removes users from the project's member list. Tasks already
// assigned to a removed member keep their assignee; removal is
// membership-only, not reassignment.
func (c *Client) RemoveMembers(ctx context.Context, projectID int, memberIDs []int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/projects/%d/remove_members", projectID), nil,
		memberIDsRequest{MemberIDs: memberIDs}, nil)
}

// ArchiveProject sets or clears the project's archived flag
func (c *Client) ArchiveProject(ctx context.Context, id int, archive bool) error {
	query := url.Values{"archive": {strconv.FormatBool(archive)}}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/projects/%d/archive", id), query, nil, nil)
}

// ProjectMembers lists the project's members
func (c *Client) ProjectMembers(ctx context.Context, id int) ([]model.UserSummary, error) {
	var members []model.UserSummary
	if err := c.get(ctx, fmt.Sprintf("/projects/%d/members", id), &members); err != nil {
		return nil, err
	}
	return members, nil
}
