package view

import (
	"context"

	"github.com/existflow/pmdesk/internal/api"
	"github.com/existflow/pmdesk/internal/model"
)

// ProjectDetailView is the state for one project's detail screen: the
// project record, its members, its tasks, the completion aggregate, and
// the audit trail.
type ProjectDetailView struct {
	viewState

	client *api.Client

	projectID int
	detail    *model.ProjectDetail
	progress  *model.ProjectProgress
	history   []model.HistoryRecord
}

// NewProjectDetailView creates an idle detail view for the given project
func NewProjectDetailView(client *api.Client, projectID int) *ProjectDetailView {
	return &ProjectDetailView{client: client, projectID: projectID}
}

// Detail returns the loaded project detail, or nil before the first load.
// The returned record is never mutated in place; mutations swap in a
// fresh copy.
func (v *ProjectDetailView) Detail() *model.ProjectDetail {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.detail
}

// Progress returns the completion aggregate, or nil when unavailable
func (v *ProjectDetailView) Progress() *model.ProjectProgress {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.progress
}

// History returns the project's audit trail
func (v *ProjectDetailView) History() []model.HistoryRecord {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.history
}

// Load fetches the detail, the progress aggregate, and the history.
// The detail fetch gates the other two; they depend on the project
// existing.
func (v *ProjectDetailView) Load(ctx context.Context) error {
	gen := v.begin(Loading)

	detail, err := v.client.Project(ctx, v.projectID)
	if err != nil {
		return v.fail(gen, err, "Failed to load project")
	}
	progress, _ := v.client.ProjectProgress(ctx, v.projectID)
	history, _ := v.client.ProjectHistory(ctx, v.projectID)

	v.commit(gen, func() {
		v.detail = detail
		if progress != nil {
			v.progress = progress
		}
		if history != nil {
			v.history = history
		}
	})
	return nil
}

// RefreshProgress refetches only the completion aggregate. Called after a
// task mutation that could move the percentage; the percentage is never
// recomputed locally from the task list.
func (v *ProjectDetailView) RefreshProgress(ctx context.Context) error {
	gen := v.snapshot()
	progress, err := v.client.ProjectProgress(ctx, v.projectID)
	if err != nil {
		return err
	}
	v.commit(gen, func() { v.progress = progress })
	return nil
}

// Update edits the project record and splices the response in place
func (v *ProjectDetailView) Update(ctx context.Context, upd model.ProjectUpdate) error {
	gen := v.begin(Mutating)
	project, err := v.client.UpdateProject(ctx, v.projectID, upd)
	if err != nil {
		return v.fail(gen, err, "Failed to update project")
	}
	v.commit(gen, func() {
		if v.detail != nil {
			next := *v.detail
			next.Project = *project
			v.detail = &next
		}
	})
	return nil
}

// AddMembers adds users to the project and refetches the detail; the
// member list and per-member task visibility both change server-side
func (v *ProjectDetailView) AddMembers(ctx context.Context, userIDs []int) error {
	gen := v.begin(Mutating)
	if err := v.client.AddMembers(ctx, v.projectID, userIDs); err != nil {
		return v.fail(gen, err, "Failed to add members")
	}
	return v.Load(ctx)
}

// RemoveMembers removes users from the project and refetches. Removal is
// membership-only: tasks assigned to a removed member keep their assignee.
func (v *ProjectDetailView) RemoveMembers(ctx context.Context, userIDs []int) error {
	gen := v.begin(Mutating)
	if err := v.client.RemoveMembers(ctx, v.projectID, userIDs); err != nil {
		return v.fail(gen, err, "Failed to remove members")
	}
	return v.Load(ctx)
}

// CreateTask adds a task to the project, then refetches the detail and its
// aggregate
func (v *ProjectDetailView) CreateTask(ctx context.Context, req model.TaskCreate) error {
	gen := v.begin(Mutating)
	if _, err := v.client.CreateProjectTask(ctx, v.projectID, req); err != nil {
		return v.fail(gen, err, "Failed to create task")
	}
	return v.Load(ctx)
}

// DeleteTask removes a task, then refetches the detail and its aggregate
func (v *ProjectDetailView) DeleteTask(ctx context.Context, taskID int) error {
	gen := v.begin(Mutating)
	if err := v.client.DeleteTask(ctx, taskID); err != nil {
		return v.fail(gen, err, "Failed to delete task")
	}
	return v.Load(ctx)
}

// SetTaskStatus changes one task's status. The returned record is spliced
// into the task list in place; the completion aggregate is refetched
// separately because the server owns that computation.
func (v *ProjectDetailView) SetTaskStatus(ctx context.Context, taskID int, status string) error {
	gen := v.begin(Mutating)
	task, err := v.client.SetTaskStatus(ctx, taskID, status)
	if err != nil {
		return v.fail(gen, err, "Failed to update status")
	}

	v.commit(gen, func() {
		if v.detail == nil {
			return
		}
		next := *v.detail
		next.Tasks = append([]model.Task(nil), v.detail.Tasks...)
		for i := range next.Tasks {
			if next.Tasks[i].ID == task.ID {
				next.Tasks[i] = *task
				break
			}
		}
		v.detail = &next
	})

	// follow-up issued only after the mutation response, never
	// concurrently with it
	return v.RefreshProgress(ctx)
}
