package view

import (
	"context"

	"github.com/existflow/pmdesk/internal/api"
	"github.com/existflow/pmdesk/internal/model"
)

// TaskDetailView is the state for one task's detail screen: the task
// record, its comments, logged work, the audit trail, and the members of
// the owning project.
type TaskDetailView struct {
	viewState

	client *api.Client

	taskID   int
	task     *model.Task
	comments []model.Comment
	timeLogs []model.TimeLogEntry
	history  []model.HistoryRecord
	members  []model.UserSummary
}

// NewTaskDetailView creates an idle detail view for the given task
func NewTaskDetailView(client *api.Client, taskID int) *TaskDetailView {
	return &TaskDetailView{client: client, taskID: taskID}
}

// Task returns the loaded task, or nil before the first load
func (v *TaskDetailView) Task() *model.Task {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.task
}

// Comments returns the task's comments
func (v *TaskDetailView) Comments() []model.Comment {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.comments
}

// TimeLogs returns the task's work log
func (v *TaskDetailView) TimeLogs() []model.TimeLogEntry {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.timeLogs
}

// History returns the task's audit trail
func (v *TaskDetailView) History() []model.HistoryRecord {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.history
}

// Members returns the members of the task's project
func (v *TaskDetailView) Members() []model.UserSummary {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.members
}

// Load fetches the task and its satellite collections
func (v *TaskDetailView) Load(ctx context.Context) error {
	gen := v.begin(Loading)

	task, err := v.client.Task(ctx, v.taskID)
	if err != nil {
		return v.fail(gen, err, "Failed to load task")
	}
	comments, _ := v.client.TaskComments(ctx, v.taskID)
	entries, _ := v.client.TimeLogs(ctx, v.taskID)
	history, _ := v.client.TaskHistory(ctx, v.taskID)
	members, _ := v.client.ProjectMembers(ctx, task.ProjectID)

	v.commit(gen, func() {
		v.task = task
		if comments != nil {
			v.comments = comments
		}
		if entries != nil {
			v.timeLogs = entries
		}
		if history != nil {
			v.history = history
		}
		if members != nil {
			v.members = members
		}
	})
	return nil
}

// Update edits the task and splices the response in place
func (v *TaskDetailView) Update(ctx context.Context, upd model.TaskUpdate) error {
	gen := v.begin(Mutating)
	task, err := v.client.UpdateTask(ctx, v.taskID, upd)
	if err != nil {
		return v.fail(gen, err, "Failed to update task")
	}
	v.commit(gen, func() { v.task = task })
	return nil
}

// SetStatus changes the task's status and splices the response in place.
// A project screen showing this task's project must refetch its own
// completion aggregate; this view does not own it.
func (v *TaskDetailView) SetStatus(ctx context.Context, status string) error {
	gen := v.begin(Mutating)
	task, err := v.client.SetTaskStatus(ctx, v.taskID, status)
	if err != nil {
		return v.fail(gen, err, "Failed to update status")
	}
	v.commit(gen, func() { v.task = task })
	return nil
}

// AddComment posts a comment, then refetches the comment list
func (v *TaskDetailView) AddComment(ctx context.Context, content string) error {
	if content == "" {
		v.mu.Lock()
		v.errMsg = "Comment cannot be empty"
		v.mu.Unlock()
		return nil
	}
	gen := v.begin(Mutating)
	if _, err := v.client.CreateComment(ctx, v.taskID, content); err != nil {
		return v.fail(gen, err, "Failed to post comment")
	}
	return v.reloadComments(ctx, gen)
}

// DeleteComment removes a comment, then refetches the comment list.
// Callers hide the delete control for comments the current user does not
// own; the server enforces ownership regardless.
func (v *TaskDetailView) DeleteComment(ctx context.Context, commentID int) error {
	gen := v.begin(Mutating)
	if err := v.client.DeleteComment(ctx, commentID); err != nil {
		return v.fail(gen, err, "Failed to delete comment")
	}
	return v.reloadComments(ctx, gen)
}

func (v *TaskDetailView) reloadComments(ctx context.Context, gen int) error {
	comments, err := v.client.TaskComments(ctx, v.taskID)
	if err != nil {
		return v.fail(gen, err, "Failed to load comments")
	}
	v.commit(gen, func() { v.comments = comments })
	return nil
}

// LogWork appends a time-log entry, then refetches both the entries and
// the task: actual hours is a server-side rollup, never summed locally.
func (v *TaskDetailView) LogWork(ctx context.Context, req api.TimeLogCreate) error {
	if req.Hours <= 0 {
		v.mu.Lock()
		v.errMsg = "Hours must be positive"
		v.mu.Unlock()
		return nil
	}
	gen := v.begin(Mutating)
	if _, err := v.client.LogWork(ctx, v.taskID, req); err != nil {
		return v.fail(gen, err, "Failed to log work")
	}

	entries, err := v.client.TimeLogs(ctx, v.taskID)
	if err != nil {
		return v.fail(gen, err, "Failed to load time logs")
	}
	task, err := v.client.Task(ctx, v.taskID)
	if err != nil {
		return v.fail(gen, err, "Failed to load task")
	}
	v.commit(gen, func() {
		v.timeLogs = entries
		v.task = task
	})
	return nil
}
