package view

import (
	"context"
	"strings"

	"github.com/existflow/pmdesk/internal/api"
	"github.com/existflow/pmdesk/internal/model"
)

// TasksView is the state for the task list screen. Create and delete
// force a full refetch; edit and status change patch the returned record
// in place.
type TasksView struct {
	viewState

	client *api.Client
	list   *List[model.Task]

	statusFilter string
	textFilter   string
	sortKey      string
	ascending    bool
}

// NewTasksView creates an idle task list view
func NewTasksView(client *api.Client, pageSize int) *TasksView {
	v := &TasksView{
		client:    client,
		list:      NewList[model.Task](pageSize),
		sortKey:   SortByCreated,
		ascending: true,
	}
	v.list.SetSort(TaskLess(v.sortKey, v.ascending))
	return v
}

// Visible returns the current page of tasks
func (v *TasksView) Visible() []model.Task {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.list.Visible()
}

// All returns the filtered, sorted tasks without pagination
func (v *TasksView) All() []model.Task {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.list.All()
}

// Page returns the current page number
func (v *TasksView) Page() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.list.Page()
}

// PageCount returns the number of pages
func (v *TasksView) PageCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.list.PageCount()
}

// NextPage advances one page
func (v *TasksView) NextPage() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.list.NextPage()
}

// PrevPage goes back one page
func (v *TasksView) PrevPage() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.list.PrevPage()
}

// Len returns the filtered task count
func (v *TasksView) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.list.Len()
}

// Load fetches the task list. The server already scopes the list to the
// caller's role, so no client-side role filtering happens here.
func (v *TasksView) Load(ctx context.Context) error {
	gen := v.begin(Loading)
	tasks, err := v.client.Tasks(ctx)
	if err != nil {
		return v.fail(gen, err, "Failed to load tasks")
	}
	v.commit(gen, func() { v.list.SetItems(tasks) })
	return nil
}

// FilterStatus keeps only tasks with the given status; empty clears the
// status filter. Changing a filter resets to page 1.
func (v *TasksView) FilterStatus(status string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.statusFilter = status
	v.applyFilter()
}

// FilterText keeps tasks whose title contains q, case-insensitively
func (v *TasksView) FilterText(q string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.textFilter = strings.ToLower(q)
	v.applyFilter()
}

func (v *TasksView) applyFilter() {
	status, text := v.statusFilter, v.textFilter
	if status == "" && text == "" {
		v.list.SetFilter(nil)
		return
	}
	v.list.SetFilter(func(t model.Task) bool {
		if status != "" && t.Status != status {
			return false
		}
		if text != "" && !strings.Contains(strings.ToLower(t.Title), text) {
			return false
		}
		return true
	})
}

// SortBy installs a sort key and direction
func (v *TasksView) SortBy(key string, ascending bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sortKey = key
	v.ascending = ascending
	v.list.SetSort(TaskLess(key, ascending))
}

// Create adds a task and refetches the whole list; the new row's position
// depends on server-side ordering and derived fields
func (v *TasksView) Create(ctx context.Context, req model.TaskCreate) error {
	gen := v.begin(Mutating)
	if _, err := v.client.CreateTask(ctx, req); err != nil {
		return v.fail(gen, err, "Failed to create task")
	}
	return v.Load(ctx)
}

// Delete removes a task and refetches the whole list
func (v *TasksView) Delete(ctx context.Context, id int) error {
	gen := v.begin(Mutating)
	if err := v.client.DeleteTask(ctx, id); err != nil {
		return v.fail(gen, err, "Failed to delete task")
	}
	return v.Load(ctx)
}

// Update edits a task and splices the server's returned record into the
// collection without a refetch
func (v *TasksView) Update(ctx context.Context, id int, upd model.TaskUpdate) error {
	gen := v.begin(Mutating)
	task, err := v.client.UpdateTask(ctx, id, upd)
	if err != nil {
		return v.fail(gen, err, "Failed to update task")
	}
	v.patch(gen, *task)
	return nil
}

// SetStatus changes a task's status and splices the returned record in
// place. Any view showing an aggregate derived from this task (a project's
// completion percent) must refetch that aggregate itself.
func (v *TasksView) SetStatus(ctx context.Context, id int, status string) error {
	gen := v.begin(Mutating)
	task, err := v.client.SetTaskStatus(ctx, id, status)
	if err != nil {
		return v.fail(gen, err, "Failed to update status")
	}
	v.patch(gen, *task)
	return nil
}

func (v *TasksView) patch(gen int, task model.Task) {
	v.commit(gen, func() {
		v.list.Patch(func(t model.Task) bool { return t.ID == task.ID }, task)
	})
}
