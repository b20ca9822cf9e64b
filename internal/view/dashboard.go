package view

import (
	"context"

	"github.com/existflow/pmdesk/internal/api"
	"github.com/existflow/pmdesk/internal/model"
)

// DashboardView is the state for the landing screen. Admins and managers
// see the organization summary; for developers the summary endpoint
// returns a 403, and the view falls back to a restricted mode showing
// just the user's own assigned tasks.
type DashboardView struct {
	viewState

	client *api.Client

	summary    *model.Summary
	restricted bool
	myTasks    []model.Task
}

// NewDashboardView creates an idle dashboard view
func NewDashboardView(client *api.Client) *DashboardView {
	return &DashboardView{client: client}
}

// Summary returns the organization summary, or nil in restricted mode
func (v *DashboardView) Summary() *model.Summary {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.summary
}

// Restricted reports whether the server denied the summary and the view
// fell back to the user's own tasks
func (v *DashboardView) Restricted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.restricted
}

// MyTasks returns the user's own assigned tasks in restricted mode
func (v *DashboardView) MyTasks() []model.Task {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.myTasks
}

// Load fetches the summary, falling back to the restricted view when the
// server denies it. The fallback is a normal outcome, not an error state.
func (v *DashboardView) Load(ctx context.Context, userID int) error {
	gen := v.begin(Loading)

	summary, err := v.client.Summary(ctx)
	if err == nil {
		v.commit(gen, func() {
			v.summary = summary
			v.restricted = false
		})
		return nil
	}
	if !api.IsForbidden(err) {
		return v.fail(gen, err, "Failed to load dashboard")
	}

	tasks, err := v.client.AssignedTasks(ctx, userID)
	if err != nil {
		return v.fail(gen, err, "Failed to load your tasks")
	}
	v.commit(gen, func() {
		v.summary = nil
		v.restricted = true
		v.myTasks = tasks
	})
	return nil
}

// OverdueCount returns how many of the user's own tasks are overdue right
// now. Only meaningful in restricted mode.
func (v *DashboardView) OverdueCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := 0
	for i := range v.myTasks {
		if v.myTasks[i].IsOverdue() {
			n++
		}
	}
	return n
}
