package view_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/pmdesk/internal/api"
	"github.com/existflow/pmdesk/internal/model"
	"github.com/existflow/pmdesk/internal/testserver"
	"github.com/existflow/pmdesk/internal/view"
)

func setup(t *testing.T, role string) (*testserver.Server, *api.Client, model.UserSummary) {
	t.Helper()
	srv := testserver.New(t)
	user := srv.AddUser("Alice", "alice@example.com", "secret", role)
	client := api.New(srv.URL)
	client.SetToken(srv.TokenFor(user.ID))
	return srv, client, user
}

func TestTasksLoad(t *testing.T) {
	srv, client, user := setup(t, model.RoleAdmin)
	project := srv.AddProject("Apollo", user.ID)
	srv.AddTask(project.ID, "one", model.StatusTodo, user.ID)
	srv.AddTask(project.ID, "two", model.StatusDone, user.ID)

	v := view.NewTasksView(client, 5)
	assert.Equal(t, view.Idle, v.Phase())

	require.NoError(t, v.Load(context.Background()))
	assert.Equal(t, view.Loaded, v.Phase())
	assert.Equal(t, 2, v.Len())
}

func TestCreateRefetchesList(t *testing.T) {
	srv, client, user := setup(t, model.RoleAdmin)
	project := srv.AddProject("Apollo", user.ID)
	ctx := context.Background()

	v := view.NewTasksView(client, 5)
	require.NoError(t, v.Load(ctx))

	// a row added out of band is picked up because create refetches
	srv.AddTask(project.ID, "out of band", model.StatusTodo, user.ID)
	require.NoError(t, v.Create(ctx, model.TaskCreate{Title: "mine", ProjectID: &project.ID}))

	assert.Equal(t, view.Loaded, v.Phase())
	assert.Equal(t, 2, v.Len())
}

func TestStatusChangePatchesInPlace(t *testing.T) {
	srv, client, user := setup(t, model.RoleAdmin)
	project := srv.AddProject("Apollo", user.ID)
	task := srv.AddTask(project.ID, "mine", model.StatusTodo, user.ID)
	ctx := context.Background()

	v := view.NewTasksView(client, 5)
	require.NoError(t, v.Load(ctx))

	// a row added out of band stays invisible: the patch path does not
	// refetch the collection
	srv.AddTask(project.ID, "out of band", model.StatusTodo, user.ID)
	require.NoError(t, v.SetStatus(ctx, task.ID, model.StatusDone))

	assert.Equal(t, 1, v.Len())
	assert.Equal(t, model.StatusDone, v.All()[0].Status)
}

// A task going todo -> done via the patch path: the overdue badge clears
// immediately, but a project's completion percent stays stale until that
// view's own progress refetch runs.
func TestDonePatchClearsOverdueWithoutMovingAggregates(t *testing.T) {
	srv, client, user := setup(t, model.RoleAdmin)
	project := srv.AddProject("Apollo", user.ID)
	task := srv.AddTask(project.ID, "late", model.StatusTodo, user.ID)
	srv.SetDueDate(task.ID, time.Now().Add(-24*time.Hour))
	ctx := context.Background()

	tasks := view.NewTasksView(client, 5)
	require.NoError(t, tasks.Load(ctx))
	require.True(t, tasks.All()[0].IsOverdue())

	projects := view.NewProjectsView(client, 5)
	require.NoError(t, projects.Load(ctx))
	before, ok := projects.Progress(project.ID)
	require.True(t, ok)
	assert.Equal(t, float64(0), before.CompletionPercent)

	require.NoError(t, tasks.SetStatus(ctx, task.ID, model.StatusDone))
	assert.False(t, tasks.All()[0].IsOverdue(), "overdue badge clears immediately")

	stale, _ := projects.Progress(project.ID)
	assert.Equal(t, float64(0), stale.CompletionPercent, "aggregate is stale until refetched")

	projects.RefreshProgress(ctx, project.ID)
	fresh, _ := projects.Progress(project.ID)
	assert.Equal(t, float64(100), fresh.CompletionPercent)
}

// A load that was superseded by a newer one must not overwrite the newer
// result when it finally comes back, whether it failed or succeeded.
func TestSupersededLoadDoesNotClobberFreshState(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			close(started)
			<-release
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{"detail": "upstream unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": 1, "title": "fresh", "status": "todo", "project_id": 1}]`))
	}))
	defer srv.Close()

	v := view.NewTasksView(api.New(srv.URL), 5)

	firstDone := make(chan error, 1)
	go func() { firstDone <- v.Load(context.Background()) }()
	<-started

	require.NoError(t, v.Load(context.Background()))
	require.Equal(t, view.Loaded, v.Phase())

	close(release)
	require.Error(t, <-firstDone)

	assert.Equal(t, view.Loaded, v.Phase(), "a stale failure must not flip the view to errored")
	assert.Empty(t, v.Err())
	require.Equal(t, 1, v.Len())
	assert.Equal(t, "fresh", v.All()[0].Title)
}

// Readers on the event-loop side touch the view while loads run on other
// goroutines; run both at once so the race detector can check the locking.
func TestConcurrentReadsDuringLoad(t *testing.T) {
	srv, client, user := setup(t, model.RoleAdmin)
	project := srv.AddProject("Apollo", user.ID)
	srv.AddTask(project.ID, "one", model.StatusTodo, user.ID)

	v := view.NewTasksView(client, 5)
	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				v.Phase()
				v.Err()
				v.Visible()
				v.Len()
			}
		}()
	}
	for i := 0; i < 20; i++ {
		require.NoError(t, v.Load(context.Background()))
	}
	close(done)
	wg.Wait()

	assert.Equal(t, view.Loaded, v.Phase())
	assert.Equal(t, 1, v.Len())
}

func TestTasksErrorCarriesDetail(t *testing.T) {
	srv, client, user := setup(t, model.RoleDeveloper)
	other := srv.AddUser("Other", "other@example.com", "secret", model.RoleDeveloper)
	project := srv.AddProject("Apollo", user.ID, other.ID)
	task := srv.AddTask(project.ID, "theirs", model.StatusTodo, other.ID)
	ctx := context.Background()

	v := view.NewTasksView(client, 5)
	require.NoError(t, v.Load(ctx))

	err := v.SetStatus(ctx, task.ID, model.StatusDone)
	require.Error(t, err)
	assert.Equal(t, view.Errored, v.Phase())
	assert.Equal(t, "Not your task", v.Err())
}

func TestProjectsLoadFetchesProgress(t *testing.T) {
	srv, client, user := setup(t, model.RoleAdmin)
	a := srv.AddProject("Apollo", user.ID)
	b := srv.AddProject("Borealis", user.ID)
	srv.AddTask(a.ID, "done", model.StatusDone, user.ID)
	srv.AddTask(a.ID, "todo", model.StatusTodo, user.ID)

	v := view.NewProjectsView(client, 5)
	require.NoError(t, v.Load(context.Background()))

	pa, ok := v.Progress(a.ID)
	require.True(t, ok)
	assert.Equal(t, float64(50), pa.CompletionPercent)

	pb, ok := v.Progress(b.ID)
	require.True(t, ok)
	assert.Equal(t, 0, pb.TotalTasks)
}

func TestArchivedProjectsHiddenByDefault(t *testing.T) {
	srv, client, user := setup(t, model.RoleAdmin)
	srv.AddProject("Active", user.ID)
	archived := srv.AddProject("Old", user.ID)
	ctx := context.Background()

	v := view.NewProjectsView(client, 5)
	require.NoError(t, v.Archive(ctx, archived.ID, true))

	assert.Equal(t, 1, v.Len())
	v.ShowArchived(true)
	assert.Equal(t, 2, v.Len())
}

func TestRemoveMemberKeepsTaskAssignee(t *testing.T) {
	srv, client, user := setup(t, model.RoleAdmin)
	dev := srv.AddUser("Dev", "dev@example.com", "secret", model.RoleDeveloper)
	project := srv.AddProject("Apollo", user.ID, dev.ID)
	srv.AddTask(project.ID, "theirs", model.StatusTodo, dev.ID)
	ctx := context.Background()

	v := view.NewProjectDetailView(client, project.ID)
	require.NoError(t, v.Load(ctx))
	require.Len(t, v.Detail().Members, 2)

	require.NoError(t, v.RemoveMembers(ctx, []int{dev.ID}))

	d := v.Detail()
	assert.Len(t, d.Members, 1)
	require.Len(t, d.Tasks, 1)
	require.NotNil(t, d.Tasks[0].Assignee, "removal is membership-only, not reassignment")
	assert.Equal(t, dev.ID, d.Tasks[0].Assignee.ID)
}

func TestProjectDetailStatusChangeRefreshesProgress(t *testing.T) {
	srv, client, user := setup(t, model.RoleAdmin)
	project := srv.AddProject("Apollo", user.ID)
	task := srv.AddTask(project.ID, "mine", model.StatusTodo, user.ID)
	ctx := context.Background()

	v := view.NewProjectDetailView(client, project.ID)
	require.NoError(t, v.Load(ctx))
	require.NotNil(t, v.Progress())
	assert.Equal(t, float64(0), v.Progress().CompletionPercent)

	require.NoError(t, v.SetTaskStatus(ctx, task.ID, model.StatusDone))

	assert.Equal(t, model.StatusDone, v.Detail().Tasks[0].Status)
	assert.Equal(t, float64(100), v.Progress().CompletionPercent)
}

func TestTaskDetailComments(t *testing.T) {
	srv, client, user := setup(t, model.RoleAdmin)
	project := srv.AddProject("Apollo", user.ID)
	task := srv.AddTask(project.ID, "mine", model.StatusTodo, user.ID)
	ctx := context.Background()

	v := view.NewTaskDetailView(client, task.ID)
	require.NoError(t, v.Load(ctx))
	assert.Empty(t, v.Comments())
	require.Len(t, v.Members(), 1)
	assert.Equal(t, user.ID, v.Members()[0].ID)

	require.NoError(t, v.AddComment(ctx, "first"))
	comments := v.Comments()
	require.Len(t, comments, 1)
	assert.True(t, comments[0].DeletableBy(user.ID))

	require.NoError(t, v.DeleteComment(ctx, comments[0].ID))
	assert.Empty(t, v.Comments())
}

func TestTaskDetailEmptyCommentRejectedLocally(t *testing.T) {
	srv, client, user := setup(t, model.RoleAdmin)
	project := srv.AddProject("Apollo", user.ID)
	task := srv.AddTask(project.ID, "mine", model.StatusTodo, user.ID)
	ctx := context.Background()

	v := view.NewTaskDetailView(client, task.ID)
	require.NoError(t, v.Load(ctx))

	require.NoError(t, v.AddComment(ctx, ""))
	assert.Equal(t, "Comment cannot be empty", v.Err())
	assert.Empty(t, v.Comments())
}

func TestTaskDetailLogWorkRefetchesActualHours(t *testing.T) {
	srv, client, user := setup(t, model.RoleAdmin)
	project := srv.AddProject("Apollo", user.ID)
	task := srv.AddTask(project.ID, "mine", model.StatusInProgress, user.ID)
	ctx := context.Background()

	v := view.NewTaskDetailView(client, task.ID)
	require.NoError(t, v.Load(ctx))
	assert.Nil(t, v.Task().ActualHours)

	require.NoError(t, v.LogWork(ctx, api.TimeLogCreate{Hours: 2.5, Description: "review"}))

	require.Len(t, v.TimeLogs(), 1)
	require.NotNil(t, v.Task().ActualHours)
	assert.InDelta(t, 2.5, *v.Task().ActualHours, 0.001)
}

func TestUsersToggleActivationPatches(t *testing.T) {
	srv, client, _ := setup(t, model.RoleAdmin)
	dev := srv.AddUser("Dev", "dev@example.com", "secret", model.RoleDeveloper)
	ctx := context.Background()

	v := view.NewUsersView(client, 10)
	require.NoError(t, v.Load(ctx))
	require.NoError(t, v.ToggleActivation(ctx, dev.ID))

	for _, u := range v.Visible() {
		if u.ID == dev.ID {
			assert.False(t, u.IsActive)
		}
	}
}

func TestUsersForbiddenForDeveloper(t *testing.T) {
	_, client, _ := setup(t, model.RoleDeveloper)

	v := view.NewUsersView(client, 10)
	err := v.Load(context.Background())

	assert.True(t, api.IsForbidden(err))
	assert.Equal(t, view.Errored, v.Phase())
}

func TestDashboardSummaryForManager(t *testing.T) {
	srv, client, user := setup(t, model.RoleManager)
	project := srv.AddProject("Apollo", user.ID)
	srv.AddTask(project.ID, "done", model.StatusDone, user.ID)

	v := view.NewDashboardView(client)
	require.NoError(t, v.Load(context.Background(), user.ID))

	assert.False(t, v.Restricted())
	require.NotNil(t, v.Summary())
	assert.Equal(t, 1, v.Summary().CompletedTasks)
}

func TestDashboardRestrictedFallbackForDeveloper(t *testing.T) {
	srv, client, user := setup(t, model.RoleDeveloper)
	project := srv.AddProject("Apollo", user.ID)
	task := srv.AddTask(project.ID, "mine", model.StatusTodo, user.ID)
	srv.SetDueDate(task.ID, time.Now().Add(-time.Hour))

	v := view.NewDashboardView(client)
	require.NoError(t, v.Load(context.Background(), user.ID))

	assert.True(t, v.Restricted(), "403 becomes the restricted view, not an error")
	assert.Equal(t, view.Loaded, v.Phase())
	assert.Len(t, v.MyTasks(), 1)
	assert.Equal(t, 1, v.OverdueCount())
}
