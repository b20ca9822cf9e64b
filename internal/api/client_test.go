package api_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/pmdesk/internal/api"
	"github.com/existflow/pmdesk/internal/model"
	"github.com/existflow/pmdesk/internal/testserver"
)

func setup(t *testing.T) (*testserver.Server, *api.Client) {
	t.Helper()
	srv := testserver.New(t)
	return srv, api.New(srv.URL)
}

func login(t *testing.T, srv *testserver.Server, client *api.Client, name, role string) model.UserSummary {
	t.Helper()
	user := srv.AddUser(name, name+"@example.com", "secret", role)
	client.SetToken(srv.TokenFor(user.ID))
	return user
}

func TestLoginReturnsToken(t *testing.T) {
	srv, client := setup(t)
	srv.AddUser("Alice", "alice@example.com", "secret", model.RoleAdmin)

	token, err := client.Login(context.Background(), "alice@example.com", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Empty(t, client.Token(), "login must not install the token")
}

func TestLoginBadPassword(t *testing.T) {
	srv, client := setup(t)
	srv.AddUser("Alice", "alice@example.com", "secret", model.RoleAdmin)

	_, err := client.Login(context.Background(), "alice@example.com", "wrong")

	var authErr *api.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Incorrect username or password", authErr.Detail)
}

func TestUnauthenticatedRequestIsAuthError(t *testing.T) {
	_, client := setup(t)

	_, err := client.Me(context.Background())

	var authErr *api.AuthError
	assert.ErrorAs(t, err, &authErr)
	assert.False(t, api.IsSessionExpired(err))
}

func TestExpiredTokenSignalsForcedLogout(t *testing.T) {
	srv, client := setup(t)
	user := srv.AddUser("Alice", "alice@example.com", "secret", model.RoleAdmin)
	token := srv.TokenFor(user.ID)
	client.SetToken(token)

	fired := 0
	client.OnSessionExpired(func() { fired++ })

	srv.RevokeToken(token)
	_, err := client.Me(context.Background())

	assert.True(t, api.IsSessionExpired(err))
	assert.Equal(t, 1, fired, "listeners fire exactly once per rejected response")
}

func TestForbiddenCarriesDetail(t *testing.T) {
	srv, client := setup(t)
	login(t, srv, client, "Dev", model.RoleDeveloper)

	_, err := client.Users(context.Background())

	assert.True(t, api.IsForbidden(err))
	assert.Equal(t, "Operation not permitted", api.Detail(err, "fallback"))
}

func TestValidationError(t *testing.T) {
	srv, client := setup(t)
	login(t, srv, client, "Boss", model.RoleAdmin)

	_, err := client.CreateProject(context.Background(), model.ProjectCreate{Title: ""})

	var valErr *api.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestUnreachableServerIsNetworkError(t *testing.T) {
	srv, client := setup(t)
	srv.Close()

	_, err := client.Tasks(context.Background())
	assert.True(t, api.IsNetwork(err))
}

func TestDetailFallback(t *testing.T) {
	assert.Equal(t, "fallback", api.Detail(context.DeadlineExceeded, "fallback"))
}

func TestProjectLifecycle(t *testing.T) {
	srv, client := setup(t)
	dev := srv.AddUser("Dev", "dev@example.com", "secret", model.RoleDeveloper)
	login(t, srv, client, "Boss", model.RoleAdmin)
	ctx := context.Background()

	created, err := client.CreateProject(ctx, model.ProjectCreate{
		Title:     "Apollo",
		MemberIDs: []int{dev.ID},
	})
	require.NoError(t, err)

	task, err := client.CreateProjectTask(ctx, created.ID, model.TaskCreate{
		Title:      "Design review",
		AssigneeID: &dev.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusTodo, task.Status)
	require.NotNil(t, task.Assignee)
	assert.Equal(t, dev.ID, task.Assignee.ID)

	detail, err := client.Project(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Members, 1)
	assert.Len(t, detail.Tasks, 1)

	progress, err := client.ProjectProgress(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.TotalTasks)
	assert.Equal(t, float64(0), progress.CompletionPercent)

	updated, err := client.SetTaskStatus(ctx, task.ID, model.StatusDone)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, updated.Status)

	progress, err = client.ProjectProgress(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(100), progress.CompletionPercent)

	require.NoError(t, client.DeleteProject(ctx, created.ID))
	_, err = client.Project(ctx, created.ID)
	var statusErr *api.StatusError
	assert.ErrorAs(t, err, &statusErr)
}

func TestTaskHistoryNormalization(t *testing.T) {
	srv, client := setup(t)
	user := login(t, srv, client, "Boss", model.RoleAdmin)
	project := srv.AddProject("Apollo", user.ID)
	task := srv.AddTask(project.ID, "Design review", model.StatusTodo, user.ID)
	ctx := context.Background()

	_, err := client.SetTaskStatus(ctx, task.ID, model.StatusInProgress)
	require.NoError(t, err)

	history, err := client.TaskHistory(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "status", history[0].Field)
	assert.Equal(t, model.StatusTodo, history[0].OldValue)
	assert.Equal(t, model.StatusInProgress, history[0].NewValue)
	assert.False(t, history[0].Timestamp.IsZero())
	assert.Equal(t, "Boss", history[0].ActorName())
}

func TestProjectHistoryNormalization(t *testing.T) {
	srv, client := setup(t)
	user := login(t, srv, client, "Boss", model.RoleAdmin)
	project := srv.AddProject("Apollo", user.ID)
	ctx := context.Background()

	_, err := client.UpdateProject(ctx, project.ID, model.ProjectUpdate{Title: "Artemis"})
	require.NoError(t, err)

	history, err := client.ProjectHistory(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "title", history[0].Field)
	assert.Equal(t, "Apollo", history[0].OldValue)
	assert.Equal(t, "Artemis", history[0].NewValue)
	assert.False(t, history[0].Timestamp.IsZero())
}

func TestLogWorkRollsUpActualHours(t *testing.T) {
	srv, client := setup(t)
	user := login(t, srv, client, "Dev", model.RoleDeveloper)
	project := srv.AddProject("Apollo", user.ID)
	task := srv.AddTask(project.ID, "Design review", model.StatusInProgress, user.ID)
	ctx := context.Background()

	_, err := client.LogWork(ctx, task.ID, api.TimeLogCreate{Hours: 2, Description: "sketches"})
	require.NoError(t, err)
	_, err = client.LogWork(ctx, task.ID, api.TimeLogCreate{Hours: 1.5})
	require.NoError(t, err)

	got, err := client.Task(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ActualHours)
	assert.InDelta(t, 3.5, *got.ActualHours, 0.001)

	entries, err := client.TimeLogs(ctx, task.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestDeveloperCannotMoveOthersTask(t *testing.T) {
	srv, client := setup(t)
	other := srv.AddUser("Other", "other@example.com", "secret", model.RoleDeveloper)
	login(t, srv, client, "Dev", model.RoleDeveloper)
	project := srv.AddProject("Apollo", other.ID)
	task := srv.AddTask(project.ID, "Design review", model.StatusTodo, other.ID)

	_, err := client.SetTaskStatus(context.Background(), task.ID, model.StatusDone)
	assert.True(t, api.IsForbidden(err))
}

func TestCommentOwnership(t *testing.T) {
	srv, client := setup(t)
	author := srv.AddUser("Author", "author@example.com", "secret", model.RoleDeveloper)
	user := login(t, srv, client, "Dev", model.RoleDeveloper)
	project := srv.AddProject("Apollo", author.ID, user.ID)
	task := srv.AddTask(project.ID, "Design review", model.StatusTodo, author.ID)
	ctx := context.Background()

	authorClient := api.New(srv.URL)
	authorClient.SetToken(srv.TokenFor(author.ID))
	comment, err := authorClient.CreateComment(ctx, task.ID, "looks good")
	require.NoError(t, err)

	err = client.DeleteComment(ctx, comment.ID)
	assert.True(t, api.IsForbidden(err))

	require.NoError(t, authorClient.DeleteComment(ctx, comment.ID))
}

func TestUploadAvatar(t *testing.T) {
	srv, client := setup(t)
	user := login(t, srv, client, "Alice", model.RoleAdmin)

	updated, err := client.UploadAvatar(context.Background(), user.ID, "me.png", strings.NewReader("not a real png"))
	require.NoError(t, err)
	assert.Contains(t, updated.Avatar, "me.png")

	require.NoError(t, client.DeleteAvatar(context.Background(), user.ID))
	me, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Empty(t, me.Avatar)
}

func TestRoleShapeNormalization(t *testing.T) {
	srv, client := setup(t)
	login(t, srv, client, "Alice", model.RoleAdmin)

	me, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.True(t, me.Role.Is("Admin"), "role comparison is case-insensitive")

	roles, err := client.Roles(context.Background())
	require.NoError(t, err)
	assert.Len(t, roles, 3)
}
