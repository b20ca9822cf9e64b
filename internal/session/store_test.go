package session_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/pmdesk/internal/api"
	"github.com/existflow/pmdesk/internal/db"
	"github.com/existflow/pmdesk/internal/model"
	"github.com/existflow/pmdesk/internal/session"
	"github.com/existflow/pmdesk/internal/testserver"
)

type memStorage struct {
	data map[string]string
}

func newMemStorage() *memStorage {
	return &memStorage{data: make(map[string]string)}
}

func (m *memStorage) Get(key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", db.ErrNotFound
	}
	return v, nil
}

func (m *memStorage) Put(key, value string) error {
	m.data[key] = value
	return nil
}

func (m *memStorage) Delete(key string) error {
	delete(m.data, key)
	return nil
}

func setup(t *testing.T) (*testserver.Server, *api.Client, *memStorage, *session.Store) {
	t.Helper()
	srv := testserver.New(t)
	client := api.New(srv.URL)
	storage := newMemStorage()
	return srv, client, storage, session.New(client, storage)
}

func TestLoginPersistsSession(t *testing.T) {
	srv, client, storage, store := setup(t)
	srv.AddUser("Alice", "alice@example.com", "secret", model.RoleAdmin)

	user, err := store.Login(context.Background(), "alice@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)

	assert.True(t, store.Authenticated())
	assert.NotEmpty(t, client.Token())
	assert.NotEmpty(t, storage.data[db.KeyToken])
	assert.Contains(t, storage.data[db.KeyUser], `"Alice"`)
}

func TestLoginBadCredentials(t *testing.T) {
	srv, client, _, store := setup(t)
	srv.AddUser("Alice", "alice@example.com", "secret", model.RoleAdmin)

	_, err := store.Login(context.Background(), "alice@example.com", "wrong")
	var authErr *api.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Incorrect username or password", authErr.Detail)

	assert.False(t, store.Authenticated())
	assert.Empty(t, client.Token(), "user and token stay cleared together")
}

func TestLoginPropagatesServerDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Account locked: too many attempts"}`))
	}))
	defer srv.Close()

	client := api.New(srv.URL)
	store := session.New(client, newMemStorage())

	_, err := store.Login(context.Background(), "alice@example.com", "secret")
	require.Error(t, err)
	assert.NotErrorIs(t, err, session.ErrBadCredentials)
	assert.Equal(t, "Account locked: too many attempts", api.Detail(err, ""))
}

func TestLoginFallbackWithoutServerDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := api.New(srv.URL)
	store := session.New(client, newMemStorage())

	_, err := store.Login(context.Background(), "alice@example.com", "secret")
	assert.ErrorIs(t, err, session.ErrBadCredentials)
}

func TestLogoutIsIdempotent(t *testing.T) {
	srv, client, storage, store := setup(t)
	srv.AddUser("Alice", "alice@example.com", "secret", model.RoleAdmin)

	_, err := store.Login(context.Background(), "alice@example.com", "secret")
	require.NoError(t, err)

	store.Logout()
	store.Logout()

	assert.False(t, store.Authenticated())
	assert.Empty(t, client.Token())
	assert.Empty(t, storage.data)
}

func TestRestore(t *testing.T) {
	srv, client, storage, store := setup(t)
	srv.AddUser("Alice", "alice@example.com", "secret", model.RoleAdmin)

	_, err := store.Login(context.Background(), "alice@example.com", "secret")
	require.NoError(t, err)
	token := client.Token()

	// a fresh process: same storage, new client and store
	client2 := api.New(srv.URL)
	store2 := session.New(client2, storage)

	assert.True(t, store2.Restore())
	assert.True(t, store2.Authenticated())
	assert.Equal(t, "Alice", store2.User().Name)
	assert.Equal(t, token, client2.Token())
}

func TestRestoreNothingStored(t *testing.T) {
	_, client, _, store := setup(t)

	assert.False(t, store.Restore())
	assert.False(t, store.Authenticated())
	assert.Empty(t, client.Token())
}

func TestRestoreCorruptUser(t *testing.T) {
	_, client, storage, store := setup(t)
	storage.Put(db.KeyToken, "stale-token")
	storage.Put(db.KeyUser, "{not json")

	assert.False(t, store.Restore())
	assert.False(t, store.Authenticated())
	assert.Empty(t, client.Token())
	assert.Empty(t, storage.data, "corrupt session is discarded")
}

func TestRestoreTokenWithoutUser(t *testing.T) {
	_, _, storage, store := setup(t)
	storage.Put(db.KeyToken, "stale-token")

	assert.False(t, store.Restore())
	assert.Empty(t, storage.data)
}

func TestForcedLogoutClearsSession(t *testing.T) {
	srv, client, storage, store := setup(t)
	srv.AddUser("Alice", "alice@example.com", "secret", model.RoleAdmin)

	_, err := store.Login(context.Background(), "alice@example.com", "secret")
	require.NoError(t, err)

	notified := 0
	store.OnSessionExpired(func() { notified++ })

	srv.RevokeToken(client.Token())
	_, err = client.Me(context.Background())

	var expired *api.SessionExpiredError
	require.True(t, errors.As(err, &expired))
	assert.Equal(t, 1, notified)
	assert.False(t, store.Authenticated())
	assert.Empty(t, client.Token())
	assert.Empty(t, storage.data)
}

func TestChangePasswordEndsSession(t *testing.T) {
	srv, client, _, store := setup(t)
	srv.AddUser("Alice", "alice@example.com", "secret", model.RoleAdmin)
	ctx := context.Background()

	_, err := store.Login(ctx, "alice@example.com", "secret")
	require.NoError(t, err)

	require.NoError(t, store.ChangePassword(ctx, "secret", "better-secret"))
	assert.False(t, store.Authenticated())
	assert.Empty(t, client.Token())

	// old password no longer works, new one does
	_, err = store.Login(ctx, "alice@example.com", "secret")
	var authErr *api.AuthError
	assert.ErrorAs(t, err, &authErr)
	_, err = store.Login(ctx, "alice@example.com", "better-secret")
	assert.NoError(t, err)
}

func TestRefreshUpdatesUser(t *testing.T) {
	srv, client, _, store := setup(t)
	srv.AddUser("Alice", "alice@example.com", "secret", model.RoleAdmin)
	ctx := context.Background()

	_, err := store.Login(ctx, "alice@example.com", "secret")
	require.NoError(t, err)

	_, err = client.UpdateMe(ctx, api.UserUpdate{Name: "Alice B"})
	require.NoError(t, err)

	require.NoError(t, store.Refresh(ctx))
	assert.Equal(t, "Alice B", store.User().Name)
}
