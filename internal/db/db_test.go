package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "pmdesk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestPutGet(t *testing.T) {
	d := openTestDB(t)

	require.NoError(t, d.Put(KeyToken, "abc123"))

	got, err := d.Get(KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "abc123", got)
}

func TestPutOverwrites(t *testing.T) {
	d := openTestDB(t)

	require.NoError(t, d.Put(KeyUser, "old"))
	require.NoError(t, d.Put(KeyUser, "new"))

	got, err := d.Get(KeyUser)
	require.NoError(t, err)
	assert.Equal(t, "new", got)
}

func TestGetMissingKey(t *testing.T) {
	d := openTestDB(t)

	_, err := d.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteIsIdempotent(t *testing.T) {
	d := openTestDB(t)

	require.NoError(t, d.Put(KeyToken, "abc123"))
	require.NoError(t, d.Delete(KeyToken))
	require.NoError(t, d.Delete(KeyToken))

	_, err := d.Get(KeyToken)
	assert.ErrorIs(t, err, ErrNotFound)
}
