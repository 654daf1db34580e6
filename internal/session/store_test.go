package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petresgate/feedcore/domain"
)

func TestEmptySessionHasNoUser(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	defer store.Close()

	_, err = store.UserID()
	assert.ErrorIs(t, err, domain.ErrNoUser)

	token, err := store.Token()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestValuesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.SetUserID(42))
	require.NoError(t, store.SetToken("tok-123"))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	id, err := store.UserID()
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	token, err := store.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
}

func TestWritesAreVisibleToFreshReads(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.SetUserID(1))
	require.NoError(t, store.SetUserID(2)) // login as someone else

	id, err := store.UserID()
	require.NoError(t, err)
	assert.EqualValues(t, 2, id, "reads go to storage, not a stale in-memory copy")
}

func TestClearLogsOut(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.SetUserID(42))
	require.NoError(t, store.SetToken("tok"))
	require.NoError(t, store.Clear())

	_, err = store.UserID()
	assert.ErrorIs(t, err, domain.ErrNoUser)
	token, err := store.Token()
	require.NoError(t, err)
	assert.Empty(t, token)
}
