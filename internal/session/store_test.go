package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineconnect/cinefeed/internal/content"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCurrentEmptyStore(t *testing.T) {
	store := newTestStore(t)

	sess, err := store.Current()
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestSaveAndCurrent(t *testing.T) {
	store := newTestStore(t)

	saved := content.Session{
		Token: "tok-abc",
		User: content.User{
			ID:        "u1",
			Username:  "frank",
			Role:      content.RoleReviewer,
			Bookmarks: []string{"tt0111161"},
		},
	}
	require.NoError(t, store.Save(saved))

	sess, err := store.Current()
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "tok-abc", sess.Token)
	assert.Equal(t, "frank", sess.User.Username)
	assert.Equal(t, []string{"tt0111161"}, sess.User.Bookmarks)
}

func TestUpdateUserKeepsToken(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(content.Session{
		Token: "tok-abc",
		User:  content.User{ID: "u1", Username: "frank"},
	}))

	updated := content.User{ID: "u1", Username: "frank", Bookmarks: []string{"tt1", "tt2"}}
	require.NoError(t, store.UpdateUser(updated))

	sess, err := store.Current()
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "tok-abc", sess.Token)
	assert.Equal(t, []string{"tt1", "tt2"}, sess.User.Bookmarks)
}

func TestClear(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(content.Session{Token: "tok", User: content.User{ID: "u1"}}))
	require.NoError(t, store.Clear())

	sess, err := store.Current()
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestSavePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(content.Session{Token: "tok", User: content.User{Username: "frank"}}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	sess, err := reopened.Current()
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "frank", sess.User.Username)
}
