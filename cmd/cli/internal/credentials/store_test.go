package credentials

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	t.Run("creates directory with correct permissions", func(t *testing.T) {
		tmpDir := t.TempDir()
		dir := filepath.Join(tmpDir, "gasdesk")

		store, err := NewStore(dir)
		require.NoError(t, err)
		assert.NotNil(t, store)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
	})

	t.Run("creates sessions.json on initialization", func(t *testing.T) {
		tmpDir := t.TempDir()
		store, err := NewStore(tmpDir)
		require.NoError(t, err)

		info, err := os.Stat(filepath.Join(tmpDir, "sessions.json"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

		cfg, err := store.loadConfig()
		require.NoError(t, err)
		assert.Equal(t, 1, cfg.Version)
		assert.Empty(t, cfg.Sessions)
	})

	t.Run("keeps an existing config", func(t *testing.T) {
		tmpDir := t.TempDir()
		store, err := NewStore(tmpDir)
		require.NoError(t, err)
		require.NoError(t, store.Save("", Session{Token: "tok"}))

		reopened, err := NewStore(tmpDir)
		require.NoError(t, err)

		session, err := reopened.Get(DefaultProfile)
		require.NoError(t, err)
		assert.Equal(t, "tok", session.Token)
	})
}

func TestSaveAndGet(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get("")
	require.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Save("", Session{
		Server:    "http://localhost:8080",
		Token:     "tok-1",
		Kind:      "organization",
		Key:       "PV12345",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	session, err := store.Get("")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", session.Token)
	assert.Equal(t, "PV12345", session.Key)
	assert.False(t, session.SavedAt.IsZero())

	// save replaces
	require.NoError(t, store.Save(DefaultProfile, Session{Token: "tok-2"}))
	session, err = store.Get("")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", session.Token)
}

func TestExpiredSession(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("old", Session{Token: "tok", ExpiresAt: time.Now().Add(-time.Minute)}))

	_, err = store.Get("old")
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestProfilesAndDelete(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("work", Session{Token: "a"}))
	require.NoError(t, store.Save("", Session{Token: "b"}))

	names, err := store.Profiles()
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultProfile, "work"}, names)

	require.NoError(t, store.Delete("work"))
	require.ErrorIs(t, store.Delete("work"), ErrSessionNotFound)

	names, err = store.Profiles()
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultProfile}, names)
}

func TestCorruptConfig(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "sessions.json"), []byte("{"), 0600))

	_, err = store.Get("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse sessions")
}
