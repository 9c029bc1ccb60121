package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	store := NewStore(path)

	// Absent file is an empty session, not an error.
	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Save("tok-123"))

	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)

	// The file is a bearer credential: user-only permissions.
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, store.Clear())
	token, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	// Clearing twice is a no-op.
	require.NoError(t, store.Clear())
}

func TestStoreLoadTrimsWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("  tok-9\n\n"), 0o600))

	token, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-9", token)
}
