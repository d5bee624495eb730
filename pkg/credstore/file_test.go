package credstore_test

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/stockdash/pkg/credstore"
	"github.com/dmitrymomot/stockdash/pkg/identity"
)

func TestNewFileStore_EmptyPath(t *testing.T) {
	t.Parallel()

	_, err := credstore.NewFileStore("")
	require.Error(t, err)
}

func TestFileStore_LoadMissingFile(t *testing.T) {
	t.Parallel()

	store, err := credstore.NewFileStore(filepath.Join(t.TempDir(), "creds.json"))
	require.NoError(t, err)

	creds, err := store.Load()
	require.NoError(t, err)
	assert.False(t, creds.HasToken())
	assert.Nil(t, creds.User)
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	store, err := credstore.NewFileStore(filepath.Join(t.TempDir(), "nested", "dir", "creds.json"))
	require.NoError(t, err)

	want := credstore.Credentials{
		AccessToken: "tok123",
		User: &identity.User{
			ID:       "u1",
			Username: "alice",
			Email:    "alice@example.com",
			FullName: "Alice Example",
			Role:     identity.RoleAdmin,
		},
	}
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileStore_Permissions(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}

	path := filepath.Join(t.TempDir(), "creds.json")
	store, err := credstore.NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Save(credstore.Credentials{AccessToken: "tok"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStore_ClearRemovesBothKeys(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "creds.json")
	store, err := credstore.NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Save(credstore.Credentials{
		AccessToken: "tok",
		User:        &identity.User{ID: "u1", Username: "alice"},
	}))

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear()) // idempotent

	_, err = os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)

	got, err := store.Load()
	require.NoError(t, err)
	assert.False(t, got.HasToken())
	assert.Nil(t, got.User)
}

func TestFileStore_CorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "creds.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store, err := credstore.NewFileStore(path)
	require.NoError(t, err)

	_, err = store.Load()
	require.ErrorIs(t, err, credstore.ErrCorruptData)
}

func TestFileStore_ConcurrentReadDuringWrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "creds.json")
	store, err := credstore.NewFileStore(path)
	require.NoError(t, err)

	old := credstore.Credentials{AccessToken: "old", User: &identity.User{ID: "u1", Username: "alice"}}
	next := credstore.Credentials{AccessToken: "new", User: &identity.User{ID: "u1", Username: "alice", Role: identity.RoleAdmin}}
	require.NoError(t, store.Save(old))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_ = store.Save(next)
			_ = store.Save(old)
		}
	}()

	// Readers must always see a complete slot, never a torn one.
	for i := 0; i < 200; i++ {
		got, err := store.Load()
		require.NoError(t, err)
		if got.HasToken() {
			require.NotNil(t, got.User)
			assert.Equal(t, "u1", got.User.ID)
		}
	}
	wg.Wait()
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	store := credstore.NewMemoryStore()

	got, err := store.Load()
	require.NoError(t, err)
	assert.False(t, got.HasToken())

	user := &identity.User{ID: "u1", Username: "alice"}
	require.NoError(t, store.Save(credstore.Credentials{AccessToken: "tok", User: user}))

	// Mutating the caller's copy must not leak into the store.
	user.Username = "mallory"

	got, err = store.Load()
	require.NoError(t, err)
	require.NotNil(t, got.User)
	assert.Equal(t, "alice", got.User.Username)

	// Mutating the loaded copy must not leak either.
	got.User.Username = "eve"
	again, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "alice", again.User.Username)

	require.NoError(t, store.Clear())
	got, err = store.Load()
	require.NoError(t, err)
	assert.False(t, got.HasToken())
	assert.Nil(t, got.User)
}
