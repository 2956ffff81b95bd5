package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cognimosyne/mediatranslator/storage"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := storage.NewMemoryStore()

	_, ok := store.TryGet("missing")
	require.False(t, ok)

	store.TrySet("redirect", "/dashboard/reports?x=1")
	v, ok := store.TryGet("redirect")
	require.True(t, ok)
	require.Equal(t, "/dashboard/reports?x=1", v)

	store.TryDelete("redirect")
	_, ok = store.TryGet("redirect")
	require.False(t, ok)
}

func TestMemoryStoreDeleteMissingKeyIsNoop(t *testing.T) {
	store := storage.NewMemoryStore()
	store.TryDelete("never-set")
	require.Equal(t, 0, store.Len())
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "scope.json")
	store := storage.NewFileStore(path)

	store.TrySet("a", "1")
	store.TrySet("b", "2")

	reopened := storage.NewFileStore(path)
	v, ok := reopened.TryGet("a")
	require.True(t, ok)
	require.Equal(t, "1", v)

	reopened.TryDelete("a")
	_, ok = reopened.TryGet("a")
	require.False(t, ok)
	v, ok = reopened.TryGet("b")
	require.True(t, ok)
	require.Equal(t, "2", v)
}

func TestFileStoreCorruptFileReadsAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scope.json")
	require.NoError(t, os.WriteFile(path, []byte("{ not json"), 0o600))

	store := storage.NewFileStore(path)
	_, ok := store.TryGet("anything")
	require.False(t, ok)

	// Writes recover the file.
	store.TrySet("k", "v")
	v, ok := store.TryGet("k")
	require.True(t, ok)
	require.Equal(t, "v", v)
}

func TestEncryptedStoreRoundTrip(t *testing.T) {
	inner := storage.NewMemoryStore()
	store := storage.NewEncryptedStore(inner, "correct horse battery staple")

	store.TrySet("identity-session", `{"id_token":"abc"}`)

	// The inner store never sees the plaintext.
	sealed, ok := inner.TryGet("identity-session")
	require.True(t, ok)
	require.NotContains(t, sealed, "abc")

	v, ok := store.TryGet("identity-session")
	require.True(t, ok)
	require.Equal(t, `{"id_token":"abc"}`, v)
}

func TestEncryptedStoreWrongPassphraseMisses(t *testing.T) {
	inner := storage.NewMemoryStore()
	store := storage.NewEncryptedStore(inner, "first")
	store.TrySet("k", "secret")

	other := storage.NewEncryptedStore(inner, "second")
	_, ok := other.TryGet("k")
	require.False(t, ok)
}

func TestEncryptedStoreSamePassphraseReopens(t *testing.T) {
	inner := storage.NewMemoryStore()
	storage.NewEncryptedStore(inner, "pass").TrySet("k", "secret")

	reopened := storage.NewEncryptedStore(inner, "pass")
	v, ok := reopened.TryGet("k")
	require.True(t, ok)
	require.Equal(t, "secret", v)
}
