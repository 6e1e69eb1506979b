package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStores(t *testing.T) map[string]SeenStore {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := NewSQLiteStore(filepath.Join(dir, "state", "seen.sqlite"))
	require.NoError(t, err)
	file, err := NewFileStore(filepath.Join(dir, "state", "seen.json"))
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlite.Close()
		file.Close()
	})
	return map[string]SeenStore{"sqlite": sqlite, "file": file}
}

func TestSeenStore_EquivalentURLs(t *testing.T) {
	ctx := context.Background()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
			require.NoError(t, store.MarkSeen(ctx, "https://x.com/a/?utm_source=y&b=1#frag", at))

			for _, u := range []string{
				"https://x.com/a?b=1",
				"https://x.com/a/?b=1&fbclid=abc",
				"https://x.com/a?b=1#other",
			} {
				seen, err := store.IsSeen(ctx, u)
				require.NoError(t, err)
				assert.True(t, seen, u)
			}

			seen, err := store.IsSeen(ctx, "https://x.com/a?b=2")
			require.NoError(t, err)
			assert.False(t, seen)
		})
	}
}

func TestSeenStore_KeepsNonTrackingQueryPairs(t *testing.T) {
	ctx := context.Background()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.MarkSeen(ctx, "https://s.com/article?id=1;p=1", time.Now()))

			seen, err := store.IsSeen(ctx, "https://s.com/article?id=2;p=1")
			require.NoError(t, err)
			assert.False(t, seen)

			seen, err = store.IsSeen(ctx, "https://s.com/article?id=1;p=1&utm_source=x")
			require.NoError(t, err)
			assert.True(t, seen)

			list, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, "https://s.com/article?id=1;p=1", list[0].URL)
		})
	}
}

func TestSeenStore_InsertIfAbsent(t *testing.T) {
	ctx := context.Background()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			first := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
			require.NoError(t, store.MarkSeen(ctx, "https://example.com/story", first))
			require.NoError(t, store.MarkSeen(ctx, "https://example.com/story/", first.Add(time.Hour)))
			require.NoError(t, store.MarkSeen(ctx, "https://example.com/other", first.Add(2*time.Hour)))

			list, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "https://example.com/story", list[0].URL)
			assert.True(t, first.Equal(list[0].FirstSeenAt))
		})
	}
}

func TestFileStore_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "seen.json")

	s1, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s1.MarkSeen(ctx, "https://example.com/a", time.Now()))

	s2, err := NewFileStore(path)
	require.NoError(t, err)
	seen, err := s2.IsSeen(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestFileStore_FailedSaveNotSeen(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "state")

	store, err := NewFileStore(filepath.Join(dir, "seen.json"))
	require.NoError(t, err)
	// A regular file where the state directory should be makes save fail.
	require.NoError(t, os.WriteFile(dir, []byte("x"), 0o644))

	assert.Error(t, store.MarkSeen(ctx, "https://example.com/a", time.Now()))

	seen, err := store.IsSeen(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestSQLiteStore_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "seen.sqlite")

	s1, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s1.MarkSeen(ctx, "https://example.com/a", time.Now()))
	require.NoError(t, s1.Close())

	s2, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s2.Close()
	seen, err := s2.IsSeen(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "redis"})
	assert.Error(t, err)
}

func TestPostgresRequiresDSN(t *testing.T) {
	_, err := NewPostgresStore(context.Background(), "")
	assert.Error(t, err)
}
