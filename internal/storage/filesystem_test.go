package storage

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NeousAxis/globalworkflow/internal/domain"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir(), "http://x/")
	require.NoError(t, err)
	require.NoError(t, store.EnsureLayout())
	return store
}

func TestNewFileStoreRequiresBasePath(t *testing.T) {
	_, err := NewFileStore("  ", "http://x")
	require.Error(t, err)
}

func TestStoreAudioScenario(t *testing.T) {
	root := filepath.Join(t.TempDir(), "zc")
	store, err := NewFileStore(root, "http://x/")
	require.NoError(t, err)
	require.NoError(t, store.EnsureLayout())

	artifact, err := store.Store(context.Background(), []byte("hello"), domain.ContentKindAudio, "audio_deadbeef.mp3")
	require.NoError(t, err)

	assert.Equal(t, "http://x/files/podcasts/audio_deadbeef.mp3", artifact.URL)
	assert.Equal(t, int64(5), artifact.Size)
	data, err := os.ReadFile(filepath.Join(root, "podcasts", "audio_deadbeef.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestStoreResolveRoundTrip(t *testing.T) {
	store := newTestStore(t)
	kinds := append([]domain.ContentKind{domain.ContentKind("unmapped")}, domain.ContentKinds...)
	for i, kind := range kinds {
		payload := []byte(fmt.Sprintf("payload-%d-\x00\xff", i))
		name := fmt.Sprintf("file_%d.bin", i)
		artifact, err := store.Store(context.Background(), payload, kind, name)
		require.NoError(t, err)
		assert.Equal(t, store.Resolve(kind, name), artifact.Path)

		got, err := os.ReadFile(store.Resolve(kind, name))
		require.NoError(t, err)
		assert.Equal(t, payload, got, "kind %q", kind)
	}
	_, err := os.Stat(filepath.Join(store.BasePath(), domain.FolderMisc, "file_0.bin"))
	require.NoError(t, err, "unmapped kinds are written to misc")
}

func TestStoreOverwritesExistingFile(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_, err := store.StoreText(ctx, "first", domain.ContentKindSocial, "post.txt")
	require.NoError(t, err)
	_, err = store.StoreText(ctx, "second", domain.ContentKindSocial, "post.txt")
	require.NoError(t, err)

	data, err := os.ReadFile(store.Resolve(domain.ContentKindSocial, "post.txt"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestStoreRejectsTraversal(t *testing.T) {
	store := newTestStore(t)
	for _, name := range []string{"", "../escape.txt", "a/b.txt", `a\b.txt`, ".."} {
		_, err := store.StoreText(context.Background(), "x", domain.ContentKindSocial, name)
		require.Error(t, err, "name %q", name)
		assert.True(t, errors.Is(err, domain.ErrInvalidRequest))
	}
}

func TestStoreFailsWhenRootNotWritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	store, err := NewFileStore(blocker, "http://x")
	require.NoError(t, err)

	_, err = store.StoreText(context.Background(), "x", domain.ContentKindSocial, "a.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStorage))
}

func TestStoreHonorsCanceledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := store.StoreText(ctx, "x", domain.ContentKindSocial, "a.txt")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEnsureLayoutIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.EnsureLayout())

	entries, err := os.ReadDir(store.BasePath())
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	assert.Equal(t, []string{"images", "podcasts", "reports", "social", "videos"}, names)
}

func TestListAllListsOnlyTopLevelFiles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_, err := store.StoreText(ctx, "post", domain.ContentKindSocial, "x_post_1.txt")
	require.NoError(t, err)
	nested := filepath.Join(store.BasePath(), domain.FolderSocial, "nested")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "deep.txt"), []byte("deep"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(store.BasePath(), "loose.txt"), []byte("root"), 0o644))

	catalog, err := store.ListAll()
	require.NoError(t, err)

	assert.Len(t, catalog, 5)
	assert.NotContains(t, catalog, "loose.txt")
	require.Len(t, catalog[domain.FolderSocial], 1)
	entry := catalog[domain.FolderSocial][0]
	assert.Equal(t, "x_post_1.txt", entry.Name)
	assert.Equal(t, int64(4), entry.Size)
	assert.Equal(t, "http://x/files/social/x_post_1.txt", entry.URL)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.Empty(t, catalog[domain.FolderImages])
}

func TestListAllMissingRoot(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "missing"), "http://x")
	require.NoError(t, err)
	_, err = store.ListAll()
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveOneNotFoundSampleIsCapped(t *testing.T) {
	store := newTestStore(t)
	for i := 0; i < 15; i++ {
		_, err := store.StoreText(context.Background(), "x", domain.ContentKindSocial, fmt.Sprintf("p_%02d.txt", i))
		require.NoError(t, err)
	}

	_, err := store.ResolveOne(domain.ContentKindImage, "missing.png")
	require.Error(t, err)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Len(t, nf.Available, MaxNotFoundSample)
	assert.Equal(t, filepath.Join(store.BasePath(), "images", "missing.png"), nf.RequestedPath)
}

func TestResolveOneFindsFileAndRejectsDirectories(t *testing.T) {
	store := newTestStore(t)
	_, err := store.StoreText(context.Background(), "x", domain.ContentKindDocument, "rapport.txt")
	require.NoError(t, err)

	path, err := store.ResolveOne(domain.ParseContentKind("reports"), "rapport.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.BasePath(), "reports", "rapport.txt"), path)

	require.NoError(t, os.MkdirAll(filepath.Join(store.BasePath(), "reports", "dir"), 0o755))
	_, err = store.ResolveOne(domain.ContentKindDocument, "dir")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.ResolveOne(domain.ContentKindDocument, "..")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInspect(t *testing.T) {
	store := newTestStore(t)
	info := store.Inspect()
	assert.True(t, info.Exists)
	assert.True(t, info.IsDir)
	assert.Len(t, info.Permissions, 3)
	assert.Len(t, info.Folders, 5)
	assert.Equal(t, "http://x", info.BaseURL)

	missing, err := NewFileStore(filepath.Join(t.TempDir(), "nope"), "")
	require.NoError(t, err)
	info = missing.Inspect()
	assert.False(t, info.Exists)
	assert.Equal(t, "N/A", info.Permissions)
	assert.Empty(t, info.Folders)
}

func TestArchive(t *testing.T) {
	store := newTestStore(t)
	_, err := store.StoreText(context.Background(), "hello", domain.ContentKindAudio, "a.txt")
	require.NoError(t, err)

	data, err := store.Archive(context.Background(), domain.ContentKindAudio)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "podcasts/a.txt", zr.File[0].Name)

	_, err = store.Archive(context.Background(), domain.ContentKind("unmapped"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
