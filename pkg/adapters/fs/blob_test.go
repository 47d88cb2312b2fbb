package fs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/harumemo/pkg/adapters/fs"
	"github.com/aretw0/harumemo/pkg/core"
)

func newStore(t *testing.T, dir string) *fs.BlobStore {
	t.Helper()
	store := fs.NewBlobStore(fs.Config{Path: dir})
	require.NoError(t, store.Initialize(context.Background()))
	return store
}

func TestBlobStore_ReadWrite(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")
	store := newStore(t, dir)

	_, ok, err := store.ReadBlob(ctx, core.DefaultStorageKey)
	require.NoError(t, err)
	assert.False(t, ok, "a missing file is an absent blob, not an error")

	require.NoError(t, store.WriteBlob(ctx, core.DefaultStorageKey, `{"a":1}`))
	got, ok, err := store.ReadBlob(ctx, core.DefaultStorageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"a":1}`, got)

	raw, err := os.ReadFile(filepath.Join(dir, "harumemo_data.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(raw))
	assert.Equal(t, 1, store.Writes())
}

func TestBlobStore_Initialize(t *testing.T) {
	ctx := context.Background()

	missing := filepath.Join(t.TempDir(), "nope")
	err := fs.NewBlobStore(fs.Config{Path: missing, MustExist: true}).Initialize(ctx)
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	err = fs.NewBlobStore(fs.Config{Path: file}).Initialize(ctx)
	assert.Error(t, err)
}

func TestBlobStore_RejectsPathKeys(t *testing.T) {
	store := newStore(t, t.TempDir())
	for _, key := range []string{"", "../escape", "a/b", `a\b`, ".hidden"} {
		err := store.WriteBlob(context.Background(), key, "x")
		assert.True(t, errors.Is(err, core.ErrValidation), "key %q", key)
	}
}

func TestBlobStore_ServiceRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	svc := core.NewService(newStore(t, dir), core.ServiceConfig{})
	require.NoError(t, svc.Load(ctx))
	_, err := svc.SaveNote(ctx, "2025-01-10", "밥약속", []string{"data:image/png;base64,AA"})
	require.NoError(t, err)

	reopened := core.NewService(newStore(t, dir), core.ServiceConfig{})
	require.NoError(t, reopened.Load(ctx))
	n, ok := reopened.GetNote("2025-01-10")
	require.True(t, ok)
	assert.Equal(t, "밥약속", n.Content)
	assert.Equal(t, []string{"data:image/png;base64,AA"}, n.Images)
}

func TestBlobStore_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dir := t.TempDir()

	local := newStore(t, dir)
	remote := newStore(t, dir)

	events, err := local.Watch(ctx, core.DefaultStorageKey)
	require.NoError(t, err)
	require.Eventually(t, local.WatcherActive, time.Second, 10*time.Millisecond)

	// Our own writes are not reported.
	require.NoError(t, local.WriteBlob(ctx, core.DefaultStorageKey, `{"own":true}`))
	select {
	case e := <-events:
		t.Fatalf("own write reported as %s", e)
	case <-time.After(300 * time.Millisecond):
	}

	// Another process writing the same file is.
	require.NoError(t, remote.WriteBlob(ctx, core.DefaultStorageKey, `{"other":true}`))
	select {
	case e := <-events:
		assert.Equal(t, core.EventExternal, e.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for external change")
	}

	// Unrelated files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	select {
	case e := <-events:
		t.Fatalf("unrelated file reported as %s", e)
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, open := <-events:
			return !open
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond, "channel closes when the context ends")
}

func TestService_WatchReloadsExternalChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dir := t.TempDir()

	svc := core.NewService(newStore(t, dir), core.ServiceConfig{})
	require.NoError(t, svc.Load(ctx))
	sub := svc.Subscribe(ctx)
	require.NoError(t, svc.Watch(ctx))

	other := core.NewService(newStore(t, dir), core.ServiceConfig{})
	require.NoError(t, other.Load(ctx))
	_, err := other.SaveNote(ctx, "2025-07-01", "written elsewhere", nil)
	require.NoError(t, err)

	select {
	case e := <-sub:
		assert.Equal(t, core.EventReload, e.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
	n, ok := svc.GetNote("2025-07-01")
	require.True(t, ok)
	assert.Equal(t, "written elsewhere", n.Content)
}

func TestReadFileAsync(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backup.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0644))

	res := <-fs.ReadFileAsync(context.Background(), path)
	require.NoError(t, res.Err)
	assert.Equal(t, `{}`, string(res.Data))

	res = <-fs.ReadFileAsync(context.Background(), filepath.Join(dir, "missing.json"))
	assert.True(t, errors.Is(res.Err, os.ErrNotExist))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res = <-fs.ReadFileAsync(ctx, path)
	assert.True(t, errors.Is(res.Err, context.Canceled), "a cancelled read delivers no data")
	assert.Nil(t, res.Data)
}
