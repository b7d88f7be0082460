package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/standardbeagle/datamanager/internal/config"
	"github.com/standardbeagle/datamanager/internal/memdoc"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeSnapshot(t *testing.T, path string, vars ...string) {
	t.Helper()
	doc := memdoc.New("Watched")
	vs := doc.MustAddObject(memdoc.TypeVarSet, "Params")
	for _, v := range vars {
		vs.AddProperty(v, "Base", "1")
	}
	require.NoError(t, doc.SaveFile(path))
}

func startWatcher(t *testing.T, path string, debounceMs int) (*SnapshotWatcher, chan *memdoc.Document, chan error) {
	t.Helper()
	reloaded := make(chan *memdoc.Document, 4)
	errs := make(chan error, 4)
	w, err := New(path, config.Watch{Enabled: true, DebounceMs: debounceMs}, func(doc *memdoc.Document) {
		reloaded <- doc
	})
	require.NoError(t, err)
	w.OnError(func(err error) { errs <- err })
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })
	return w, reloaded, errs
}

func TestReloadOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	writeSnapshot(t, path, "Length")
	w, reloaded, _ := startWatcher(t, path, 20)

	writeSnapshot(t, path, "Length", "Width")

	select {
	case doc := <-reloaded:
		obj, ok := doc.Lookup("Params")
		require.True(t, ok)
		assert.Contains(t, obj.PropertiesList(), "Width")
	case <-time.After(5 * time.Second):
		t.Fatal("snapshot was not reloaded")
	}
	assert.Equal(t, 1, w.Reloads())
}

func TestIdenticalContentIsSkipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.toml")
	writeSnapshot(t, path, "Length")
	w, reloaded, _ := startWatcher(t, path, 20)

	writeSnapshot(t, path, "Length")
	time.Sleep(150 * time.Millisecond)
	writeSnapshot(t, path, "Depth")

	select {
	case doc := <-reloaded:
		obj, _ := doc.Lookup("Params")
		assert.Contains(t, obj.PropertiesList(), "Depth")
	case <-time.After(5 * time.Second):
		t.Fatal("snapshot was not reloaded")
	}
	assert.Equal(t, 1, w.Reloads())
}

func TestDecodeErrorIsReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	writeSnapshot(t, path, "Length")
	w, reloaded, errs := startWatcher(t, path, 20)

	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))

	select {
	case err := <-errs:
		assert.Contains(t, err.Error(), "failed to reload")
	case <-time.After(5 * time.Second):
		t.Fatal("decode error was not reported")
	}
	assert.Empty(t, reloaded)
	assert.Zero(t, w.Reloads())
}

func TestOtherFilesIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	writeSnapshot(t, path, "Length")
	w, _, _ := startWatcher(t, path, 20)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, w.Reloads())
}

func TestRememberSuppressesOwnSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	writeSnapshot(t, path, "Length")
	w, _, _ := startWatcher(t, path, 300)

	writeSnapshot(t, path, "Length", "Width")
	require.NoError(t, w.Remember())
	time.Sleep(600 * time.Millisecond)
	assert.Zero(t, w.Reloads())
}

func TestRunStopsWithContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	writeSnapshot(t, path, "Length")
	w, err := New(path, config.Watch{DebounceMs: 10}, func(*memdoc.Document) {})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestRunReleasesWatcherWhenStartFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "doc.json")
	w, err := New(path, config.Watch{DebounceMs: 10}, func(*memdoc.Document) {})
	require.NoError(t, err)

	err = w.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to watch")
	assert.ErrorIs(t, w.ctx.Err(), context.Canceled)
}

func TestNewRequiresCallback(t *testing.T) {
	_, err := New("doc.json", config.Watch{}, nil)
	assert.Error(t, err)
}

func TestArchiveIsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	writeSnapshot(t, path, "Length")
	_, reloaded, errs := startWatcher(t, path, 20)

	require.NoError(t, os.WriteFile(path, []byte{0x50, 0x4B, 0x03, 0x04, 0x14, 0x00}, 0644))

	select {
	case err := <-errs:
		assert.Contains(t, err.Error(), "zip archive")
	case <-time.After(5 * time.Second):
		t.Fatal("archive was not rejected")
	}
	assert.Empty(t, reloaded)
}
