// Package watch reloads a document snapshot when its file changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/datamanager/internal/config"
	"github.com/standardbeagle/datamanager/internal/debug"
	"github.com/standardbeagle/datamanager/internal/memdoc"
	"github.com/standardbeagle/datamanager/internal/security"
)

// ReloadFunc receives each successfully decoded snapshot.
type ReloadFunc func(doc *memdoc.Document)

// SnapshotWatcher watches one snapshot file. The parent directory is watched
// rather than the file so atomic saves (write temp, rename) are seen.
type SnapshotWatcher struct {
	path      string
	debounce  time.Duration
	onReload  ReloadFunc
	onError   func(error)
	validator *security.SnapshotValidator

	watcher *fsnotify.Watcher
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu       sync.Mutex
	lastHash uint64
	hasHash  bool
	reloads  int
}

// New creates a watcher for path. Start must be called before events flow.
func New(path string, cfg config.Watch, onReload ReloadFunc) (*SnapshotWatcher, error) {
	if onReload == nil {
		return nil, errors.New("reload callback is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &SnapshotWatcher{
		path:      abs,
		debounce:  time.Duration(cfg.DebounceMs) * time.Millisecond,
		onReload:  onReload,
		validator: security.NewSnapshotValidator(security.DefaultMaxSnapshotMB),
		watcher:   fsw,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// OnError sets a callback for read, decode and watcher errors.
func (w *SnapshotWatcher) OnError(fn func(error)) {
	w.onError = fn
}

// Path returns the absolute path being watched.
func (w *SnapshotWatcher) Path() string {
	return w.path
}

// Reloads returns how many snapshots have been delivered.
func (w *SnapshotWatcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

// Remember records the file's current content hash so an identical file is
// not reloaded. Call it after writing the snapshot yourself.
func (w *SnapshotWatcher) Remember() error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.lastHash = memdoc.FileFingerprint(data)
	w.hasHash = true
	w.mu.Unlock()
	return nil
}

// Start begins watching. The current file content is remembered first.
func (w *SnapshotWatcher) Start() error {
	if err := w.Remember(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read %s: %w", w.path, err)
	}
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	debug.LogWatch("watching %s (debounce %v)\n", w.path, w.debounce)
	w.wg.Add(1)
	go w.processEvents()
	return nil
}

// Stop ends watching and waits for the event loop to exit. Pending events
// are dropped.
func (w *SnapshotWatcher) Stop() error {
	w.cancel()
	err := w.watcher.Close()
	w.wg.Wait()
	debug.LogWatch("stopped watching %s\n", w.path)
	return err
}

// Run starts the watcher and blocks until ctx is done.
func (w *SnapshotWatcher) Run(ctx context.Context) error {
	if err := w.Start(); err != nil {
		w.cancel()
		_ = w.watcher.Close()
		return err
	}
	select {
	case <-ctx.Done():
	case <-w.ctx.Done():
	}
	return w.Stop()
}

func (w *SnapshotWatcher) processEvents() {
	defer w.wg.Done()

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			debug.LogWatch("event %s on %s\n", event.Op, event.Name)
			timer.Reset(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.reportError(err)
		case <-timer.C:
			w.reload()
		}
	}
}

func (w *SnapshotWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0
}

func (w *SnapshotWatcher) reload() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		// A rename-away without a replacement; wait for the next event.
		if !os.IsNotExist(err) {
			w.reportError(err)
		}
		return
	}

	hash := memdoc.FileFingerprint(data)
	w.mu.Lock()
	unchanged := w.hasHash && hash == w.lastHash
	w.mu.Unlock()
	if unchanged {
		debug.LogWatch("%s unchanged (%x), skipping reload\n", w.path, hash)
		return
	}

	if err := w.validator.ValidateContent(w.path, data); err != nil {
		w.reportError(fmt.Errorf("failed to reload %s: %w", w.path, err))
		return
	}
	doc, err := memdoc.Decode(data, memdoc.FormatForPath(w.path))
	if err != nil {
		w.reportError(fmt.Errorf("failed to reload %s: %w", w.path, err))
		return
	}

	w.mu.Lock()
	w.lastHash = hash
	w.hasHash = true
	w.reloads++
	w.mu.Unlock()

	debug.LogWatch("reloaded %s (%d objects)\n", w.path, len(doc.ObjectNames()))
	w.onReload(doc)
}

func (w *SnapshotWatcher) reportError(err error) {
	debug.LogWatch("error: %v\n", err)
	if w.onError != nil {
		w.onError(err)
	}
}
