// Package watcher observes indexed roots for filesystem changes and feeds
// debounced, per-file events back to the indexing pipeline.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Operation represents a file system operation type.
type Operation int

const (
	// OpCreate indicates a new file or directory was created.
	OpCreate Operation = iota
	// OpModify indicates an existing file was modified.
	OpModify
	// OpDelete indicates a file or directory was deleted.
	OpDelete
	// OpRename indicates a file or directory was renamed away.
	OpRename
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	case OpRename:
		return "RENAME"
	default:
		return "UNKNOWN"
	}
}

// FileEvent represents a single filesystem event.
type FileEvent struct {
	// Path is the absolute path of the affected file or directory.
	Path string
	// Operation is the type of change.
	Operation Operation
	// IsDir indicates the event is for a directory (false when unknown,
	// e.g. after a delete).
	IsDir bool
	// Timestamp is when the event was detected.
	Timestamp time.Time
}

// Options configures the watcher behavior.
type Options struct {
	// DebounceWindow is the time to wait before emitting coalesced events.
	// Default: 200ms.
	DebounceWindow time.Duration
	// EventBufferSize is the size of the raw event channel buffer.
	// Default: 1000.
	EventBufferSize int
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	if o.DebounceWindow == 0 {
		o.DebounceWindow = 200 * time.Millisecond
	}
	if o.EventBufferSize == 0 {
		o.EventBufferSize = 1000
	}
	return o
}

// Watcher subscribes to filesystem events for a set of roots using fsnotify.
// fsnotify watches are per-directory, so every subdirectory of a root is
// registered and newly created directories are added as they appear. Events
// are debounced before delivery.
type Watcher struct {
	fsw       *fsnotify.Watcher
	debouncer *Debouncer
	errors    chan error

	mu      sync.Mutex
	started bool
	stopped bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a watcher with the given options.
func New(opts Options) (*Watcher, error) {
	opts = opts.WithDefaults()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsw:       fsw,
		debouncer: NewDebouncer(opts.DebounceWindow),
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}, nil
}

// Start registers the roots recursively and begins delivering events.
// It returns immediately; events arrive on Events() until Stop is called
// or ctx is cancelled. Calling Start twice is an error.
func (w *Watcher) Start(ctx context.Context, roots ...string) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return fmt.Errorf("watcher already started")
	}
	w.started = true
	w.mu.Unlock()

	for _, root := range roots {
		if err := w.Add(root); err != nil {
			return err
		}
	}

	go w.run(ctx)
	return nil
}

// Add registers another root (recursively) with a running watcher.
func (w *Watcher) Add(root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	return w.addRecursive(absRoot)
}

// addRecursive registers path and every subdirectory under it.
func (w *Watcher) addRecursive(path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtree, skip
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); p != path && len(name) > 0 && name[0] == '.' {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			slog.Warn("failed to watch directory",
				slog.String("path", p), slog.String("error", err.Error()))
		}
		return nil
	})
}

// run is the event pump. It converts fsnotify events, registers newly
// created directories, and pushes everything through the debouncer.
func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			// Teardown without waiting on doneCh: this goroutine is the one
			// that closes it, so Stop's wait would deadlock here.
			_ = w.stop(false)
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

// handle converts a single fsnotify event into a FileEvent.
func (w *Watcher) handle(event fsnotify.Event) {
	var op Operation
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpModify
	case event.Has(fsnotify.Remove):
		op = OpDelete
	case event.Has(fsnotify.Rename):
		op = OpRename
	default:
		return // chmod and friends carry no content change
	}

	isDir := false
	if op == OpCreate || op == OpModify {
		if info, err := os.Stat(event.Name); err == nil {
			isDir = info.IsDir()
		}
	}

	// New directories must be registered or events inside them are lost.
	if op == OpCreate && isDir {
		if err := w.addRecursive(event.Name); err != nil {
			slog.Warn("failed to watch new directory",
				slog.String("path", event.Name), slog.String("error", err.Error()))
		}
	}

	w.debouncer.Add(FileEvent{
		Path:      filepath.Clean(event.Name),
		Operation: op,
		IsDir:     isDir,
		Timestamp: time.Now(),
	})
}

// Events returns the channel of debounced event batches.
func (w *Watcher) Events() <-chan []FileEvent {
	return w.debouncer.Output()
}

// Errors returns the channel of non-fatal watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Stop cancels all subscriptions and releases OS resources.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	return w.stop(true)
}

// stop performs teardown. wait controls whether it blocks until the event
// pump has exited; the pump itself must pass false.
func (w *Watcher) stop(wait bool) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	started := w.started
	w.mu.Unlock()

	close(w.stopCh)
	err := w.fsw.Close()
	if wait && started {
		<-w.doneCh
	}
	w.debouncer.Stop()
	return err
}
