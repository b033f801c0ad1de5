package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, roots ...string) *Watcher {
	t.Helper()
	w, err := New(Options{DebounceWindow: 30 * time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background(), roots...))
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

// awaitEvent drains batches until an event for path with the given operation
// arrives, or fails the test after a timeout.
func awaitEvent(t *testing.T, w *Watcher, path string, op Operation) FileEvent {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case batch := <-w.Events():
			for _, ev := range batch {
				if ev.Path == filepath.Clean(path) && ev.Operation == op {
					return ev
				}
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s on %s", op, path)
		}
	}
}

func TestWatcher_DetectsCreate(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	path := filepath.Join(dir, "new.md")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	ev := awaitEvent(t, w, path, OpCreate)
	assert.False(t, ev.IsDir)
}

func TestWatcher_DetectsDelete(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doomed.md")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	w := startWatcher(t, dir)

	require.NoError(t, os.Remove(path))

	awaitEvent(t, w, path, OpDelete)
}

func TestWatcher_WatchesNewSubdirectories(t *testing.T) {
	// Given: a watched root
	dir := t.TempDir()
	w := startWatcher(t, dir)

	// When: a directory appears and a file is created inside it
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	awaitEvent(t, w, sub, OpCreate)

	inner := filepath.Join(sub, "inner.md")
	require.NoError(t, os.WriteFile(inner, []byte("x"), 0o644))

	// Then: the file inside the new directory is still observed
	awaitEvent(t, w, inner, OpCreate)
}

func TestWatcher_ContextCancellationShutsDown(t *testing.T) {
	// Given: a watcher whose Start context gets cancelled
	dir := t.TempDir()
	w, err := New(Options{DebounceWindow: 10 * time.Millisecond})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx, dir))

	drained := make(chan struct{})
	go func() {
		for range w.Events() {
		}
		close(drained)
	}()

	// When: the context is cancelled
	cancel()

	// Then: the event pump exits and closes its output
	select {
	case <-drained:
	case <-time.After(2 * time.Second):
		t.Fatal("event channel never closed after context cancellation")
	}

	// And a subsequent Stop returns promptly instead of waiting on the pump.
	stopped := make(chan error, 1)
	go func() { stopped <- w.Stop() }()
	select {
	case err := <-stopped:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked after context cancellation")
	}
}

func TestWatcher_StartTwiceErrors(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	assert.Error(t, w.Start(context.Background(), dir))
}

func TestWatcher_StopIdempotent(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Options{DebounceWindow: 10 * time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background(), dir))

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}

func TestOperation_String(t *testing.T) {
	assert.Equal(t, "CREATE", OpCreate.String())
	assert.Equal(t, "MODIFY", OpModify.String())
	assert.Equal(t, "DELETE", OpDelete.String())
	assert.Equal(t, "RENAME", OpRename.String())
	assert.Equal(t, "UNKNOWN", Operation(99).String())
}
