package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (r *recorder) handle(_ context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return r.err
}

func (r *recorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

// start runs the watcher in the background and returns a stop func that
// waits for it to exit.
func start(t *testing.T, dir string, r *recorder) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, dir, zerolog.Nop(), r.handle) }()

	// give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)

	return func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("watcher did not stop")
		}
	}
}

func TestRun_NewCaptureHandledOnce(t *testing.T) {
	dir := t.TempDir()
	r := &recorder{}
	stop := start(t, dir, r)
	defer stop()

	path := filepath.Join(dir, "reward.png")
	require.NoError(t, os.WriteFile(path, []byte("part"), 0o644))
	// a second write inside the debounce window
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("whole file"), 0o644))

	require.Eventually(t, func() bool { return len(r.seen()) == 1 }, 3*time.Second, 50*time.Millisecond)

	// nothing else arrives
	time.Sleep(2 * Debounce)
	assert.Equal(t, []string{path}, r.seen())
}

func TestRun_IgnoresUnsupportedFiles(t *testing.T) {
	dir := t.TempDir()
	r := &recorder{}
	stop := start(t, dir, r)
	defer stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shot.png.tmp"), []byte("x"), 0o644))

	time.Sleep(3 * Debounce)
	assert.Empty(t, r.seen())
}

func TestRun_HandlerErrorKeepsWatching(t *testing.T) {
	dir := t.TempDir()
	r := &recorder{err: errors.New("decode failed")}
	stop := start(t, dir, r)
	defer stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("x"), 0o644))
	require.Eventually(t, func() bool { return len(r.seen()) == 1 }, 3*time.Second, 50*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.jpg"), []byte("x"), 0o644))
	require.Eventually(t, func() bool { return len(r.seen()) == 2 }, 3*time.Second, 50*time.Millisecond)
}

func TestRun_MissingDir(t *testing.T) {
	err := Run(context.Background(), filepath.Join(t.TempDir(), "missing"), zerolog.Nop(), (&recorder{}).handle)
	assert.Error(t, err)
}
