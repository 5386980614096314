package host

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/haksh/lang"
)

const pollInterval = 5 * time.Millisecond

// settle exceeds the granularity of file modification times, so that
// consecutive writes separated by it are seen as distinct changes.
const settle = 50 * time.Millisecond

// startWatch runs Watch on path in the background, sending each line to
// the returned channel. The error channel receives the result of Watch.
func startWatch(
	t *testing.T,
	ctx context.Context,
	path string,
	fail error,
) (<-chan string, <-chan error) {
	t.Helper()

	lines := make(chan string, 16)
	done := make(chan error, 1)
	started := make(chan struct{})

	h := New(WithWatchStarted(func(string) { close(started) }))

	go func() {
		done <- h.Watch(ctx, path, pollInterval, func(s string) error {
			lines <- s

			return fail
		})
	}()

	select {
	case <-started:
	case err := <-done:
		t.Fatalf("watch ended before starting: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not start")
	}

	time.Sleep(settle)

	return lines, done
}

func appendFile(t *testing.T, path, text string) {
	t.Helper()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)

	_, err = f.WriteString(text)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func receive(t *testing.T, lines <-chan string) string {
	t.Helper()

	select {
	case s := <-lines:
		return s
	case <-time.After(5 * time.Second):
		t.Fatal("no line received")

		return ""
	}
}

func wait(t *testing.T, done <-chan error) error {
	t.Helper()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not return")

		return nil
	}
}

func TestWatch_TailsUntilRemoved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("old line\n"), 0o644))

	lines, done := startWatch(t, context.Background(), path, nil)

	appendFile(t, path, "first\r\nsec")
	assert.Equal(t, "first", receive(t, lines))

	time.Sleep(settle)
	appendFile(t, path, "ond\n")
	assert.Equal(t, "second", receive(t, lines))

	require.NoError(t, os.Remove(path))
	require.NoError(t, wait(t, done))

	select {
	case s := <-lines:
		t.Errorf("unexpected line %q", s)
	default:
	}
}

func TestWatch_Truncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("a fairly long existing line\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lines, done := startWatch(t, ctx, path, nil)

	require.NoError(t, os.WriteFile(path, []byte("short\n"), 0o644))
	time.Sleep(settle)
	appendFile(t, path, "next\n")

	assert.Equal(t, "short", receive(t, lines))
	assert.Equal(t, "next", receive(t, lines))

	cancel()
	assert.ErrorIs(t, wait(t, done), context.Canceled)
}

func TestWatch_CallbackError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	fail := errors.New("stop here")
	lines, done := startWatch(t, context.Background(), path, fail)

	appendFile(t, path, "x\ny\n")
	assert.Equal(t, "x", receive(t, lines))
	assert.ErrorIs(t, wait(t, done), fail)
}

func TestWatch_Missing(t *testing.T) {
	err := New().Watch(context.Background(),
		filepath.Join(t.TempDir(), "nope"), 0, func(string) error { return nil })
	assert.ErrorIs(t, err, lang.ErrHost)
}

func TestWatch_Builtin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	started := make(chan struct{})
	h := New(WithWatchStarted(func(string) { close(started) }))
	in := lang.New(lang.WithHost(h))

	ctx := context.Background()

	b, err := lang.ParseBlock(ctx, `
let seen = "done"
fs.watch --interval 5 "`+path+`" { fn(line) { if line == "quit" then { seen } else { line } } }
`)
	require.NoError(t, err)

	done := make(chan error, 1)

	go func() {
		v, err := in.EvalBlock(ctx, b, nil)
		if err == nil && v != (lang.Unit{}) {
			err = errors.New("expected unit, got " + v.Debug())
		}

		done <- err
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not start")
	}

	time.Sleep(settle)
	appendFile(t, path, "hello\nquit\n")
	time.Sleep(settle)
	require.NoError(t, os.Remove(path))
	require.NoError(t, wait(t, done))
}
