package host

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/radovskyb/watcher"

	"github.com/ardnew/haksh/lang"
)

// DefaultWatchInterval is the polling interval used when Watch is given a
// non-positive one.
const DefaultWatchInterval = 100 * time.Millisecond

// tail tracks the read position of a watched file and the bytes of its
// last, not yet terminated, line.
type tail struct {
	path    string
	offset  int64
	pending []byte
}

// Watch calls line for each complete line appended to the file at path after
// the call begins. It returns nil once the file is removed or renamed,
// the error from line if it fails, or the cause of ctx when it is done.
func (h *Host) Watch(
	ctx context.Context,
	path string,
	interval time.Duration,
	line func(string) error,
) error {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}

	attr := slog.String("path", path)

	info, err := os.Stat(path)
	if err != nil {
		return lang.ErrHost.Wrap(err).With(attr)
	}

	t := &tail{path: path, offset: info.Size()}

	w := watcher.New()
	w.FilterOps(watcher.Write, watcher.Remove, watcher.Rename, watcher.Move)

	if err := w.Add(path); err != nil {
		return lang.ErrHost.Wrap(err).With(attr)
	}

	go func() {
		if err := w.Start(interval); err != nil {
			h.logger.Error("watcher failed to start", attr, slog.Any("error", err))
		}
	}()

	defer stop(w)

	w.Wait()

	h.logger.DebugContext(ctx, "watch started",
		attr, slog.Duration("interval", interval))

	if h.watchStarted != nil {
		h.watchStarted(path)
	}

	for {
		select {
		case <-ctx.Done():
			return context.Cause(ctx)

		case <-w.Closed:
			return nil

		case err := <-w.Error:
			if errors.Is(err, watcher.ErrWatchedFileDeleted) {
				h.logger.DebugContext(ctx, "watched file deleted", attr)

				return nil
			}

			return lang.ErrHost.Wrap(err).With(attr)

		case ev := <-w.Event:
			h.logger.TraceContext(ctx, "watch event",
				attr, slog.String("op", ev.Op.String()))

			if ev.Op != watcher.Write {
				return nil
			}

			if err := t.read(line); err != nil {
				return err
			}
		}
	}
}

// stop closes w, draining its channels so that the polling goroutine is
// never left blocked on a send.
func stop(w *watcher.Watcher) {
	go func() {
		for {
			select {
			case <-w.Event:
			case <-w.Error:
			case <-w.Closed:
				return
			}
		}
	}()

	w.Close()
}

// read delivers the lines appended since the last read. A file that shrank
// is read again from its start.
func (t *tail) read(line func(string) error) error {
	f, err := os.Open(t.path)
	if err != nil {
		return lang.ErrHost.Wrap(err).With(slog.String("path", t.path))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return lang.ErrHost.Wrap(err).With(slog.String("path", t.path))
	}

	if info.Size() < t.offset {
		t.offset, t.pending = 0, nil
	}

	data, err := io.ReadAll(io.NewSectionReader(f, t.offset, info.Size()-t.offset))
	if err != nil {
		return lang.ErrHost.Wrap(err).With(slog.String("path", t.path))
	}

	t.offset += int64(len(data))
	t.pending = append(t.pending, data...)

	for {
		i := bytes.IndexByte(t.pending, '\n')
		if i < 0 {
			return nil
		}

		text := string(bytes.TrimSuffix(t.pending[:i], []byte{'\r'}))
		t.pending = t.pending[i+1:]

		if err := line(text); err != nil {
			return err
		}
	}
}
