package cmd

import (
	"context"
	"io"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/haksh/host"
	"github.com/ardnew/haksh/lang"
	"github.com/ardnew/haksh/log"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// Session holds the interpreter configuration shared by every command that
// evaluates haksh.
type Session struct {
	// Env holds the bindings in scope before any prelude or script runs.
	Env *lang.Env
	// Options configure the parser and interpreter.
	Options []lang.Option
	// Host configures the host performing builtin effects.
	Host []host.Option
	// CacheDir holds the REPL history.
	CacheDir string
	Logger   log.Logger

	Stdin  io.Reader
	Stdout io.Writer
}

type sessionKey struct{}

// WithSession returns a new context.Context containing s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// sessionFrom retrieves the Session stored in ctx by WithSession, with
// standard input and output filled in.
func sessionFrom(ctx context.Context) Session {
	s, _ := ctx.Value(sessionKey{}).(Session)

	if s.Stdin == nil {
		s.Stdin = os.Stdin
	}

	if s.Stdout == nil {
		s.Stdout = os.Stdout
	}

	return s
}

// options returns the interpreter options with a host writing to s.Stdout.
func (s Session) options() []lang.Option {
	h := host.New(append(slices.Clone(s.Host),
		host.WithStdout(s.Stdout),
		host.WithLogger(s.Logger),
	)...)

	return append(slices.Clone(s.Options),
		lang.WithHost(h),
		lang.WithLogger(s.Logger),
	)
}

// prelude evaluates the prelude scripts stored in ctx in order, threading
// their top-level bindings on top of s.Env.
func (s Session) prelude(ctx context.Context, opts []lang.Option) (*lang.Env, error) {
	env := s.Env

	src := sourceFilesFrom(ctx)
	if src == nil {
		return env, nil
	}

	in := lang.New(opts...)

	for name, r := range src.All() {
		block, err := lang.ParseReader(ctx, r, opts...)
		if err != nil {
			return nil, ErrPrelude.Wrap(err).With(slog.String("source", name))
		}

		_, env, err = in.EvalScript(ctx, block, env)
		if err != nil {
			return nil, ErrPrelude.Wrap(err).With(slog.String("source", name))
		}

		s.Logger.DebugContext(ctx, "prelude loaded",
			slog.String("source", name),
			slog.Int("bindings", env.Len()))
	}

	return env, nil
}

type (
	sourceFilesKey struct{}
	sourceFiles    struct {
		paths    []source
		hasStdin bool
	}

	// source pairs the name a prelude was given by with its resolved path.
	source struct {
		name string
		path string
	}

	SourceFiles interface {
		IsZero() bool
		All() iter.Seq2[string, io.Reader]
	}
)

// IsZero reports whether there are no source files.
func (s *sourceFiles) IsZero() bool { return len(s.paths) == 0 && !s.hasStdin }

// All yields the name and reader of every source file in order, with stdin
// last if present. Each file is opened when it is reached and closed when
// the loop body returns, so a loop that stops early leaves nothing open.
// A file that can no longer be opened yields a reader returning the error.
func (s *sourceFiles) All() iter.Seq2[string, io.Reader] {
	return func(yield func(string, io.Reader) bool) {
		for _, src := range s.paths {
			f, err := os.Open(src.path)
			if err != nil {
				if !yield(src.name, failedReader{ErrOpenSource.Wrap(err).With(slog.String("file", src.name))}) {
					return
				}

				continue
			}

			more := yield(src.name, f)
			_ = f.Close()

			if !more {
				return
			}
		}

		if s.hasStdin {
			yield(stdinSource, os.Stdin)
		}
	}
}

// failedReader reports err from every Read.
type failedReader struct{ err error }

func (r failedReader) Read([]byte) (int, error) { return 0, r.err }

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// WithSourceFiles returns a new context.Context containing the given prelude
// source files.
//
// The function deduplicates files by resolving symlinks and comparing device/
// inode pairs. All occurrences of "-" are replaced with a single stdin reader.
// The stdin reader is placed last so it reads after all regular files.
// Files are not opened until they are read through [SourceFiles.All].
func WithSourceFiles(ctx context.Context, sources []string) context.Context {
	return context.WithValue(ctx, sourceFilesKey{}, buildSourceFiles(sources))
}

// buildSourceFiles constructs a SourceFiles from the given source paths.
func buildSourceFiles(sources []string) SourceFiles {
	if len(sources) == 0 {
		return nil
	}

	var srcs sourceFiles

	srcs.paths = make([]source, 0, len(sources))
	seen := make(map[fileKey]struct{})

	stdinInfo, _ := os.Stdin.Stat()
	stdinKey, _ := makeFileKey(stdinInfo)

	for _, src := range sources {
		if src == stdinSource {
			seen[stdinKey] = struct{}{}

			continue
		}

		path, ok := resolveUnique(src, seen)
		if !ok {
			continue
		}

		srcs.paths = append(srcs.paths, source{name: src, path: path})
	}

	// Stdin may have been included via "-" or as a named file.
	// Both of which will be represented by stdinKey in seen.
	_, srcs.hasStdin = seen[stdinKey]
	delete(seen, stdinKey)

	if srcs.IsZero() {
		return nil
	}

	return &srcs
}

// resolveUnique returns the resolved path of the file at path if it hasn't
// been seen before. It resolves symlinks and uses device/inode to detect
// duplicates. Returns false if the file is a duplicate or cannot be found.
func resolveUnique(path string, seen map[fileKey]struct{}) (string, bool) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return "", false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", false
	}

	key, ok := makeFileKey(info)
	if !ok {
		return "", false
	}

	if _, exists := seen[key]; exists {
		return "", false
	}

	seen[key] = struct{}{}

	return resolved, true
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	if info == nil {
		return key, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// sourceFilesFrom retrieves the SourceFiles stored in ctx by WithSourceFiles.
// Returns nil if none were stored.
func sourceFilesFrom(ctx context.Context) SourceFiles {
	r, _ := ctx.Value(sourceFilesKey{}).(SourceFiles)

	return r
}

// openSource opens the script named by path, or stdin for "-".
func openSource(s Session, path string) (io.ReadCloser, error) {
	if path == "" || path == stdinSource {
		return io.NopCloser(s.Stdin), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, ErrOpenSource.Wrap(err).With(slog.String("file", path))
	}

	return f, nil
}
