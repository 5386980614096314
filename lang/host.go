package lang

import (
	"context"
	"io"
	"time"
)

// Host performs the side effects of the builtin operations. Package host
// provides the implementation used by the command line.
type Host interface {
	// Getwd returns the current working directory.
	Getwd() (string, error)
	// Stdout receives the output of println.
	Stdout() io.Writer
	// Get fetches url and returns the response body.
	Get(ctx context.Context, url string, timeout time.Duration) (string, error)
	// PostJSON posts body as application/json to url and returns the
	// response body.
	PostJSON(
		ctx context.Context,
		url string,
		body []byte,
		timeout time.Duration,
	) (string, error)
	// Watch tails the file at path from its current end, calling line for
	// every completed line appended to it. It returns when the file is
	// removed or renamed, when ctx is done, or when line returns an error.
	Watch(
		ctx context.Context,
		path string,
		interval time.Duration,
		line func(string) error,
	) error
}

// unavailableHost is used when no Host is configured. Every effect fails
// except println, which is discarded.
type unavailableHost struct{}

func (unavailableHost) Getwd() (string, error) {
	return "", ErrHost.Detail("no host configured")
}

func (unavailableHost) Stdout() io.Writer { return io.Discard }

func (unavailableHost) Get(
	context.Context, string, time.Duration,
) (string, error) {
	return "", ErrHost.Detail("no host configured")
}

func (unavailableHost) PostJSON(
	context.Context, string, []byte, time.Duration,
) (string, error) {
	return "", ErrHost.Detail("no host configured")
}

func (unavailableHost) Watch(
	context.Context, string, time.Duration, func(string) error,
) error {
	return ErrHost.Detail("no host configured")
}
