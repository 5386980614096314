package host

import (
	"io"
	"net/http"
	"os"

	"github.com/ardnew/haksh/log"
)

type options struct {
	stdout       io.Writer
	client       *http.Client
	logger       log.Logger
	watchStarted func(path string)
}

// Option configures a [Host].
type Option func(*options)

// WithStdout sets the writer that receives println output.
// The default is [os.Stdout].
func WithStdout(w io.Writer) Option {
	return func(o *options) {
		o.stdout = w
	}
}

// WithClient sets the HTTP client used by the http builtins.
// The default is a new [http.Client] without a timeout of its own.
func WithClient(c *http.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithWatchStarted registers fn to be called once a watch is polling path.
func WithWatchStarted(fn func(path string)) Option {
	return func(o *options) {
		o.watchStarted = fn
	}
}

func makeOptions(opts ...Option) options {
	o := options{stdout: os.Stdout}

	for _, opt := range opts {
		opt(&o)
	}

	if o.stdout == nil {
		o.stdout = io.Discard
	}

	if o.client == nil {
		o.client = &http.Client{}
	}

	return o
}
