package lang

import "github.com/ardnew/haksh/log"

// DefaultMaxDepth is the default maximum nesting depth of blocks, compounds,
// and conditionals accepted by the parser.
// Users may modify this before parsing to change the default.
var DefaultMaxDepth = 100

// DefaultMaxCallDepth is the default maximum number of nested closure
// calls the interpreter allows before failing with [ErrCallDepth].
var DefaultMaxCallDepth = 10000

// options holds parser and interpreter configuration.
type options struct {
	maxDepth     int
	maxCallDepth int
	host         Host
	logger       log.Logger
}

// Option configures parsing or evaluation behavior.
type Option func(*options)

// WithMaxDepth sets the maximum nesting depth accepted by the parser.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithMaxCallDepth sets the maximum number of nested closure calls.
func WithMaxCallDepth(depth int) Option {
	return func(o *options) {
		o.maxCallDepth = depth
	}
}

// WithHost sets the host that performs builtin side effects.
// Without one, builtins that need the host fail with [ErrHost].
func WithHost(host Host) Option {
	return func(o *options) {
		o.host = host
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func makeOptions(opts ...Option) options {
	o := options{maxDepth: DefaultMaxDepth, maxCallDepth: DefaultMaxCallDepth}

	for _, opt := range opts {
		opt(&o)
	}

	if o.host == nil {
		o.host = unavailableHost{}
	}

	return o
}
