package repl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/haksh/host"
	"github.com/ardnew/haksh/lang"
	"github.com/ardnew/haksh/log"
)

// session is the interpreter state carried across REPL inputs. Only one
// evaluation may run at a time.
type session struct {
	in     *lang.Interpreter
	env    *lang.Env
	opts   []lang.Option
	logger log.Logger
}

func newSession(cfg Config, stdout io.Writer) *session {
	h := host.New(append(slices.Clone(cfg.Host),
		host.WithStdout(stdout),
		host.WithLogger(cfg.Logger),
	)...)

	opts := append(slices.Clone(cfg.Options),
		lang.WithHost(h),
		lang.WithLogger(cfg.Logger),
	)

	return &session{
		in:     lang.New(opts...),
		env:    cfg.Env,
		opts:   opts,
		logger: cfg.Logger,
	}
}

// eval parses and evaluates one input line against the session environment.
// The returned environment is not committed; the caller decides with
// [session.commit].
func (s *session) eval(ctx context.Context, line string) (lang.Value, *lang.Env, error) {
	el, err := lang.ParseLine(ctx, line, s.opts...)
	if err != nil {
		return nil, nil, err
	}

	s.logger.TraceContext(ctx, "repl eval",
		slog.String("element", lang.FormatElement(el)))

	return s.in.EvalLine(ctx, el, s.env)
}

// run evaluates a script against the session environment, threading the
// bindings each top-level element makes.
func (s *session) run(ctx context.Context, b *lang.Block) (lang.Value, *lang.Env, error) {
	v, env, err := s.in.EvalScript(ctx, b, s.env)
	if err != nil {
		return nil, nil, err
	}

	return v, env, nil
}

// commit makes env the session environment. A nil env is ignored.
func (s *session) commit(env *lang.Env) {
	if env != nil {
		s.env = env
	}
}

// bindings describes every visible binding, innermost first, one per line.
func (s *session) bindings() string {
	if s.env.Len() == 0 {
		return "  (no bindings)\n"
	}

	var b strings.Builder

	for name, v := range s.env.All() {
		fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render(v.Debug()))
	}

	return b.String()
}

// result formats the value of an evaluation for display. Unit, the value of
// bindings and effects, displays as nothing.
func result(v lang.Value) (string, bool) {
	if v == nil {
		return "", false
	}

	if _, ok := v.(lang.Unit); ok {
		return "", false
	}

	return v.String(), true
}
