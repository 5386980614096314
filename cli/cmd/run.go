package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/ardnew/haksh/lang"
)

// Run executes a script, or starts the REPL when no script is given.
type Run struct {
	File string `arg:"" help:"Script file or '-' for stdin. Starts the REPL if omitted." name:"file" optional:""`
}

// Run executes the run command. The value of the script is discarded.
//
// An interrupt cancels the running script; a script ended this way, such
// as one blocked in fs.watch, exits successfully.
func (r *Run) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if r.File == "" {
		return (&Repl{}).Run(ctx)
	}

	s := sessionFrom(ctx)
	opts := s.options()

	env, err := s.prelude(ctx, opts)
	if err != nil {
		return err
	}

	src, err := openSource(s, r.File)
	if err != nil {
		return err
	}
	defer src.Close()

	block, err := lang.ParseReader(ctx, src, opts...)
	if err != nil {
		return lang.WrapError(err).With(
			slog.String("command", "run"),
			slog.String("file", r.File),
		)
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	_, err = lang.New(opts...).EvalBlock(sigCtx, block, env)

	switch {
	case err == nil:
		return nil

	case sigCtx.Err() != nil && ctx.Err() == nil:
		s.Logger.DebugContext(ctx, "script interrupted",
			slog.String("file", r.File))

		return nil
	}

	return lang.WrapError(err).With(
		slog.String("command", "run"),
		slog.String("file", r.File),
	)
}
