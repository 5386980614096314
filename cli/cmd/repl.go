package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/haksh/cli/cmd/repl"
)

// Repl starts an interactive read-eval-print loop.
type Repl struct {
	Plain bool `help:"Use the line-oriented prompt even on a terminal." short:"P"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	s := sessionFrom(ctx)

	env, err := s.prelude(ctx, s.options())
	if err != nil {
		return err
	}

	err = repl.Run(ctx, repl.Config{
		Env:      env,
		Options:  s.Options,
		Host:     s.Host,
		CacheDir: s.CacheDir,
		Plain:    r.Plain,
		Stdin:    s.Stdin,
		Stdout:   s.Stdout,
		Logger:   s.Logger,
	})
	if err != nil {
		return ErrREPL.Wrap(err).With(slog.String("command", "repl"))
	}

	return nil
}
