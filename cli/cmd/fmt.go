package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/haksh/lang"
)

// Fmt reads a script and writes it in canonical haksh syntax.
type Fmt struct {
	Indent int  `default:"2" help:"Indent width for nested blocks; 0 writes each element on one line." short:"i"`
	Write  bool `            help:"Write the result to the source file instead of stdout."            short:"w"`

	File string `arg:"" default:"-" help:"Script file or '-' for stdin." name:"file"`
}

// Run executes the fmt command.
func (f *Fmt) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	s := sessionFrom(ctx)

	src, err := openSource(s, f.File)
	if err != nil {
		return err
	}
	defer src.Close()

	block, err := lang.ParseReader(ctx, src, s.Options...)
	if err != nil {
		return lang.WrapError(err).With(
			slog.String("command", "fmt"),
			slog.String("file", f.File),
		)
	}

	var buf bytes.Buffer
	if err := block.Format(ctx, &buf, f.Indent); err != nil {
		return ErrFormat.Wrap(err).With(slog.String("command", "fmt"))
	}

	if !f.Write || f.File == stdinSource {
		_, err = buf.WriteTo(s.Stdout)

		return err
	}

	info, err := os.Stat(f.File)
	if err != nil {
		return ErrFormat.Wrap(err).With(slog.String("file", f.File))
	}

	if err := os.WriteFile(f.File, buf.Bytes(), info.Mode().Perm()); err != nil {
		return ErrFormat.Wrap(err).With(slog.String("file", f.File))
	}

	s.Logger.DebugContext(ctx, "formatted file in place",
		slog.String("file", f.File),
		slog.Int("bytes", buf.Len()))

	return nil
}
