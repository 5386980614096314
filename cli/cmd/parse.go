package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/haksh/lang"
)

// Parse reads a script and writes its syntax tree.
type Parse struct {
	Format string `default:"json" enum:"json,yaml" help:"Output format (${enum})." short:"f"`
	Indent int    `default:"2"                     help:"Indent width; 0 writes a single line." short:"i"`

	File string `arg:"" default:"-" help:"Script file or '-' for stdin." name:"file"`
}

// Run executes the parse command.
func (p *Parse) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	s := sessionFrom(ctx)

	src, err := openSource(s, p.File)
	if err != nil {
		return err
	}
	defer src.Close()

	block, err := lang.ParseReader(ctx, src, s.Options...)
	if err != nil {
		return lang.WrapError(err).With(
			slog.String("command", "parse"),
			slog.String("file", p.File),
		)
	}

	switch p.Format {
	case "yaml":
		if err := block.FormatYAML(ctx, s.Stdout, p.Indent); err != nil {
			return ErrYAMLMarshal.Wrap(err).With(slog.String("command", "parse"))
		}

	default:
		if err := block.FormatJSON(ctx, s.Stdout, p.Indent); err != nil {
			return ErrJSONMarshal.Wrap(err).With(slog.String("command", "parse"))
		}
	}

	return nil
}
