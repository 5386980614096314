package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/peterh/liner"

	"github.com/ardnew/haksh/lang"
)

// lineReader reads one input line per prompt.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(line string)
	Close() error
}

// scanReader reads lines from a non-interactive input without prompting.
type scanReader struct{ *bufio.Scanner }

func (r scanReader) Prompt(string) (string, error) {
	if r.Scan() {
		return r.Text(), nil
	}

	if err := r.Err(); err != nil {
		return "", err
	}

	return "", io.EOF
}

func (scanReader) AppendHistory(string) {}

func (scanReader) Close() error { return nil }

// newLineReader returns a line-editing prompt on a terminal, with history
// and completion, or a plain scanner otherwise.
func newLineReader(cfg Config, s *session, history *History) lineReader {
	if !isTerminal(cfg.Stdin) {
		return scanReader{bufio.NewScanner(cfg.Stdin)}
	}

	st := liner.NewLiner()
	st.SetCtrlCAborts(true)
	st.SetTabCompletionStyle(liner.TabPrints)
	st.SetWordCompleter(func(line string, pos int) (string, []string, string) {
		// pos counts runes.
		cursor := len(string([]rune(line)[:pos]))
		matches, start, end := complete(s.env, false, line, cursor)

		words := make([]string, len(matches))
		for i, m := range matches {
			words[i] = m.Str
		}

		return line[:start], words, line[end:]
	})

	for _, line := range history.Lines(modeEval) {
		st.AppendHistory(line)
	}

	return st
}

// runPlain is the line-oriented REPL. Control commands are entered with a
// leading ':'.
func runPlain(ctx context.Context, cfg Config, history *History) error {
	s := newSession(cfg, cfg.Stdout)
	rd := newLineReader(cfg, s, history)

	defer rd.Close()

	var script string

	for ctx.Err() == nil {
		line, err := rd.Prompt(plainPrompt)

		switch {
		case errors.Is(err, io.EOF), errors.Is(err, liner.ErrPromptAborted):
			return nil
		case err != nil:
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		rd.AppendHistory(line)

		if cmd, ok := strings.CutPrefix(line, ":"); ok {
			_ = history.Add(cmd, modeCtrl)

			quit, err := plainCommand(ctx, cfg, s, &script, strings.TrimSpace(cmd))
			if err != nil {
				fmt.Fprintln(cfg.Stdout, "error:", err)
			}

			if quit {
				return nil
			}

			continue
		}

		_ = history.Add(line, modeEval)

		evalCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		v, env, err := s.eval(evalCtx, line)

		stop()
		printResult(cfg.Stdout, s, v, env, err)
	}

	return nil
}

// printResult commits a successful evaluation and prints its value, or
// prints the error.
func printResult(w io.Writer, s *session, v lang.Value, env *lang.Env, err error) {
	if err != nil {
		fmt.Fprintln(w, "error:", err)

		return
	}

	s.commit(env)

	if text, ok := result(v); ok {
		fmt.Fprintln(w, text)
	}
}

// plainCommand executes a control command and reports whether the REPL
// should exit.
func plainCommand(
	ctx context.Context,
	cfg Config,
	s *session,
	script *string,
	cmd string,
) (bool, error) {
	switch cmd {
	case "q", "quit", "exit":
		return true, nil

	case "h", "help":
		fmt.Fprint(cfg.Stdout, helpMessage())

	case "env":
		fmt.Fprint(cfg.Stdout, s.bindings())

	case "c", "clear":
		fmt.Fprint(cfg.Stdout, "\x1b[H\x1b[2J")

	case "e", "edit":
		ec := &editCommand{
			ctx:    ctx,
			script: *script,
			opts:   s.opts,
			logger: s.logger,
			stdin:  cfg.Stdin,
			stdout: cfg.Stdout,
			stderr: os.Stderr,
		}

		err := ec.Run()
		*script = ec.script

		if err != nil || ec.block == nil {
			return false, err
		}

		evalCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		v, env, err := s.run(evalCtx, ec.block)

		stop()
		printResult(cfg.Stdout, s, v, env, err)

	default:
		return false, fmt.Errorf("unknown command %q (try :help)", cmd)
	}

	return false, nil
}
