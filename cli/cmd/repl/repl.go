package repl

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/ardnew/haksh/host"
	"github.com/ardnew/haksh/lang"
	"github.com/ardnew/haksh/log"
)

const (
	evalPrompt  = "➜ "
	ctrlPrompt  = " :"
	plainPrompt = "haksh >> "
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help     Print this cruft
  env      List the bindings in scope
  edit     Write a script in $EDITOR and run it
  clear    Clear screen
  quit     Exit REPL

Usage:
  Type an element to evaluate it; let and fn bindings persist
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C to interrupt an evaluation, or on an empty line to exit
`
}

// inputMode is the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

// Config configures a REPL session.
type Config struct {
	// Env holds the bindings in scope at the first prompt.
	Env *lang.Env
	// Options configure the parser and interpreter. The host is supplied by
	// the REPL.
	Options []lang.Option
	// Host configures the host performing builtin effects. Its stdout is
	// supplied by the REPL.
	Host []host.Option
	// CacheDir holds the history file. Empty disables persistent history.
	CacheDir string
	// Plain selects the line-editing prompt even on a terminal.
	Plain bool

	Stdin  io.Reader
	Stdout io.Writer
	Logger log.Logger
}

// Run reads and evaluates input until the user quits or ctx is done.
//
// On a terminal, Run starts an interactive program with completion and
// signature hints. Otherwise, or with Config.Plain, it reads lines with a
// plain prompt.
func Run(ctx context.Context, cfg Config) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}

	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}

	tty := isTerminal(cfg.Stdin) && isTerminal(cfg.Stdout)

	cfg.Logger.TraceContext(ctx, "repl start",
		slog.String("cache_dir", cfg.CacheDir),
		slog.Bool("plain", cfg.Plain),
		slog.Bool("tty", tty),
		slog.Int("bindings", cfg.Env.Len()),
	)

	var path string
	if cfg.CacheDir != "" {
		path = filepath.Join(cfg.CacheDir, baseHistory)
	}

	history := NewHistory(path)
	if err := history.Load(); err != nil {
		cfg.Logger.WarnContext(ctx, "could not load history",
			slog.String("path", path), slog.Any("error", err))
	}

	cfg.Logger.TraceContext(ctx, "repl history loaded",
		slog.Int("entry_count", history.Len()))

	if cfg.Plain || !tty {
		return runPlain(ctx, cfg, history)
	}

	return runProgram(ctx, cfg, history)
}

func isTerminal(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
