package repl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/haksh/lang"
)

// evalDoneMsg carries the outcome of an evaluation.
type evalDoneMsg struct {
	value lang.Value
	env   *lang.Env
	err   error
}

// editDoneMsg is sent when the editor produced a script that parses.
type editDoneMsg struct {
	block  *lang.Block
	script string
}

// editCancelledMsg is sent when the user emptied the script or declined to
// fix a parse error.
type editCancelledMsg struct{ script string }

// editErrorMsg is sent when the edit process fails for any other reason.
type editErrorMsg struct{ err error }

// printer forwards println output to the program, one message per line.
type printer struct {
	mu  sync.Mutex
	buf []byte
	p   *tea.Program
}

func (w *printer) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, b...)

	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			return len(b), nil
		}

		line := string(w.buf[:i])
		w.buf = w.buf[i+1:]

		if w.p != nil {
			w.p.Println(line)
		}
	}
}

func formatCommand(input string) string {
	return promptStyle.Render(evalPrompt) + inputStyle.Render(input)
}

func formatCtrlCommand(input string) string {
	return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
}

// model is the Bubble Tea model for the interactive REPL.
type model struct {
	ctx          context.Context
	session      *session
	input        textinput.Model
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // current fuzzy match results
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	busy         bool          // whether an evaluation is running
	interrupt    context.CancelCauseFunc
	quitting     bool
	mode         inputMode
	evalText     string
	evalCursor   int
	ctrlText     string
	ctrlCursor   int
	script       string // last script written with the edit command
}

func runProgram(ctx context.Context, cfg Config, history *History) error {
	out := &printer{}
	m := newModel(ctx, newSession(cfg, out), history)

	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(cfg.Stdin),
		tea.WithOutput(cfg.Stdout),
	)
	out.p = p

	_, err := p.Run()

	return err
}

const defaultWidth = 80

func newModel(ctx context.Context, s *session, history *History) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	return model{
		ctx:        ctx,
		session:    s,
		input:      ti,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - lipgloss.Width(evalPrompt) - 2

		return m, nil

	case evalDoneMsg:
		return m.finishEval(msg)

	case editDoneMsg:
		m.script = msg.script
		block := msg.block

		return m.startEval(nil, func(ctx context.Context) (lang.Value, *lang.Env, error) {
			return m.session.run(ctx, block)
		})

	case editCancelledMsg:
		m.script = msg.script

		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()

	switch app := detectApplication(input, cursorOffset(m.input)); {
	case m.busy:
		b.WriteString(hintStyle.Render("evaluating (press Ctrl+C to interrupt)"))

	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(input) == "":
		if m.mode == modeEval {
			b.WriteString(hintStyle.Render("Type an expression or press Esc for commands"))
		} else {
			b.WriteString(hintStyle.Render(
				"Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)"))
		}

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))

	case app.ok && m.mode == modeEval:
		if sig, ok := signature(m.session.env, app.name); ok {
			b.WriteString(renderSignatureHint(sig, app.argIndex))
		}
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.session.logger.TraceContext(m.ctx, "repl keypress",
		slog.String("key", msg.String()))

	if m.busy {
		if msg.Type == tea.KeyCtrlC && m.interrupt != nil {
			m.interrupt(ErrInterrupted)
		}

		return m, nil
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyStep(-1, false), nil

	case tea.KeyDown:
		return m.historyStep(1, false), nil

	case tea.KeyShiftUp:
		return m.historyStep(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyStep(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		if m.mode == modeEval {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeEval), nil

	case tea.KeyRunes, tea.KeySpace:
		if m.tabActive && msg.Type == tea.KeySpace {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// Any other key (backspace, delete, arrows) edits without auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by step, wrapping around. A single
// candidate is completed and confirmed immediately.
func (m model) cycle(step int) model {
	n := len(m.matches)

	switch {
	case n == 0:
		return m

	case n == 1:
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m

	case m.tabActive:
		m.suggIdx = (m.suggIdx + step + n) % n

	default:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = 0

		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word in the input with
// replacement and moves the cursor after it.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	value := input[:m.wordStart] + replacement + input[m.wordEnd:]
	end := m.wordStart + len(replacement)

	m.input.SetValue(value)
	m.input.SetCursor(utf8.RuneCountInString(value[:end]))

	m.wordEnd = end
}

// cursorOffset returns the byte offset of the cursor, which ti counts in
// runes.
func cursorOffset(ti textinput.Model) int {
	runes := []rune(ti.Value())

	return len(string(runes[:min(ti.Position(), len(runes))]))
}

// refreshMatches recomputes the fuzzy matches for the current input. With
// autoConfirm, a sole candidate equal to the typed word is accepted.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.wordStart, m.wordEnd = complete(
		m.session.env, m.mode == modeCtrl, m.input.Value(), cursorOffset(m.input))

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.session.logger.WarnContext(m.ctx, "could not save history",
			slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.executeCommand(input)
	}

	return m.startEval(tea.Println(formatCommand(input)),
		func(ctx context.Context) (lang.Value, *lang.Env, error) {
			return m.session.eval(ctx, input)
		})
}

// startEval runs eval in the background after echo has been printed.
// Ctrl+C cancels its context until [evalDoneMsg] arrives.
func (m model) startEval(
	echo tea.Cmd,
	eval func(context.Context) (lang.Value, *lang.Env, error),
) (model, tea.Cmd) {
	ctx, cancel := context.WithCancelCause(m.ctx)

	m.busy, m.interrupt = true, cancel

	return m, tea.Sequence(echo, func() tea.Msg {
		v, env, err := eval(ctx)

		return evalDoneMsg{value: v, env: env, err: err}
	})
}

func (m model) finishEval(msg evalDoneMsg) (model, tea.Cmd) {
	if m.interrupt != nil {
		m.interrupt(nil)
	}

	m.busy, m.interrupt = false, nil

	if msg.err != nil {
		m.session.logger.TraceContext(m.ctx, "repl eval error",
			slog.Any("error", msg.err))

		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	m.session.commit(msg.env)

	if text, ok := result(msg.value); ok {
		return m, tea.Println(resultStyle.Render(text))
	}

	return m, nil
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	echo := tea.Println(formatCtrlCommand(input))

	m.session.logger.TraceContext(m.ctx, "repl command",
		slog.String("command", input))

	switch input {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage()))

	case "env":
		return m, tea.Sequence(echo,
			tea.Println(strings.TrimSuffix(m.session.bindings(), "\n")))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + input + " (try 'help')"))
	}
}

// edit suspends the program to run the editor on the last script.
func (m model) edit() tea.Cmd {
	ec := &editCommand{
		ctx:    m.ctx,
		script: m.script,
		opts:   m.session.opts,
		logger: m.session.logger,
	}

	return tea.Exec(ec, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editCancelledMsg{script: ec.script}
		case err != nil:
			return editErrorMsg{err: err}
		case ec.block == nil:
			return editCancelledMsg{script: ec.script}
		}

		return editDoneMsg{block: ec.block, script: ec.script}
	})
}

// historyStep moves through history by dir. With sameMode, entries from
// the other mode are skipped; otherwise the mode follows the entry.
// Stepping past the newest entry clears the input.
func (m model) historyStep(dir int, sameMode bool) model {
	for i := m.historyIdx + dir; i >= 0 && i < m.history.Len(); i += dir {
		entry, err := m.history.Entry(i)
		if err != nil {
			break
		}

		if sameMode && entry.Mode != m.mode {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		refreshMatches(&m, false)

		return m
	}

	if dir > 0 {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

// switchToMode switches to mode, saving and restoring the input of each.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeEval {
		m.evalText, m.evalCursor = m.input.Value(), m.input.Position()
	} else {
		m.ctrlText, m.ctrlCursor = m.input.Value(), m.input.Position()
	}

	m.mode = mode

	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m
}
