package repl

import (
	"context"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/haksh/lang"
)

func testModel() model {
	return newModel(context.Background(), newSession(Config{}, io.Discard), NewHistory(""))
}

func typeRunes(m model, s string) model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})

	return next.(model)
}

func TestModel_TabCompletesSoleCandidate(t *testing.T) {
	m := typeRunes(testModel(), "pri")

	if len(m.matches) != 1 || m.matches[0].Str != "println" {
		t.Fatalf("unexpected matches %v", m.matches)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(model)

	if got := m.input.Value(); got != "println" {
		t.Errorf("input = %q, want %q", got, "println")
	}

	if m.tabActive || m.matches != nil {
		t.Error("expected completion to be confirmed")
	}
}

func TestModel_TabCyclesAndEscRestores(t *testing.T) {
	m := typeRunes(testModel(), "http.")

	if len(m.matches) != 2 {
		t.Fatalf("unexpected matches %v", m.matches)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(model)
	first := m.input.Value()

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(model)

	if m.input.Value() == first {
		t.Errorf("expected tab to move to another candidate, still %q", first)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(model)

	if got := m.input.Value(); got != "http." {
		t.Errorf("input = %q after esc, want %q", got, "http.")
	}

	if m.mode != modeEval {
		t.Error("esc while tabbing must not switch modes")
	}
}

func TestModel_EscTogglesMode(t *testing.T) {
	m := typeRunes(testModel(), "1 +")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(model)

	if m.mode != modeCtrl || m.input.Value() != "" {
		t.Fatalf("expected empty control mode, got mode %d input %q", m.mode, m.input.Value())
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(model)

	if m.mode != modeEval || m.input.Value() != "1 +" {
		t.Errorf("expected eval input restored, got mode %d input %q", m.mode, m.input.Value())
	}
}

func TestModel_FinishEval(t *testing.T) {
	m := testModel()
	m.busy = true

	env := lang.NewEnv(lang.Binding{Name: "x", Value: lang.UInt64(1)})

	next, cmd := m.Update(evalDoneMsg{value: lang.UInt64(1), env: env})
	m = next.(model)

	if m.busy {
		t.Error("expected evaluation to be finished")
	}

	if cmd == nil {
		t.Error("expected the result to be printed")
	}

	if v, ok := m.session.env.Get("x"); !ok || v != lang.UInt64(1) {
		t.Errorf("expected x to be committed, got %v", v)
	}

	next, cmd = m.Update(evalDoneMsg{value: lang.Unit{}, env: nil})
	m = next.(model)

	if cmd != nil {
		t.Error("expected nothing printed for unit")
	}

	if m.session.env.Len() != 1 {
		t.Error("a nil environment must not be committed")
	}
}

func TestModel_BusyIgnoresInput(t *testing.T) {
	m := testModel()
	m.busy = true

	var cause error

	m.interrupt = func(err error) { cause = err }

	m = typeRunes(m, "abc")
	if m.input.Value() != "" {
		t.Errorf("input accepted while busy: %q", m.input.Value())
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = next.(model)

	if cause != ErrInterrupted {
		t.Errorf("expected interrupt with ErrInterrupted, got %v", cause)
	}

	if !m.busy {
		t.Error("interrupt must wait for the evaluation to finish")
	}
}
