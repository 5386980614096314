package repl

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/haksh/lang"
)

func runLines(t *testing.T, cfg Config, lines ...string) string {
	t.Helper()

	var out bytes.Buffer

	cfg.Stdin = strings.NewReader(strings.Join(lines, "\n") + "\n")
	cfg.Stdout = &out
	cfg.Plain = true

	if err := Run(context.Background(), cfg); err != nil {
		t.Fatalf("Run: %v", err)
	}

	return out.String()
}

func TestRun_Plain(t *testing.T) {
	dir := t.TempDir()

	out := runLines(t, Config{CacheDir: dir},
		"let x = 2",
		"x * 21",
		"fn sq(n) { n * n }",
		"sq 5",
		`println "hi"`,
		":env",
		"1 / 0",
		`using l = fs.watch "p"`,
		":bogus",
		":quit",
		"x",
	)

	if !strings.HasPrefix(out, "42\nfn sq(n)\n25\nString(\"hi\")\n") {
		t.Errorf("unexpected output prefix:\n%s", out)
	}

	for _, want := range []string{
		"  sq Fn",
		"  x UInt64(2)",
		"error: " + lang.ErrDivisionByZero.Error(),
		"error: " + lang.ErrUsingInLine.Error(),
		`error: unknown command "bogus"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}

	if strings.HasSuffix(out, "2\n") {
		t.Errorf("input after :quit was evaluated:\n%s", out)
	}

	data, err := os.ReadFile(filepath.Join(dir, baseHistory))
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(data), "E:x * 21\n") || !strings.Contains(string(data), "C:env\n") {
		t.Errorf("unexpected history file:\n%s", data)
	}
}

func TestRun_PlainInitialEnv(t *testing.T) {
	out := runLines(t, Config{
		Env: lang.NewEnv(lang.Binding{Name: "name", Value: lang.String("haksh")}),
	}, "name", ":env")

	if !strings.HasPrefix(out, "\"haksh\"\n") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRun_PlainEmptyEnv(t *testing.T) {
	if out := runLines(t, Config{}, ":env"); out != "  (no bindings)\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestRun_PlainEdit(t *testing.T) {
	dir := t.TempDir()
	editor := filepath.Join(dir, "editor.sh")

	script := "#!/bin/sh\nprintf 'fn k(a, f) { f a }\\nusing v = k 7\\nv + 1\\n' > \"$1\"\n"
	if err := os.WriteFile(editor, []byte(script), 0o700); err != nil {
		t.Fatal(err)
	}

	t.Setenv("VISUAL", editor)

	out := runLines(t, Config{}, ":edit", "k 1 { fn(n) { n * 3 } }")

	if out != "8\n3\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestSession_Run(t *testing.T) {
	s := newSession(Config{}, &bytes.Buffer{})

	b, err := lang.ParseBlock(context.Background(), "let a = 1\nlet b = a + 1\nb * 10")
	if err != nil {
		t.Fatal(err)
	}

	v, env, err := s.run(context.Background(), b)
	if err != nil {
		t.Fatal(err)
	}

	if v != lang.UInt64(20) {
		t.Errorf("got %s, want 20", v.Debug())
	}

	s.commit(env)

	if got, ok := s.env.Get("b"); !ok || got != lang.UInt64(2) {
		t.Errorf("expected b = 2 after commit, got %v", got)
	}

	s.commit(nil)

	if s.env.Len() != 2 {
		t.Errorf("commit(nil) changed the environment")
	}
}

func TestResult(t *testing.T) {
	tests := []struct {
		value lang.Value
		want  string
		ok    bool
	}{
		{nil, "", false},
		{lang.Unit{}, "", false},
		{lang.UInt64(3), "3", true},
		{lang.String("s"), `"s"`, true},
		{lang.Bool(true), "true", true},
	}

	for _, tt := range tests {
		got, ok := result(tt.value)
		if got != tt.want || ok != tt.ok {
			t.Errorf("result(%v) = (%q, %v), want (%q, %v)", tt.value, got, ok, tt.want, tt.ok)
		}
	}
}
