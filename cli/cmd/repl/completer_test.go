package repl

import (
	"slices"
	"testing"

	"github.com/ardnew/haksh/lang"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"dot_separated", "http.ge", 7, "ge", 5, 7},
		{"after_plus", "a + fo", 6, "fo", 4, 6},
		{"after_minus", "a-fo", 4, "fo", 2, 4},
		{"after_brace", "{ fn(x) { fo", 12, "fo", 10, 12},
		{"after_paren", "(a = fo", 7, "fo", 5, 7},
		{"after_comma", "(a = 1, b = fo", 14, "fo", 12, 14},
		{"after_semicolon", "let x = 1; fo", 13, "fo", 11, 13},
		{"option_name", "println --se", 12, "se", 10, 12},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"underscore", "my_var", 6, "my_var", 0, 6},
		{"empty_after_dot", "http.", 5, "", 5, 5},
		{"cursor_past_end", "ab", 10, "ab", 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestParentPath(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wordStart int
		want      string
	}{
		{"top_level", "fo", 0, ""},
		{"simple_chain", "http.post.", 10, "http.post"},
		{"after_operator", "x + http.post.", 14, "http.post"},
		{"after_brace", "{http.", 6, "http"},
		{"no_chain", "a + ", 4, ""},
		{"after_equals", "let x = s.", 10, "s"},
		{"partial_word", "http.po", 5, "http"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parentPath(tt.input, tt.wordStart)
			if got != tt.want {
				t.Errorf("parentPath(%q, %d) = %q, want %q",
					tt.input, tt.wordStart, got, tt.want)
			}
		})
	}
}

func TestCandidates(t *testing.T) {
	env := lang.NewEnv(
		lang.Binding{Name: "greeting", Value: lang.String("hi")},
		lang.Binding{Name: "count", Value: lang.UInt64(3)},
	)

	tests := []struct {
		name   string
		parent string
		want   []string
	}{
		{"http", "http", []string{"get", "post"}},
		{"http_post", "http.post", []string{"json"}},
		{"fs", "fs", []string{"cwd", "watch"}},
		{"string_binding", "greeting", []string{"includes"}},
		{"int_binding", "count", nil},
		{"unknown", "nope", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := candidates(env, tt.parent)
			slices.Sort(got)

			if !slices.Equal(got, tt.want) {
				t.Errorf("candidates(%q) = %v, want %v", tt.parent, got, tt.want)
			}
		})
	}

	top := candidates(env, "")
	for _, want := range []string{"greeting", "count", "println", "http.get", "let", "using"} {
		if !slices.Contains(top, want) {
			t.Errorf("expected %q among top-level candidates %v", want, top)
		}
	}
}

func TestComplete(t *testing.T) {
	env := lang.NewEnv(lang.Binding{Name: "printer", Value: lang.UInt64(1)})

	matches, start, end := complete(env, false, "x + prin", 8)
	if start != 4 || end != 8 {
		t.Errorf("unexpected bounds %d, %d", start, end)
	}

	var names []string
	for _, m := range matches {
		names = append(names, m.Str)
	}

	if !slices.Contains(names, "println") || !slices.Contains(names, "printer") {
		t.Errorf("unexpected matches %v", names)
	}

	if matches, _, _ := complete(env, false, "x + ", 4); matches != nil {
		t.Errorf("expected no matches for an empty top-level word, got %v", matches)
	}

	if matches, _, _ := complete(env, false, "http.", 5); len(matches) != 2 {
		t.Errorf("expected every child after a dot, got %v", matches)
	}

	matches, _, _ = complete(env, true, "qu", 2)
	if len(matches) != 1 || matches[0].Str != "quit" {
		t.Errorf("unexpected control matches %v", matches)
	}
}
