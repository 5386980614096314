package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/haksh/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "env", "edit", "clear", "quit"}

// isWordBoundary reports whether r delimits a word for completion purposes:
// whitespace, the member-access dot, and haksh operators and punctuation.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'(', ')', '{', '}',
		'+', '-', '*', '/',
		'<', '>', '=', '!',
		',', ';', '"', '#':
		return true
	}

	return false
}

// wordBounds returns the word at the cursor position and its byte
// boundaries within input. The word is empty when the cursor sits on a
// boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the dotted identifier leading up to the word starting
// at wordStart. For input "x + http.post.js" with the word "js", the parent
// path is "http.post". Top-level words have no parent.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimRight(prefix, ".")
	pos := len(prefix)

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return strings.Trim(prefix[pos:], ".")
}

// candidates returns the completions for a word following parent. Top-level
// words complete to bound names, builtin operations, and keywords. A dotted
// parent completes to the next segment of a builtin name, or to "includes"
// when the parent is bound to a String.
func candidates(env *lang.Env, parent string) []string {
	if parent == "" {
		names := env.Names()
		names = append(names, lang.Builtins()...)
		names = append(names, lang.Keywords()...)

		return compact(names)
	}

	var names []string

	if !strings.Contains(parent, ".") {
		if v, ok := env.Get(parent); ok && v.Kind() == lang.KindString {
			names = append(names, "includes")
		}
	}

	for _, b := range lang.Builtins() {
		rest, ok := strings.CutPrefix(b, parent+".")
		if !ok {
			continue
		}

		child, _, _ := strings.Cut(rest, ".")
		names = append(names, child)
	}

	return compact(names)
}

// compact removes duplicates from names, keeping the first occurrence.
func compact(names []string) []string {
	seen := make(map[string]struct{}, len(names))

	return slices.DeleteFunc(names, func(s string) bool {
		if _, ok := seen[s]; ok {
			return true
		}

		seen[s] = struct{}{}

		return false
	})
}

// complete returns the fuzzy matches for the word at cursor, ranked
// best-first, together with the word boundaries. An empty top-level word
// has no matches so that the hint line stays visible. An empty word after a
// dot matches every child.
func complete(
	env *lang.Env,
	ctrl bool,
	input string,
	cursor int,
) (matches fuzzy.Matches, wordStart, wordEnd int) {
	word, wordStart, wordEnd := wordBounds(input, cursor)

	var names []string

	if ctrl {
		if word == "" {
			return nil, wordStart, wordEnd
		}

		names = ctrlCommands
	} else {
		parent := parentPath(input, wordStart)
		names = candidates(env, parent)

		if word == "" {
			if parent == "" {
				return nil, wordStart, wordEnd
			}

			matches = make(fuzzy.Matches, len(names))
			for i, name := range names {
				matches[i] = fuzzy.Match{Str: name, Index: i}
			}

			return matches, wordStart, wordEnd
		}
	}

	return fuzzy.Find(word, names), wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within width. The selected candidate, when tabbing, uses the selected
// style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if i > 0 && used+entryWidth+ellipsisWidth > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with its matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if _, ok := lang.BuiltinSignature(match.Str); ok {
		b.WriteString(hintStyle.Render("()"))
	}

	return b.String()
}
