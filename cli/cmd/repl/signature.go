package repl

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/haksh/lang"
)

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// application is the function application being typed at the cursor.
type application struct {
	name     string // dotted identifier in head position
	argIndex int    // index of the argument under the cursor
	ok       bool
}

// detectApplication finds the application whose arguments the cursor is
// in. The current element starts after the last unmatched '{' or '(' or the
// last ';' or '='; its first field names the application and the fields
// after it, skipping "--name value" option pairs, are its arguments.
func detectApplication(input string, cursor int) application {
	cursor = min(cursor, len(input))
	text := input[:cursor]

	depth, start := 0, 0

	for i := len(text) - 1; i >= 0 && start == 0; i-- {
		switch text[i] {
		case ')', '}':
			depth++
		case '(', '{':
			if depth == 0 {
				start = i + 1
			} else {
				depth--
			}
		case ';':
			if depth == 0 {
				start = i + 1
			}
		case '=':
			if depth == 0 && isBinding(text, i) {
				start = i + 1
			}
		}
	}

	fields := strings.Fields(text[start:])
	if len(fields) == 0 || !isIdentifier(fields[0]) {
		return application{}
	}

	if fields[0] == "let" || fields[0] == "using" {
		return application{}
	}

	args := 0

	for i := 1; i < len(fields); i++ {
		if strings.HasPrefix(fields[i], "--") {
			i++

			continue
		}

		args++
	}

	if len(fields) == 1 && !strings.HasSuffix(text, " ") {
		return application{}
	}

	if !strings.HasSuffix(text, " ") {
		args--
	}

	return application{name: fields[0], argIndex: max(args, 0), ok: true}
}

// isBinding reports whether the '=' at text[i] binds a name rather than
// being part of a comparison operator.
func isBinding(text string, i int) bool {
	if i > 0 && strings.IndexByte("=!<>", text[i-1]) >= 0 {
		return false
	}

	return i+1 >= len(text) || text[i+1] != '='
}

// isIdentifier reports whether s looks like a dotted identifier.
func isIdentifier(s string) bool {
	for seg := range strings.SplitSeq(s, ".") {
		if seg == "" || lang.IsKeyword(seg) {
			return false
		}

		for _, r := range seg {
			if isWordBoundary(r) || r == '"' {
				return false
			}
		}
	}

	return true
}

// signature returns the parameters of the builtin or closure named name.
func signature(env *lang.Env, name string) (lang.Signature, bool) {
	if sig, ok := lang.BuiltinSignature(name); ok {
		return sig, true
	}

	v, ok := env.Get(name)
	if !ok {
		return lang.Signature{}, false
	}

	fn, ok := v.(*lang.Fn)
	if !ok {
		return lang.Signature{}, false
	}

	return lang.Signature{Name: name, Params: fn.Params}, true
}

// renderSignatureHint renders sig with the parameter at argIndex
// highlighted. The last parameter of a variadic signature absorbs every
// remaining argument.
func renderSignatureHint(sig lang.Signature, argIndex int) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(sig.Name))

	for _, o := range sig.Options {
		b.WriteString(signatureStyle.Render(" [--" + o + "]"))
	}

	if len(sig.Params) == 0 {
		b.WriteString(signatureStyle.Render(" (no arguments)"))

		return b.String()
	}

	if sig.Variadic {
		argIndex = min(argIndex, len(sig.Params)-1)
	}

	for i, p := range sig.Params {
		if sig.Variadic && i == len(sig.Params)-1 {
			p += "..."
		}

		b.WriteString(" ")

		if i == argIndex {
			b.WriteString(currentParamStyle.Render(p))
		} else {
			b.WriteString(signatureStyle.Render(p))
		}
	}

	return b.String()
}
