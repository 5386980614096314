package lang

import (
	"strings"
	"unicode"
)

// Identifier is a dotted name path such as fs.cwd. Path holds the outermost
// segment and Child the remainder of the path toward the leaf.
type Identifier struct {
	Path  string
	Child *Identifier
}

// NewIdentifier builds an identifier from its segments, outermost first.
// It returns nil when no segments are given.
func NewIdentifier(segments ...string) *Identifier {
	var id *Identifier

	for i := len(segments) - 1; i >= 0; i-- {
		id = &Identifier{Path: segments[i], Child: id}
	}

	return id
}

// Segments returns the path segments, outermost first.
func (id *Identifier) Segments() []string {
	var seg []string

	for ; id != nil; id = id.Child {
		seg = append(seg, id.Path)
	}

	return seg
}

// String returns the dotted form of the identifier.
func (id *Identifier) String() string {
	return strings.Join(id.Segments(), ".")
}

// Equal reports whether both chains have the same segments.
func (id *Identifier) Equal(other *Identifier) bool {
	for id != nil && other != nil {
		if id.Path != other.Path {
			return false
		}

		id, other = id.Child, other.Child
	}

	return id == nil && other == nil
}

// keywords cannot be used as names. Longer words that merely start with a
// keyword (letter, iffy, usingx) are ordinary identifiers.
var keywords = map[string]bool{
	"let":   true,
	"using": true,
	"fn":    true,
	"if":    true,
	"then":  true,
	"else":  true,
	"true":  true,
	"false": true,
}

// Keywords returns the reserved words of the language.
func Keywords() []string {
	return sortedKeys(keywords)
}

// IsKeyword reports whether s is a reserved word.
func IsKeyword(s string) bool { return keywords[s] }

// IsIdentifier reports whether s is a single name segment that may be
// bound with let.
func IsIdentifier(s string) bool {
	if s == "" || IsKeyword(s) {
		return false
	}

	for i, r := range s {
		if i == 0 && !isIdentifierStart(r) || !isIdentifierContinue(r) {
			return false
		}
	}

	return true
}

// isIdentifierStart approximates the Unicode XID_Start property.
func isIdentifierStart(r rune) bool {
	return unicode.In(r,
		unicode.L,
		unicode.Nl,
		unicode.Other_ID_Start,
	)
}

// isIdentifierContinue approximates the Unicode XID_Continue property.
func isIdentifierContinue(r rune) bool {
	return isIdentifierStart(r) || unicode.In(r,
		unicode.Mn,
		unicode.Mc,
		unicode.Nd,
		unicode.Pc,
		unicode.Other_ID_Continue,
	)
}
