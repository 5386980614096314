package lang

import (
	"context"
	"log/slog"
	"strconv"
	"unicode/utf8"

	"github.com/ardnew/haksh/log"
)

// ParseBlock parses a complete script. The top level is an implicit block
// whose elements are separated by semicolons or newlines.
func ParseBlock(ctx context.Context, text string, opts ...Option) (*Block, error) {
	o := makeOptions(opts...)
	p := newParser(text, o)

	o.logger.TraceContext(ctx, "parse start",
		slog.Int("source_length", len(text)))

	elems, err := p.parseBlockBody(false)
	if err != nil {
		o.logger.TraceContext(ctx, "parse failed", slog.Any("error", err))

		return nil, err
	}

	o.logger.TraceContext(ctx, "parse complete",
		slog.Int("elements", len(elems)))

	return &Block{Elements: elems}, nil
}

// ParseLine parses a single block element, as entered at the interactive
// prompt. The element must consume all of text. A line holding nothing but
// whitespace and comments yields [ErrEmptyInput].
func ParseLine(ctx context.Context, text string, opts ...Option) (BlockElement, error) {
	o := makeOptions(opts...)
	p := newParser(text, o)

	p.skipSpace()

	if p.eof() {
		return nil, ErrEmptyInput
	}

	el, err := p.parseElement()
	if err != nil {
		return nil, err
	}

	for p.skipSpace(); p.peek() == ';'; p.skipSpace() {
		p.advance()
	}

	if !p.eof() {
		return nil, p.fail("end of input")
	}

	o.logger.TraceContext(ctx, "parse line complete",
		slog.String("element", elementName(el)))

	return el, nil
}

// parser holds the parser state.
type parser struct {
	input    []byte
	pos      int
	line     int
	col      int
	depth    int
	maxDepth int
	logger   log.Logger
}

// mark is a saved parser position used for backtracking.
type mark struct {
	pos, line, col int
}

func newParser(text string, o options) *parser {
	return &parser{
		input:    []byte(text),
		line:     1,
		col:      1,
		maxDepth: o.maxDepth,
		logger:   o.logger,
	}
}

// parseBlockBody parses elements until end of input, or until the closing
// brace when braced is set. The closing brace is left for the caller.
func (p *parser) parseBlockBody(braced bool) ([]BlockElement, error) {
	elems := make([]BlockElement, 0)

	for {
		for p.skipSpace(); p.peek() == ';'; p.skipSpace() {
			p.advance()
		}

		if p.eof() {
			if braced {
				return nil, p.fail("'}'")
			}

			return elems, nil
		}

		if braced && p.peek() == '}' {
			return elems, nil
		}

		el, err := p.parseElement()
		if err != nil {
			return nil, err
		}

		elems = append(elems, el)

		p.skipHSpace()

		switch {
		case p.eof(), p.peek() == ';', p.peek() == '\n':
		case braced && p.peek() == '}':
		default:
			return nil, p.fail("';' or newline")
		}
	}
}

// parseElement parses: let | using | fn definition | anonymous fn | expr.
func (p *parser) parseElement() (BlockElement, error) {
	switch p.word() {
	case "let":
		p.advanceN(len("let"))

		name, def, err := p.parseBinding(p.parseExpr)
		if err != nil {
			return nil, err
		}

		return &Var{Name: name, Def: def}, nil

	case "using":
		p.advanceN(len("using"))

		name, def, err := p.parseBinding(func() (Expr, error) {
			if p.word() == "" || IsKeyword(p.word()) {
				return nil, p.fail("function application")
			}

			return p.parseApplication()
		})
		if err != nil {
			return nil, err
		}

		app, _ := def.(*FunctionApplication)

		return &Using{Name: name, Def: app}, nil

	case "fn":
		return p.parseFn()
	}

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return &ExprElement{Expr: expr}, nil
}

// parseBinding parses the "name = value" tail shared by let and using.
func (p *parser) parseBinding(value func() (Expr, error)) (string, Expr, error) {
	if p.skipHSpace() == 0 {
		return "", nil, p.fail("whitespace")
	}

	name, err := p.parseName()
	if err != nil {
		return "", nil, err
	}

	p.skipHSpace()

	if !p.expect('=') {
		return "", nil, p.fail("'='")
	}

	p.skipSpace()

	def, err := value()
	if err != nil {
		return "", nil, err
	}

	return name, def, nil
}

// parseFn parses: "fn" name? "(" params ")" block.
func (p *parser) parseFn() (BlockElement, error) {
	p.advanceN(len("fn"))
	p.skipHSpace()

	var name string

	if p.peek() != '(' {
		var err error

		name, err = p.parseName()
		if err != nil {
			return nil, err
		}

		p.skipHSpace()
	}

	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}

	p.skipHSpace()

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	if name == "" {
		return &AnonymousFunction{Params: params, Body: body}, nil
	}

	return &FnDef{Name: name, Params: params, Body: body}, nil
}

// parseParams parses: "(" (name ("," name)*)? ")".
func (p *parser) parseParams() ([]string, error) {
	if !p.expect('(') {
		return nil, p.fail("'('")
	}

	params := make([]string, 0)

	p.skipSpace()

	if p.expect(')') {
		return params, nil
	}

	for {
		name, err := p.parseName()
		if err != nil {
			return nil, err
		}

		for _, prev := range params {
			if prev == name {
				return nil, p.fail("unique parameter name")
			}
		}

		params = append(params, name)

		p.skipSpace()

		if p.expect(')') {
			return params, nil
		}

		if !p.expect(',') {
			return nil, p.fail("',' or ')'")
		}

		p.skipSpace()
	}
}

// parseExpr parses: if_expr | compare.
func (p *parser) parseExpr() (Expr, error) {
	if p.word() == "if" {
		return p.parseIf()
	}

	return p.parseCompare()
}

// parseIf parses: "if" expr "then" block "else" block.
func (p *parser) parseIf() (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	p.advanceN(len("if"))
	p.skipSpace()

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	p.skipSpace()

	if !p.expectWord("then") {
		return nil, p.fail("'then'")
	}

	p.skipSpace()

	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	p.skipSpace()

	if !p.expectWord("else") {
		return nil, p.fail("'else'")
	}

	p.skipSpace()

	els, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &If{Cond: cond, Then: then, Else: els}, nil
}

// parseCompare parses: add_sub (cmp_op add_sub)?. Comparisons do not chain.
func (p *parser) parseCompare() (Expr, error) {
	left, err := p.parseAddSub()
	if err != nil {
		return nil, err
	}

	m := p.mark()
	p.skipHSpace()

	op, ok := p.compareOp()
	if !ok {
		p.reset(m)

		return left, nil
	}

	p.skipSpace()

	right, err := p.parseAddSub()
	if err != nil {
		return nil, err
	}

	m = p.mark()
	p.skipHSpace()

	if _, ok := p.compareOp(); ok {
		return nil, p.fail("end of comparison")
	}

	p.reset(m)

	return &Compare{Left: left, Op: op, Right: right}, nil
}

// compareOp consumes a comparison operator if one is next.
func (p *parser) compareOp() (CompareOp, bool) {
	for _, op := range []CompareOp{Eq, Ne, Le, Ge, Lt, Gt} {
		s := op.String()
		if p.peekN(len(s)) == s {
			p.advanceN(len(s))

			return op, true
		}
	}

	return 0, false
}

// parseAddSub parses: mul_div (("+" | "-") mul_div)*, folding left.
func (p *parser) parseAddSub() (Expr, error) {
	left, err := p.parseMulDiv()
	if err != nil {
		return nil, err
	}

	for {
		m := p.mark()
		p.skipHSpace()

		var op AddSubOp

		switch {
		case p.peek() == '+':
			op = Add
		case p.peek() == '-' && p.peekN(2) != "--":
			op = Sub
		default:
			p.reset(m)

			return left, nil
		}

		p.advance()
		p.skipSpace()

		right, err := p.parseMulDiv()
		if err != nil {
			return nil, err
		}

		left = &AddSub{Left: left, Op: op, Right: right}
	}
}

// parseMulDiv parses: operand (("*" | "/") operand)*, folding left.
func (p *parser) parseMulDiv() (Expr, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	for {
		m := p.mark()
		p.skipHSpace()

		var op MulDivOp

		switch p.peek() {
		case '*':
			op = Mul
		case '/':
			op = Div
		default:
			p.reset(m)

			return left, nil
		}

		p.advance()
		p.skipSpace()

		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}

		left = &MulDiv{Left: left, Op: op, Right: right}
	}
}

// parseOperand parses: function_application | primary_expr.
func (p *parser) parseOperand() (Expr, error) {
	if w := p.word(); w != "" && !IsKeyword(w) && !p.atTaggedString() {
		return p.parseApplication()
	}

	prim, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	return &Primary{Value: prim}, nil
}

// parseApplication parses a dotted identifier followed by any number of
// options and primary arguments, each preceded by horizontal whitespace.
func (p *parser) parseApplication() (Expr, error) {
	ident, err := p.parseDottedIdent()
	if err != nil {
		return nil, err
	}

	app := &FunctionApplication{Ident: ident}

	for {
		m := p.mark()

		if p.skipHSpace() == 0 {
			break
		}

		if p.peekN(2) == "--" {
			p.advanceN(2)

			name, err := p.parseName()
			if err != nil {
				return nil, err
			}

			if _, dup := app.Flag(name); dup {
				return nil, p.fail("unique option name")
			}

			if p.skipHSpace() == 0 {
				return nil, p.fail("option value")
			}

			val, err := p.parsePrimary()
			if err != nil {
				return nil, err
			}

			app.Options = append(app.Options, Flag{Name: name, Value: val})

			continue
		}

		if !p.atPrimary() {
			p.reset(m)

			break
		}

		arg, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}

		app.Args = append(app.Args, arg)
	}

	return app, nil
}

// parseDottedIdent parses: name ("." name)*.
func (p *parser) parseDottedIdent() (*Identifier, error) {
	var seg []string

	for {
		name, err := p.parseName()
		if err != nil {
			return nil, err
		}

		seg = append(seg, name)

		if !p.expect('.') {
			return NewIdentifier(seg...), nil
		}
	}
}

// atPrimary reports whether a primary expression can start here.
func (p *parser) atPrimary() bool {
	switch c := p.peek(); {
	case c == '{', c == '(', c == '"', isDigit(c):
		return true
	}

	w := p.word()

	return w != "" && (!IsKeyword(w) || w == "true" || w == "false")
}

// atTaggedString reports whether a regex literal r"..." starts here.
func (p *parser) atTaggedString() bool {
	return p.peekN(2) == string(TagRegex)+`"`
}

// parsePrimary parses: bool | block | integer | tagged_string | string
// | compound | identifier.
func (p *parser) parsePrimary() (PrimaryExpr, error) {
	switch c := p.peek(); {
	case c == '{':
		return p.parseBlock()
	case c == '(':
		return p.parseCompound()
	case c == '"':
		s, err := p.parseString()
		if err != nil {
			return nil, err
		}

		return StringLiteral(s), nil
	case isDigit(c):
		return p.parseInt()
	case p.atTaggedString():
		p.advanceN(len(TagRegex))

		text, err := p.parseRawString()
		if err != nil {
			return nil, err
		}

		return &TaggedString{Tag: TagRegex, Text: text}, nil
	}

	switch p.word() {
	case "true":
		p.advanceN(len("true"))

		return BoolLiteral(true), nil
	case "false":
		p.advanceN(len("false"))

		return BoolLiteral(false), nil
	}

	name, err := p.parseName()
	if err != nil {
		return nil, p.fail("primary expression")
	}

	return IdentRef(name), nil
}

// parseBlock parses: "{" block_body "}".
func (p *parser) parseBlock() (*Block, error) {
	if !p.expect('{') {
		return nil, p.fail("'{'")
	}

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	elems, err := p.parseBlockBody(true)
	if err != nil {
		return nil, err
	}

	p.advance() // '}'

	return &Block{Elements: elems}, nil
}

// parseCompound parses: "(" (name "=" expr ("," name "=" expr)*)? ")".
func (p *parser) parseCompound() (*CompoundLiteral, error) {
	if !p.expect('(') {
		return nil, p.fail("'('")
	}

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	lit := &CompoundLiteral{Fields: make([]Field, 0)}

	p.skipSpace()

	if p.expect(')') {
		return lit, nil
	}

	for {
		name, err := p.parseName()
		if err != nil {
			return nil, err
		}

		for _, f := range lit.Fields {
			if f.Name == name {
				return nil, p.fail("unique field name")
			}
		}

		p.skipSpace()

		if !p.expect('=') {
			return nil, p.fail("'='")
		}

		p.skipSpace()

		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		lit.Fields = append(lit.Fields, Field{Name: name, Value: val})

		p.skipSpace()

		if p.expect(')') {
			return lit, nil
		}

		if !p.expect(',') {
			return nil, p.fail("',' or ')'")
		}

		p.skipSpace()
	}
}

// parseInt parses a decimal literal that fits in 64 bits.
func (p *parser) parseInt() (IntLiteral, error) {
	m := p.mark()

	for isDigit(p.peek()) {
		p.advance()
	}

	n, err := strconv.ParseUint(string(p.input[m.pos:p.pos]), 10, 64)
	if err != nil {
		p.reset(m)

		return 0, p.fail("integer literal within 64 bits")
	}

	return IntLiteral(n), nil
}

// parseString parses a double-quoted literal and decodes its escapes.
func (p *parser) parseString() (string, error) {
	m := p.mark()

	if _, err := p.parseRawString(); err != nil {
		return "", err
	}

	s, err := strconv.Unquote(string(p.input[m.pos:p.pos]))
	if err != nil {
		p.reset(m)

		return "", p.fail("valid string literal")
	}

	return s, nil
}

// parseRawString scans a double-quoted literal and returns the text between
// the quotes without decoding escapes.
func (p *parser) parseRawString() (string, error) {
	if !p.expect('"') {
		return "", p.fail(`'"'`)
	}

	start := p.pos

	for !p.eof() {
		switch p.peek() {
		case '"':
			text := string(p.input[start:p.pos])

			p.advance()

			return text, nil
		case '\\':
			p.advance()
		case '\n':
			return "", p.fail(`closing '"'`)
		}

		p.advance()
	}

	return "", p.fail(`closing '"'`)
}

// parseName parses an identifier that is not a reserved word.
func (p *parser) parseName() (string, error) {
	w := p.word()
	if w == "" || IsKeyword(w) {
		return "", p.fail("identifier")
	}

	p.advanceN(len(w))

	return w, nil
}

// word returns the identifier-shaped run of input at the current position
// without consuming it.
func (p *parser) word() string {
	r, size := utf8.DecodeRune(p.input[p.pos:])
	if size == 0 || !isIdentifierStart(r) {
		return ""
	}

	end := p.pos + size

	for end < len(p.input) {
		r, size = utf8.DecodeRune(p.input[end:])
		if !isIdentifierContinue(r) {
			break
		}

		end += size
	}

	return string(p.input[p.pos:end])
}

// expectWord consumes w if it is the next whole word.
func (p *parser) expectWord(w string) bool {
	if p.word() != w {
		return false
	}

	p.advanceN(len(w))

	return true
}

func (p *parser) enter() error {
	if p.depth >= p.maxDepth {
		return p.fail("nesting depth at most " + strconv.Itoa(p.maxDepth))
	}

	p.depth++

	return nil
}

func (p *parser) leave() { p.depth-- }

// fail returns a parse error at the current position.
func (p *parser) fail(expected string) *ParseError {
	return &ParseError{
		Line:      p.line,
		Column:    p.col,
		Expected:  expected,
		Remainder: string(p.input[p.pos:]),
		Source:    string(p.input),
	}
}

// Helper methods

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(p.input[p.pos:])

	return r
}

func (p *parser) peekN(n int) string {
	if p.pos+n > len(p.input) {
		return string(p.input[p.pos:])
	}

	return string(p.input[p.pos : p.pos+n])
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	r, size := utf8.DecodeRune(p.input[p.pos:])

	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

// advanceN advances over n bytes of input.
func (p *parser) advanceN(n int) {
	for end := p.pos + n; p.pos < end && !p.eof(); {
		p.advance()
	}
}

func (p *parser) expect(ch rune) bool {
	if p.peek() == ch {
		p.advance()

		return true
	}

	return false
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) mark() mark {
	return mark{pos: p.pos, line: p.line, col: p.col}
}

func (p *parser) reset(m mark) {
	p.pos, p.line, p.col = m.pos, m.line, m.col
}

// skipHSpace skips spaces, tabs, carriage returns, and comments, stopping at
// a newline. It returns the number of bytes skipped.
func (p *parser) skipHSpace() int {
	start := p.pos

	for !p.eof() {
		switch p.peek() {
		case ' ', '\t', '\r':
			p.advance()
		case '#':
			for !p.eof() && p.peek() != '\n' {
				p.advance()
			}
		default:
			return p.pos - start
		}
	}

	return p.pos - start
}

// skipSpace skips all whitespace, newlines, and comments.
func (p *parser) skipSpace() {
	for p.skipHSpace(); p.peek() == '\n'; p.skipHSpace() {
		p.advance()
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// elementName names the variant of el for log records.
func elementName(el BlockElement) string {
	switch el.(type) {
	case *Var:
		return "let"
	case *Using:
		return "using"
	case *FnDef:
		return "fn"
	case *AnonymousFunction:
		return "anonymous fn"
	default:
		return "expr"
	}
}
