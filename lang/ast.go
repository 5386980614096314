package lang

// Block is an ordered sequence of elements. It evaluates to the value of its
// last element, or Unit when empty.
//
// A *Block is also a [PrimaryExpr]: braces nest a block anywhere a primary
// expression is accepted.
type Block struct {
	Elements []BlockElement
}

// BlockElement is one of [*ExprElement], [*Var], [*AnonymousFunction],
// [*FnDef], or [*Using].
type BlockElement interface {
	element()
}

// ExprElement is an expression evaluated for its value.
type ExprElement struct {
	Expr Expr
}

// Var binds Name to the value of Def for the elements that follow it.
type Var struct {
	Name string
	Def  Expr
}

// AnonymousFunction creates a closure over the current environment.
type AnonymousFunction struct {
	Params []string
	Body   *Block
}

// FnDef binds Name to a closure that can refer to itself by Name.
type FnDef struct {
	Name   string
	Params []string
	Body   *Block
}

// Using passes the rest of the enclosing block to Def as a one-parameter
// continuation whose parameter is Name.
type Using struct {
	Name string
	Def  *FunctionApplication
}

func (*ExprElement) element()       {}
func (*Var) element()               {}
func (*AnonymousFunction) element() {}
func (*FnDef) element()             {}
func (*Using) element()             {}

// Expr is one of [*AddSub], [*MulDiv], [*Compare], [*Primary],
// [*FunctionApplication], or [*If].
type Expr interface {
	expr()
}

// AddSubOp is an additive operator.
type AddSubOp int

const (
	Add AddSubOp = iota // +
	Sub                 // -
)

// MulDivOp is a multiplicative operator.
type MulDivOp int

const (
	Mul MulDivOp = iota // *
	Div                 // /
)

// CompareOp is a comparison operator.
type CompareOp int

const (
	Eq CompareOp = iota // ==
	Ne                  // !=
	Lt                  // <
	Le                  // <=
	Gt                  // >
	Ge                  // >=
)

// AddSub is a left-associative additive operation.
type AddSub struct {
	Left  Expr
	Op    AddSubOp
	Right Expr
}

// MulDiv is a left-associative multiplicative operation.
type MulDiv struct {
	Left  Expr
	Op    MulDivOp
	Right Expr
}

// Compare is a non-associative comparison.
type Compare struct {
	Left  Expr
	Op    CompareOp
	Right Expr
}

// Primary wraps a primary expression.
type Primary struct {
	Value PrimaryExpr
}

// If evaluates exactly one of its branches.
type If struct {
	Cond Expr
	Then *Block
	Else *Block
}

// FunctionApplication calls a builtin or a value found in the environment.
// Positional arguments are restricted to primary expressions.
type FunctionApplication struct {
	Ident   *Identifier
	Options []Flag
	Args    []PrimaryExpr
}

// Flag is a named argument written as --name value.
type Flag struct {
	Name  string
	Value PrimaryExpr
}

func (*AddSub) expr()              {}
func (*MulDiv) expr()              {}
func (*Compare) expr()             {}
func (*Primary) expr()             {}
func (*If) expr()                  {}
func (*FunctionApplication) expr() {}

// Flag returns the value of the option named name, if present.
func (fa *FunctionApplication) Flag(name string) (PrimaryExpr, bool) {
	for _, opt := range fa.Options {
		if opt.Name == name {
			return opt.Value, true
		}
	}

	return nil, false
}

// PrimaryExpr is one of [BoolLiteral], [*Block], [IntLiteral], [IdentRef],
// [StringLiteral], [*TaggedString], or [*CompoundLiteral].
type PrimaryExpr interface {
	primary()
}

// BoolLiteral is true or false.
type BoolLiteral bool

// IntLiteral is an unsigned 64-bit decimal literal.
type IntLiteral uint64

// IdentRef refers to a name bound in the environment.
type IdentRef string

// StringLiteral is a double-quoted string with escapes already decoded.
type StringLiteral string

// Tag identifies the kind of a tagged string.
type Tag string

// TagRegex marks a regular expression literal, written r"...".
const TagRegex Tag = "r"

// TaggedString is a string literal prefixed by a tag. Text is kept exactly as
// written between the quotes.
type TaggedString struct {
	Tag  Tag
	Text string
}

// CompoundLiteral is a record literal with unique, ordered field names.
type CompoundLiteral struct {
	Fields []Field
}

// Field is one name = expr pair of a compound literal.
type Field struct {
	Name  string
	Value Expr
}

func (BoolLiteral) primary()      {}
func (*Block) primary()           {}
func (IntLiteral) primary()       {}
func (IdentRef) primary()         {}
func (StringLiteral) primary()    {}
func (*TaggedString) primary()    {}
func (*CompoundLiteral) primary() {}
