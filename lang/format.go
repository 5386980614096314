package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes the block in native haksh syntax to the writer, one top-level
// element per line. Nested blocks are indented by indent spaces per level;
// an indent of zero writes every block on a single line.
func (b *Block) Format(_ context.Context, w io.Writer, indent int) error {
	f := formatter{indent: indent}

	sep := "\n"
	if indent == 0 {
		sep = "; "
	}

	for i, el := range b.Elements {
		if i > 0 {
			f.WriteString(sep)
		}

		f.element(el, 0)
	}

	if len(b.Elements) > 0 {
		f.WriteByte('\n')
	}

	_, err := io.WriteString(w, f.String())

	return err
}

// FormatJSON writes the block's syntax tree as JSON to the writer.
func (b *Block) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(b.toNode(), "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(b.toNode())
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the block's syntax tree as YAML to the writer.
func (b *Block) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, b.toNode(), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

// FormatElement renders a single element on one line.
func FormatElement(el BlockElement) string {
	var f formatter

	f.element(el, 0)

	return f.String()
}

// FormatExpr renders a single expression on one line.
func FormatExpr(e Expr) string {
	var f formatter

	f.expr(e, 0)

	return f.String()
}

type formatter struct {
	strings.Builder
	indent int
}

func (f *formatter) newline(depth int) {
	f.WriteByte('\n')
	f.WriteString(strings.Repeat(" ", depth*f.indent))
}

func (f *formatter) element(el BlockElement, depth int) {
	switch el := el.(type) {
	case *ExprElement:
		f.expr(el.Expr, depth)
	case *Var:
		f.WriteString("let " + el.Name + " = ")
		f.expr(el.Def, depth)
	case *Using:
		f.WriteString("using " + el.Name + " = ")
		f.expr(el.Def, depth)
	case *AnonymousFunction:
		f.WriteString("fn(" + strings.Join(el.Params, ", ") + ") ")
		f.block(el.Body, depth)
	case *FnDef:
		f.WriteString("fn " + el.Name + "(" + strings.Join(el.Params, ", ") + ") ")
		f.block(el.Body, depth)
	}
}

func (f *formatter) block(b *Block, depth int) {
	if len(b.Elements) == 0 {
		f.WriteString("{}")

		return
	}

	if f.indent == 0 {
		f.WriteString("{ ")

		for i, el := range b.Elements {
			if i > 0 {
				f.WriteString("; ")
			}

			f.element(el, depth+1)
		}

		f.WriteString(" }")

		return
	}

	f.WriteByte('{')

	for _, el := range b.Elements {
		f.newline(depth + 1)
		f.element(el, depth+1)
	}

	f.newline(depth)
	f.WriteByte('}')
}

func (f *formatter) expr(e Expr, depth int) {
	switch e := e.(type) {
	case *AddSub:
		f.binary(e.Left, e.Op.String(), e.Right, depth)
	case *MulDiv:
		f.binary(e.Left, e.Op.String(), e.Right, depth)
	case *Compare:
		f.binary(e.Left, e.Op.String(), e.Right, depth)
	case *If:
		f.WriteString("if ")
		f.expr(e.Cond, depth)
		f.WriteString(" then ")
		f.block(e.Then, depth)
		f.WriteString(" else ")
		f.block(e.Else, depth)
	case *Primary:
		f.primary(e.Value, depth)
	case *FunctionApplication:
		f.WriteString(e.Ident.String())

		for _, opt := range e.Options {
			f.WriteString(" --" + opt.Name + " ")
			f.primary(opt.Value, depth)
		}

		for _, arg := range e.Args {
			f.WriteByte(' ')
			f.primary(arg, depth)
		}
	}
}

// binary writes left op right. Trees produced by the parser never need
// parentheses: the right operand always binds tighter than op.
func (f *formatter) binary(left Expr, op string, right Expr, depth int) {
	f.expr(left, depth)
	f.WriteString(" " + op + " ")
	f.expr(right, depth)
}

func (f *formatter) primary(p PrimaryExpr, depth int) {
	switch p := p.(type) {
	case BoolLiteral:
		f.WriteString(strconv.FormatBool(bool(p)))
	case IntLiteral:
		f.WriteString(strconv.FormatUint(uint64(p), 10))
	case IdentRef:
		f.WriteString(string(p))
	case StringLiteral:
		f.WriteString(strconv.Quote(string(p)))
	case *TaggedString:
		f.WriteString(string(p.Tag) + `"` + p.Text + `"`)
	case *CompoundLiteral:
		f.WriteByte('(')

		for i, fld := range p.Fields {
			if i > 0 {
				f.WriteString(", ")
			}

			f.WriteString(fld.Name + " = ")
			f.expr(fld.Value, depth)
		}

		f.WriteByte(')')
	case *Block:
		f.block(p, depth)
	}
}

// node is the serialized form of every syntax tree node.
type node struct {
	Kind     string   `json:"kind"               yaml:"kind"`
	Name     string   `json:"name,omitempty"     yaml:"name,omitempty"`
	Op       string   `json:"op,omitempty"       yaml:"op,omitempty"`
	Tag      string   `json:"tag,omitempty"      yaml:"tag,omitempty"`
	Value    any      `json:"value,omitempty"    yaml:"value,omitempty"`
	Params   []string `json:"params,omitempty"   yaml:"params,omitempty"`
	Ident    string   `json:"ident,omitempty"    yaml:"ident,omitempty"`
	Options  []*node  `json:"options,omitempty"  yaml:"options,omitempty"`
	Args     []*node  `json:"args,omitempty"     yaml:"args,omitempty"`
	Def      *node    `json:"def,omitempty"      yaml:"def,omitempty"`
	Left     *node    `json:"left,omitempty"     yaml:"left,omitempty"`
	Right    *node    `json:"right,omitempty"    yaml:"right,omitempty"`
	Cond     *node    `json:"cond,omitempty"     yaml:"cond,omitempty"`
	Then     *node    `json:"then,omitempty"     yaml:"then,omitempty"`
	Else     *node    `json:"else,omitempty"     yaml:"else,omitempty"`
	Body     *node    `json:"body,omitempty"     yaml:"body,omitempty"`
	Elements []*node  `json:"elements,omitempty" yaml:"elements,omitempty"`
	Fields   []*node  `json:"fields,omitempty"   yaml:"fields,omitempty"`
}

func (b *Block) toNode() *node {
	n := &node{Kind: "block", Elements: make([]*node, len(b.Elements))}

	for i, el := range b.Elements {
		n.Elements[i] = elementNode(el)
	}

	return n
}

func elementNode(el BlockElement) *node {
	switch el := el.(type) {
	case *ExprElement:
		return exprNode(el.Expr)
	case *Var:
		return &node{Kind: "let", Name: el.Name, Def: exprNode(el.Def)}
	case *Using:
		return &node{Kind: "using", Name: el.Name, Def: exprNode(el.Def)}
	case *AnonymousFunction:
		return &node{Kind: "fn", Params: el.Params, Body: el.Body.toNode()}
	case *FnDef:
		return &node{
			Kind:   "fn",
			Name:   el.Name,
			Params: el.Params,
			Body:   el.Body.toNode(),
		}
	default:
		return &node{Kind: "unknown"}
	}
}

func exprNode(e Expr) *node {
	switch e := e.(type) {
	case *AddSub:
		return &node{Kind: "add_sub", Op: e.Op.String(),
			Left: exprNode(e.Left), Right: exprNode(e.Right)}
	case *MulDiv:
		return &node{Kind: "mul_div", Op: e.Op.String(),
			Left: exprNode(e.Left), Right: exprNode(e.Right)}
	case *Compare:
		return &node{Kind: "compare", Op: e.Op.String(),
			Left: exprNode(e.Left), Right: exprNode(e.Right)}
	case *If:
		return &node{Kind: "if", Cond: exprNode(e.Cond),
			Then: e.Then.toNode(), Else: e.Else.toNode()}
	case *Primary:
		return primaryNode(e.Value)
	case *FunctionApplication:
		n := &node{Kind: "apply", Ident: e.Ident.String()}

		for _, opt := range e.Options {
			n.Options = append(n.Options,
				&node{Kind: "option", Name: opt.Name, Def: primaryNode(opt.Value)})
		}

		for _, arg := range e.Args {
			n.Args = append(n.Args, primaryNode(arg))
		}

		return n
	default:
		return &node{Kind: "unknown"}
	}
}

func primaryNode(p PrimaryExpr) *node {
	switch p := p.(type) {
	case BoolLiteral:
		return &node{Kind: "bool", Value: bool(p)}
	case IntLiteral:
		return &node{Kind: "int", Value: uint64(p)}
	case IdentRef:
		return &node{Kind: "ident", Name: string(p)}
	case StringLiteral:
		return &node{Kind: "string", Value: string(p)}
	case *TaggedString:
		return &node{Kind: "tagged_string", Tag: string(p.Tag), Value: p.Text}
	case *CompoundLiteral:
		n := &node{Kind: "compound", Fields: make([]*node, 0, len(p.Fields))}

		for _, fld := range p.Fields {
			n.Fields = append(n.Fields,
				&node{Kind: "field", Name: fld.Name, Def: exprNode(fld.Value)})
		}

		return n
	case *Block:
		return p.toNode()
	default:
		return &node{Kind: "unknown"}
	}
}
