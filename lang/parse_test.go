package lang

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func num(n uint64) *Primary { return &Primary{Value: IntLiteral(n)} }

func ref(name string) *FunctionApplication {
	return &FunctionApplication{Ident: NewIdentifier(name)}
}

func TestParseBlock_Expressions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Expr
	}{
		{
			name:  "multiplication binds tighter",
			input: "2 + 3 * 4",
			want: &AddSub{
				Left:  num(2),
				Op:    Add,
				Right: &MulDiv{Left: num(3), Op: Mul, Right: num(4)},
			},
		},
		{
			name:  "subtraction folds left",
			input: "10 - 3 - 2",
			want: &AddSub{
				Left:  &AddSub{Left: num(10), Op: Sub, Right: num(3)},
				Op:    Sub,
				Right: num(2),
			},
		},
		{
			name:  "division folds left",
			input: "8 / 4 / 2",
			want: &MulDiv{
				Left:  &MulDiv{Left: num(8), Op: Div, Right: num(4)},
				Op:    Div,
				Right: num(2),
			},
		},
		{
			name:  "comparison below arithmetic",
			input: "a + 1 <= 2",
			want: &Compare{
				Left:  &AddSub{Left: ref("a"), Op: Add, Right: num(1)},
				Op:    Le,
				Right: num(2),
			},
		},
		{
			name:  "newline after operator",
			input: "1 +\n  2",
			want:  &AddSub{Left: num(1), Op: Add, Right: num(2)},
		},
		{
			name:  "braces group",
			input: "{2 + 3} * 4",
			want: &MulDiv{
				Left: &Primary{Value: &Block{Elements: []BlockElement{
					&ExprElement{Expr: &AddSub{Left: num(2), Op: Add, Right: num(3)}},
				}}},
				Op:    Mul,
				Right: num(4),
			},
		},
		{
			name:  "application with options and arguments",
			input: `println --sep "," a 1 true`,
			want: &FunctionApplication{
				Ident:   NewIdentifier("println"),
				Options: []Flag{{Name: "sep", Value: StringLiteral(",")}},
				Args:    []PrimaryExpr{IdentRef("a"), IntLiteral(1), BoolLiteral(true)},
			},
		},
		{
			name:  "dotted application with compound",
			input: `http.post.json "http://h" (a = 1, b = x)`,
			want: &FunctionApplication{
				Ident: NewIdentifier("http", "post", "json"),
				Args: []PrimaryExpr{
					StringLiteral("http://h"),
					&CompoundLiteral{Fields: []Field{
						{Name: "a", Value: num(1)},
						{Name: "b", Value: ref("x")},
					}},
				},
			},
		},
		{
			name:  "application binds tighter than operators",
			input: "f x - 1",
			want: &AddSub{
				Left: &FunctionApplication{
					Ident: NewIdentifier("f"),
					Args:  []PrimaryExpr{IdentRef("x")},
				},
				Op:    Sub,
				Right: num(1),
			},
		},
		{
			name:  "if expression",
			input: "if a then { 1 } else { 2 }",
			want: &If{
				Cond: ref("a"),
				Then: &Block{Elements: []BlockElement{&ExprElement{Expr: num(1)}}},
				Else: &Block{Elements: []BlockElement{&ExprElement{Expr: num(2)}}},
			},
		},
		{
			name:  "regex literal",
			input: `s.includes r"a\"b+"`,
			want: &FunctionApplication{
				Ident: NewIdentifier("s", "includes"),
				Args:  []PrimaryExpr{&TaggedString{Tag: TagRegex, Text: `a\"b+`}},
			},
		},
		{
			name:  "escaped string",
			input: `"tab\there"`,
			want:  &Primary{Value: StringLiteral("tab\there")},
		},
		{
			name:  "empty compound",
			input: "f ()",
			want: &FunctionApplication{
				Ident: NewIdentifier("f"),
				Args:  []PrimaryExpr{&CompoundLiteral{Fields: []Field{}}},
			},
		},
		{
			name:  "keyword prefix is an identifier",
			input: "letter",
			want:  ref("letter"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ParseBlock(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if len(b.Elements) != 1 {
				t.Fatalf("expected 1 element, got %d", len(b.Elements))
			}

			el, ok := b.Elements[0].(*ExprElement)
			if !ok {
				t.Fatalf("expected *ExprElement, got %T", b.Elements[0])
			}

			if !reflect.DeepEqual(el.Expr, tt.want) {
				t.Errorf("got %s, want %s", FormatExpr(el.Expr), FormatExpr(tt.want))
			}
		})
	}
}

func TestParseBlock_Elements(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  BlockElement
	}{
		{
			name:  "let",
			input: "let x = 1",
			want:  &Var{Name: "x", Def: num(1)},
		},
		{
			name:  "let with newline after equals",
			input: "let x =\n  1",
			want:  &Var{Name: "x", Def: num(1)},
		},
		{
			name:  "unicode name",
			input: "let 変数 = 1",
			want:  &Var{Name: "変数", Def: num(1)},
		},
		{
			name:  "using",
			input: `using line = fs.watch "p"`,
			want: &Using{Name: "line", Def: &FunctionApplication{
				Ident: NewIdentifier("fs", "watch"),
				Args:  []PrimaryExpr{StringLiteral("p")},
			}},
		},
		{
			name:  "named function",
			input: "fn inc(n) { n + 1 }",
			want: &FnDef{
				Name:   "inc",
				Params: []string{"n"},
				Body: &Block{Elements: []BlockElement{
					&ExprElement{Expr: &AddSub{Left: ref("n"), Op: Add, Right: num(1)}},
				}},
			},
		},
		{
			name:  "anonymous function",
			input: "fn(a, b) {}",
			want: &AnonymousFunction{
				Params: []string{"a", "b"},
				Body:   &Block{Elements: []BlockElement{}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ParseBlock(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if len(b.Elements) != 1 {
				t.Fatalf("expected 1 element, got %d", len(b.Elements))
			}

			if !reflect.DeepEqual(b.Elements[0], tt.want) {
				t.Errorf("got %s, want %s",
					FormatElement(b.Elements[0]), FormatElement(tt.want))
			}
		})
	}
}

func TestParseBlock_Separators(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "empty", input: "", want: 0},
		{name: "only separators", input: "\n;\n ; ", want: 0},
		{name: "semicolons", input: "1; 2; 3", want: 3},
		{name: "newlines", input: "1\n2\n3", want: 3},
		{name: "mixed and repeated", input: "\n\n1;;\n2\r\n", want: 2},
		{name: "comments", input: "1 # one\n# nothing here\n2", want: 2},
		{name: "multi-line block", input: "fn f(x) {\n  let y = x\n\n  y\n}\nf 1", want: 2},
		{
			name:  "multi-line if",
			input: "if a\nthen { 1 }\nelse { 2 }",
			want:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ParseBlock(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if len(b.Elements) != tt.want {
				t.Errorf("expected %d elements, got %d", tt.want, len(b.Elements))
			}
		})
	}
}

func TestParseBlock_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "dangling operator", input: "1 +"},
		{name: "missing name", input: "let = 1"},
		{name: "keyword as name", input: "let then = 1"},
		{name: "let is reserved", input: "let let = 1"},
		{name: "using is reserved", input: "let using = 1"},
		{name: "using binds no keyword", input: "using fn = f 1"},
		{name: "keyword reference", input: "using + 1"},
		{name: "duplicate field", input: "f (a = 1, a = 2)"},
		{name: "duplicate option", input: "f --x 1 --x 2"},
		{name: "duplicate parameter", input: "fn f(a, a) {}"},
		{name: "integer overflow", input: "18446744073709551616"},
		{name: "chained comparison", input: "1 < 2 < 3"},
		{name: "unclosed block", input: "{ 1"},
		{name: "unclosed string", input: `"abc`},
		{name: "missing separator", input: "1 2"},
		{name: "missing else", input: "if a then { 1 }"},
		{name: "using a literal", input: "using x = 1"},
		{name: "trailing dot", input: "fs."},
		{name: "bad escape", input: `"\q"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBlock(context.Background(), tt.input)
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			if !errors.Is(err, ErrParse) {
				t.Errorf("expected ErrParse, got %v", err)
			}

			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T", err)
			}

			if pe.Source != tt.input {
				t.Errorf("expected source %q, got %q", tt.input, pe.Source)
			}
		})
	}
}

func TestParseError_Position(t *testing.T) {
	_, err := ParseBlock(context.Background(), "let x = 1\nlet y = +")

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}

	if pe.Line != 2 || pe.Column != 9 {
		t.Errorf("expected 2:9, got %d:%d", pe.Line, pe.Column)
	}

	if pe.Expected != "primary expression" {
		t.Errorf("expected %q, got %q", "primary expression", pe.Expected)
	}

	if pe.Remainder != "+" {
		t.Errorf("expected remainder %q, got %q", "+", pe.Remainder)
	}
}

func TestParseError_Message(t *testing.T) {
	_, err := ParseBlock(context.Background(), "1 +")
	if err == nil {
		t.Fatal("expected error")
	}

	want := "parse error at line 1, column 4: expected primary expression\n" +
		"  1 | 1 +\n" +
		"         ^"

	if err.Error() != want {
		t.Errorf("got:\n%s\nwant:\n%s", err.Error(), want)
	}
}

func TestParseBlock_MaxDepth(t *testing.T) {
	ctx := context.Background()

	if _, err := ParseBlock(ctx, "{{1}}", WithMaxDepth(2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := ParseBlock(ctx, "{{{1}}}", WithMaxDepth(2))
	if !errors.Is(err, ErrParse) {
		t.Errorf("expected ErrParse, got %v", err)
	}
}

func TestParseLine(t *testing.T) {
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		for _, input := range []string{"", "   ", "# just a comment", "\n"} {
			if _, err := ParseLine(ctx, input); !errors.Is(err, ErrEmptyInput) {
				t.Errorf("%q: expected ErrEmptyInput, got %v", input, err)
			}
		}
	})

	t.Run("single element", func(t *testing.T) {
		el, err := ParseLine(ctx, "let x = 1;")
		if err != nil {
			t.Fatalf("parse error: %v", err)
		}

		if _, ok := el.(*Var); !ok {
			t.Errorf("expected *Var, got %T", el)
		}
	})

	t.Run("must consume all input", func(t *testing.T) {
		if _, err := ParseLine(ctx, "1; 2"); !errors.Is(err, ErrParse) {
			t.Errorf("expected ErrParse, got %v", err)
		}
	})
}
