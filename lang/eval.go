package lang

import (
	"context"
	"log/slog"
	"math/bits"
	"regexp"
	"slices"

	"github.com/ardnew/haksh/log"
)

// Interpreter evaluates parsed blocks against an environment.
//
// Evaluation is single-threaded: an Interpreter must not be used by more
// than one goroutine at a time.
type Interpreter struct {
	host         Host
	logger       log.Logger
	builtins     map[string]*builtin
	maxCallDepth int
	callDepth    int
}

// New returns an interpreter configured by opts.
func New(opts ...Option) *Interpreter {
	o := makeOptions(opts...)

	return &Interpreter{
		host:         o.host,
		logger:       o.logger,
		builtins:     builtinTable(),
		maxCallDepth: o.maxCallDepth,
	}
}

// EvalBlock evaluates the elements of b in order and returns the value of the
// last one, or Unit when b is empty. Bindings made inside b are not visible
// to the caller.
func (in *Interpreter) EvalBlock(ctx context.Context, b *Block, env *Env) (Value, error) {
	in.logger.TraceContext(ctx, "eval block",
		slog.Int("elements", len(b.Elements)))

	return in.evalElements(ctx, b.Elements, env)
}

// EvalScript evaluates the elements of b in order like [Interpreter.EvalBlock]
// but returns the environment extended by the top-level bindings of b. A
// using element takes the rest of b as its continuation, so bindings made
// after it are not returned.
func (in *Interpreter) EvalScript(ctx context.Context, b *Block, env *Env) (Value, *Env, error) {
	var v Value = Unit{}

	for i, el := range b.Elements {
		if _, ok := el.(*Using); ok {
			v, err := in.evalElements(ctx, b.Elements[i:], env)
			if err != nil {
				return nil, env, err
			}

			return v, env, nil
		}

		if err := ctx.Err(); err != nil {
			return nil, env, context.Cause(ctx)
		}

		val, next, err := in.EvalLine(ctx, el, env)
		if err != nil {
			return nil, env, err
		}

		v, env = val, next
	}

	return v, env, nil
}

// EvalLine evaluates a single element entered at the interactive prompt and
// returns its value with the environment extended by any binding it makes.
// A using element needs the rest of its block and fails with
// [ErrUsingInLine].
func (in *Interpreter) EvalLine(
	ctx context.Context,
	el BlockElement,
	env *Env,
) (Value, *Env, error) {
	if _, ok := el.(*Using); ok {
		return nil, env, ErrUsingInLine
	}

	v, next, err := in.evalElement(ctx, el, env)
	if err != nil {
		return nil, env, err
	}

	return v, next, nil
}

func (in *Interpreter) evalElements(
	ctx context.Context,
	elems []BlockElement,
	env *Env,
) (Value, error) {
	var result Value = Unit{}

	for i, el := range elems {
		if err := ctx.Err(); err != nil {
			return nil, context.Cause(ctx)
		}

		if u, ok := el.(*Using); ok {
			return in.evalUsing(ctx, u, elems[i+1:], env)
		}

		v, next, err := in.evalElement(ctx, el, env)
		if err != nil {
			return nil, err
		}

		result, env = v, next
	}

	return result, nil
}

// evalElement evaluates any element except using.
func (in *Interpreter) evalElement(
	ctx context.Context,
	el BlockElement,
	env *Env,
) (Value, *Env, error) {
	switch el := el.(type) {
	case *ExprElement:
		v, err := in.EvalExpr(ctx, el.Expr, env)

		return v, env, err

	case *Var:
		v, err := in.EvalExpr(ctx, el.Def, env)
		if err != nil {
			return nil, env, err
		}

		return Unit{}, env.Set(el.Name, v), nil

	case *AnonymousFunction:
		return &Fn{Env: env, Body: el.Body, Params: el.Params}, env, nil

	case *FnDef:
		fn := &Fn{Env: env, Body: el.Body, Params: el.Params, Name: el.Name}

		return fn, env.Set(el.Name, fn), nil

	default:
		return nil, env, ErrTypeMismatch.Detail("unexpected block element %T", el)
	}
}

// evalUsing rewrites "using name = f args; rest" into
// "f args { fn(name) { rest } }" and evaluates the result. The parsed
// elements are shared, never modified.
func (in *Interpreter) evalUsing(
	ctx context.Context,
	u *Using,
	rest []BlockElement,
	env *Env,
) (Value, error) {
	cont := &Block{Elements: []BlockElement{
		&AnonymousFunction{
			Params: []string{u.Name},
			Body:   &Block{Elements: rest},
		},
	}}

	app := *u.Def
	app.Args = append(slices.Clip(u.Def.Args), cont)

	in.logger.TraceContext(ctx, "eval using",
		slog.String("name", u.Name),
		slog.String("call", app.Ident.String()),
		slog.Int("rest", len(rest)))

	return in.EvalExpr(ctx, &app, env)
}

// EvalExpr evaluates a single expression.
func (in *Interpreter) EvalExpr(ctx context.Context, e Expr, env *Env) (Value, error) {
	switch e := e.(type) {
	case *AddSub:
		a, b, err := in.evalOperands(ctx, e.Left, e.Right, env)
		if err != nil {
			return nil, err
		}

		return addSub(a, e.Op, b)

	case *MulDiv:
		a, b, err := in.evalOperands(ctx, e.Left, e.Right, env)
		if err != nil {
			return nil, err
		}

		return mulDiv(a, e.Op, b)

	case *Compare:
		return in.evalCompare(ctx, e, env)

	case *If:
		cond, err := in.EvalExpr(ctx, e.Cond, env)
		if err != nil {
			return nil, err
		}

		b, ok := cond.(Bool)
		if !ok {
			return nil, mismatch(KindBool, cond)
		}

		if b {
			return in.EvalBlock(ctx, e.Then, env)
		}

		return in.EvalBlock(ctx, e.Else, env)

	case *Primary:
		return in.evalPrimary(ctx, e.Value, env)

	case *FunctionApplication:
		return in.evalApplication(ctx, e, env)

	default:
		return nil, ErrTypeMismatch.Detail("unexpected expression %T", e)
	}
}

// evalOperands evaluates left then right, both of which must be UInt64.
func (in *Interpreter) evalOperands(
	ctx context.Context,
	left, right Expr,
	env *Env,
) (UInt64, UInt64, error) {
	l, err := in.EvalExpr(ctx, left, env)
	if err != nil {
		return 0, 0, err
	}

	r, err := in.EvalExpr(ctx, right, env)
	if err != nil {
		return 0, 0, err
	}

	a, ok := l.(UInt64)
	if !ok {
		return 0, 0, mismatch(KindUInt64, l)
	}

	b, ok := r.(UInt64)
	if !ok {
		return 0, 0, mismatch(KindUInt64, r)
	}

	return a, b, nil
}

func addSub(a UInt64, op AddSubOp, b UInt64) (Value, error) {
	if op == Sub {
		diff, borrow := bits.Sub64(uint64(a), uint64(b), 0)
		if borrow != 0 {
			return nil, ErrOverflow.Detail("%d - %d", a, b)
		}

		return UInt64(diff), nil
	}

	sum, carry := bits.Add64(uint64(a), uint64(b), 0)
	if carry != 0 {
		return nil, ErrOverflow.Detail("%d + %d", a, b)
	}

	return UInt64(sum), nil
}

func mulDiv(a UInt64, op MulDivOp, b UInt64) (Value, error) {
	if op == Div {
		if b == 0 {
			return nil, ErrDivisionByZero.Detail("%d / 0", a)
		}

		return a / b, nil
	}

	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 {
		return nil, ErrOverflow.Detail("%d * %d", a, b)
	}

	return UInt64(lo), nil
}

func (in *Interpreter) evalCompare(
	ctx context.Context,
	e *Compare,
	env *Env,
) (Value, error) {
	if e.Op != Eq && e.Op != Ne {
		a, b, err := in.evalOperands(ctx, e.Left, e.Right, env)
		if err != nil {
			return nil, err
		}

		switch e.Op {
		case Lt:
			return Bool(a < b), nil
		case Le:
			return Bool(a <= b), nil
		case Gt:
			return Bool(a > b), nil
		default:
			return Bool(a >= b), nil
		}
	}

	l, err := in.EvalExpr(ctx, e.Left, env)
	if err != nil {
		return nil, err
	}

	r, err := in.EvalExpr(ctx, e.Right, env)
	if err != nil {
		return nil, err
	}

	eq, ok := Equal(l, r)
	if !ok {
		return nil, ErrTypeMismatch.Detail("cannot compare %s %s %s",
			l.Debug(), e.Op, r.Debug())
	}

	return Bool(eq == (e.Op == Eq)), nil
}

func (in *Interpreter) evalPrimary(
	ctx context.Context,
	p PrimaryExpr,
	env *Env,
) (Value, error) {
	switch p := p.(type) {
	case BoolLiteral:
		return Bool(p), nil

	case IntLiteral:
		return UInt64(p), nil

	case StringLiteral:
		return String(p), nil

	case IdentRef:
		v, ok := env.Get(string(p))
		if !ok {
			return nil, ErrUnboundName.Detail("%s", string(p))
		}

		return v, nil

	case *TaggedString:
		if _, err := regexp.Compile(p.Text); err != nil {
			return nil, ErrInvalidRegex.Wrap(err)
		}

		return String(p.Text), nil

	case *CompoundLiteral:
		props := make([]Property, 0, len(p.Fields))

		for _, f := range p.Fields {
			v, err := in.EvalExpr(ctx, f.Value, env)
			if err != nil {
				return nil, err
			}

			props = append(props, Property{Name: f.Name, Value: v})
		}

		return NewCompound(props...), nil

	case *Block:
		return in.EvalBlock(ctx, p, env)

	default:
		return nil, ErrTypeMismatch.Detail("unexpected primary %T", p)
	}
}

// evalApplication resolves a function application: builtins first, then the
// value bound to the outermost identifier segment.
func (in *Interpreter) evalApplication(
	ctx context.Context,
	fa *FunctionApplication,
	env *Env,
) (Value, error) {
	name := fa.Ident.String()

	if b, ok := in.builtins[name]; ok {
		return in.callBuiltin(ctx, b, fa, env)
	}

	v, ok := env.Get(fa.Ident.Path)
	if !ok {
		return nil, ErrUnresolvedCall.Detail("%s", name)
	}

	switch v := v.(type) {
	case String:
		if child := fa.Ident.Child; child != nil &&
			child.Path == "includes" && child.Child == nil {
			return in.includes(ctx, v, fa, env)
		}

	case *Fn:
		if fa.Ident.Child == nil && (len(fa.Args) > 0 || len(fa.Options) > 0) {
			if len(fa.Options) > 0 {
				return nil, ErrUnknownOption.Detail("--%s", fa.Options[0].Name)
			}

			args, err := in.evalArgs(ctx, fa.Args, env)
			if err != nil {
				return nil, err
			}

			return in.Apply(ctx, v, args)
		}
	}

	return v, nil
}

// includes reports whether s matches the regular expression given as the
// single argument of s.includes.
func (in *Interpreter) includes(
	ctx context.Context,
	s String,
	fa *FunctionApplication,
	env *Env,
) (Value, error) {
	if len(fa.Options) > 0 {
		return nil, ErrUnknownOption.Detail("--%s", fa.Options[0].Name)
	}

	if len(fa.Args) != 1 {
		return nil, ErrArityMismatch.Detail("expected 1, got %d", len(fa.Args))
	}

	arg, err := in.evalPrimary(ctx, fa.Args[0], env)
	if err != nil {
		return nil, err
	}

	pat, ok := arg.(String)
	if !ok {
		return nil, mismatch(KindString, arg)
	}

	re, err := regexp.Compile(string(pat))
	if err != nil {
		return nil, ErrInvalidRegex.Wrap(err)
	}

	return Bool(re.MatchString(string(s))), nil
}

func (in *Interpreter) evalArgs(
	ctx context.Context,
	args []PrimaryExpr,
	env *Env,
) ([]Value, error) {
	vals := make([]Value, 0, len(args))

	for _, a := range args {
		v, err := in.evalPrimary(ctx, a, env)
		if err != nil {
			return nil, err
		}

		vals = append(vals, v)
	}

	return vals, nil
}

// Apply calls f with args. The closure's own name, if any, is bound to f
// and then each parameter to the argument in the same position. Arguments
// beyond the parameters are ignored.
func (in *Interpreter) Apply(ctx context.Context, f *Fn, args []Value) (Value, error) {
	if len(args) < len(f.Params) {
		return nil, ErrArityMismatch.Detail("expected %d, got %d",
			len(f.Params), len(args))
	}

	if in.maxCallDepth > 0 && in.callDepth >= in.maxCallDepth {
		return nil, ErrCallDepth.Detail("%d", in.maxCallDepth)
	}

	in.callDepth++
	defer func() { in.callDepth-- }()

	in.logger.TraceContext(ctx, "apply fn",
		slog.String("fn", f.String()),
		slog.Int("args", len(args)),
		slog.Int("depth", in.callDepth))

	env := f.Env
	if f.Name != "" {
		env = env.Set(f.Name, f)
	}

	for i, name := range f.Params {
		env = env.Set(name, args[i])
	}

	return in.EvalBlock(ctx, f.Body, env)
}

// mismatch reports that got is not of the wanted kind.
func mismatch(want Kind, got Value) *Error {
	return ErrTypeMismatch.Detail("expected %s, got %s", want, got.Debug())
}
