package lang

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// variadic marks a builtin that accepts any number of arguments.
const variadic = -1

// builtin is one entry of the closed table of named operations.
type builtin struct {
	name    string
	arity   int
	params  []string
	options []string
	call    func(ctx context.Context, in *Interpreter, c *call) (Value, error)
}

// call holds the evaluated arguments and options of a builtin application.
type call struct {
	name string
	args []Value
	opts map[string]Value
}

func builtinTable() map[string]*builtin {
	table := []*builtin{
		{name: "fs.cwd", arity: 0, call: fsCwd},
		{
			name: "println", arity: variadic, params: []string{"values"},
			options: []string{"sep"}, call: printLine,
		},
		{name: "twice", arity: 1, params: []string{"f"}, call: twice},
		{
			name: "http.get", arity: 1, params: []string{"url"},
			options: []string{"timeout"}, call: httpGet,
		},
		{
			name: "http.post.json", arity: 2, params: []string{"url", "body"},
			options: []string{"timeout"}, call: httpPostJSON,
		},
		{
			name: "fs.watch", arity: 2, params: []string{"path", "f"},
			options: []string{"interval"}, call: fsWatch,
		},
	}

	m := make(map[string]*builtin, len(table))
	for _, b := range table {
		m[b.name] = b
	}

	return m
}

// Builtins returns the dotted names of the builtin operations, sorted.
func Builtins() []string {
	return sortedKeys(builtinTable())
}

// Signature describes the parameters of a builtin operation.
type Signature struct {
	Name     string
	Params   []string
	Options  []string
	Variadic bool
}

// String formats s as a usage line, e.g. "fs.watch [--interval] path f".
func (s Signature) String() string {
	part := []string{s.Name}

	for _, o := range s.Options {
		part = append(part, "[--"+o+"]")
	}

	for i, p := range s.Params {
		if s.Variadic && i == len(s.Params)-1 {
			p += "..."
		}

		part = append(part, p)
	}

	return strings.Join(part, " ")
}

// BuiltinSignature returns the signature of the named builtin.
func BuiltinSignature(name string) (Signature, bool) {
	b, ok := builtinTable()[name]
	if !ok {
		return Signature{}, false
	}

	return Signature{
		Name:     b.name,
		Params:   slices.Clone(b.params),
		Options:  slices.Clone(b.options),
		Variadic: b.arity == variadic,
	}, true
}

// callBuiltin evaluates the arguments of fa left to right, then its options,
// and invokes b.
func (in *Interpreter) callBuiltin(
	ctx context.Context,
	b *builtin,
	fa *FunctionApplication,
	env *Env,
) (Value, error) {
	for _, opt := range fa.Options {
		if !slices.Contains(b.options, opt.Name) {
			return nil, ErrUnknownOption.Detail("--%s for %s", opt.Name, b.name)
		}
	}

	args, err := in.evalArgs(ctx, fa.Args, env)
	if err != nil {
		return nil, err
	}

	if b.arity != variadic && len(args) != b.arity {
		return nil, ErrArityMismatch.Detail("expected %d, got %d",
			b.arity, len(args)).With(slog.String("builtin", b.name))
	}

	c := &call{name: b.name, args: args, opts: make(map[string]Value)}

	for _, opt := range fa.Options {
		v, err := in.evalPrimary(ctx, opt.Value, env)
		if err != nil {
			return nil, err
		}

		c.opts[opt.Name] = v
	}

	in.logger.TraceContext(ctx, "builtin call",
		slog.String("builtin", b.name),
		slog.Int("args", len(args)),
		slog.Int("options", len(c.opts)))

	return b.call(ctx, in, c)
}

// stringArg returns argument i as a String.
func (c *call) stringArg(i int) (String, error) {
	s, ok := c.args[i].(String)
	if !ok {
		return "", mismatch(KindString, c.args[i]).With(slog.String("builtin", c.name))
	}

	return s, nil
}

// fnArg returns argument i as a closure.
func (c *call) fnArg(i int) (*Fn, error) {
	f, ok := c.args[i].(*Fn)
	if !ok {
		return nil, ErrNotCallable.Detail("expected Fn, got %s", c.args[i].Debug()).
			With(slog.String("builtin", c.name))
	}

	return f, nil
}

// duration returns the UInt64 option name scaled by unit, or zero when the
// option is absent.
func (c *call) duration(name string, unit time.Duration) (time.Duration, error) {
	v, ok := c.opts[name]
	if !ok {
		return 0, nil
	}

	n, ok := v.(UInt64)
	if !ok {
		return 0, mismatch(KindUInt64, v).With(slog.String("option", name))
	}

	return time.Duration(n) * unit, nil
}

// hostError wraps failures reported by the host in [ErrHost].
func hostError(name string, err error) error {
	if errors.Is(err, ErrHost) {
		return err
	}

	return ErrHost.Wrap(err).With(slog.String("builtin", name))
}

func fsCwd(_ context.Context, in *Interpreter, c *call) (Value, error) {
	dir, err := in.host.Getwd()
	if err != nil {
		return nil, hostError(c.name, err)
	}

	return String(dir), nil
}

func printLine(_ context.Context, in *Interpreter, c *call) (Value, error) {
	sep := " "

	if v, ok := c.opts["sep"]; ok {
		s, ok := v.(String)
		if !ok {
			return nil, mismatch(KindString, v).With(slog.String("option", "sep"))
		}

		sep = string(s)
	}

	part := make([]string, len(c.args))
	for i, a := range c.args {
		part[i] = a.Debug()
	}

	if _, err := fmt.Fprintln(in.host.Stdout(), strings.Join(part, sep)); err != nil {
		return nil, hostError(c.name, err)
	}

	return Unit{}, nil
}

func twice(ctx context.Context, in *Interpreter, c *call) (Value, error) {
	f, err := c.fnArg(0)
	if err != nil {
		return nil, err
	}

	for range 2 {
		if _, err := in.Apply(ctx, f, []Value{Unit{}}); err != nil {
			return nil, err
		}
	}

	return Unit{}, nil
}

func httpGet(ctx context.Context, in *Interpreter, c *call) (Value, error) {
	url, err := c.stringArg(0)
	if err != nil {
		return nil, err
	}

	timeout, err := c.duration("timeout", time.Second)
	if err != nil {
		return nil, err
	}

	body, err := in.host.Get(ctx, string(url), timeout)
	if err != nil {
		return nil, hostError(c.name, err)
	}

	return responseBody(c.name, body)
}

func httpPostJSON(ctx context.Context, in *Interpreter, c *call) (Value, error) {
	url, err := c.stringArg(0)
	if err != nil {
		return nil, err
	}

	data, ok := c.args[1].(*Compound)
	if !ok {
		return nil, mismatch(KindCompound, c.args[1]).With(slog.String("builtin", c.name))
	}

	timeout, err := c.duration("timeout", time.Second)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			return nil, e.With(slog.String("builtin", c.name))
		}

		return nil, ErrTypeMismatch.Wrap(err)
	}

	body, err := in.host.PostJSON(ctx, string(url), payload, timeout)
	if err != nil {
		return nil, hostError(c.name, err)
	}

	return responseBody(c.name, body)
}

func responseBody(name, body string) (Value, error) {
	if !utf8.ValidString(body) {
		return nil, ErrHost.Detail("response body is not valid UTF-8").
			With(slog.String("builtin", name))
	}

	return String(body), nil
}

func fsWatch(ctx context.Context, in *Interpreter, c *call) (Value, error) {
	path, err := c.stringArg(0)
	if err != nil {
		return nil, err
	}

	f, err := c.fnArg(1)
	if err != nil {
		return nil, err
	}

	interval, err := c.duration("interval", time.Millisecond)
	if err != nil {
		return nil, err
	}

	var cbErr error

	err = in.host.Watch(ctx, string(path), interval, func(line string) error {
		if _, err := in.Apply(ctx, f, []Value{String(line)}); err != nil {
			cbErr = err

			return err
		}

		return nil
	})

	if cbErr != nil {
		return nil, cbErr
	}

	if ctx.Err() != nil {
		return nil, context.Cause(ctx)
	}

	if err != nil {
		return nil, hostError(c.name, err)
	}

	return Unit{}, nil
}
