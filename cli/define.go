package cli

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/ardnew/haksh/lang"
	"github.com/ardnew/haksh/log"
)

// ErrDefine reports a malformed or unevaluable --define flag.
var ErrDefine = lang.NewError("invalid definition")

// defines evaluates each "NAME=EXPR" definition in order and binds the
// result in a new environment. EXPR is an expr-lang expression that may
// refer to the names defined before it.
func defines(ctx context.Context, defs []string) (*lang.Env, error) {
	var (
		env  *lang.Env
		vars = make(map[string]any, len(defs))
	)

	for _, def := range defs {
		name, input, ok := strings.Cut(def, "=")
		name = strings.TrimSpace(name)

		if !ok || !lang.IsIdentifier(name) {
			return nil, ErrDefine.Detail("expected NAME=EXPR").
				With(slog.String("define", def))
		}

		out, err := expr.Eval(input, vars)
		if err != nil {
			return nil, ErrDefine.Wrap(err).With(slog.String("name", name))
		}

		v, err := toValue(out)
		if err != nil {
			return nil, ErrDefine.Wrap(err).With(slog.String("name", name))
		}

		log.DebugContext(ctx, "define",
			slog.String("name", name),
			slog.String("value", v.Debug()))

		vars[name] = out
		env = env.Set(name, v)
	}

	return env, nil
}

// toValue converts the result of an expr-lang expression to a haksh value.
// Integers must be non-negative, and floats must also be integral. Maps
// become compounds with their keys in sorted order.
func toValue(v any) (lang.Value, error) {
	switch v := v.(type) {
	case nil:
		return lang.Unit{}, nil

	case bool:
		return lang.Bool(v), nil

	case string:
		return lang.String(v), nil

	case int:
		return toUInt64(int64(v))

	case int64:
		return toUInt64(v)

	case uint:
		return lang.UInt64(v), nil

	case uint64:
		return lang.UInt64(v), nil

	case float64:
		if v < 0 || v != math.Trunc(v) || v >= math.MaxUint64 {
			return nil, fmt.Errorf("%v is not an unsigned integer", v)
		}

		return lang.UInt64(v), nil

	case map[string]any:
		props := make([]lang.Property, 0, len(v))

		for _, k := range slices.Sorted(maps.Keys(v)) {
			if !lang.IsIdentifier(k) {
				return nil, fmt.Errorf("%q is not a valid property name", k)
			}

			pv, err := toValue(v[k])
			if err != nil {
				return nil, err
			}

			props = append(props, lang.Property{Name: k, Value: pv})
		}

		return lang.NewCompound(props...), nil

	default:
		return nil, fmt.Errorf("unsupported value %v of type %T", v, v)
	}
}

func toUInt64(n int64) (lang.Value, error) {
	if n < 0 {
		return nil, fmt.Errorf("%d is negative", n)
	}

	return lang.UInt64(n), nil
}
