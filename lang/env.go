package lang

import "iter"

// Env is an immutable chain of name bindings. The nil *Env is the empty
// environment and is ready to use.
//
// Extending an Env with [Env.Set] allocates one link and shares the rest of
// the chain, so closures may capture an Env and hold it for as long as they
// live without copying.
type Env struct {
	name   string
	value  Value
	parent *Env
}

// NewEnv returns an environment holding the given bindings, applied in
// order. A later binding shadows an earlier one with the same name.
func NewEnv(bindings ...Binding) *Env {
	var env *Env

	for _, b := range bindings {
		env = env.Set(b.Name, b.Value)
	}

	return env
}

// Binding pairs a name with its value.
type Binding struct {
	Name  string
	Value Value
}

// Get returns the innermost value bound to name.
func (e *Env) Get(name string) (Value, bool) {
	for ; e != nil; e = e.parent {
		if e.name == name {
			return e.value, true
		}
	}

	return nil, false
}

// Set returns a new environment with name bound to value. The receiver is
// not modified.
func (e *Env) Set(name string, value Value) *Env {
	return &Env{name: name, value: value, parent: e}
}

// All yields every visible binding, innermost first. Shadowed bindings are
// skipped.
func (e *Env) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		seen := make(map[string]struct{})

		for ; e != nil; e = e.parent {
			if _, ok := seen[e.name]; ok {
				continue
			}

			seen[e.name] = struct{}{}

			if !yield(e.name, e.value) {
				return
			}
		}
	}
}

// Names returns the visible names, innermost first.
func (e *Env) Names() []string {
	var names []string

	for name := range e.All() {
		names = append(names, name)
	}

	return names
}

// Len returns the number of visible names.
func (e *Env) Len() int {
	n := 0

	for range e.All() {
		n++
	}

	return n
}
