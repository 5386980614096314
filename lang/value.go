package lang

//go:generate go tool stringer --linecomment --type Kind,AddSubOp,MulDivOp,CompareOp --output string.go

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Kind discriminates the runtime value variants.
type Kind int

const (
	KindUInt64   Kind = iota // UInt64
	KindBool                 // Bool
	KindString               // String
	KindUnit                 // Unit
	KindCompound             // Compound
	KindFn                   // Fn
)

// Value is one of [UInt64], [Bool], [String], [Unit], [*Compound], or [*Fn].
type Value interface {
	Kind() Kind
	// String renders the value the way it would be written in source.
	String() string
	// Debug renders the value tagged with its kind, e.g. UInt64(14).
	Debug() string
}

type (
	// UInt64 is an unsigned 64-bit integer.
	UInt64 uint64
	// Bool is a boolean.
	Bool bool
	// String is a UTF-8 string.
	String string
	// Unit is the empty value.
	Unit struct{}
)

func (UInt64) Kind() Kind { return KindUInt64 }
func (Bool) Kind() Kind   { return KindBool }
func (String) Kind() Kind { return KindString }
func (Unit) Kind() Kind   { return KindUnit }

func (v UInt64) String() string { return strconv.FormatUint(uint64(v), 10) }
func (v Bool) String() string   { return strconv.FormatBool(bool(v)) }
func (v String) String() string { return strconv.Quote(string(v)) }
func (Unit) String() string     { return "()" }

func (v UInt64) Debug() string { return "UInt64(" + v.String() + ")" }
func (v Bool) Debug() string   { return "Bool(" + v.String() + ")" }
func (v String) Debug() string { return "String(" + v.String() + ")" }
func (Unit) Debug() string     { return "Unit" }

// MarshalJSON encodes Unit as null.
func (Unit) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// Property is one named field of a [Compound].
type Property struct {
	Name  string
	Value Value
}

// Compound is a record with ordered, uniquely named fields.
type Compound struct {
	props []Property
}

// NewCompound returns a compound holding props in the given order. When a
// name repeats, the later value replaces the earlier one in place.
func NewCompound(props ...Property) *Compound {
	c := &Compound{props: make([]Property, 0, len(props))}

	for _, p := range props {
		if i := c.index(p.Name); i >= 0 {
			c.props[i].Value = p.Value

			continue
		}

		c.props = append(c.props, p)
	}

	return c
}

func (c *Compound) index(name string) int {
	for i, p := range c.props {
		if p.Name == name {
			return i
		}
	}

	return -1
}

// Get returns the value of the named field.
func (c *Compound) Get(name string) (Value, bool) {
	if i := c.index(name); i >= 0 {
		return c.props[i].Value, true
	}

	return nil, false
}

// Properties returns the fields in order. The slice must not be modified.
func (c *Compound) Properties() []Property { return c.props }

// Len returns the number of fields.
func (c *Compound) Len() int { return len(c.props) }

func (*Compound) Kind() Kind { return KindCompound }

func (c *Compound) String() string {
	part := make([]string, len(c.props))
	for i, p := range c.props {
		part[i] = p.Name + " = " + p.Value.String()
	}

	return "(" + strings.Join(part, ", ") + ")"
}

func (c *Compound) Debug() string {
	if len(c.props) == 0 {
		return "Compound {}"
	}

	part := make([]string, len(c.props))
	for i, p := range c.props {
		part[i] = p.Name + ": " + p.Value.Debug()
	}

	return "Compound { " + strings.Join(part, ", ") + " }"
}

// MarshalJSON encodes the compound as an object with fields in order.
// A field holding a function cannot be encoded.
func (c *Compound) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, p := range c.props {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(p.Name)
		if err != nil {
			return nil, err
		}

		val, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// Fn is a closure: a body with the environment it was created in.
// Name is empty for anonymous functions; otherwise the body may refer to the
// closure itself by Name.
type Fn struct {
	Env    *Env
	Body   *Block
	Params []string
	Name   string
}

func (*Fn) Kind() Kind { return KindFn }

func (f *Fn) String() string {
	name := "fn"
	if f.Name != "" {
		name += " " + f.Name
	}

	return name + "(" + strings.Join(f.Params, ", ") + ")"
}

func (f *Fn) Debug() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = strconv.Quote(p)
	}

	return "Fn { name: " + strconv.Quote(f.Name) +
		", params: [" + strings.Join(params, ", ") + "] }"
}

// MarshalJSON always fails; closures have no JSON form.
func (f *Fn) MarshalJSON() ([]byte, error) {
	return nil, ErrTypeMismatch.Detail("cannot encode %s as JSON", f.String())
}

// Equal reports whether a and b hold the same value. The second result is
// false when a and b are not scalars of the same kind and so cannot be
// compared.
func Equal(a, b Value) (bool, bool) {
	if a.Kind() != b.Kind() {
		return false, false
	}

	switch a.(type) {
	case UInt64, Bool, String, Unit:
		return a == b, true
	default:
		return false, false
	}
}
