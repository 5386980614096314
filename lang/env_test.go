package lang

import (
	"slices"
	"testing"
)

func TestEnv_Persistence(t *testing.T) {
	var empty *Env

	if _, ok := empty.Get("x"); ok {
		t.Fatal("empty env should have no bindings")
	}

	one := empty.Set("x", UInt64(1))
	two := one.Set("x", UInt64(2))

	if v, _ := one.Get("x"); v != UInt64(1) {
		t.Errorf("extending an env changed its parent: x = %v", v)
	}

	if v, _ := two.Get("x"); v != UInt64(2) {
		t.Errorf("expected innermost binding, got %v", v)
	}

	if empty.Len() != 0 || one.Len() != 1 || two.Len() != 1 {
		t.Errorf("unexpected lengths %d %d %d", empty.Len(), one.Len(), two.Len())
	}
}

func TestEnv_Names(t *testing.T) {
	env := NewEnv(
		Binding{"a", UInt64(1)},
		Binding{"b", UInt64(2)},
		Binding{"a", UInt64(3)},
		Binding{"c", UInt64(4)},
	)

	want := []string{"c", "a", "b"}
	if got := env.Names(); !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	for name, v := range env.All() {
		if name == "a" && v != UInt64(3) {
			t.Errorf("expected shadowing binding for a, got %v", v)
		}
	}
}
