package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/haksh/lang"
)

func TestDefines(t *testing.T) {
	env, err := defines(context.Background(), []string{
		"n = 6 * 7",
		`greeting="hello, " + "world"`,
		"ok=n > 40",
		"cfg={port: 8080, host: 'localhost', debug: false}",
		"none=nil",
		"twice=n * 2",
	})
	require.NoError(t, err)

	get := func(name string) lang.Value {
		v, ok := env.Get(name)
		require.True(t, ok, name)

		return v
	}

	assert.Equal(t, lang.UInt64(42), get("n"))
	assert.Equal(t, lang.String("hello, world"), get("greeting"))
	assert.Equal(t, lang.Bool(true), get("ok"))
	assert.Equal(t, lang.Unit{}, get("none"))
	assert.Equal(t, lang.UInt64(84), get("twice"))
	assert.Equal(t, `(debug = false, host = "localhost", port = 8080)`, get("cfg").String())
}

func TestDefines_Empty(t *testing.T) {
	env, err := defines(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, env.Len())
}

func TestDefines_Errors(t *testing.T) {
	for _, def := range []string{
		"novalue",
		"=1",
		"let=1",
		"a.b=1",
		"x=1 +",
		"x=-1",
		"x=1.5",
		"x=[1, 2]",
		"x={'not ok': 1}",
	} {
		t.Run(def, func(t *testing.T) {
			_, err := defines(context.Background(), []string{def})
			assert.ErrorIs(t, err, ErrDefine)
		})
	}
}

func TestToValue(t *testing.T) {
	tests := []struct {
		in   any
		want lang.Value
	}{
		{uint(3), lang.UInt64(3)},
		{uint64(4), lang.UInt64(4)},
		{int64(5), lang.UInt64(5)},
		{2.0, lang.UInt64(2)},
		{"s", lang.String("s")},
	}

	for _, tt := range tests {
		got, err := toValue(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
