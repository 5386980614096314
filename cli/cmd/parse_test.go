package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/haksh/lang"
)

func TestParseJSON(t *testing.T) {
	ctx, out := testSession(t, "let x = 1", nil)

	require.NoError(t, (&Parse{Format: "json", Indent: 0, File: "-"}).Run(ctx))
	assert.JSONEq(t,
		`{"kind":"block","elements":[{"kind":"let","name":"x","def":{"kind":"int","value":1}}]}`,
		out.String())
}

func TestParseYAML(t *testing.T) {
	path := writeScript(t, "x.hk", `let x = "hi"`)

	ctx, out := testSession(t, "", nil)

	require.NoError(t, (&Parse{Format: "yaml", Indent: 2, File: path}).Run(ctx))

	for _, want := range []string{"kind: block", "kind: let", "name: x", "value: hi"} {
		assert.Contains(t, out.String(), want)
	}
}

func TestParseInvalid(t *testing.T) {
	ctx, out := testSession(t, "let x =", nil)

	err := (&Parse{Format: "json", File: "-"}).Run(ctx)
	require.ErrorIs(t, err, lang.ErrParse)
	assert.Empty(t, out.String())
}
