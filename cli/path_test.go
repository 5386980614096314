package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/haksh/pkg"
)

func TestAppDir(t *testing.T) {
	base := t.TempDir()

	got := appDir(func() (string, error) { return base, nil }, ".config")
	assert.Equal(t, filepath.Join(base, pkg.Name), got)

	t.Setenv("HOME", base)

	got = appDir(func() (string, error) { return "", errors.New("unset") }, ".cache")
	assert.Equal(t, filepath.Join(base, ".cache", pkg.Name), got)
}

func TestMkdirAllRequired(t *testing.T) {
	require.NoError(t, mkdirAllRequired())

	for _, dir := range []string{configDir(), cacheDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir(), dir)
		assert.Equal(t, pkg.Name, filepath.Base(dir))
	}

	assert.Equal(t, filepath.Join(configDir(), "config.yaml"), configPath(baseConfig+".yaml"))
}
