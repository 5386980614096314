package cli

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/ardnew/haksh/pkg"
)

// baseConfig is the base name of the configuration files.
const baseConfig = "config"

// defaultDirMode is the permission mode of created directories.
var defaultDirMode os.FileMode = 0o700

// configDir returns the haksh directory under the user configuration
// directory, e.g. ~/.config/haksh. It holds config.json and config.yaml.
var configDir = sync.OnceValue(func() string {
	return appDir(os.UserConfigDir, ".config")
})

// cacheDir returns the haksh directory under the user cache directory. It
// holds the REPL history and pprof output.
var cacheDir = sync.OnceValue(func() string {
	return appDir(os.UserCacheDir, ".cache")
})

// appDir joins [pkg.Name] to the directory reported by userDir. When userDir
// fails, the hidden directory under $HOME is used instead, and failing that
// the working directory.
func appDir(userDir func() (string, error), hidden string) string {
	dir, err := userDir()
	if err != nil {
		if home, herr := os.UserHomeDir(); herr == nil {
			dir = filepath.Join(home, hidden)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, pkg.Name)
}

// configPath returns the path formed by joining the configuration directory
// with the given path elements.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
