package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/haksh/log"
)

func TestLogConfigScan(t *testing.T) {
	t.Cleanup(func() { log.Config(log.WithDefaults(os.Stderr)) })

	tests := []struct {
		name string
		args []string
		want logConfig
	}{
		{
			name: "separate values",
			args: []string{"run", "--log-level", "debug", "--log-format", "text"},
			want: logConfig{Level: "debug", Format: "text"},
		},
		{
			name: "assigned values",
			args: []string{"--log-level=warn", "repl"},
			want: logConfig{Level: "warn"},
		},
		{
			name: "booleans",
			args: []string{"--log-caller", "--no-log-pretty"},
			want: logConfig{Caller: true},
		},
		{
			name: "assigned booleans",
			args: []string{"--log-caller=false", "--no-log-pretty=false"},
			want: logConfig{Pretty: true},
		},
		{
			name: "missing value",
			args: []string{"--log-level", "--log-caller"},
			want: logConfig{Caller: true},
		},
		{
			name: "unrelated flags",
			args: []string{"--define", "log-level=x", "--log-levels=x", "--no-log-level"},
			want: logConfig{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got logConfig

			got.scan(tt.args)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogConfigStartFile(t *testing.T) {
	t.Cleanup(func() { log.Config(log.WithDefaults(os.Stderr)) })

	path := filepath.Join(t.TempDir(), "haksh.log")
	f := logConfig{
		Level:      "info",
		Format:     "json",
		TimeLayout: "RFC3339",
		File:       path,
	}

	stop, err := f.start(context.Background())
	require.NoError(t, err)

	log.Info("script loaded")
	stop()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"script loaded"`)
}

func TestLogConfigStartFileError(t *testing.T) {
	f := logConfig{File: filepath.Join(t.TempDir(), "missing", "haksh.log")}

	stop, err := f.start(context.Background())
	require.Error(t, err)
	assert.NotNil(t, stop)
}
