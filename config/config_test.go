package config

import (
	"log/slog"
	"os"
	"testing"

	"github.com/panyam/bpl/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "info", cfg.General.LogLevel)
	assert.Equal(t, parser.DefaultMaxDepth, cfg.Parser.MaxDepth)
	assert.Equal(t, parser.DefaultMinErrDist, cfg.Parser.MinErrorDistance)
	assert.Equal(t, "auto", cfg.Output.Color)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	dir := fs.NewDir(t, "bpl-config", fs.WithFile("bpl.toml", `
[general]
log_level = "debug"

[parser]
max_depth = 50
keep_comments = true

[preprocess]
defines = ["A", "B"]

[output]
format = "yaml"
`))
	defer dir.Remove()

	cfg, err := Load(dir.Join("bpl.toml"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.General.LogLevel)
	assert.Equal(t, 50, cfg.Parser.MaxDepth)
	assert.Equal(t, parser.DefaultMinErrDist, cfg.Parser.MinErrorDistance)
	assert.True(t, cfg.Parser.KeepComments)
	assert.Equal(t, []string{"A", "B"}, cfg.Preprocess.Defines)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, "auto", cfg.Output.Color)

	opts := cfg.LoaderOptions()
	assert.Equal(t, 50, opts.MaxDepth)
	assert.Equal(t, []string{"A", "B"}, opts.Defines)
	assert.True(t, opts.KeepComments)
}

func TestLoadErrors(t *testing.T) {
	dir := fs.NewDir(t, "bpl-config",
		fs.WithFile("broken.toml", "[parser\nmax_depth = 1\n"),
		fs.WithFile("unknown.toml", "[parser]\nmax_dept = 1\n"))
	defer dir.Remove()

	tests := []struct {
		name          string
		path          string
		errorContains string
	}{
		{"missing", dir.Join("absent.toml"), "config file not found"},
		{"syntax", dir.Join("broken.toml"), "failed to parse config"},
		{"unknown key", dir.Join("unknown.toml"), "unknown config keys"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("BPL_LOG_LEVEL", "warn")
	t.Setenv("BPL_MAX_DEPTH", "12")
	t.Setenv("BPL_DEFINES", " X, ,Y ")
	t.Setenv("BPL_COLOR", "never")

	cfg := Default()
	cfg.Preprocess.Defines = []string{"FROM_FILE"}
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "warn", cfg.General.LogLevel)
	assert.Equal(t, 12, cfg.Parser.MaxDepth)
	assert.Equal(t, []string{"X", "Y"}, cfg.Preprocess.Defines)
	assert.Equal(t, "never", cfg.Output.Color)

	t.Setenv("BPL_MAX_DEPTH", "deep")
	err := cfg.ApplyEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid BPL_MAX_DEPTH")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(c *Config)
		errorContains string
	}{
		{"log level", func(c *Config) { c.General.LogLevel = "loud" }, "invalid log level"},
		{"max depth", func(c *Config) { c.Parser.MaxDepth = -1 }, "parser.max_depth"},
		{"error distance", func(c *Config) { c.Parser.MinErrorDistance = -3 }, "parser.min_error_distance"},
		{"color", func(c *Config) { c.Output.Color = "sometimes" }, "output.color"},
		{"format", func(c *Config) { c.Output.Format = "json" }, "output.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLogLevel(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestResolve(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		dir := fs.NewDir(t, "bpl-config")
		defer dir.Remove()
		chdir(t, dir.Path())
		t.Setenv("BPL_CONFIG", "")

		cfg, err := Resolve("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("default path and dotenv", func(t *testing.T) {
		dir := fs.NewDir(t, "bpl-config",
			fs.WithFile(DefaultPath, "[output]\nformat = \"none\"\n"),
			fs.WithFile(".env", "BPL_DEFINES=FROM_DOTENV\n"))
		defer dir.Remove()
		chdir(t, dir.Path())
		t.Setenv("BPL_CONFIG", "")
		t.Cleanup(func() { os.Unsetenv("BPL_DEFINES") })

		cfg, err := Resolve("")
		require.NoError(t, err)
		assert.Equal(t, "none", cfg.Output.Format)
		assert.Equal(t, []string{"FROM_DOTENV"}, cfg.Preprocess.Defines)
	})

	t.Run("explicit path wins", func(t *testing.T) {
		dir := fs.NewDir(t, "bpl-config",
			fs.WithFile("a.toml", "[general]\nlog_level = \"error\"\n"),
			fs.WithFile("b.toml", "[general]\nlog_level = \"debug\"\n"))
		defer dir.Remove()
		t.Setenv("BPL_CONFIG", dir.Join("b.toml"))

		cfg, err := Resolve(dir.Join("a.toml"))
		require.NoError(t, err)
		assert.Equal(t, "error", cfg.General.LogLevel)

		cfg, err = Resolve("")
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.General.LogLevel)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		dir := fs.NewDir(t, "bpl-config", fs.WithFile("c.toml", "[output]\ncolor = \"blue\"\n"))
		defer dir.Remove()
		_, err := Resolve(dir.Join("c.toml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "output.color")
	})
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
