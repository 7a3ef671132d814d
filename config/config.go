package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/panyam/bpl/loader"
	"github.com/panyam/bpl/parser"
)

// DefaultPath is consulted when neither --config nor BPL_CONFIG names a file.
const DefaultPath = "bpl.toml"

// Config holds the settings of the bpl tool.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Parser     ParserConfig     `toml:"parser"`
	Preprocess PreprocessConfig `toml:"preprocess"`
	Output     OutputConfig     `toml:"output"`
}

type GeneralConfig struct {
	LogLevel string `toml:"log_level"`
}

// ParserConfig tunes error reporting and the nesting limit.
type ParserConfig struct {
	MaxDepth         int  `toml:"max_depth"`
	MinErrorDistance int  `toml:"min_error_distance"`
	KeepComments     bool `toml:"keep_comments"`
}

type PreprocessConfig struct {
	Defines []string `toml:"defines"`
}

// OutputConfig controls how results are printed.
type OutputConfig struct {
	Color  string `toml:"color"`  // auto, always or never
	Format string `toml:"format"` // text, yaml or none
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// Load loads configuration from a TOML file
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Resolve finds and loads the configuration for a run: path if set, else
// BPL_CONFIG, else DefaultPath when it exists, else the defaults. Values
// from a .env file and the environment are applied on top.
func Resolve(path string) (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	if path == "" {
		path = os.Getenv("BPL_CONFIG")
	}
	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}

	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return nil, err
		}
		slog.Debug("Loaded config", "path", path)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv reads the given .env files (".env" when none are named) into the
// process environment. Missing files are ignored; existing variables win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides values from BPL_LOG_LEVEL, BPL_MAX_DEPTH, BPL_DEFINES
// (comma separated) and BPL_COLOR.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("BPL_LOG_LEVEL"); v != "" {
		c.General.LogLevel = v
	}
	if v := os.Getenv("BPL_MAX_DEPTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BPL_MAX_DEPTH %q: %w", v, err)
		}
		c.Parser.MaxDepth = n
	}
	if v := os.Getenv("BPL_DEFINES"); v != "" {
		c.Preprocess.Defines = nil
		for _, d := range strings.Split(v, ",") {
			if d = strings.TrimSpace(d); d != "" {
				c.Preprocess.Defines = append(c.Preprocess.Defines, d)
			}
		}
	}
	if v := os.Getenv("BPL_COLOR"); v != "" {
		c.Output.Color = v
	}
	return nil
}

// Validate checks enumerated values and limits.
func (c *Config) Validate() error {
	if _, err := ParseLogLevel(c.General.LogLevel); err != nil {
		return err
	}
	if c.Parser.MaxDepth < 1 {
		return fmt.Errorf("parser.max_depth must be positive, got %d", c.Parser.MaxDepth)
	}
	if c.Parser.MinErrorDistance < 0 {
		return fmt.Errorf("parser.min_error_distance must not be negative, got %d", c.Parser.MinErrorDistance)
	}
	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("output.color must be auto, always or never, got %q", c.Output.Color)
	}
	switch c.Output.Format {
	case "text", "yaml", "none":
	default:
		return fmt.Errorf("output.format must be text, yaml or none, got %q", c.Output.Format)
	}
	return nil
}

// LoaderOptions converts the parser and preprocess sections for the loader.
func (c *Config) LoaderOptions() loader.Options {
	return loader.Options{
		Defines:      append([]string(nil), c.Preprocess.Defines...),
		MaxDepth:     c.Parser.MaxDepth,
		MinErrDist:   c.Parser.MinErrorDistance,
		KeepComments: c.Parser.KeepComments,
	}
}

// ParseLogLevel maps debug, info, warn and error to slog levels.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func (c *Config) applyDefaults() {
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.Parser.MaxDepth == 0 {
		c.Parser.MaxDepth = parser.DefaultMaxDepth
	}
	if c.Parser.MinErrorDistance == 0 {
		c.Parser.MinErrorDistance = parser.DefaultMinErrDist
	}
	if c.Output.Color == "" {
		c.Output.Color = "auto"
	}
	if c.Output.Format == "" {
		c.Output.Format = "text"
	}
}
