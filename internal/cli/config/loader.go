package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// configKey is used to store config in context.
type configKey struct{}

// EnvPrefix is the prefix of environment variables read as configuration.
const EnvPrefix = "LEAPQUERY_"

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

var configNames = []string{"leapquery.yaml", "leapquery.yml"}

// configExistsIn returns the config file in dir, or "".
func configExistsIn(dir string) string {
	for _, name := range configNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// findConfigFile searches upward from startDir for a leapquery config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findConfigFile(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if p := configExistsIn(dir); p != "" {
			return p
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}

// envKey maps LEAPQUERY_LOG_LEVEL to log.level and LEAPQUERY_KEYWORD_CASE
// to keyword_case.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "log_"); ok {
		return "log." + rest
	}
	return key
}

// flagKey maps --log-level to log.level and --keyword-case to keyword_case.
func flagKey(name string) string {
	key := strings.ReplaceAll(name, "-", "_")
	if rest, ok := strings.CutPrefix(key, "log_"); ok {
		return "log." + rest
	}
	return key
}

// Loader loads configuration. The zero value searches from the working
// directory.
type Loader struct {
	// File is an explicit config file path.
	File string
	// Dir is where the upward search for leapquery.yaml starts.
	Dir string
	// Flags are applied last, only for flags the user set.
	Flags *pflag.FlagSet

	used string
}

// Load loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func (l *Loader) Load() (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	d := Default()
	if err := k.Load(confmap.Provider(map[string]any{
		"style":        d.Style,
		"keyword_case": d.KeywordCase,
		"indent":       d.Indent,
		"max_depth":    d.MaxDepth,
		"output":       d.Output,
		"log.level":    d.Log.Level,
		"log.format":   d.Log.Format,
		"history":      d.History,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	l.used = l.File
	if l.used == "" {
		dir := l.Dir
		if dir == "" {
			dir, _ = os.Getwd()
		}
		if dir != "" {
			l.used = findConfigFile(dir)
		}
	}
	if l.used != "" {
		if err := k.Load(file.Provider(l.used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", l.used, err)
		}
	}

	// 3. Load environment variables (LEAPQUERY_ prefix)
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	if l.Flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(l.Flags, ".", k, func(f *pflag.Flag) (string, any) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			return flagKey(f.Name), posflag.FlagVal(l.Flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.Style = strings.ToLower(cfg.Style)
	cfg.KeywordCase = strings.ToLower(cfg.KeywordCase)
	cfg.Output = strings.ToLower(cfg.Output)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// FileUsed returns the path to the config file read by the last Load, if any.
func (l *Loader) FileUsed() string {
	return l.used
}

// LoadConfig loads configuration with an optional explicit file and the
// command's flags.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	l := &Loader{File: cfgFile, Flags: flags}
	return l.Load()
}

// NewLogger builds the CLI logger writing to w.
func NewLogger(cfg LogConfig, w io.Writer) *slog.Logger {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		lvl = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// WithConfig stores cfg and its logger in ctx.
func WithConfig(ctx context.Context, cfg *Config, logger *slog.Logger) context.Context {
	ctx = context.WithValue(ctx, configKey{}, cfg)
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	// Return default config if none in context
	return Default()
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}
