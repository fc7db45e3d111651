// Package config provides configuration management for the leapquery CLI.
//
// Values are layered with koanf: built-in defaults, then leapquery.yaml,
// then LEAPQUERY_* environment variables, then command-line flags.
package config

// Config holds all CLI configuration options.
type Config struct {
	// Style is "pretty" for multi-line output or "oneline".
	Style string `koanf:"style"`
	// KeywordCase is "upper" or "lower".
	KeywordCase string `koanf:"keyword_case"`
	Indent      int    `koanf:"indent"`
	// MaxDepth bounds parser nesting.
	MaxDepth int `koanf:"max_depth"`
	// Output selects the rendering of tabular commands: text, json or table.
	Output string    `koanf:"output"`
	Log    LogConfig `koanf:"log"`
	// History is the REPL history file. Empty disables history.
	History string `koanf:"history"`
}

// LogConfig configures the slog logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default configuration values.
const (
	DefaultStyle       = "pretty"
	DefaultKeywordCase = "upper"
	DefaultIndent      = 2
	DefaultMaxDepth    = 200
	DefaultOutput      = "text"
	DefaultLogLevel    = "warn"
	DefaultLogFormat   = "text"
	DefaultHistoryFile = ".leapquery_history"
)

// Style values.
const (
	StylePretty  = "pretty"
	StyleOneline = "oneline"
)

// Default returns a Config populated with the defaults.
func Default() *Config {
	return &Config{
		Style:       DefaultStyle,
		KeywordCase: DefaultKeywordCase,
		Indent:      DefaultIndent,
		MaxDepth:    DefaultMaxDepth,
		Output:      DefaultOutput,
		Log:         LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		History:     DefaultHistoryFile,
	}
}
