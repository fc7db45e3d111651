package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/leapstack-labs/leapquery/pkg/format"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains([]string{StylePretty, StyleOneline}, c.Style) {
		errs = append(errs, fmt.Errorf("style must be %s or %s, got %q", StylePretty, StyleOneline, c.Style))
	}
	if _, err := format.ParseKeywordCase(c.KeywordCase); err != nil {
		errs = append(errs, fmt.Errorf("keyword_case: %w", err))
	}
	if c.Indent < 1 || c.Indent > 8 {
		errs = append(errs, fmt.Errorf("indent must be between 1 and 8, got %d", c.Indent))
	}
	if c.MaxDepth < 1 {
		errs = append(errs, fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth))
	}
	if !slices.Contains([]string{"text", "json", "table"}, c.Output) {
		errs = append(errs, fmt.Errorf("output must be text, json or table, got %q", c.Output))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// ParseLevel parses a slog level name such as "debug" or "warn".
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// FormatOptions converts the formatting settings for pkg/format.
func (c *Config) FormatOptions() []format.Option {
	kc, err := format.ParseKeywordCase(c.KeywordCase)
	if err != nil {
		kc = format.Upper
	}
	return []format.Option{format.WithKeywordCase(kc), format.WithIndent(c.Indent)}
}
