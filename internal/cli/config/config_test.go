package config_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapquery/internal/cli/config"
	"github.com/leapstack-labs/leapquery/internal/testutil"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	return testutil.WriteFile(t, dir, "leapquery.yaml", body)
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("style", "", "")
	fs.String("keyword-case", "", "")
	fs.Int("indent", 0, "")
	fs.String("log-level", "", "")
	require.NoError(t, fs.Parse(args))
	return fs
}

// ---------- Loader Tests ----------

func TestLoadDefaults(t *testing.T) {
	l := &config.Loader{Dir: t.TempDir()}
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, config.Default(), cfg)
	assert.Empty(t, l.FileUsed())
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
style: oneline
keyword_case: lower
indent: 4
log:
  level: info
  format: json
`)

	t.Run("file", func(t *testing.T) {
		l := &config.Loader{Dir: dir}
		cfg, err := l.Load()
		require.NoError(t, err)

		assert.Equal(t, "oneline", cfg.Style)
		assert.Equal(t, "lower", cfg.KeywordCase)
		assert.Equal(t, 4, cfg.Indent)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, filepath.Join(dir, "leapquery.yaml"), l.FileUsed())
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("LEAPQUERY_INDENT", "3")
		t.Setenv("LEAPQUERY_LOG_LEVEL", "debug")

		cfg, err := (&config.Loader{Dir: dir}).Load()
		require.NoError(t, err)

		assert.Equal(t, 3, cfg.Indent)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "oneline", cfg.Style)
	})

	t.Run("flags over env", func(t *testing.T) {
		t.Setenv("LEAPQUERY_INDENT", "3")

		cfg, err := (&config.Loader{
			Dir:   dir,
			Flags: newFlags(t, "--indent", "6", "--keyword-case", "UPPER", "--log-level", "error"),
		}).Load()
		require.NoError(t, err)

		assert.Equal(t, 6, cfg.Indent)
		assert.Equal(t, "upper", cfg.KeywordCase)
		assert.Equal(t, "error", cfg.Log.Level)
	})

	t.Run("unset flags do not override", func(t *testing.T) {
		cfg, err := (&config.Loader{Dir: dir, Flags: newFlags(t)}).Load()
		require.NoError(t, err)
		assert.Equal(t, 4, cfg.Indent)
	})
}

func TestLoadSearchesUpward(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "style: oneline\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	cfg, err := (&config.Loader{Dir: nested}).Load()
	require.NoError(t, err)
	assert.Equal(t, "oneline", cfg.Style)
}

func TestLoadExplicitFile(t *testing.T) {
	p := writeConfig(t, t.TempDir(), "max_depth: 50\n")

	cfg, err := config.LoadConfig(p, nil)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.MaxDepth)

	_, err = config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.ErrorContains(t, err, "error reading config file")
}

// ---------- Validation Tests ----------

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *config.Config)
		errSubstr string
	}{
		{"defaults", func(*config.Config) {}, ""},
		{"bad style", func(c *config.Config) { c.Style = "fancy" }, "style must be"},
		{"bad keyword case", func(c *config.Config) { c.KeywordCase = "title" }, "keyword_case"},
		{"zero indent", func(c *config.Config) { c.Indent = 0 }, "indent must be"},
		{"negative depth", func(c *config.Config) { c.MaxDepth = -1 }, "max_depth"},
		{"bad output", func(c *config.Config) { c.Output = "xml" }, "output must be"},
		{"bad level", func(c *config.Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad log format", func(c *config.Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errSubstr)
		})
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "style: fancy\n")

	_, err := (&config.Loader{Dir: dir}).Load()
	assert.ErrorContains(t, err, "invalid configuration")
}

// ---------- Context Tests ----------

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, config.Default(), config.GetConfig(ctx))
	assert.NotNil(t, config.GetLogger(ctx))

	var buf bytes.Buffer
	cfg := config.Default()
	cfg.Log = config.LogConfig{Level: "info", Format: "json"}
	logger := config.NewLogger(cfg.Log, &buf)

	ctx = config.WithConfig(ctx, cfg, logger)
	assert.Same(t, cfg, config.GetConfig(ctx))

	config.GetLogger(ctx).Debug("hidden")
	config.GetLogger(ctx).Info("shown", "file", "a.sql")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"file":"a.sql"`)
}
