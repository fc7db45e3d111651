// Package main provides tests for the leapquery CLI.
package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapquery/internal/cli"
	"github.com/leapstack-labs/leapquery/internal/testutil"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "leapquery v"+cli.Version)
}

func TestFormatWithFlags(t *testing.T) {
	out, _, err := run(t, "SELECT a FROM t WHERE b = 1", "format", "--style", "oneline", "--keyword-case", "lower")
	require.NoError(t, err)
	assert.Equal(t, "select a from t where b = 1\n", out)

	out, _, err = run(t, "select a from t", "fmt", "--indent", "4")
	require.NoError(t, err)
	assert.Equal(t, "SELECT\n    a\nFROM t\n", out)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := testutil.WriteFile(t, dir, "leapquery.yaml", `
style: oneline
keyword_case: upper
log:
  level: debug
`)

	out, errOut, err := run(t, "select a from t", "--config", cfgPath, "format")
	require.NoError(t, err)
	assert.Equal(t, "SELECT a FROM t\n", out)
	assert.Contains(t, errOut, "formatted query")

	// Flags win over the file.
	out, _, err = run(t, "select a from t", "--config", cfgPath, "-s", "oneline", "--keyword-case", "lower", "format")
	require.NoError(t, err)
	assert.Equal(t, "select a from t\n", out)
}

func TestWhereThroughRoot(t *testing.T) {
	sql := `with regional_sales as (
		select region, sum(amount) as total_sales from orders group by region
	)
	select region, total_sales from regional_sales`

	out, _, err := run(t, sql, "-s", "oneline", "--keyword-case", "lower", "where", "region", "=", "'east'")
	require.NoError(t, err)
	assert.Equal(t,
		"with regional_sales as (select region, sum(amount) as total_sales from orders where region = 'east' group by region) "+
			"select region, total_sales from regional_sales\n",
		out)

	out, _, err = run(t, sql, "-s", "oneline", "--keyword-case", "lower", "where", "total_sales", ">", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "group by region having sum(amount) > 100")
}

func TestInvalidSettings(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		errSubstr string
	}{
		{"style", []string{"--style", "fancy", "format"}, "style must be"},
		{"output", []string{"-o", "xml", "params"}, "output must be"},
		{"log level", []string{"--log-level", "loud", "format"}, "log.level"},
		{"max depth", []string{"--max-depth=-1", "format"}, "max_depth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, "select 1", tt.args...)
			assert.ErrorContains(t, err, tt.errSubstr)
		})
	}
}

func TestCompletionCommand(t *testing.T) {
	out, _, err := run(t, "", "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "leapquery")
}
