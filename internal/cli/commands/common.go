// Package commands implements the leapquery subcommands.
package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/leapstack-labs/leapquery/internal/cli/config"
	"github.com/leapstack-labs/leapquery/pkg/ast"
	"github.com/leapstack-labs/leapquery/pkg/format"
	"github.com/leapstack-labs/leapquery/pkg/parser"
	"github.com/spf13/cobra"
)

// stdinName is the input name used for standard input.
const stdinName = "-"

// input is one SQL source read by a command.
type input struct {
	Name string
	SQL  string
}

// readInput reads a file, or the command's stdin when name is empty or "-".
func readInput(cmd *cobra.Command, name string) (input, error) {
	if name == "" || name == stdinName {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return input{}, fmt.Errorf("failed to read stdin: %w", err)
		}
		return input{Name: stdinName, SQL: string(data)}, nil
	}
	data, err := os.ReadFile(name) //nolint:gosec // path comes from the command line
	if err != nil {
		return input{}, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return input{Name: name, SQL: string(data)}, nil
}

// readInputs reads every named file, or stdin when names is empty.
func readInputs(cmd *cobra.Command, names []string) ([]input, error) {
	if len(names) == 0 {
		in, err := readInput(cmd, stdinName)
		if err != nil {
			return nil, err
		}
		return []input{in}, nil
	}
	inputs := make([]input, 0, len(names))
	for _, name := range names {
		in, err := readInput(cmd, name)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// parseQuery parses src with the configured nesting limit.
func parseQuery(cfg *config.Config, src string) (ast.Query, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("no SQL to parse")
	}
	return parser.Parse(src, parser.WithMaxDepth(cfg.MaxDepth))
}

// loadQuery reads and parses one input.
func loadQuery(cmd *cobra.Command, cfg *config.Config, name string) (ast.Query, error) {
	in, err := readInput(cmd, name)
	if err != nil {
		return nil, err
	}
	q, err := parseQuery(cfg, in.SQL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", in.Name, err)
	}
	return q, nil
}

// render prints a query or statement in the configured style. The result
// always ends with a newline.
func render(cfg *config.Config, n ast.Node) string {
	if cfg.Style == config.StyleOneline {
		return format.Inline(n, cfg.FormatOptions()...) + "\n"
	}
	return format.Format(n, cfg.FormatOptions()...)
}

// optionalArg returns args[i] or "" when absent.
func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
