package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/leapquery/internal/cli/config"
	"github.com/leapstack-labs/leapquery/pkg/ast"
	"github.com/leapstack-labs/leapquery/pkg/rewrite"
	"github.com/spf13/cobra"
)

// paramRow is one parameter reported by the params command.
type paramRow struct {
	Name  string `json:"name"`
	Used  bool   `json:"used"`
	Bound bool   `json:"bound"`
	Value any    `json:"value,omitempty"`
}

// ParamsOptions holds options for the params command.
type ParamsOptions struct {
	Set []string
}

// NewParamsCommand creates the params command.
func NewParamsCommand() *cobra.Command {
	opts := &ParamsOptions{}

	cmd := &cobra.Command{
		Use:   "params [file]",
		Short: "List bind parameters",
		Long: `List the bind parameters referenced by a query (:name, @name, $1, ?)
together with the values bound with --set. Output follows --output.`,
		Example: `  leapquery params report.sql
  leapquery params --set region=7 --set since="'2024-01-01'" -o table report.sql`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParams(cmd, args, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Set, "set", nil, "Bind a parameter as name=value (repeatable)")

	return cmd
}

func runParams(cmd *cobra.Command, args []string, opts *ParamsOptions) error {
	cfg := config.GetConfig(cmd.Context())
	q, err := loadQuery(cmd, cfg, optionalArg(args, 0))
	if err != nil {
		return err
	}

	for _, kv := range opts.Set {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return fmt.Errorf("invalid --set %q, expected name=value", kv)
		}
		rewrite.AddParameter(q, name, literalValue(parseValue(cfg, value)))
	}

	return renderParams(cmd.OutOrStdout(), cfg.Output, collectParams(q))
}

// collectParams merges referenced parameters with bound values, in order of
// first reference. Bound parameters that are never referenced come last.
func collectParams(q ast.Query) []paramRow {
	var rows []paramRow
	index := map[string]int{}
	ast.Inspect(q, func(n ast.Node) bool {
		if p, ok := n.(*ast.Param); ok {
			if _, seen := index[p.Name]; !seen {
				index[p.Name] = len(rows)
				rows = append(rows, paramRow{Name: p.Name, Used: true})
			}
		}
		return true
	})

	for _, e := range ast.Parameters(q).Entries {
		i, ok := index[e.Name]
		if !ok {
			i = len(rows)
			index[e.Name] = i
			rows = append(rows, paramRow{Name: e.Name})
		}
		rows[i].Bound = true
		rows[i].Value = e.Value
	}
	return rows
}

func renderParams(w io.Writer, output string, rows []paramRow) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if rows == nil {
			rows = []paramRow{}
		}
		return enc.Encode(rows)
	case "table":
		if len(rows) == 0 {
			_, _ = fmt.Fprintln(w, "(0 parameters)")
			return nil
		}
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Name", "Used", "Bound", "Value"})
		for _, r := range rows {
			t.AppendRow(table.Row{r.Name, r.Used, r.Bound, formatParamValue(r)})
		}
		t.Render()
		return nil
	default:
		for _, r := range rows {
			switch {
			case !r.Used:
				_, _ = fmt.Fprintf(w, "%s = %s (unused)\n", r.Name, formatParamValue(r))
			case r.Bound:
				_, _ = fmt.Fprintf(w, "%s = %s\n", r.Name, formatParamValue(r))
			default:
				_, _ = fmt.Fprintln(w, r.Name)
			}
		}
		return nil
	}
}

func formatParamValue(r paramRow) string {
	if !r.Bound {
		return ""
	}
	if r.Value == nil {
		return "NULL"
	}
	return fmt.Sprint(r.Value)
}
