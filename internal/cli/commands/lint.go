package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/leapquery/internal/cli/config"
	"github.com/leapstack-labs/leapquery/pkg/lint"
	_ "github.com/leapstack-labs/leapquery/pkg/lint/rules" // register rules
	"github.com/spf13/cobra"
)

// errLintFailed is returned when a linted query has error diagnostics.
var errLintFailed = errors.New("lint found errors")

// LintOptions holds options for the lint command.
type LintOptions struct {
	Disable  []string
	Severity []string
	Rules    bool
}

// lintRow is one diagnostic together with the input it came from.
type lintRow struct {
	File string `json:"file"`
	lint.Diagnostic
}

// NewLintCommand creates the lint command.
func NewLintCommand() *cobra.Command {
	opts := &LintOptions{}

	cmd := &cobra.Command{
		Use:   "lint [file...]",
		Short: "Check queries for common mistakes",
		Long: `Run the lint rules against one or more queries. Reads stdin when no
files are given. Exits with an error when any diagnostic has error
severity. Output follows --output.`,
		Example: `  leapquery lint report.sql
  leapquery lint --disable AL03,RF02 --severity AM08=error *.sql
  leapquery lint --rules`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, args, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "Rule IDs to skip")
	cmd.Flags().StringArrayVar(&opts.Severity, "severity", nil, "Override a rule severity as ID=level (repeatable)")
	cmd.Flags().BoolVar(&opts.Rules, "rules", false, "List the available rules and exit")

	return cmd
}

func runLint(cmd *cobra.Command, args []string, opts *LintOptions) error {
	ctx := cmd.Context()
	cfg := config.GetConfig(ctx)
	logger := config.GetLogger(ctx)
	out := cmd.OutOrStdout()

	if opts.Rules {
		return renderRules(out, cfg.Output, lint.GetAll())
	}

	lintCfg, err := lintConfig(opts)
	if err != nil {
		return err
	}
	analyzer := lint.NewAnalyzer(lintCfg)

	inputs, err := readInputs(cmd, args)
	if err != nil {
		return err
	}

	var rows []lintRow
	var diags []lint.Diagnostic
	for _, in := range inputs {
		q, err := parseQuery(cfg, in.SQL)
		if err != nil {
			return fmt.Errorf("%s: %w", in.Name, err)
		}
		found := analyzer.Analyze(q)
		logger.Debug("linted query", "file", in.Name, "diagnostics", len(found))
		for _, d := range found {
			rows = append(rows, lintRow{File: in.Name, Diagnostic: d})
		}
		diags = append(diags, found...)
	}

	if err := renderDiagnostics(out, cfg.Output, rows); err != nil {
		return err
	}
	if lint.HasErrors(diags) {
		return errLintFailed
	}
	return nil
}

// lintConfig turns the command flags into an analyzer configuration.
func lintConfig(opts *LintOptions) (*lint.Config, error) {
	cfg := lint.NewConfig()
	if err := cfg.Disable(opts.Disable...); err != nil {
		return nil, err
	}
	for _, kv := range opts.Severity {
		if err := cfg.ParseOverride(kv); err != nil {
			return nil, fmt.Errorf("invalid --severity: %w", err)
		}
	}
	return cfg, nil
}

func renderDiagnostics(w io.Writer, output string, rows []lintRow) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if rows == nil {
			rows = []lintRow{}
		}
		return enc.Encode(rows)
	case "table":
		if len(rows) == 0 {
			_, _ = fmt.Fprintln(w, "(0 diagnostics)")
			return nil
		}
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"File", "Rule", "Severity", "Message"})
		for _, r := range rows {
			t.AppendRow(table.Row{r.File, r.RuleID, r.Severity, r.Message})
		}
		t.Render()
		return nil
	default:
		for _, r := range rows {
			_, _ = fmt.Fprintf(w, "%s: %s\n", r.File, r.Diagnostic)
		}
		return nil
	}
}

func renderRules(w io.Writer, output string, rules []lint.RuleDef) error {
	switch output {
	case "json":
		type ruleRow struct {
			ID          string        `json:"id"`
			Name        string        `json:"name"`
			Severity    lint.Severity `json:"severity"`
			Description string        `json:"description"`
		}
		out := make([]ruleRow, 0, len(rules))
		for _, r := range rules {
			out = append(out, ruleRow{r.ID, r.Name, r.Severity, r.Description})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "table":
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"ID", "Name", "Severity", "Description"})
		for _, r := range rules {
			t.AppendRow(table.Row{r.ID, r.Name, r.Severity, r.Description})
		}
		t.Render()
		return nil
	default:
		for _, r := range rules {
			_, _ = fmt.Fprintf(w, "%s  %-28s %-8s %s\n", r.ID, r.Name, r.Severity, r.Description)
		}
		return nil
	}
}
