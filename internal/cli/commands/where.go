package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapquery/internal/cli/config"
	"github.com/leapstack-labs/leapquery/pkg/ast"
	"github.com/leapstack-labs/leapquery/pkg/parser"
	"github.com/leapstack-labs/leapquery/pkg/rewrite"
	"github.com/spf13/cobra"
)

// conditionOps lists the operators accepted by buildCondition.
var conditionOps = []string{
	"=", "!=", "<>", ">", ">=", "<", "<=",
	"like", "not-like", "ilike", "in", "not-in", "between", "is-null", "is-not-null",
}

// parseValue reads a command-line value as a SQL expression. Text that does
// not parse as one is taken as a string literal.
func parseValue(cfg *config.Config, s string) ast.Expr {
	e, err := parser.ParseExpr(s, parser.WithMaxDepth(cfg.MaxDepth))
	if err != nil {
		return ast.String(s)
	}
	return e
}

func parseValues(cfg *config.Config, values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = parseValue(cfg, v)
	}
	return out
}

// buildCondition maps an operator name and its operands to a condition.
func buildCondition(cfg *config.Config, op string, values []string) (rewrite.Condition, error) {
	op = strings.ToLower(op)
	arity := func(n int) error {
		if len(values) != n {
			return fmt.Errorf("operator %s takes %d value(s), got %d", op, n, len(values))
		}
		return nil
	}

	switch op {
	case "is-null", "is-not-null":
		if err := arity(0); err != nil {
			return nil, err
		}
		if op == "is-null" {
			return rewrite.IsNull(), nil
		}
		return rewrite.IsNotNull(), nil
	case "in", "not-in":
		if len(values) == 0 {
			return nil, fmt.Errorf("operator %s needs at least one value", op)
		}
		if op == "in" {
			return rewrite.In(parseValues(cfg, values)...), nil
		}
		return rewrite.NotIn(parseValues(cfg, values)...), nil
	case "between":
		if err := arity(2); err != nil {
			return nil, err
		}
		return rewrite.Between(parseValue(cfg, values[0]), parseValue(cfg, values[1])), nil
	}

	if err := arity(1); err != nil {
		return nil, err
	}
	v := parseValue(cfg, values[0])
	switch op {
	case "=":
		return rewrite.Equal(v), nil
	case "!=", "<>":
		return rewrite.NotEqual(v), nil
	case ">":
		return rewrite.GreaterThan(v), nil
	case ">=":
		return rewrite.GreaterOrEqual(v), nil
	case "<":
		return rewrite.LessThan(v), nil
	case "<=":
		return rewrite.LessOrEqual(v), nil
	case "like":
		return rewrite.Like(v), nil
	case "not-like":
		return rewrite.NotLike(v), nil
	case "ilike":
		return rewrite.ILike(v), nil
	}
	return nil, fmt.Errorf("unknown operator %q (expected one of %s)", op, strings.Join(conditionOps, ", "))
}

// WhereOptions holds options for the where command.
type WhereOptions struct {
	File  string
	Param string
}

// NewWhereCommand creates the where command.
func NewWhereCommand() *cobra.Command {
	opts := &WhereOptions{}

	cmd := &cobra.Command{
		Use:   "where <column> <op> [value...]",
		Short: "Add a filter on an output column",
		Long: `Add a condition on an output column of the query. The condition is
pushed as deep as it can go: into CTEs, FROM subqueries and every branch
of a UNION, and into HAVING when the column is an aggregate.

Operators: ` + strings.Join(conditionOps, ", ") + `

Values are parsed as SQL expressions, so quote strings: "'mike'".
Text that is not a valid expression is used as a string literal.`,
		Example: `  # Filter the sale date inside the CTE that produces it
  leapquery where sale_date '>=' "'2024-01-01'" -f report.sql

  # Bind a parameter instead of a literal
  leapquery where region_id = 7 --param region < report.sql`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhere(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Read the query from a file instead of stdin")
	cmd.Flags().StringVar(&opts.Param, "param", "", "Compare with a bind parameter of this name holding the value (= only)")

	_ = cmd.RegisterFlagCompletionFunc("file", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"sql"}, cobra.ShellCompDirectiveFilterFileExt
	})

	return cmd
}

func runWhere(cmd *cobra.Command, args []string, opts *WhereOptions) error {
	ctx := cmd.Context()
	cfg := config.GetConfig(ctx)

	q, err := loadQuery(cmd, cfg, opts.File)
	if err != nil {
		return err
	}

	column, op, values := args[0], args[1], args[2:]
	var cond rewrite.Condition
	if opts.Param != "" {
		if op != "=" || len(values) != 1 {
			return fmt.Errorf("--param needs the = operator and exactly one value")
		}
		cond = rewrite.EqualParam(opts.Param, literalValue(parseValue(cfg, values[0])))
	} else {
		cond, err = buildCondition(cfg, op, values)
		if err != nil {
			return err
		}
	}

	if err := rewrite.Where(q, column, cond); err != nil {
		return err
	}
	config.GetLogger(ctx).Debug("added condition", "column", column, "op", op)

	_, _ = fmt.Fprint(cmd.OutOrStdout(), render(cfg, q))
	return nil
}

// literalValue unwraps a literal to the Go value bound as a parameter.
// Other expressions are bound as their SQL text.
func literalValue(e ast.Expr) any {
	lit, ok := e.(*ast.Literal)
	if !ok {
		return ast.SQL(e)
	}
	switch lit.Kind {
	case ast.StringLit:
		return lit.Value
	case ast.NullLit:
		return nil
	case ast.BoolLit:
		return strings.EqualFold(lit.Value, "true")
	}
	if n, err := strconv.ParseInt(lit.Value, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(lit.Value, 64); err == nil {
		return f
	}
	return lit.Value
}
