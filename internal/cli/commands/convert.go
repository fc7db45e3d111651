package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapquery/internal/cli/config"
	"github.com/leapstack-labs/leapquery/pkg/ast"
	"github.com/leapstack-labs/leapquery/pkg/rewrite"
	"github.com/spf13/cobra"
)

// ConvertOptions holds options for the convert command.
type ConvertOptions struct {
	Table     string
	Keys      []string
	Temporary bool
}

var convertKinds = []string{"create", "insert", "update", "delete"}

// NewConvertCommand creates the convert command.
func NewConvertCommand() *cobra.Command {
	opts := &ConvertOptions{}

	cmd := &cobra.Command{
		Use:   "convert <create|insert|update|delete> [file]",
		Short: "Turn a query into a DML statement",
		Long: `Wrap a SELECT in a statement that writes its rows to a table.

  create   CREATE [TEMPORARY] TABLE t AS <query>
  insert   INSERT INTO t (columns) <query>
  update   UPDATE t from the query, matching rows on --key columns
  delete   DELETE rows of t whose --key columns appear in the query

CTEs of the query are moved in front of the statement.`,
		Example: `  leapquery convert create --table daily_sales --temporary report.sql
  leapquery convert update --table customers --key id changes.sql`,
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: convertKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Table, "table", "", "Destination table (required)")
	cmd.Flags().StringSliceVarP(&opts.Keys, "key", "k", nil, "Key columns for update and delete")
	cmd.Flags().BoolVar(&opts.Temporary, "temporary", false, "Create a temporary table")
	_ = cmd.MarkFlagRequired("table")

	return cmd
}

func runConvert(cmd *cobra.Command, args []string, opts *ConvertOptions) error {
	cfg := config.GetConfig(cmd.Context())
	kind := strings.ToLower(args[0])

	q, err := loadQuery(cmd, cfg, optionalArg(args, 1))
	if err != nil {
		return err
	}

	stmt, err := convertQuery(kind, q, opts)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprint(cmd.OutOrStdout(), render(cfg, stmt))
	return nil
}

func convertQuery(kind string, q ast.Query, opts *ConvertOptions) (ast.Node, error) {
	switch kind {
	case "create":
		return rewrite.ToCreateTable(q, opts.Table, opts.Temporary), nil
	case "insert":
		return rewrite.ToInsert(q, opts.Table), nil
	case "update":
		return rewrite.ToUpdate(q, opts.Table, opts.Keys)
	case "delete":
		return rewrite.ToDelete(q, opts.Table, opts.Keys)
	}
	return nil, fmt.Errorf("unknown conversion %q (expected one of %s)", kind, strings.Join(convertKinds, ", "))
}
