package commands

import (
	"fmt"

	"github.com/leapstack-labs/leapquery/internal/cli/config"
	"github.com/leapstack-labs/leapquery/pkg/ast"
	"github.com/spf13/cobra"
)

// NewTreeCommand creates the tree command.
func NewTreeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tree [file]",
		Short: "Show the query tree",
		Long: `Print the nested queries of a statement: CTEs, set operation
branches and subqueries in FROM, with the output columns of each.`,
		Example: `  leapquery tree report.sql
  echo "select * from (select 1 as a) q" | leapquery tree`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig(cmd.Context())
			q, err := loadQuery(cmd, cfg, optionalArg(args, 0))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), ast.TreeString(q))
			return nil
		},
	}
}
