package commands

import (
	"fmt"
	"os"
	"runtime"

	"github.com/leapstack-labs/leapquery/internal/cli/config"
	"github.com/leapstack-labs/leapquery/pkg/format"
	pg_query "github.com/pganalyze/pg_query_go/v6"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// FormatOptions holds options for the format command.
type FormatOptions struct {
	Write    bool
	Postgres bool
}

// NewFormatCommand creates the format command.
func NewFormatCommand() *cobra.Command {
	opts := &FormatOptions{}

	cmd := &cobra.Command{
		Use:     "format [file...]",
		Aliases: []string{"fmt"},
		Short:   "Format SQL queries",
		Long: `Parse each query and print it back in a canonical layout.

With no files the query is read from stdin. Files are parsed concurrently
and printed in the order given. Use --write to rewrite files in place.`,
		Example: `  # Pretty-print a file
  leapquery format report.sql

  # Single line, lower-case keywords
  leapquery format --style oneline --keyword-case lower report.sql

  # Rewrite files and check the result with the PostgreSQL parser
  leapquery format --write --postgres queries/*.sql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Write, "write", "w", false, "Write the result back to each file")
	cmd.Flags().BoolVar(&opts.Postgres, "postgres", false, "Verify the output parses as PostgreSQL")

	return cmd
}

func runFormat(cmd *cobra.Command, args []string, opts *FormatOptions) error {
	ctx := cmd.Context()
	cfg := config.GetConfig(ctx)
	logger := config.GetLogger(ctx)

	inputs, err := readInputs(cmd, args)
	if err != nil {
		return err
	}

	results := make([]string, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			q, err := parseQuery(cfg, in.SQL)
			if err != nil {
				return fmt.Errorf("%s: %w", in.Name, err)
			}
			if opts.Postgres {
				if _, err := pg_query.Parse(format.Inline(q)); err != nil {
					return fmt.Errorf("%s: output rejected by PostgreSQL parser: %w", in.Name, err)
				}
			}
			results[i] = render(cfg, q)
			logger.Debug("formatted query", "file", in.Name, "bytes", len(results[i]))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, in := range inputs {
		if opts.Write && in.Name != stdinName {
			if in.SQL == results[i] {
				continue
			}
			if err := os.WriteFile(in.Name, []byte(results[i]), 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", in.Name, err)
			}
			logger.Info("rewrote file", "file", in.Name)
			continue
		}
		if len(inputs) > 1 {
			_, _ = fmt.Fprintf(out, "-- %s\n", in.Name)
		}
		_, _ = fmt.Fprint(out, results[i])
	}
	return nil
}
