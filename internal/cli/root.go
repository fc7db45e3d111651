// Package cli provides the command-line interface for leapquery.
package cli

import (
	"fmt"
	"os"

	"github.com/leapstack-labs/leapquery/internal/cli/commands"
	"github.com/leapstack-labs/leapquery/internal/cli/config"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "leapquery",
		Short: "leapquery - SQL query parser and rewriter",
		Long: `leapquery parses SELECT queries into a tree, edits them and prints
them back as SQL.

Filters added with "where" are pushed into the CTEs, subqueries and
UNION branches that produce a column. Queries can be turned into CREATE
TABLE, INSERT, UPDATE and DELETE statements with "convert", and checked
for common mistakes with "lint".`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			loader := &config.Loader{File: cfgFile, Flags: cmd.Root().PersistentFlags()}
			cfg, err := loader.Load()
			if err != nil {
				return err
			}

			logger := config.NewLogger(cfg.Log, cmd.ErrOrStderr())
			if used := loader.FileUsed(); used != "" {
				logger.Debug("using config file", "path", used)
			}
			cmd.SetContext(config.WithConfig(cmd.Context(), cfg, logger))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{.Name}} {{.Version}}
commit %s, built %s
`, GitCommit, BuildDate))

	// Global persistent flags. Defaults live in config.Default so that
	// unset flags do not shadow the config file.
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: leapquery.yaml in this or a parent directory)")
	flags.StringP("style", "s", "", "Output style (pretty|oneline)")
	flags.String("keyword-case", "", "Keyword case (upper|lower)")
	flags.Int("indent", 0, "Spaces per indent level in pretty output")
	flags.Int("max-depth", 0, "Maximum nesting depth accepted by the parser")
	flags.StringP("output", "o", "", "Output format for listings (text|json|table)")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.String("log-format", "", "Log format (text|json)")

	completions := map[string][]string{
		"style":        {config.StylePretty, config.StyleOneline},
		"keyword-case": {"upper", "lower"},
		"output":       {"text", "json", "table"},
		"log-level":    {"debug", "info", "warn", "error"},
		"log-format":   {"text", "json"},
	}
	for name, values := range completions {
		_ = rootCmd.RegisterFlagCompletionFunc(name, func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return values, cobra.ShellCompDirectiveNoFileComp
		})
	}

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewFormatCommand())
	rootCmd.AddCommand(commands.NewTreeCommand())
	rootCmd.AddCommand(commands.NewWhereCommand())
	rootCmd.AddCommand(commands.NewParamsCommand())
	rootCmd.AddCommand(commands.NewConvertCommand())
	rootCmd.AddCommand(commands.NewLintCommand())
	rootCmd.AddCommand(commands.NewReplCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for leapquery.

To load completions:

Bash:
  $ source <(leapquery completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ leapquery completion bash > /etc/bash_completion.d/leapquery
  # macOS:
  $ leapquery completion bash > $(brew --prefix)/etc/bash_completion.d/leapquery

Zsh:
  $ leapquery completion zsh > "${fpath[1]}/_leapquery"

Fish:
  $ leapquery completion fish > ~/.config/fish/completions/leapquery.fish

PowerShell:
  PS> leapquery completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
