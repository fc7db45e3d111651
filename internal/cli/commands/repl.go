package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/leapquery/internal/cli/config"
	"github.com/leapstack-labs/leapquery/pkg/ast"
	"github.com/leapstack-labs/leapquery/pkg/format"
	"github.com/leapstack-labs/leapquery/pkg/lint"
	"github.com/leapstack-labs/leapquery/pkg/rewrite"
	"github.com/spf13/cobra"
)

const (
	replPrompt     = "leapquery> "
	replContPrompt = "      ...> "
)

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive query editor",
		Long: `Start an interactive session. Enter a query ending in ";" to parse and
print it, then edit it with dot-commands such as .where and .convert.`,
		Args: cobra.NoArgs,
		RunE: runREPL,
	}
}

func runREPL(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := *config.GetConfig(ctx)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     cfg.History,
		AutoComplete:    newDotCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	s := newSession(&cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), config.GetLogger(ctx))
	_, _ = fmt.Fprintln(s.out, "leapquery REPL")
	_, _ = fmt.Fprintln(s.out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(s.out)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			s.buf.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if s.handleLine(line) {
			return nil
		}
		if s.pending() {
			rl.SetPrompt(replContPrompt)
		} else {
			rl.SetPrompt(replPrompt)
		}
	}
}

func newDotCompleter() *readline.PrefixCompleter {
	ops := make([]readline.PrefixCompleterInterface, 0, len(conditionOps))
	for _, op := range conditionOps {
		ops = append(ops, readline.PcItem(op))
	}
	kinds := make([]readline.PrefixCompleterInterface, 0, len(convertKinds))
	for _, k := range convertKinds {
		kinds = append(kinds, readline.PcItem(k))
	}
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".show"),
		readline.PcItem(".tree"),
		readline.PcItem(".params"),
		readline.PcItem(".lint"),
		readline.PcItem(".where"),
		readline.PcItem(".convert", kinds...),
		readline.PcItem(".style", readline.PcItem(config.StylePretty), readline.PcItem(config.StyleOneline)),
		readline.PcItem(".case", readline.PcItem("upper"), readline.PcItem("lower")),
		readline.PcItem(".reset"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}

// ---------- Session ----------

// session holds the state of an interactive session: the query being typed
// and the last query parsed, which dot-commands edit.
type session struct {
	cfg    *config.Config
	out    io.Writer
	errOut io.Writer
	logger *slog.Logger

	buf  strings.Builder
	last ast.Query
}

func newSession(cfg *config.Config, out, errOut io.Writer, logger *slog.Logger) *session {
	return &session{cfg: cfg, out: out, errOut: errOut, logger: logger}
}

// pending reports whether a statement is partially entered.
func (s *session) pending() bool { return s.buf.Len() > 0 }

// handleLine processes one input line and reports whether to quit.
func (s *session) handleLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if !s.pending() && strings.HasPrefix(line, ".") {
		quit, err := s.dotCommand(line)
		if err != nil {
			s.printErr(err)
		}
		return quit
	}

	// Accumulate multi-line SQL until semicolon
	s.buf.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		s.buf.WriteString("\n")
		return false
	}
	src := s.buf.String()
	s.buf.Reset()

	q, err := parseQuery(s.cfg, src)
	if err != nil {
		s.printErr(err)
		return false
	}
	s.last = q
	s.logger.Debug("parsed query", "columns", ast.OutputColumns(q))
	s.show(q)
	return false
}

func (s *session) printErr(err error) {
	_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
}

func (s *session) show(n ast.Node) {
	_, _ = fmt.Fprint(s.out, render(s.cfg, n))
}

func (s *session) current() (ast.Query, error) {
	if s.last == nil {
		return nil, errors.New("no query yet; enter one ending in ';'")
	}
	return s.last, nil
}

func (s *session) dotCommand(line string) (bool, error) {
	parts := strings.Fields(line)
	command, args := strings.ToLower(parts[0]), parts[1:]

	switch command {
	case ".quit", ".exit":
		return true, nil

	case ".help":
		printREPLHelp(s.out)

	case ".show":
		q, err := s.current()
		if err != nil {
			return false, err
		}
		s.show(q)

	case ".tree":
		q, err := s.current()
		if err != nil {
			return false, err
		}
		_, _ = fmt.Fprintln(s.out, ast.TreeString(q))

	case ".params":
		q, err := s.current()
		if err != nil {
			return false, err
		}
		return false, renderParams(s.out, s.cfg.Output, collectParams(q))

	case ".lint":
		q, err := s.current()
		if err != nil {
			return false, err
		}
		rows := []lintRow{}
		for _, d := range lint.NewAnalyzer(nil).Analyze(q) {
			rows = append(rows, lintRow{File: stdinName, Diagnostic: d})
		}
		if len(rows) == 0 {
			_, _ = fmt.Fprintln(s.out, "no issues")
			return false, nil
		}
		return false, renderDiagnostics(s.out, s.cfg.Output, rows)

	case ".where":
		q, err := s.current()
		if err != nil {
			return false, err
		}
		if len(args) < 2 {
			return false, errors.New("usage: .where <column> <op> [value...]")
		}
		cond, err := buildCondition(s.cfg, args[1], args[2:])
		if err != nil {
			return false, err
		}
		// Edit a copy so a failed edit leaves the query untouched.
		edited := ast.Clone(q)
		if err := rewrite.Where(edited, args[0], cond); err != nil {
			return false, err
		}
		s.last = edited
		s.show(edited)

	case ".convert":
		q, err := s.current()
		if err != nil {
			return false, err
		}
		if len(args) < 2 {
			return false, errors.New("usage: .convert <create|insert|update|delete> <table> [key...]")
		}
		stmt, err := convertQuery(strings.ToLower(args[0]), q, &ConvertOptions{Table: args[1], Keys: args[2:]})
		if err != nil {
			return false, err
		}
		s.show(stmt)

	case ".style":
		if len(args) != 1 || (args[0] != config.StylePretty && args[0] != config.StyleOneline) {
			return false, fmt.Errorf("usage: .style %s|%s", config.StylePretty, config.StyleOneline)
		}
		s.cfg.Style = args[0]

	case ".case":
		if len(args) != 1 {
			return false, errors.New("usage: .case upper|lower")
		}
		kc, err := format.ParseKeywordCase(args[0])
		if err != nil {
			return false, err
		}
		s.cfg.KeywordCase = kc.String()

	case ".reset":
		s.last = nil

	default:
		return false, fmt.Errorf("unknown command: %s (type .help for commands)", command)
	}
	return false, nil
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help                          Show this help message
  .show                          Print the current query
  .tree                          Show the query tree
  .params                        List bind parameters
  .lint                          Check the current query
  .where <col> <op> [value...]   Add a filter to the current query
  .convert <kind> <table> [key...]
                                 Print the query as create, insert, update or delete
  .style pretty|oneline          Set the output style
  .case upper|lower              Set the keyword case
  .reset                         Forget the current query
  .quit / .exit                  Exit the REPL

Tips:
  - Queries must end with a semicolon (;)
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}
