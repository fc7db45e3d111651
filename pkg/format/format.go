// Package format pretty-prints query trees as multi-line SQL.
//
// Clauses start on their own line and their contents are indented below
// them; FROM subqueries, CTE bodies and set operation branches are laid
// out recursively. Expressions stay on one line except CASE and long
// AND/OR chains. All reachable CTEs are printed in one WITH clause at the
// top, the same way ast.ToSQL consolidates them.
package format

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/ast"
)

// KeywordCase selects how keywords are printed.
type KeywordCase int

// Keyword cases.
const (
	Upper KeywordCase = iota
	Lower
)

// String implements fmt.Stringer.
func (c KeywordCase) String() string {
	if c == Lower {
		return "lower"
	}
	return "upper"
}

// ParseKeywordCase parses "upper" or "lower".
func ParseKeywordCase(s string) (KeywordCase, error) {
	switch strings.ToLower(s) {
	case "upper", "":
		return Upper, nil
	case "lower":
		return Lower, nil
	}
	return Upper, fmt.Errorf("unknown keyword case %q (want upper or lower)", s)
}

// Options controls the printer.
type Options struct {
	KeywordCase KeywordCase
	Indent      int
}

// Option mutates Options.
type Option func(*Options)

// WithKeywordCase sets the keyword case.
func WithKeywordCase(c KeywordCase) Option {
	return func(o *Options) { o.KeywordCase = c }
}

// WithIndent sets the number of spaces per nesting level.
func WithIndent(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.Indent = n
		}
	}
}

func buildOptions(opts []Option) Options {
	o := Options{KeywordCase: Upper, Indent: defaultIndent}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Format prints a query or statement as multi-line SQL ending in a
// newline.
func Format(n ast.Node, opts ...Option) string {
	p := newPrinter(buildOptions(opts))
	p.formatNode(n)
	return p.String()
}

// Inline prints n on a single line like ast.ToSQL, with keywords in the
// configured case.
func Inline(n ast.Node, opts ...Option) string {
	p := newPrinter(buildOptions(opts))
	p.writeTokens(ast.SQLTokens(n))
	return p.output.String()
}
