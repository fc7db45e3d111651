package format

import (
	"bytes"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/leapquery/pkg/ast"
	"github.com/leapstack-labs/leapquery/pkg/token"
)

const defaultIndent = 2

// Printer handles SQL formatting with proper indentation and style.
type Printer struct {
	opts        Options
	caser       cases.Caser
	output      *bytes.Buffer
	depth       int
	atLineStart bool
}

func newPrinter(opts Options) *Printer {
	return &Printer{
		opts:        opts,
		caser:       cases.Upper(language.Und),
		output:      &bytes.Buffer{},
		atLineStart: true,
	}
}

// String returns the formatted output.
func (p *Printer) String() string {
	return strings.TrimRight(p.output.String(), "\n") + "\n"
}

func (p *Printer) write(s string) {
	if p.atLineStart && len(s) > 0 && s[0] != '\n' {
		p.writeIndent()
	}
	p.output.WriteString(s)
	p.atLineStart = false
}

func (p *Printer) writeln() {
	p.output.WriteByte('\n')
	p.atLineStart = true
}

func (p *Printer) writeIndent() {
	p.output.WriteString(strings.Repeat(" ", p.depth*p.opts.Indent))
	p.atLineStart = false
}

func (p *Printer) indent() {
	p.depth++
}

func (p *Printer) dedent() {
	if p.depth > 0 {
		p.depth--
	}
}

func (p *Printer) space() {
	p.output.WriteByte(' ')
}

// keyword prints a keyword in the configured case. Multi-word keywords
// are passed as one string.
func (p *Printer) keyword(s string) {
	p.write(p.keywordText(s))
}

func (p *Printer) keywordText(s string) string {
	if p.opts.KeywordCase == Lower {
		return strings.ToLower(s)
	}
	return p.caser.String(s)
}

// writeTokens prints a rendered token run on the current line.
func (p *Printer) writeTokens(toks []token.Token) {
	for i, t := range toks {
		if t.Kind == token.EOF {
			break
		}
		if i > 0 && ast.NeedsSpace(toks, i) {
			p.space()
		}
		if t.Kind == token.Keyword {
			p.keyword(t.Command)
			continue
		}
		p.write(ast.TokenText(t))
	}
}

// inline prints a node on one line.
func (p *Printer) inline(n ast.Node) {
	p.writeTokens(ast.Tokens(n))
}

// formatList prints a list of items with separators.
// count is the number of items, format is called for each index,
// sep is the separator string, multiline adds newlines after separators.
func (p *Printer) formatList(count int, format func(i int), sep string, multiline bool) {
	for i := 0; i < count; i++ {
		format(i)
		if i < count-1 {
			p.write(sep)
			if multiline {
				p.writeln()
			} else {
				p.space()
			}
		}
	}
}

func (p *Printer) names(list []string) {
	p.write("(")
	p.write(strings.Join(list, ", "))
	p.write(")")
}
