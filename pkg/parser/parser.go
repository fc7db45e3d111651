// Package parser turns SQL SELECT-family text into the ast query model.
//
// # Usage
//
//	q, err := parser.Parse("select a.id from table_a as a")
//	if err != nil {
//	    // err is a *parser.ParseError
//	}
//	fmt.Println(ast.ToSQL(q))
//
// # Grammar Overview
//
// The parser is recursive descent over a fully tokenized buffer, with a
// Pratt loop for value expressions:
//
//	query         → [WITH cte_list] set_expr [ORDER BY order_list] [paging] [lock]
//	set_expr      → set_operand ((UNION|INTERSECT|EXCEPT) [ALL] set_operand)*
//	set_operand   → select_core | VALUES row_list | "(" query ")"
//	select_core   → SELECT [DISTINCT [ON (...)] | ALL] select_list
//	                [FROM from_clause] [WHERE expr] [GROUP BY expr_list]
//	                [HAVING expr] [WINDOW window_list]
//
// See each file for detailed grammar rules for that section.
//
// Parsing stops at the first error and never returns a partial tree.
package parser

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/ast"
	"github.com/leapstack-labs/leapquery/pkg/token"
)

// DefaultMaxDepth bounds expression and query nesting.
const DefaultMaxDepth = 200

// Parser parses SQL into an AST.
type Parser struct {
	cur      *Cursor
	depth    int
	maxDepth int
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxDepth sets the nesting limit. Input nesting deeper than n fails
// with ErrKindTooDeep instead of growing the stack without bound.
func WithMaxDepth(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxDepth = n
		}
	}
}

// NewParser creates a parser over an already tokenized buffer.
func NewParser(toks []token.Token, opts ...Option) *Parser {
	p := &Parser{
		cur:      NewCursor(toks),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses one query. A trailing semicolon is allowed; anything after
// it is an error.
func Parse(sql string, opts ...Option) (ast.Query, error) {
	toks, err := Tokenize(sql)
	if err != nil {
		return nil, err
	}
	p := NewParser(toks, opts...)
	q, err := p.ParseQuery()
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	return q, nil
}

// ParseExpr parses a single value expression.
func ParseExpr(sql string, opts ...Option) (ast.Expr, error) {
	toks, err := Tokenize(sql)
	if err != nil {
		return nil, err
	}
	p := NewParser(toks, opts...)
	e, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	return e, nil
}

// MustParse is like Parse but panics on error. For tests and static input.
func MustParse(sql string) ast.Query {
	q, err := Parse(sql)
	if err != nil {
		panic(err)
	}
	return q
}

// ---------- Helpers ----------

func (p *Parser) expectEnd() error {
	p.cur.AcceptKind(token.Semicolon)
	if tok := p.cur.Peek(); tok.Kind != token.EOF {
		return &ParseError{
			Kind:     ErrKindUnexpectedToken,
			Pos:      tok.Pos,
			Token:    tok,
			Expected: []string{"end of input"},
			Message:  fmt.Sprintf(ErrTrailingInput, tok),
		}
	}
	return nil
}

// enter records one level of nesting and fails past the limit.
func (p *Parser) enter() error {
	p.depth++
	if p.depth > p.maxDepth {
		tok := p.cur.Peek()
		return &ParseError{
			Kind:    ErrKindTooDeep,
			Pos:     tok.Pos,
			Token:   tok,
			Message: fmt.Sprintf(ErrTooDeep, p.maxDepth),
		}
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

func (p *Parser) expectLParen() error {
	_, err := p.cur.ExpectKind(token.LParen)
	return err
}

func (p *Parser) expectRParen() error {
	_, err := p.cur.ExpectKind(token.RParen)
	return err
}

// parseName parses an identifier. With keywords set, reserved words are
// accepted too (after AS, or after a dot).
func (p *Parser) parseName(keywords bool) (string, error) {
	tok := p.cur.Peek()
	if tok.Kind == token.Ident || (keywords && tok.Kind == token.Keyword && !strings.Contains(tok.Command, " ")) {
		p.cur.Read()
		return tok.Text, nil
	}
	return "", newUnexpected(tok, "identifier")
}

// parseQualifiedName parses name ("." name)*.
func (p *Parser) parseQualifiedName() (string, error) {
	name, err := p.parseName(false)
	if err != nil {
		return "", err
	}
	for p.cur.Peek().Kind == token.Dot {
		p.cur.Read()
		part, err := p.parseName(true)
		if err != nil {
			return "", err
		}
		name += "." + part
	}
	return name, nil
}

// parseNameList parses name ("," name)*.
func (p *Parser) parseNameList() ([]string, error) {
	var names []string
	for {
		n, err := p.parseName(true)
		if err != nil {
			return nil, err
		}
		names = append(names, n)
		if !p.cur.AcceptKind(token.Comma) {
			return names, nil
		}
	}
}

// parseParenNameList parses "(" name ("," name)* ")".
func (p *Parser) parseParenNameList() ([]string, error) {
	if err := p.expectLParen(); err != nil {
		return nil, err
	}
	names, err := p.parseNameList()
	if err != nil {
		return nil, err
	}
	return names, p.expectRParen()
}

// startsQuery reports whether tok can begin a query.
func startsQuery(tok token.Token) bool {
	return tok.Is("select") || tok.Is("with") || tok.Is("with recursive") || tok.Is("values")
}
