package parser

import (
	"github.com/leapstack-labs/leapquery/pkg/ast"
	"github.com/leapstack-labs/leapquery/pkg/token"
)

// Expression parsing uses Pratt parsing (precedence climbing).
//
// Grammar:
//
//	expr          → or_expr
//	or_expr       → and_expr (OR and_expr)*
//	and_expr      → not_expr (AND not_expr)*
//	not_expr      → NOT not_expr | comparison
//	comparison    → other (comp_op other | IS [NOT] ... | [NOT] BETWEEN ...
//	              | [NOT] LIKE ... | [NOT] IN ...)*
//	other         → additive (other_op additive)*       -- ||, ->, @>, ~ ...
//	additive      → multiplicative (("+" | "-") multiplicative)*
//	multiplicative→ exponent (("*" | "/" | "%") exponent)*
//	exponent      → unary ("^" unary)*
//	unary         → ("-" | "+" | "~") unary | postfix
//	postfix       → primary ("::" type | "[" subscript "]" | AT TIME ZONE x | COLLATE x)*

// likeOps are the pattern-match commands parsed into LikeExpr.
var likeOps = map[string]bool{
	"like":           true,
	"not like":       true,
	"ilike":          true,
	"not ilike":      true,
	"similar to":     true,
	"not similar to": true,
}

// ParseExpr parses a value expression at the current token.
func (p *Parser) ParseExpr() (ast.Expr, error) {
	return p.parseExprPrec(ast.PrecLowest)
}

// parseExprPrec parses an expression whose infix operators all bind
// tighter than minPrec.
func (p *Parser) parseExprPrec(minPrec int) (ast.Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.cur.Peek()
		prec := infixPrecedence(tok)
		if prec == ast.PrecLowest || prec <= minPrec {
			return left, nil
		}
		left, err = p.parseInfix(left, tok, prec)
		if err != nil {
			return nil, err
		}
	}
}

// parsePrefix parses prefix operators and primary expressions.
func (p *Parser) parsePrefix() (ast.Expr, error) {
	tok := p.cur.Peek()

	if tok.Is("not") {
		p.cur.Read()
		operand, err := p.parseExprPrec(ast.PrecNot)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: "not", Expr: operand}, nil
	}

	if tok.Kind == token.Operator {
		switch tok.Command {
		case "-", "+", "~":
			p.cur.Read()
			operand, err := p.parseExprPrec(ast.PrecUnary)
			if err != nil {
				return nil, err
			}
			return &ast.UnaryExpr{Op: tok.Command, Expr: operand}, nil
		}
	}

	return p.parsePrimary()
}

// infixPrecedence returns the binding strength of tok in infix position,
// or PrecLowest when tok cannot continue an expression.
func infixPrecedence(tok token.Token) int {
	switch tok.Kind {
	case token.LBracket:
		return ast.PrecPostfix
	case token.Operator:
		if tok.Command == ":" {
			return ast.PrecLowest
		}
		return ast.BinaryPrecedence(tok.Command)
	case token.Keyword:
		switch tok.Command {
		case "or":
			return ast.PrecOr
		case "and":
			return ast.PrecAnd
		case "is", "is not", "is distinct from", "is not distinct from",
			"between", "not between", "in", "not in":
			return ast.PrecComparison
		case "at time zone", "collate":
			return ast.PrecPostfix
		}
		if likeOps[tok.Command] {
			return ast.PrecComparison
		}
	}
	return ast.PrecLowest
}

// parseInfix parses the operator at the cursor and its right-hand side.
func (p *Parser) parseInfix(left ast.Expr, tok token.Token, prec int) (ast.Expr, error) {
	if tok.Kind == token.LBracket {
		return p.parseSubscript(left)
	}
	p.cur.Read()

	switch cmd := tok.Command; {
	case cmd == "::":
		typ, err := p.parseTypeName()
		if err != nil {
			return nil, err
		}
		return &ast.CastExpr{Expr: left, Type: typ, Colons: true}, nil

	case cmd == "between" || cmd == "not between":
		return p.parseBetween(left, cmd == "not between")

	case cmd == "in" || cmd == "not in":
		return p.parseIn(left, cmd == "not in")

	case likeOps[cmd]:
		pattern, err := p.parseExprPrec(ast.PrecComparison)
		if err != nil {
			return nil, err
		}
		like := &ast.LikeExpr{Expr: left, Op: cmd, Pattern: pattern}
		if p.cur.AcceptWord("escape") {
			esc, err := p.parseExprPrec(ast.PrecComparison)
			if err != nil {
				return nil, err
			}
			like.Escape = esc
		}
		return like, nil
	}

	right, err := p.parseExprPrec(prec)
	if err != nil {
		return nil, err
	}
	return &ast.BinaryExpr{Left: left, Op: tok.Command, Right: right}, nil
}

// parseBetween parses the bounds of x [NOT] BETWEEN [SYMMETRIC] low AND high.
// Bounds stop at comparison level so the AND is never taken as a
// conjunction.
func (p *Parser) parseBetween(left ast.Expr, not bool) (ast.Expr, error) {
	b := &ast.BetweenExpr{Expr: left, Not: not}
	if p.cur.AcceptWord("symmetric") {
		b.Symmetric = true
	}

	low, err := p.parseExprPrec(ast.PrecComparison)
	if err != nil {
		return nil, err
	}
	if _, err := p.cur.Expect("and"); err != nil {
		return nil, err
	}
	high, err := p.parseExprPrec(ast.PrecComparison)
	if err != nil {
		return nil, err
	}
	b.Low, b.High = low, high
	return b, nil
}

// parseIn parses the list or subquery of x [NOT] IN (...).
func (p *Parser) parseIn(left ast.Expr, not bool) (ast.Expr, error) {
	if err := p.expectLParen(); err != nil {
		return nil, err
	}
	in := &ast.InExpr{Expr: left, Not: not}

	if startsQuery(p.cur.Peek()) {
		q, err := p.ParseQuery()
		if err != nil {
			return nil, err
		}
		in.Query = q
	} else {
		list, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		in.List = list
	}
	return in, p.expectRParen()
}

// parseSubscript parses x[i] or x[lo:hi].
func (p *Parser) parseSubscript(left ast.Expr) (ast.Expr, error) {
	p.cur.Read()
	sub := &ast.SubscriptExpr{Expr: left}

	if !p.cur.Peek().Is(":") {
		idx, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		sub.Index = idx
	}
	if p.cur.Accept(":") {
		sub.Slice = true
		if p.cur.Peek().Kind != token.RBracket {
			upper, err := p.ParseExpr()
			if err != nil {
				return nil, err
			}
			sub.Upper = upper
		}
	}
	if _, err := p.cur.ExpectKind(token.RBracket); err != nil {
		return nil, err
	}
	return sub, nil
}

// parseExprList parses expr ("," expr)*.
func (p *Parser) parseExprList() ([]ast.Expr, error) {
	var list []ast.Expr
	for {
		e, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		list = append(list, e)
		if !p.cur.AcceptKind(token.Comma) {
			return list, nil
		}
	}
}
