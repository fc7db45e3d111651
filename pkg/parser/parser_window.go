package parser

import (
	"github.com/leapstack-labs/leapquery/pkg/ast"
	"github.com/leapstack-labs/leapquery/pkg/token"
)

// Window specifications for OVER (...) and the WINDOW clause.
//
// Grammar:
//
//	window_def    → name AS "(" window_spec ")"
//	window_spec   → [base_name] [PARTITION BY expr_list] [ORDER BY order_list] [frame]
//	frame         → (ROWS | RANGE | GROUPS) (bound | BETWEEN bound AND bound) [exclude]
//	bound         → UNBOUNDED PRECEDING | UNBOUNDED FOLLOWING | CURRENT ROW
//	              | expr PRECEDING | expr FOLLOWING
//	exclude       → EXCLUDE CURRENT ROW | EXCLUDE GROUP | EXCLUDE TIES | EXCLUDE NO OTHERS

var frameUnits = map[string]bool{
	"rows":   true,
	"range":  true,
	"groups": true,
}

var frameExcludes = map[string]bool{
	"exclude current row": true,
	"exclude group":       true,
	"exclude ties":        true,
	"exclude no others":   true,
}

// parseNamedWindow parses one WINDOW clause entry.
func (p *Parser) parseNamedWindow() (*ast.NamedWindow, error) {
	name, err := p.parseName(false)
	if err != nil {
		return nil, err
	}
	if _, err := p.cur.Expect("as"); err != nil {
		return nil, err
	}
	spec, err := p.parseWindowSpec()
	if err != nil {
		return nil, err
	}
	return &ast.NamedWindow{Name: name, Spec: spec}, nil
}

// parseWindowSpec parses "(" window_spec ")".
func (p *Parser) parseWindowSpec() (*ast.WindowSpec, error) {
	if err := p.expectLParen(); err != nil {
		return nil, err
	}
	spec := &ast.WindowSpec{}

	if tok := p.cur.Peek(); tok.Kind == token.Ident && !frameUnits[tok.Word()] {
		spec.Base = p.cur.Read().Text
	}

	if p.cur.Accept("partition by") {
		exprs, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		spec.PartitionBy = exprs
	}

	if p.cur.Accept("order by") {
		items, err := p.parseOrderList()
		if err != nil {
			return nil, err
		}
		spec.OrderBy = items
	}

	if unit := p.cur.Peek().Word(); frameUnits[unit] {
		p.cur.Read()
		frame, err := p.parseFrame(unit)
		if err != nil {
			return nil, err
		}
		spec.Frame = frame
	}

	return spec, p.expectRParen()
}

// parseFrame parses the frame extent after the unit word.
func (p *Parser) parseFrame(unit string) (*ast.Frame, error) {
	f := &ast.Frame{Unit: unit}

	if p.cur.Accept("between") {
		start, err := p.parseFrameBound()
		if err != nil {
			return nil, err
		}
		if _, err := p.cur.Expect("and"); err != nil {
			return nil, err
		}
		end, err := p.parseFrameBound()
		if err != nil {
			return nil, err
		}
		f.Start, f.End = start, end
	} else {
		start, err := p.parseFrameBound()
		if err != nil {
			return nil, err
		}
		f.Start = start
	}

	if tok := p.cur.Peek(); tok.Kind == token.Keyword && frameExcludes[tok.Command] {
		p.cur.Read()
		f.Exclude = tok.Command
	}
	return f, nil
}

func (p *Parser) parseFrameBound() (*ast.FrameBound, error) {
	switch {
	case p.cur.Accept("unbounded preceding"):
		return &ast.FrameBound{Kind: ast.UnboundedPreceding}, nil
	case p.cur.Accept("unbounded following"):
		return &ast.FrameBound{Kind: ast.UnboundedFollowing}, nil
	case p.cur.Accept("current row"):
		return &ast.FrameBound{Kind: ast.CurrentRow}, nil
	}

	offset, err := p.parseExprPrec(ast.PrecAnd)
	if err != nil {
		return nil, err
	}
	dir, err := p.cur.Expect("preceding", "following")
	if err != nil {
		return nil, err
	}
	if dir.Word() == "preceding" {
		return &ast.FrameBound{Kind: ast.Preceding, Offset: offset}, nil
	}
	return &ast.FrameBound{Kind: ast.Following, Offset: offset}, nil
}
