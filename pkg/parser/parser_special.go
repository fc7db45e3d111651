package parser

import (
	"github.com/leapstack-labs/leapquery/pkg/ast"
	"github.com/leapstack-labs/leapquery/pkg/token"
)

// Functions whose arguments are separated by keywords instead of commas.
//
// Grammar:
//
//	extract       → EXTRACT "(" field FROM expr ")"
//	trim          → TRIM "(" [BOTH | LEADING | TRAILING] [expr] [FROM] expr ")"
//	substring     → SUBSTRING "(" expr [FROM expr] [FOR expr] ")"
//	position      → POSITION "(" expr IN expr ")"
//	overlay       → OVERLAY "(" expr PLACING expr FROM expr [FOR expr] ")"
//
// Each form is tried speculatively. When the keyword form does not match,
// the cursor is rewound and the call is parsed as an ordinary function
// with comma-separated arguments, e.g. substring(s, 1, 3).

var specialFuncs = map[string]bool{
	"extract":   true,
	"trim":      true,
	"substring": true,
	"position":  true,
	"overlay":   true,
}

func (p *Parser) parseSpecialFunc() (ast.Expr, error) {
	mark := p.cur.Mark()
	nameTok := p.cur.Read()
	p.cur.Read() // (

	var parts []*ast.SpecialPart
	var ok bool
	switch nameTok.Word() {
	case "extract":
		parts, ok = p.trySpecialParts("", "from")
	case "trim":
		parts, ok = p.tryTrimParts()
	case "substring":
		parts, ok = p.trySpecialParts("", "from", "for")
	case "position":
		parts, ok = p.tryPositionParts()
	case "overlay":
		parts, ok = p.trySpecialParts("", "placing", "from", "for")
	}

	if ok && p.cur.AcceptKind(token.RParen) {
		return &ast.SpecialFunc{Name: nameTok.Text, Parts: parts}, nil
	}

	p.cur.Reset(mark)
	p.cur.Read()
	return p.parseFuncCall(nameTok.Text)
}

// trySpecialParts reads one expression per keyword, in order. The first
// keyword is empty for the leading argument. Later keywords are optional
// but at least one must be present.
func (p *Parser) trySpecialParts(keywords ...string) ([]*ast.SpecialPart, bool) {
	var parts []*ast.SpecialPart
	for i, kw := range keywords {
		if kw != "" {
			if !p.cur.Peek().IsWord(kw) {
				continue
			}
			p.cur.Read()
		}
		e, err := p.ParseExpr()
		if err != nil {
			return nil, false
		}
		parts = append(parts, &ast.SpecialPart{Keyword: kw, Expr: e})
		if i == 0 && p.cur.Peek().Kind == token.Comma {
			return nil, false
		}
	}
	return parts, len(parts) > 1
}

func (p *Parser) tryTrimParts() ([]*ast.SpecialPart, bool) {
	var parts []*ast.SpecialPart
	if w := p.cur.Peek().Word(); w == "both" || w == "leading" || w == "trailing" {
		p.cur.Read()
		parts = append(parts, &ast.SpecialPart{Keyword: w})
	}

	if p.cur.Accept("from") {
		e, err := p.ParseExpr()
		if err != nil {
			return nil, false
		}
		return append(parts, &ast.SpecialPart{Keyword: "from", Expr: e}), true
	}

	first, err := p.ParseExpr()
	if err != nil {
		return nil, false
	}
	if len(parts) > 0 {
		parts[0].Expr = first
	} else {
		parts = append(parts, &ast.SpecialPart{Expr: first})
	}

	if !p.cur.Accept("from") {
		// trim(x) or trim(both x) with no FROM.
		return parts, p.cur.Peek().Kind == token.RParen
	}
	e, err := p.ParseExpr()
	if err != nil {
		return nil, false
	}
	return append(parts, &ast.SpecialPart{Keyword: "from", Expr: e}), true
}

func (p *Parser) tryPositionParts() ([]*ast.SpecialPart, bool) {
	needle, err := p.parseExprPrec(ast.PrecComparison)
	if err != nil || !p.cur.Accept("in") {
		return nil, false
	}
	haystack, err := p.ParseExpr()
	if err != nil {
		return nil, false
	}
	return []*ast.SpecialPart{{Expr: needle}, {Keyword: "in", Expr: haystack}}, true
}
