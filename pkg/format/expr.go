package format

import (
	"github.com/leapstack-labs/leapquery/pkg/ast"
)

// complexityThreshold is the node count above which AND/OR chains are
// broken across lines.
const complexityThreshold = 5

func (p *Printer) formatExpr(e ast.Expr) {
	switch x := e.(type) {
	case nil:
		return
	case *ast.CaseExpr:
		p.formatCaseExpr(x)
	case *ast.BinaryExpr:
		if isLogicalOp(x.Op) && exprComplexity(x) > complexityThreshold {
			p.formatLogical(x)
			return
		}
		p.inline(x)
	default:
		p.inline(e)
	}
}

// formatLogical puts each operand of an AND/OR chain on its own line,
// leading with the operator.
func (p *Printer) formatLogical(x *ast.BinaryExpr) {
	prec := ast.BinaryPrecedence(x.Op)
	p.operand(x.Left, prec)
	p.writeln()
	p.keyword(x.Op)
	p.space()
	p.operand(x.Right, prec)
}

func (p *Printer) operand(e ast.Expr, parent int) {
	if ast.Precedence(e) < parent {
		p.write("(")
		p.inline(e)
		p.write(")")
		return
	}
	p.formatExpr(e)
}

func (p *Printer) formatCaseExpr(c *ast.CaseExpr) {
	p.keyword("case")
	if c.Operand != nil {
		p.space()
		p.inline(c.Operand)
	}
	p.writeln()
	p.indent()

	for _, w := range c.Whens {
		p.keyword("when")
		p.space()
		p.inline(w.Cond)
		p.space()
		p.keyword("then")
		p.space()
		p.inline(w.Result)
		p.writeln()
	}

	if c.Else != nil {
		p.keyword("else")
		p.space()
		p.inline(c.Else)
		p.writeln()
	}

	p.dedent()
	p.keyword("end")
}

func isLogicalOp(op string) bool {
	return op == "and" || op == "or"
}

// exprComplexity counts the nodes of e in its own scope.
func exprComplexity(e ast.Expr) int {
	n := 0
	ast.Inspect(e, func(x ast.Node) bool {
		if _, ok := x.(ast.Query); ok {
			return false
		}
		n++
		return true
	})
	return n
}
