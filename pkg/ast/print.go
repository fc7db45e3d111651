package ast

import (
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/token"
)

// Print joins tokens into single-line SQL. Keywords print in lower case;
// identifiers and literals print as written.
func Print(toks []token.Token) string {
	var b strings.Builder
	for i, t := range toks {
		if t.Kind == token.EOF {
			break
		}
		if i > 0 && NeedsSpace(toks, i) {
			b.WriteByte(' ')
		}
		b.WriteString(TokenText(t))
	}
	return b.String()
}

// TokenText returns the printed form of a token.
func TokenText(t token.Token) string {
	if t.Kind == token.Keyword || t.Kind == token.Operator {
		return t.Command
	}
	return t.Text
}

// NeedsSpace reports whether a space separates toks[i-1] and toks[i].
func NeedsSpace(toks []token.Token, i int) bool {
	prev, cur := toks[i-1], toks[i]

	switch cur.Kind {
	case token.Comma, token.RParen, token.RBracket, token.Dot, token.Semicolon, token.LBracket:
		return false
	case token.LParen:
		if prev.Kind == token.Ident {
			return false
		}
	}
	switch prev.Kind {
	case token.LParen, token.LBracket, token.Dot:
		return false
	}
	if prev.Is("::") || cur.Is("::") || prev.Is(":") || cur.Is(":") {
		return false
	}
	if prev.Kind == token.Operator && isPrefixOp(prev.Command) {
		if i < 2 || startsOperand(toks[i-2]) {
			return false
		}
	}
	return true
}

func isPrefixOp(op string) bool {
	return op == "-" || op == "+" || op == "~"
}

// startsOperand reports whether an operator following t is in prefix
// position.
func startsOperand(t token.Token) bool {
	switch t.Kind {
	case token.Operator, token.LParen, token.LBracket, token.Comma:
		return true
	case token.Keyword:
		switch t.Command {
		case "end", "null", "true", "false":
			return false
		}
		return true
	}
	return false
}
