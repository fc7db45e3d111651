package parser

import "github.com/leapstack-labs/leapquery/pkg/token"

// Cursor is an index over a fully materialized token buffer. Speculative
// parses save the index with Mark and roll back with Reset; token data is
// never copied.
type Cursor struct {
	toks []token.Token
	pos  int
}

// NewCursor returns a cursor over toks. The slice must end with an EOF token.
func NewCursor(toks []token.Token) *Cursor {
	if len(toks) == 0 || toks[len(toks)-1].Kind != token.EOF {
		toks = append(toks, token.Token{Kind: token.EOF})
	}
	return &Cursor{toks: toks}
}

// Peek returns the current token without consuming it.
func (c *Cursor) Peek() token.Token {
	return c.PeekN(0)
}

// PeekN returns the token n positions ahead of the current one.
func (c *Cursor) PeekN(n int) token.Token {
	i := c.pos + n
	if i >= len(c.toks) {
		return c.toks[len(c.toks)-1]
	}
	return c.toks[i]
}

// Read consumes and returns the current token.
func (c *Cursor) Read() token.Token {
	tok := c.Peek()
	if tok.Kind != token.EOF {
		c.pos++
	}
	return tok
}

// Mark returns the current index for a later Reset.
func (c *Cursor) Mark() int { return c.pos }

// Reset rolls the cursor back to a mark.
func (c *Cursor) Reset(mark int) { c.pos = mark }

// Accept consumes the current token if its command matches.
func (c *Cursor) Accept(command string) bool {
	if c.Peek().Is(command) {
		c.pos++
		return true
	}
	return false
}

// AcceptWord consumes the current token if it is the unquoted word w.
func (c *Cursor) AcceptWord(w string) bool {
	if c.Peek().IsWord(w) {
		c.pos++
		return true
	}
	return false
}

// AcceptKind consumes the current token if it has the given kind.
func (c *Cursor) AcceptKind(kind token.Kind) bool {
	if c.Peek().Kind == kind {
		c.pos++
		return true
	}
	return false
}

// Expect consumes a token matching one of the commands or words, or fails
// with the expected set.
func (c *Cursor) Expect(commands ...string) (token.Token, error) {
	tok := c.Peek()
	for _, cmd := range commands {
		if tok.Is(cmd) || tok.IsWord(cmd) {
			c.pos++
			return tok, nil
		}
	}
	return tok, newUnexpected(tok, quoteAll(commands)...)
}

// ExpectKind consumes a token of the given kind or fails.
func (c *Cursor) ExpectKind(kind token.Kind) (token.Token, error) {
	tok := c.Peek()
	if tok.Kind == kind {
		c.pos++
		return tok, nil
	}
	return tok, newUnexpected(tok, kindName(kind))
}

func kindName(k token.Kind) string {
	switch k {
	case token.Ident:
		return "identifier"
	case token.Number:
		return "number"
	case token.String:
		return "string"
	case token.EOF:
		return "end of input"
	}
	return `"` + k.String() + `"`
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = `"` + s + `"`
	}
	return out
}
