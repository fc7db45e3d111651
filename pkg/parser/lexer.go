package parser

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/token"
)

// Lexer tokenizes SQL input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)

	err *ParseError
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// Err returns the first lexical error, if any.
func (l *Lexer) Err() *ParseError {
	return l.err
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.col++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// operators is ordered longest first so that prefix matches resolve to the
// longest operator.
var operators = []string{
	"->>", "#>>", "!~*",
	"::", "<>", "!=", "<=", ">=", "||", "->", "#>", "@>", "<@", "&&", "!~", "~*", "<<", ">>",
	"=", "<", ">", "+", "-", "*", "/", "%", "^", "~", "&", "|", "#", "@", ":",
}

// NextToken returns the next raw token. Multi-word commands are merged by
// Tokenize, not here.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()
	start := l.pos

	if l.atEOF() {
		return token.Token{Kind: token.EOF, Pos: pos}
	}

	simple := func(kind token.Kind) token.Token {
		l.readChar()
		return token.Token{Kind: kind, Text: l.input[start:l.pos], Pos: pos}
	}

	switch l.ch {
	case ',':
		return simple(token.Comma)
	case '.':
		if isDigit(l.peekChar()) {
			return token.Token{Kind: token.Number, Text: l.readNumber(), Pos: pos}
		}
		return simple(token.Dot)
	case '(':
		return simple(token.LParen)
	case ')':
		return simple(token.RParen)
	case '[':
		return simple(token.LBracket)
	case ']':
		return simple(token.RBracket)
	case ';':
		return simple(token.Semicolon)
	case '?':
		return simple(token.Param)
	case '\'':
		text, ok := l.readString(false)
		if !ok {
			return l.illegal(pos, text, ErrUnterminatedString)
		}
		return token.Token{Kind: token.String, Text: text, Pos: pos}
	case '"':
		text, ok := l.readQuotedIdentifier()
		if !ok {
			return l.illegal(pos, text, ErrUnterminatedIdent)
		}
		return token.Token{Kind: token.Ident, Text: text, Pos: pos}
	case ':':
		if isIdentStart(l.peekChar()) {
			l.readChar()
			l.readIdentifier()
			return token.Token{Kind: token.Param, Text: l.input[start:l.pos], Pos: pos}
		}
	case '@':
		if isIdentStart(l.peekChar()) {
			l.readChar()
			l.readIdentifier()
			return token.Token{Kind: token.Param, Text: l.input[start:l.pos], Pos: pos}
		}
	case '$':
		switch {
		case isDigit(l.peekChar()):
			l.readChar()
			for isDigit(l.ch) {
				l.readChar()
			}
			return token.Token{Kind: token.Param, Text: l.input[start:l.pos], Pos: pos}
		default:
			text, ok := l.readDollarString()
			if !ok {
				return l.illegal(pos, text, ErrUnterminatedString)
			}
			return token.Token{Kind: token.String, Text: text, Pos: pos}
		}
	}

	switch {
	case (l.ch == 'e' || l.ch == 'E') && l.peekChar() == '\'':
		l.readChar()
		text, ok := l.readString(true)
		if !ok {
			return l.illegal(pos, l.input[start:l.pos], ErrUnterminatedString)
		}
		return token.Token{Kind: token.String, Text: l.input[start:start+1] + text, Pos: pos}
	case isIdentStart(l.ch):
		word := l.readIdentifier()
		lower := strings.ToLower(word)
		if token.IsKeyword(lower) {
			return token.Token{Kind: token.Keyword, Command: lower, Text: word, Pos: pos}
		}
		return token.Token{Kind: token.Ident, Text: word, Pos: pos}
	case isDigit(l.ch):
		return token.Token{Kind: token.Number, Text: l.readNumber(), Pos: pos}
	}

	rest := l.input[l.pos:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			for range op {
				l.readChar()
			}
			return token.Token{Kind: token.Operator, Command: op, Text: op, Pos: pos}
		}
	}

	ch := l.ch
	l.readChar()
	return l.illegal(pos, string(ch), fmt.Sprintf(ErrIllegalCharacter, ch))
}

func (l *Lexer) illegal(pos token.Position, text, msg string) token.Token {
	tok := token.Token{Kind: token.Illegal, Text: text, Pos: pos}
	if l.err == nil {
		l.err = &ParseError{Kind: ErrKindIllegalToken, Pos: pos, Token: tok, Message: msg}
	}
	return tok
}

// skipWhitespaceAndComments skips whitespace, line comments and block comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == '\f' {
			l.readChar()
		}

		if l.ch == '-' && l.peekChar() == '-' {
			for l.ch != '\n' && !l.atEOF() {
				l.readChar()
			}
			continue
		}

		if l.ch == '/' && l.peekChar() == '*' {
			pos := l.currentPos()
			l.readChar() // skip '/'
			l.readChar() // skip '*'
			closed := false
			for !l.atEOF() {
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar()
					l.readChar()
					closed = true
					break
				}
				l.readChar()
			}
			if !closed {
				l.illegal(pos, "/*", ErrUnterminatedComment)
			}
			continue
		}

		break
	}
}

// readString reads a single-quoted string literal and returns its raw
// source text including quotes. Doubled quotes stay doubled. With
// backslash set, \' is also an escape (E'' strings).
func (l *Lexer) readString(backslash bool) (string, bool) {
	start := l.pos
	l.readChar() // skip opening quote
	for !l.atEOF() {
		switch {
		case backslash && l.ch == '\\' && l.peekChar() != 0:
			l.readChar()
			l.readChar()
		case l.ch == '\'' && l.peekChar() == '\'':
			l.readChar()
			l.readChar()
		case l.ch == '\'':
			l.readChar()
			return l.input[start:l.pos], true
		default:
			l.readChar()
		}
	}
	return l.input[start:l.pos], false
}

// readQuotedIdentifier reads a double-quoted identifier, quotes included.
// Doubled double quotes are an escape: "col""name".
func (l *Lexer) readQuotedIdentifier() (string, bool) {
	start := l.pos
	l.readChar() // skip opening quote
	for !l.atEOF() {
		if l.ch == '"' {
			if l.peekChar() == '"' {
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar()
			return l.input[start:l.pos], true
		}
		l.readChar()
	}
	return l.input[start:l.pos], false
}

// readDollarString reads $$...$$ or $tag$...$tag$.
func (l *Lexer) readDollarString() (string, bool) {
	start := l.pos
	l.readChar() // skip '$'
	for isIdentPart(l.ch) && l.ch != '$' {
		l.readChar()
	}
	if l.ch != '$' {
		return l.input[start:l.pos], false
	}
	l.readChar()
	tag := l.input[start:l.pos]
	end := strings.Index(l.input[l.pos:], tag)
	if end < 0 {
		for !l.atEOF() {
			l.readChar()
		}
		return l.input[start:l.pos], false
	}
	stop := l.pos + end + len(tag)
	for l.pos < stop {
		l.readChar()
	}
	return l.input[start:l.pos], true
}

// readIdentifier reads an unquoted identifier.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isIdentPart(l.ch) && !l.atEOF() {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads a numeric literal (integer, decimal, or scientific).
func (l *Lexer) readNumber() string {
	start := l.pos

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && (isDigit(l.peekChar()) || l.pos == start) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if (l.ch == 'e' || l.ch == 'E') && (isDigit(l.peekChar()) || l.peekChar() == '+' || l.peekChar() == '-') {
		save := *l
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		if !isDigit(l.ch) {
			*l = save
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.input[start:l.pos]
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch >= 0x80
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch) || ch == '$'
}

// isDigit returns true if ch is a digit.
func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize lexes the whole input and merges multi-word commands such as
// "order by" or "is not distinct from" into single Keyword tokens. The
// returned slice always ends with an EOF token.
func Tokenize(input string) ([]token.Token, error) {
	l := NewLexer(input)
	var raw []token.Token
	for {
		tok := l.NextToken()
		if l.err != nil {
			return nil, l.err
		}
		raw = append(raw, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return mergeCommands(raw), nil
}

func mergeCommands(raw []token.Token) []token.Token {
	out := make([]token.Token, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		cmd, n := token.MatchCommand(func(off int) string {
			if i+off >= len(raw) {
				return ""
			}
			return raw[i+off].Word()
		})
		if n < 2 {
			out = append(out, raw[i])
			continue
		}
		parts := make([]string, n)
		for j := 0; j < n; j++ {
			parts[j] = raw[i+j].Text
		}
		out = append(out, token.Token{
			Kind:    token.Keyword,
			Command: cmd,
			Text:    strings.Join(parts, " "),
			Pos:     raw[i].Pos,
		})
		i += n - 1
	}
	return out
}
