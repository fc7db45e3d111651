package parser

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/token"
)

// ErrorKind classifies a ParseError.
type ErrorKind int

const (
	// ErrKindUnexpectedToken means the parser found a token it cannot use here.
	ErrKindUnexpectedToken ErrorKind = iota
	// ErrKindUnexpectedEOF means input ended while a token was required.
	ErrKindUnexpectedEOF
	// ErrKindIllegalToken means the tokenizer could not lex the input.
	ErrKindIllegalToken
	// ErrKindTooDeep means the input nests deeper than the configured limit.
	ErrKindTooDeep
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindUnexpectedToken:
		return "unexpected token"
	case ErrKindUnexpectedEOF:
		return "unexpected end of input"
	case ErrKindIllegalToken:
		return "illegal token"
	case ErrKindTooDeep:
		return "nesting too deep"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ParseError represents a parsing error with position information.
// Parsing stops at the first error; no partial tree is returned.
type ParseError struct {
	Kind     ErrorKind
	Pos      token.Position
	Token    token.Token
	Expected []string
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Common error messages
const (
	ErrUnexpectedToken     = "unexpected token %s, expected %s"
	ErrUnexpectedEOF       = "unexpected end of input, expected %s"
	ErrUnterminatedString  = "unterminated string literal"
	ErrUnterminatedIdent   = "unterminated quoted identifier"
	ErrUnterminatedComment = "unterminated block comment"
	ErrIllegalCharacter    = "illegal character %q"
	ErrTooDeep             = "expression nesting exceeds maximum depth of %d"
	ErrTrailingInput       = "unexpected token %s after end of statement"
)

func newUnexpected(tok token.Token, expected ...string) *ParseError {
	want := strings.Join(expected, " or ")
	if want == "" {
		want = "more input"
	}
	if tok.Kind == token.EOF {
		return &ParseError{
			Kind:     ErrKindUnexpectedEOF,
			Pos:      tok.Pos,
			Token:    tok,
			Expected: expected,
			Message:  fmt.Sprintf(ErrUnexpectedEOF, want),
		}
	}
	return &ParseError{
		Kind:     ErrKindUnexpectedToken,
		Pos:      tok.Pos,
		Token:    tok,
		Expected: expected,
		Message:  fmt.Sprintf(ErrUnexpectedToken, tok, want),
	}
}
