package rewrite

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	// ErrNotSupported means the query shape lacks the clause an edit needs,
	// such as WHERE on a VALUES list.
	ErrNotSupported = errors.New("not supported")
	// ErrInvalidOperand means an argument has the wrong shape, such as a set
	// operation where IN or EXISTS needs a plain SELECT.
	ErrInvalidOperand = errors.New("invalid operand")
	// ErrUnresolvedColumn means no reachable scope produces the column.
	ErrUnresolvedColumn = errors.New("could not resolve column")
)

// EditError reports a failed edit with the operation and column involved.
type EditError struct {
	Op     string
	Column string
	Err    error
}

func (e *EditError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("rewrite %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("rewrite %s %q: %v", e.Op, e.Column, e.Err)
}

func (e *EditError) Unwrap() error { return e.Err }

func editError(op, column string, err error) error {
	var ee *EditError
	if errors.As(err, &ee) {
		return err
	}
	return &EditError{Op: op, Column: column, Err: err}
}
