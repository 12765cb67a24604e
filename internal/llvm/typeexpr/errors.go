package typeexpr

import "fmt"

// ErrorKind classifies type expression failures.
type ErrorKind uint8

const (
	ErrUnexpected ErrorKind = iota + 1
	ErrBadNumber
	ErrUndefinedName
	ErrCycle
	ErrBinding
)

// Error is a failure at a byte offset of a type expression.
type Error struct {
	Kind ErrorKind
	Pos  int
	Src  string
	Msg  string
	Name string // the unresolved or offending name
	Err  error  // underlying registry or layout error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Src == "" {
		return "typeexpr: " + e.Msg
	}
	return fmt.Sprintf("typeexpr: %q at %d: %s", e.Src, e.Pos, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }
