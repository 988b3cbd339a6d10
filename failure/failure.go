// Package failure classifies the errors a conversion can end with.
//
// Every error that reaches the command line carries one Kind. Callers test
// for a kind with errors.Is against the sentinel values:
//
//	if errors.Is(err, failure.ErrParse) { ... }
package failure

import (
	"errors"
	"fmt"
)

// Kind is the class of a conversion failure.
type Kind int

const (
	// Config is a malformed command line.
	Config Kind = iota + 1
	// Init is a drawing surface that could not be created.
	Init
	// IO is an unreadable source or unwritable destination.
	IO
	// Parse is mesh data that does not decode.
	Parse
)

func (k Kind) String() string {
	switch k {
	case Config:
		return "ConfigError"
	case Init:
		return "InitError"
	case IO:
		return "IOError"
	case Parse:
		return "ParseError"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Sentinels for errors.Is.
var (
	ErrConfig = &Error{Kind: Config}
	ErrInit   = &Error{Kind: Init}
	ErrIO     = &Error{Kind: IO}
	ErrParse  = &Error{Kind: Parse}
)

// Error records a failed operation and its class.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// New returns an error of the given kind wrapping err.
func New(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf returns an error of the given kind with a formatted message.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil && e.Op == "":
		return e.Kind.String()
	case e.Err == nil:
		return e.Op
	case e.Op == "":
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels work with
// errors.Is regardless of Op and Err.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf reports the kind of the outermost *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
