package apperror

import (
	"errors"
	"fmt"
	"runtime/debug"
)

type Error struct {
	Kind    Kind   // category used for routing and status mapping
	Op      string // <layer>.<domain>.<action>
	Err     error  // wrapped error
	Message string // safe to show to API callers
	Stack   []byte // captured for Internal and Dependency kinds
}

// Error implements the built-in error interface
func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.Op != "" && e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Op != "":
		return e.Op
	default:
		return "unknown error"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

func New(kind Kind, op string, err error) *Error {
	e := &Error{
		Kind: kind,
		Op:   op,
		Err:  err,
	}

	if captureStack(kind) {
		e.Stack = debug.Stack()
	}

	return e
}

// Invalid builds an InvalidInput error carrying a caller-facing message.
func Invalid(op, msg string) *Error {
	return &Error{Kind: InvalidInput, Op: op, Message: msg}
}

func IsKind(err error, kind Kind) bool {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind == kind
	}
	return false
}

// KindOf returns the kind of the outermost *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind
	}
	return Internal
}

func captureStack(kind Kind) bool {
	return kind == Internal || kind == Dependency
}
