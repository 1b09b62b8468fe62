// Package errz defines the error taxonomy shared by the Femira compiler and
// virtual machine.
package errz

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// ErrSyntax indicates a syntax/parsing error.
	ErrSyntax ErrorKind = iota
	// ErrLookup indicates an unbound name, a missing record field, an
	// unregistered callable address or an empty operand stack.
	ErrLookup
	// ErrType indicates an operator received operands outside its domain.
	ErrType
	// ErrStructural indicates a malformed construct found while lowering.
	ErrStructural
	// ErrRange indicates an index or numeric value out of range.
	ErrRange
	// ErrRuntime indicates a general runtime error.
	ErrRuntime
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrSyntax:
		return "syntax error"
	case ErrLookup:
		return "lookup error"
	case ErrType:
		return "type error"
	case ErrStructural:
		return "structural error"
	case ErrRange:
		return "out-of-range error"
	case ErrRuntime:
		return "runtime error"
	default:
		return "error"
	}
}

// StructuredError carries a kind, an optional source location and the
// interpreter call stack at the point of failure.
type StructuredError struct {
	Message  string
	Kind     ErrorKind
	Location SourceLocation
	Stack    []StackFrame
	Cause    error
	Hint     string
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Location.IsZero() {
		return fmt.Sprintf("%s: %s", e.Kind.String(), e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Kind.String(), e.Message, e.Location.String())
}

// Unwrap returns the underlying cause of the error.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// FriendlyErrorMessage returns the error with its source line, a caret
// under the failing column and the stack trace, when available.
func (e *StructuredError) FriendlyErrorMessage() string {
	var msg bytes.Buffer
	msg.WriteString(e.Error())
	msg.WriteString("\n")
	if e.Location.Source != "" {
		msg.WriteString(" | ")
		msg.WriteString(e.Location.Source)
		msg.WriteString("\n")
		if e.Location.Column > 0 {
			msg.WriteString(" | ")
			msg.WriteString(strings.Repeat(" ", e.Location.Column-1))
			msg.WriteString("^\n")
		}
	}
	if e.Hint != "" {
		msg.WriteString("hint: ")
		msg.WriteString(e.Hint)
		msg.WriteString("\n")
	}
	if len(e.Stack) > 0 {
		msg.WriteString("\n")
		msg.WriteString(FormatStackTrace(e.Stack))
	}
	return msg.String()
}

// New creates a StructuredError without location or stack.
func New(kind ErrorKind, message string) *StructuredError {
	return &StructuredError{Kind: kind, Message: message}
}

// Newf creates a StructuredError with a formatted message.
func Newf(kind ErrorKind, format string, args ...any) *StructuredError {
	return &StructuredError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewStructuredErrorf creates a StructuredError with a location, a stack and
// a formatted message.
func NewStructuredErrorf(kind ErrorKind, loc SourceLocation, stack []StackFrame, format string, args ...any) *StructuredError {
	return &StructuredError{
		Message:  fmt.Sprintf(format, args...),
		Kind:     kind,
		Location: loc,
		Stack:    stack,
	}
}

// WithCause wraps the error with a cause.
func (e *StructuredError) WithCause(cause error) *StructuredError {
	e.Cause = cause
	return e
}

// WithHint attaches a short suggestion shown by FriendlyErrorMessage.
func (e *StructuredError) WithHint(hint string) *StructuredError {
	e.Hint = hint
	return e
}

// WithStack attaches a call stack if none is set yet.
func (e *StructuredError) WithStack(stack []StackFrame) *StructuredError {
	if len(e.Stack) == 0 {
		e.Stack = stack
	}
	return e
}

// KindOf returns the kind of the first StructuredError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var se *StructuredError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}

// Is reports whether err carries a StructuredError of the given kind.
func Is(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
