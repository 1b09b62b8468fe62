package parser

import (
	"fmt"
	"strings"

	"github.com/femira-lang/femira/errz"
	"github.com/femira-lang/femira/internal/token"
	"github.com/hashicorp/go-multierror"
)

// ErrorOpts is a struct that holds a variety of error data.
// All fields are optional, although one of `Cause` or `Message`
// are recommended. If `Cause` is set, `Message` will be ignored.
type ErrorOpts struct {
	ErrType       string
	Message       string
	Cause         error
	File          string
	StartPosition token.Position
	EndPosition   token.Position
	SourceCode    string
}

// NewParserError returns a new BaseParserError populated with
// the given error data.
func NewParserError(opts ErrorOpts) *BaseParserError {
	return &BaseParserError{
		errType:       opts.ErrType,
		message:       opts.Message,
		cause:         opts.Cause,
		file:          opts.File,
		startPosition: opts.StartPosition,
		endPosition:   opts.EndPosition,
		sourceCode:    opts.SourceCode,
	}
}

// ParserError is an interface that all parser errors implement.
type ParserError interface {
	Type() string
	Message() string
	Cause() error
	File() string
	StartPosition() token.Position
	EndPosition() token.Position
	SourceCode() string
	Error() string
	FriendlyErrorMessage() string
}

// BaseParserError is the simplest implementation of ParserError.
type BaseParserError struct {
	// Type of the error, e.g. "syntax error"
	errType string
	// The error message
	message string
	// The wrapped error
	cause error
	// File where the error occurred
	file string
	// Start position of the error in the input string
	startPosition token.Position
	// End position of the error in the input string
	endPosition token.Position
	// Relevant line of source code text
	sourceCode string
}

func (e *BaseParserError) Error() string {
	var msg string
	if e.cause != nil {
		msg = e.cause.Error()
	} else if e.message != "" {
		msg = e.message
	}
	if e.errType != "" {
		msg = fmt.Sprintf("%s: %s", e.errType, msg)
	}
	return msg
}

// FriendlyErrorMessage renders the error with its location and source line.
func (e *BaseParserError) FriendlyErrorMessage() string {
	return e.ToStructured().FriendlyErrorMessage()
}

// ToStructured converts the parser error into an errz syntax error.
func (e *BaseParserError) ToStructured() *errz.StructuredError {
	message := e.message
	if e.cause != nil {
		message = e.cause.Error()
	}
	return &errz.StructuredError{
		Kind:    errz.ErrSyntax,
		Message: message,
		Cause:   e.cause,
		Location: errz.SourceLocation{
			Filename: e.file,
			Line:     e.startPosition.LineNumber(),
			Column:   e.startPosition.ColumnNumber(),
			Source:   e.sourceCode,
		},
	}
}

// As lets errors.As extract an *errz.StructuredError from a parser error.
func (e *BaseParserError) As(target any) bool {
	if t, ok := target.(**errz.StructuredError); ok {
		*t = e.ToStructured()
		return true
	}
	return false
}

func (e *BaseParserError) Cause() error {
	return e.cause
}

func (e *BaseParserError) Message() string {
	return e.message
}

func (e *BaseParserError) Line() int {
	return e.startPosition.Line
}

func (e *BaseParserError) StartPosition() token.Position {
	return e.startPosition
}

func (e *BaseParserError) EndPosition() token.Position {
	return e.endPosition
}

func (e *BaseParserError) File() string {
	return e.file
}

func (e *BaseParserError) SourceCode() string {
	return e.sourceCode
}

func (e *BaseParserError) Unwrap() error {
	return e.cause
}

func (e *BaseParserError) Type() string {
	return e.errType
}

// NewSyntaxError returns a new SyntaxError populated with the given error data
func NewSyntaxError(opts ErrorOpts) *SyntaxError {
	opts.ErrType = "syntax error"
	return &SyntaxError{BaseParserError: NewParserError(opts)}
}

// SyntaxError is reported for malformed input.
type SyntaxError struct {
	*BaseParserError
}

func tokenTypeDescription(t token.Type) string {
	switch t {
	case token.EOF:
		return "end of file"
	case token.IDENT:
		return "identifier"
	case token.NEWLINE:
		return "newline"
	default:
		return string(t)
	}
}

func tokenDescription(t token.Token) string {
	switch t.Type {
	case token.EOF:
		return "end of file"
	case token.NEWLINE:
		return "newline"
	default:
		if t.Literal == "" {
			return string(t.Type)
		}
		return t.Literal
	}
}

// newErrors aggregates the collected errors. It returns nil when there are
// none.
func newErrors(errs []ParserError) error {
	if len(errs) == 0 {
		return nil
	}
	var result *multierror.Error
	for _, err := range errs {
		result = multierror.Append(result, err)
	}
	result.ErrorFormat = formatErrors
	return result
}

func formatErrors(errs []error) string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", errs[0].Error(), len(errs)-1)
}

// Errors returns the individual parser errors carried by err.
func Errors(err error) []ParserError {
	var out []ParserError
	if merr, ok := err.(*multierror.Error); ok {
		for _, e := range merr.Errors {
			if pe, ok := e.(ParserError); ok {
				out = append(out, pe)
			}
		}
		return out
	}
	if pe, ok := err.(ParserError); ok {
		out = append(out, pe)
	}
	return out
}

// FriendlyErrorMessage renders every parser error carried by err.
func FriendlyErrorMessage(err error) string {
	errs := Errors(err)
	if len(errs) == 0 {
		return err.Error()
	}
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.FriendlyErrorMessage())
	}
	return strings.Join(parts, "\n")
}
