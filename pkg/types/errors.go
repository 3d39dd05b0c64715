package types

import "fmt"

// ErrorCode classifies a formula engine error.
type ErrorCode string

// Error codes, grouped by the phase that produces them.
const (
	// L0xxx: Lexer errors
	ErrStringNotClosed   ErrorCode = "L0101"
	ErrFieldRefNotClosed ErrorCode = "L0102"
	ErrUnexpectedChar    ErrorCode = "L0103"

	// S0xxx: Parser/Syntax errors
	ErrSyntaxError   ErrorCode = "S0201"
	ErrExpectedToken ErrorCode = "S0202"
	ErrInvalidNumber ErrorCode = "S0203"
	ErrTooDeep       ErrorCode = "S0204"

	// E0xxx: Evaluation errors
	ErrUnknownField    ErrorCode = "E0301"
	ErrUnknownFunction ErrorCode = "E0302"
	ErrDivisionByZero  ErrorCode = "E0303"
	ErrInvalidArgument ErrorCode = "E0304"
	ErrArgumentCount   ErrorCode = "E0305"
	ErrInvalidDate     ErrorCode = "E0306"
	ErrEvalTooDeep     ErrorCode = "E0307"
)

// Error is a structured formula engine error.
//
// Lex and syntax errors abort the whole parse and are returned as a single
// Error value; evaluation errors are converted by the evaluator into the
// error variant of EvalResult and never reach callers as Go errors.
type Error struct {
	Code     ErrorCode
	Message  string
	Position int
	Token    string
	Err      error
}

// NewError creates a new engine error.
func NewError(code ErrorCode, message string, position int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Position: position,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithToken adds token information to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}
