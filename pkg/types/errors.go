package types

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a Calque error.
type ErrorCode string

// Error codes, grouped by failure category. All failures are fail-fast: they
// abort evaluation of the current expression only and are never retried.
const (
	// P0xxx: parse errors
	ErrEmptyExpression  ErrorCode = "P0101"
	ErrMissingOperand   ErrorCode = "P0102"
	ErrUnmatchedBracket ErrorCode = "P0103"
	ErrUnknownToken     ErrorCode = "P0104"
	ErrBadAssignTarget  ErrorCode = "P0105"

	// A0xxx: arity errors
	ErrArity ErrorCode = "A0201"

	// N0xxx: name errors
	ErrUnresolvedName     ErrorCode = "N0301"
	ErrNameCollision      ErrorCode = "N0302"
	ErrVariableIsOperator ErrorCode = "N0303"

	// T0xxx: type errors
	ErrNotScalar        ErrorCode = "T0401"
	ErrBadOperand       ErrorCode = "T0402"
	ErrConversionFailed ErrorCode = "T0403"

	// E0xxx: evaluation errors
	ErrDepthExceeded  ErrorCode = "E0501"
	ErrDivisionByZero ErrorCode = "E0502"
	ErrMathDomain     ErrorCode = "E0503"
)

// Error is a structured Calque error.
type Error struct {
	Code     ErrorCode
	Message  string
	Position int
	Token    string
	Err      error
}

// NewError creates a new structured error. Position -1 means "not tied to a
// source offset".
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

// WithToken adds the offending source fragment to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// CodeOf extracts the ErrorCode from err or anything it wraps, or "" when
// no *Error is in the chain.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
