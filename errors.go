package gocalc

import (
	"errors"
	"fmt"
)

// IntegrationError is returned by the integration engine.
//
// A failure means the engine found no closed form, not that the input was
// wrong, except for the InvalidInput and UnsupportedOperation codes.
type IntegrationError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Method is the strategy that was active when the error was raised.
	Method Method
}

// ErrorCode categorizes integration errors.
type ErrorCode string

const (
	// CodeMaxDepthExceeded indicates the recursion or cycle guard tripped.
	CodeMaxDepthExceeded ErrorCode = "MAX_DEPTH_EXCEEDED"

	// CodeNoMethodFound indicates no rule and no strategy produced a result.
	CodeNoMethodFound ErrorCode = "NO_METHOD_FOUND"

	// CodeNotImplemented indicates a strategy that has no applicable
	// implementation for the expression shape.
	CodeNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// CodeInvalidInput indicates a malformed call, such as an empty variable.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeUnsupportedOperation indicates an expression the engine refuses to
	// process, such as one with non-finite constants.
	CodeUnsupportedOperation ErrorCode = "UNSUPPORTED_OPERATION"
)

// Sentinels for use with errors.Is. Matching compares codes only.
var (
	ErrMaxDepthExceeded     = &IntegrationError{Code: CodeMaxDepthExceeded, Message: "Integration exceeded maximum recursion depth"}
	ErrNoMethodFound        = &IntegrationError{Code: CodeNoMethodFound, Message: "No suitable integration method found"}
	ErrNotImplemented       = &IntegrationError{Code: CodeNotImplemented, Message: "This integration method is not yet implemented"}
	ErrInvalidInput         = &IntegrationError{Code: CodeInvalidInput, Message: "Invalid input"}
	ErrUnsupportedOperation = &IntegrationError{Code: CodeUnsupportedOperation, Message: "Unsupported operation"}
)

// Error implements the error interface.
func (e *IntegrationError) Error() string { return e.Message }

// Is reports whether target is an IntegrationError with the same code.
func (e *IntegrationError) Is(target error) bool {
	t, ok := target.(*IntegrationError)
	return ok && t.Code == e.Code
}

func newIntegrationError(code ErrorCode, method Method) *IntegrationError {
	var msg string
	switch code {
	case CodeMaxDepthExceeded:
		msg = ErrMaxDepthExceeded.Message
	case CodeNoMethodFound:
		msg = ErrNoMethodFound.Message
	case CodeNotImplemented:
		msg = ErrNotImplemented.Message
	default:
		msg = string(code)
	}
	return &IntegrationError{Code: code, Message: msg, Method: method}
}

// NewInvalidInputError creates an InvalidInput error with a detail message.
func NewInvalidInputError(detail string) *IntegrationError {
	return &IntegrationError{Code: CodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", detail)}
}

// NewUnsupportedOperationError creates an UnsupportedOperation error with a
// detail message.
func NewUnsupportedOperationError(detail string) *IntegrationError {
	return &IntegrationError{Code: CodeUnsupportedOperation, Message: fmt.Sprintf("Unsupported operation: %s", detail)}
}

// IsMaxDepthError returns true if err is a MaxDepthExceeded error.
// Uses errors.As to handle wrapped errors.
func IsMaxDepthError(err error) bool { return hasCode(err, CodeMaxDepthExceeded) }

// IsNoMethodError returns true if err is a NoMethodFound error.
func IsNoMethodError(err error) bool { return hasCode(err, CodeNoMethodFound) }

func hasCode(err error, code ErrorCode) bool {
	var ie *IntegrationError
	if errors.As(err, &ie) {
		return ie.Code == code
	}
	return false
}

// ParseError describes a failure to parse expression text.
type ParseError struct {
	// Pos is the byte offset in the normalized input where parsing failed.
	Pos int

	// Msg is the human-readable description.
	Msg string
}

// Error implements the error interface.
func (e *ParseError) Error() string { return e.Msg }
