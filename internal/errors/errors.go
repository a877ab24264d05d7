// Package errors provides error handling utilities.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeDimensionalMismatch indicates operands of different dimensions
	TypeDimensionalMismatch Type = "DIMENSIONAL_MISMATCH"

	// TypeUnitConversion indicates units of equal dimension without a common ancestor
	TypeUnitConversion Type = "UNIT_CONVERSION_ERROR"

	// TypeScaleConversion indicates scales without a common zero point
	TypeScaleConversion Type = "SCALE_CONVERSION_ERROR"

	// TypeUnitIdentity indicates a conflicting unit redefinition
	TypeUnitIdentity Type = "UNIT_IDENTITY_CONFLICT"

	// TypeScaleIdentity indicates a conflicting scale redefinition
	TypeScaleIdentity Type = "SCALE_IDENTITY_CONFLICT"

	// TypeInvalidArgument indicates a violated argument contract
	TypeInvalidArgument Type = "INVALID_ARGUMENT"

	// TypeStructural indicates a malformed derivation (cycle or runaway depth)
	TypeStructural Type = "STRUCTURAL_ERROR"

	// TypeParsing indicates a definition file parsing error
	TypeParsing Type = "PARSING_ERROR"

	// TypeConfig indicates a configuration error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"

	// TypeNotFound indicates a resource not found error
	TypeNotFound Type = "NOT_FOUND"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error is of a specific type
func (e *Error) Is(t Type) bool {
	return e.Type == t
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(errType Type, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsType checks if an error, or any error it wraps, is of a specific type
func IsType(err error, t Type) bool {
	var e *Error
	for err != nil {
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Type == t {
			return true
		}
		err = e.Cause
	}
	return false
}

// As returns the first *Error in the chain of err
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// DimensionalMismatch creates a dimensional mismatch error
func DimensionalMismatch(format string, args ...interface{}) *Error {
	return Newf(TypeDimensionalMismatch, format, args...)
}

// UnitConversion creates a unit conversion error
func UnitConversion(format string, args ...interface{}) *Error {
	return Newf(TypeUnitConversion, format, args...)
}

// ScaleConversion creates a scale conversion error
func ScaleConversion(format string, args ...interface{}) *Error {
	return Newf(TypeScaleConversion, format, args...)
}

// UnitIdentity creates a unit identity conflict error
func UnitIdentity(format string, args ...interface{}) *Error {
	return Newf(TypeUnitIdentity, format, args...)
}

// ScaleIdentity creates a scale identity conflict error
func ScaleIdentity(format string, args ...interface{}) *Error {
	return Newf(TypeScaleIdentity, format, args...)
}

// InvalidArgument creates an invalid argument error
func InvalidArgument(format string, args ...interface{}) *Error {
	return Newf(TypeInvalidArgument, format, args...)
}

// Structural creates a structural error
func Structural(format string, args ...interface{}) *Error {
	return Newf(TypeStructural, format, args...)
}

// Parsing creates a parsing error
func Parsing(message string, cause error) *Error {
	return Wrap(TypeParsing, message, cause)
}

// Config creates a configuration error
func Config(message string) *Error {
	return New(TypeConfig, message)
}

// NotFound creates a not found error
func NotFound(resourceType, identifier string) *Error {
	return Newf(TypeNotFound, "%s not found: %s", resourceType, identifier)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}
