package errors

import (
	"fmt"
	"strings"
)

// Code is the stable machine-readable classification of an error.
type Code string

const (
	// CodeInvalidHandle reports a released or wrong-kind handle presented
	// to a public operation.
	CodeInvalidHandle Code = "invalid_handle"

	// CodeAllocation reports that registry storage could not be obtained,
	// typically because the owning environment has been closed.
	CodeAllocation Code = "allocation"

	// CodeArraySizeTooSmall reports a caller-provided buffer smaller than
	// the number of attributes of the type being read.
	CodeArraySizeTooSmall Code = "array_size_too_small"

	// CodeExternalService reports any failure surfaced by the native
	// describe/pin/instantiate boundary, opaque beyond message and cause.
	CodeExternalService Code = "external_service"
)

// Error is the structured error type used throughout the library.
type Error struct {
	Cause  error
	Code   Code
	Op     string // public operation that produced the error
	Detail string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	if e.Op != "" {
		b.WriteByte('[')
		b.WriteString(e.Op)
		b.WriteString("] ")
	}
	b.WriteString(string(e.Code))

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. Two Errors match when
// their codes match, so callers can test against &Error{Code: ...}.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// InvalidHandle creates an invalid-handle error for a public operation
// that was handed a handle of the wrong kind or one already released.
func InvalidHandle(op, expected string) *Error {
	return &Error{
		Code:   CodeInvalidHandle,
		Op:     op,
		Detail: fmt.Sprintf("handle is not a valid %s", expected),
	}
}

// AllocationFailed creates an allocation error.
func AllocationFailed(op, what string) *Error {
	return &Error{
		Code:   CodeAllocation,
		Op:     op,
		Detail: fmt.Sprintf("cannot allocate %s", what),
	}
}

// ArrayTooSmall creates a buffer-size error for attribute reads.
func ArrayTooSmall(op string, need, got int) *Error {
	return &Error{
		Code:   CodeArraySizeTooSmall,
		Op:     op,
		Detail: fmt.Sprintf("destination holds %d attributes, type has %d", got, need),
	}
}

// External wraps a failure reported by the native client boundary.
func External(op, step string, cause error) *Error {
	return &Error{
		Code:   CodeExternalService,
		Op:     op,
		Detail: step,
		Cause:  cause,
	}
}
