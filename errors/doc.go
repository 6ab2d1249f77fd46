// Package errors provides the structured error type returned by every
// public operation of the library.
//
// Each error carries a stable machine-readable Code, the name of the public
// operation that produced it, a human-readable detail, and an optional
// wrapped cause from the native client boundary. Errors never partially
// describe an operation: either the operation completed and no error is
// returned, or the attempted resource was fully torn down and the error
// reports why.
//
// Match on codes with errors.Is:
//
//	if errors.Is(err, &errors.Error{Code: errors.CodeInvalidHandle}) {
//	    // handle was already released or is of the wrong kind
//	}
package errors
