// Package errcode defines the error taxonomy shared by the twist-shout
// protocol packages. Caller contract violations (bad shapes, out-of-range
// indices, key/polynomial size disagreements) surface as *Error values;
// cryptographic rejection never does: failed verification is a boolean
// outcome, not an error.
package errcode

import "fmt"

// Code identifies a class of contract violation.
type Code int

const (
	// Unknown represents an unclassified error.
	Unknown Code = iota

	// ShapeMismatch: an evaluation point or table length disagrees with the
	// polynomial's variable count.
	ShapeMismatch

	// SizeMismatch: a polynomial's variable count disagrees with the
	// commitment key it is used with.
	SizeMismatch

	// DegreeViolation: a sum-check combiner exceeded its declared
	// per-variable degree bound.
	DegreeViolation

	// TraceOutOfBounds: a memory-trace address or timestamp is outside the
	// domain the trace was declared over.
	TraceOutOfBounds

	// IndexOutOfBounds: a lookup index is outside the (padded) table.
	IndexOutOfBounds

	// UnsupportedSize: setup was asked for a size class it cannot produce.
	UnsupportedSize

	// ProofGeneration: proof construction failed for a reason other than a
	// contract violation (e.g. an honest-prover internal consistency check).
	ProofGeneration
)

var codeNames = map[Code]string{
	Unknown:          "unknown",
	ShapeMismatch:    "shape mismatch",
	SizeMismatch:     "size mismatch",
	DegreeViolation:  "degree violation",
	TraceOutOfBounds: "trace out of bounds",
	IndexOutOfBounds: "index out of bounds",
	UnsupportedSize:  "unsupported size",
	ProofGeneration:  "proof generation",
}

// Error is the concrete error type carried across the twist-shout packages.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// New creates an Error with the given code and formatted message.
func New(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error that records cause for errors.Unwrap chains.
func Wrap(code Code, cause error, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("twist-shout: %s: %s (caused by: %v)", codeNames[e.Code], e.Message, e.Cause)
	}
	return fmt.Sprintf("twist-shout: %s: %s", codeNames[e.Code], e.Message)
}

// Unwrap returns the cause of the error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches two Errors by code, so sentinel comparisons work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// CodeOf extracts the Code from err, or Unknown if err is not an *Error.
func CodeOf(err error) Code {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return Unknown
}
