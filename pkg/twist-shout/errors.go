package twistshout

import "github.com/zkmem/twist-shout/internal/twist-shout/errcode"

// ErrorCode identifies a class of contract violation.
type ErrorCode = errcode.Code

const (
	// ErrUnknown represents an unclassified error
	ErrUnknown = errcode.Unknown

	// ErrShapeMismatch: an evaluation point or table disagrees with a
	// polynomial's variable count
	ErrShapeMismatch = errcode.ShapeMismatch

	// ErrSizeMismatch: an instance is too large for the commitment key
	ErrSizeMismatch = errcode.SizeMismatch

	// ErrDegreeViolation: a sum-check polynomial exceeded its degree bound
	ErrDegreeViolation = errcode.DegreeViolation

	// ErrTraceOutOfBounds: a trace address or timestamp is out of range
	ErrTraceOutOfBounds = errcode.TraceOutOfBounds

	// ErrIndexOutOfBounds: a lookup index is outside the padded table
	ErrIndexOutOfBounds = errcode.IndexOutOfBounds

	// ErrUnsupportedSize: setup was asked for a size it cannot produce
	ErrUnsupportedSize = errcode.UnsupportedSize

	// ErrProofGeneration: the witness contradicts the claimed statement
	ErrProofGeneration = errcode.ProofGeneration
)

// Error is the concrete error type returned across the public API.
type Error = errcode.Error

// CodeOf extracts the ErrorCode from err, or ErrUnknown if err is not an
// *Error.
func CodeOf(err error) ErrorCode {
	return errcode.CodeOf(err)
}
