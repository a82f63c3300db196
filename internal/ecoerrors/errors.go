package ecoerrors

import (
	stdErrors "errors"
	"fmt"
)

// Kind is the error taxonomy from the pipeline's error handling design: it
// classifies a failure by how the pipeline must react, not by Go type.
type Kind string

const (
	// KindInvariantViolation is fatal to the turn: log with full context,
	// roll back to the pre-stage state, surface to the caller.
	KindInvariantViolation Kind = "invariant_violation"
	// KindValidationFailure is an AI-content validation failure, recovered
	// locally by the rules engine; never fatal.
	KindValidationFailure Kind = "validation_failure"
	// KindTimeout is a transient I/O or AI-call timeout, recovered by
	// switching to the rule-based or CPU fallback path.
	KindTimeout Kind = "timeout"
	// KindDataDrift is recovered by a recompute-habitat procedure; the
	// species is never allowed to go extinct from this cause alone.
	KindDataDrift Kind = "data_drift"
	// KindCapacityOverflow (population computed as +Inf or NaN) is clamped
	// to the absolute cap with a warning.
	KindCapacityOverflow Kind = "capacity_overflow"
	// KindConfiguration is fatal at startup only, never at runtime.
	KindConfiguration Kind = "configuration"
)

// Fatal reports whether an error of this kind must abort the turn rather
// than degrade to a fallback.
func (k Kind) Fatal() bool {
	return k == KindInvariantViolation || k == KindConfiguration
}

// SimError is the typed error the pipeline's stage functions return.
type SimError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *SimError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *SimError) Unwrap() error {
	return e.Err
}

// New creates a SimError of the given kind with no wrapped cause.
func New(kind Kind, message string) *SimError {
	return &SimError{Kind: kind, Message: message}
}

// Wrap creates a SimError of the given kind wrapping an underlying error.
func Wrap(kind Kind, message string, err error) *SimError {
	return &SimError{Kind: kind, Message: message, Err: err}
}

// Is reports whether err is a SimError of the given kind.
func Is(err error, kind Kind) bool {
	var se *SimError
	if stdErrors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

// KindOf extracts the Kind from err, defaulting to KindInvariantViolation
// (the conservative, fatal classification) when err is not a SimError.
func KindOf(err error) Kind {
	var se *SimError
	if stdErrors.As(err, &se) {
		return se.Kind
	}
	return KindInvariantViolation
}
