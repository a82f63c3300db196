// Package ecoerrors provides the error taxonomy the turn pipeline uses to
// decide whether a stage failure is fatal or recoverable.
//
// # Core Types
//
//   - Kind: one of the six error kinds the pipeline distinguishes
//   - SimError: a typed error carrying a Kind plus context
//
// # Usage
//
// Constructing a typed error:
//
//	return ecoerrors.New(ecoerrors.KindInvariantViolation, "negative population after split")
//
// Wrapping an underlying error:
//
//	if err := kernel.Run(ctx); err != nil {
//	    return ecoerrors.Wrap(ecoerrors.KindTimeout, "suitability kernel timed out", err)
//	}
//
// Checking a kind:
//
//	if ecoerrors.Is(err, ecoerrors.KindInvariantViolation) {
//	    return rollback()
//	}
package ecoerrors
