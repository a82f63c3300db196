package ecoerrors

import (
	"errors"
	"testing"
)

func TestKindFatal(t *testing.T) {
	tests := []struct {
		kind  Kind
		fatal bool
	}{
		{KindInvariantViolation, true},
		{KindConfiguration, true},
		{KindValidationFailure, false},
		{KindTimeout, false},
		{KindDataDrift, false},
		{KindCapacityOverflow, false},
	}
	for _, tt := range tests {
		if got := tt.kind.Fatal(); got != tt.fatal {
			t.Errorf("%s.Fatal() = %v, want %v", tt.kind, got, tt.fatal)
		}
	}
}

func TestWrapUnwrap(t *testing.T) {
	base := errors.New("underlying failure")
	wrapped := Wrap(KindTimeout, "request timed out", base)

	if !errors.Is(wrapped, base) {
		t.Error("Wrap should preserve Unwrap chain to the base error")
	}
	if wrapped.Kind != KindTimeout {
		t.Errorf("Kind = %v, want %v", wrapped.Kind, KindTimeout)
	}
}

func TestIs(t *testing.T) {
	err := New(KindInvariantViolation, "budget exceeded")
	if !Is(err, KindInvariantViolation) {
		t.Error("Is should match the SimError's own Kind")
	}
	if Is(err, KindTimeout) {
		t.Error("Is should not match an unrelated Kind")
	}
	if Is(errors.New("plain error"), KindInvariantViolation) {
		t.Error("Is should return false for a non-SimError")
	}
}

func TestKindOf(t *testing.T) {
	simErr := New(KindCapacityOverflow, "over capacity")
	if KindOf(simErr) != KindCapacityOverflow {
		t.Errorf("KindOf(simErr) = %v, want %v", KindOf(simErr), KindCapacityOverflow)
	}

	plain := errors.New("not a sim error")
	if KindOf(plain) != KindInvariantViolation {
		t.Errorf("KindOf(plain) = %v, want default %v", KindOf(plain), KindInvariantViolation)
	}
}
