package lkerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsKind(t *testing.T) {
	err := New(KindInvalidLength, "LK-TST-001", "too short")
	if !IsKind(err, KindInvalidLength) {
		t.Fatalf("IsKind missed its own kind")
	}
	if IsKind(err, KindInvalidFormat) {
		t.Fatalf("IsKind matched the wrong kind")
	}
	if IsKind(errors.New("plain"), KindInvalidLength) {
		t.Fatalf("IsKind matched an unstructured error")
	}
}

func TestIsKind_Wrapped(t *testing.T) {
	inner := New(KindChecksumMismatch, "LK-TST-002", "case pattern off")
	outer := fmt.Errorf("parsing account: %w", inner)
	if !IsKind(outer, KindChecksumMismatch) {
		t.Fatalf("IsKind did not unwrap")
	}
	if RuleID(outer) != "LK-TST-002" {
		t.Fatalf("RuleID through wrapping = %q", RuleID(outer))
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("disk on fire")
	err := Wrap(KindIO, "LK-TST-003", "reading key file", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("cause lost through Wrap")
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected structured *Error, got %T", err)
	}
	if e.Kind != KindIO || e.RuleID != "LK-TST-003" {
		t.Fatalf("wrong fields: %+v", e)
	}
	if e.Error() != "reading key file" {
		t.Fatalf("Error() = %q", e.Error())
	}
}

func TestRuleID_Unstructured(t *testing.T) {
	if RuleID(errors.New("plain")) != "" {
		t.Fatalf("RuleID invented an ID for an unstructured error")
	}
}
