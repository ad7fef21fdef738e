// Package lkerr defines the structured error type shared by the
// identity and codec packages.
package lkerr

import "errors"

// Kind is a stable category for programmatic error handling.
//
// These categories are intended to remain stable across versions.
// Callers should branch on Kind/RuleID rather than matching error strings.
//
// NOTE: Error() strings are intentionally kept human-readable and may evolve.
// Use errors.As to extract *Error for structured handling.
type Kind string

const (
	KindUnknownAlgorithm     Kind = "UnknownAlgorithm"
	KindInvalidLength        Kind = "InvalidLength"
	KindInvalidFormat        Kind = "InvalidFormat"
	KindChecksumMismatch     Kind = "ChecksumMismatch"
	KindUnknownKeyVariant    Kind = "UnknownKeyVariant"
	KindUnexpectedEndOfInput Kind = "UnexpectedEndOfInput"
	KindIO                   Kind = "IO"
)

// Error is the library's structured error type.
//
// RuleID is a stable identifier (e.g., LK-ALG-001, LK-KEY-102, LK-SER-201)
// that names the violated invariant or parsing rule.
//
// Message is intended for humans; do not match on it.
type Error struct {
	Kind    Kind
	RuleID  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// New returns a structured error with the given kind, rule ID and message.
func New(kind Kind, ruleID, msg string) error {
	return &Error{Kind: kind, RuleID: ruleID, Message: msg}
}

// Wrap returns a structured error wrapping cause. A nil cause behaves like New.
func Wrap(kind Kind, ruleID, msg string, cause error) error {
	if cause == nil {
		return New(kind, ruleID, msg)
	}
	return &Error{Kind: kind, RuleID: ruleID, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// RuleID returns the stable RuleID for a structured error, or "" if unknown.
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}
