package core

import (
	"errors"
	"fmt"
)

// Kind classifies a scenario failure by the phase that produced it.
type Kind string

const (
	KindLoad      Kind = "load"      // unreadable path or invalid binary
	KindLink      Kind = "link"      // missing or mismatched import
	KindTrap      Kind = "trap"      // guest trapped during execution
	KindAssertion Kind = "assertion" // host observed a wrong value
)

// Error tags an underlying failure with its kind. All kinds are fatal for
// the scenario that produced them; nothing is retried.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// WrapError tags err with kind, preserving the chain for errors.Is/As.
func WrapError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds a tagged error from a format string. The %w verb works.
func Errorf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the failure kind from an error chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// AssertionError reports a host-observed value mismatch at a specific
// argument position. Position is 1-based to match the wire contract.
type AssertionError struct {
	Func     string
	Position int
	Got      uint64
	Want     uint64
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: argument %d: got %d, want %d", e.Func, e.Position, e.Got, e.Want)
}
