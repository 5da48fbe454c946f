package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies recoverable operation failures. Every service returns one
// of these wrapped in *Error; the API layer maps kinds to HTTP status codes.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation: missing/invalid input, rejected before any write.
	KindValidation
	// KindNotFound: referenced entity absent, or a state-dependent write
	// affected zero rows.
	KindNotFound
	// KindConflict: duplicate unique key, cycle-creating BOM edge, or an
	// order not in the required state for a transition.
	KindConflict
	// KindIntegrity: store failure mid-transaction; the unit of work rolled
	// back and no partial state is visible.
	KindIntegrity
)

// Error is a classified, caller-recoverable error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// Integrity wraps a store error that aborted a unit of work.
func Integrity(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindIntegrity, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind from an error chain, KindUnknown if unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsConflict(err error) bool   { return KindOf(err) == KindConflict }
func IsIntegrity(err error) bool  { return KindOf(err) == KindIntegrity }
