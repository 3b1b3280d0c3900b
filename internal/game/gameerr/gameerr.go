// Package gameerr defines the error taxonomy shared by every engine operation.
//
// Validation failures are returned as *Error values carrying a Kind and a
// user-facing Reason. Unexpected storage failures are wrapped once at the
// operation boundary with Storage so their internals never reach the caller.
package gameerr

import (
	"errors"
	"fmt"
)

// Kind classifies an engine failure.
type Kind int

const (
	// KindUnknown is reported for errors that did not originate in the engine.
	KindUnknown Kind = iota
	// KindNotFound means a referenced pet, quest, illness, item or request does not exist.
	KindNotFound
	// KindUnauthorized means the caller does not own the pet(s) involved.
	KindUnauthorized
	// KindInvalidState means a business rule was violated.
	KindInvalidState
	// KindDataIntegrity means persisted rows reference entities that no longer exist.
	KindDataIntegrity
	// KindInvalidGenome means a DNA string has the wrong length or alphabet.
	KindInvalidGenome
	// KindStorage means the storage layer failed; the transaction was rolled back.
	KindStorage
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidState:
		return "invalid_state"
	case KindDataIntegrity:
		return "data_integrity"
	case KindInvalidGenome:
		return "invalid_genome"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// GenericMessage is the only text surfaced for storage failures.
const GenericMessage = "an error occurred, try again"

// Error is a classified engine failure.
type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

// Error implements error.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same Kind with an empty or equal Reason.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Reason == "" || t.Reason == e.Reason)
}

// NotFound returns a KindNotFound error.
func NotFound(reason string) error {
	return &Error{Kind: KindNotFound, Reason: reason}
}

// Unauthorized returns a KindUnauthorized error.
func Unauthorized(reason string) error {
	return &Error{Kind: KindUnauthorized, Reason: reason}
}

// InvalidState returns a KindInvalidState error.
func InvalidState(reason string) error {
	return &Error{Kind: KindInvalidState, Reason: reason}
}

// DataIntegrity returns a KindDataIntegrity error.
func DataIntegrity(reason string) error {
	return &Error{Kind: KindDataIntegrity, Reason: reason}
}

// InvalidGenome returns a KindInvalidGenome error.
func InvalidGenome(reason string) error {
	return &Error{Kind: KindInvalidGenome, Reason: reason}
}

// Storage wraps cause as a KindStorage error with the generic message.
// A nil cause or an error that is already classified is returned unchanged.
func Storage(cause error) error {
	if cause == nil {
		return nil
	}
	var ge *Error
	if errors.As(cause, &ge) {
		return cause
	}
	return &Error{Kind: KindStorage, Reason: GenericMessage, Err: cause}
}

// Sentinels for errors.Is comparisons by kind.
var (
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrUnauthorized  = &Error{Kind: KindUnauthorized}
	ErrInvalidState  = &Error{Kind: KindInvalidState}
	ErrDataIntegrity = &Error{Kind: KindDataIntegrity}
	ErrInvalidGenome = &Error{Kind: KindInvalidGenome}
	ErrStorage       = &Error{Kind: KindStorage}
)

// KindOf returns the Kind of err, or KindUnknown for unclassified errors.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindUnknown
}

// Describe renders an operation outcome for a caller.
//
// Postcondition: ok is true iff err is nil; message never contains storage internals.
func Describe(err error) (ok bool, message string) {
	if err == nil {
		return true, "ok"
	}
	var ge *Error
	if errors.As(err, &ge) && ge.Kind != KindStorage {
		return false, ge.Reason
	}
	return false, GenericMessage
}
