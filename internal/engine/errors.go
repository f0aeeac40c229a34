package engine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// RuntimeError represents an error detected while processing an event.
//
// Runtime errors include:
//   - Unknown participant: the event names a participant that has not joined
//   - Unknown song: a teach names a song the catalog does not have
//   - Decode: an inbound payload is malformed
//   - Store: loading or saving a profile failed
//   - Invalid event: the event itself is unusable (negative advance, bad type)
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Participant identifies the affected participant, if any.
	Participant uuid.UUID

	// Err is the underlying cause, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	ErrCodeUnknownParticipant RuntimeErrorCode = "UNKNOWN_PARTICIPANT"
	ErrCodeUnknownSong        RuntimeErrorCode = "UNKNOWN_SONG"
	ErrCodeDecode             RuntimeErrorCode = "DECODE"
	ErrCodeStore              RuntimeErrorCode = "STORE"
	ErrCodeInvalidEvent       RuntimeErrorCode = "INVALID_EVENT"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Participant != uuid.Nil {
		msg += fmt.Sprintf(" (participant=%s)", e.Participant)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// CodeOf returns the RuntimeErrorCode carried by err, or "" if err is not a
// RuntimeError. Uses errors.As to handle wrapped errors.
func CodeOf(err error) RuntimeErrorCode {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsUnknownParticipant reports whether err is an unknown-participant error.
func IsUnknownParticipant(err error) bool {
	return CodeOf(err) == ErrCodeUnknownParticipant
}

// IsStoreError reports whether err came from the profile store.
func IsStoreError(err error) bool {
	return CodeOf(err) == ErrCodeStore
}

func unknownParticipant(p uuid.UUID, err error) *RuntimeError {
	return &RuntimeError{
		Code:        ErrCodeUnknownParticipant,
		Message:     "participant has not joined",
		Participant: p,
		Err:         err,
	}
}

func storeError(p uuid.UUID, op string, err error) *RuntimeError {
	return &RuntimeError{
		Code:        ErrCodeStore,
		Message:     op + " failed",
		Participant: p,
		Err:         err,
	}
}
