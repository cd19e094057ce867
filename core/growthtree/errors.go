package growthtree

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors the storage layer maps driver failures onto; the
// committer classifies write failures through them.
var (
	ErrInvalidReference = errors.New("record references a missing activity, student or tree")
	ErrInvalidState     = errors.New("record violates a state constraint")
	ErrForbidden        = errors.New("write not permitted")
)

type AssignmentErrorKind string

const (
	// StoreUnavailable: the record store did not answer the capability
	// probe; no write was attempted.
	StoreUnavailable AssignmentErrorKind = "store_unavailable"
	// NothingToAssign: the path has no incomplete activity left.
	NothingToAssign AssignmentErrorKind = "nothing_to_assign"
	// AllActivitiesBusy: every incomplete activity is already in progress.
	AllActivitiesBusy AssignmentErrorKind = "all_activities_in_progress_or_done"
	// Write failures, classified from the underlying error shape.
	InvalidReference AssignmentErrorKind = "invalid_reference"
	InvalidState     AssignmentErrorKind = "invalid_state"
	Forbidden        AssignmentErrorKind = "forbidden"
	Unknown          AssignmentErrorKind = "unknown"
)

// AssignmentError is any failure of an assignment run. All kinds are
// recoverable by operator retry.
type AssignmentError struct {
	Kind AssignmentErrorKind
	Err  error
}

func (e *AssignmentError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *AssignmentError) Unwrap() error { return e.Err }

func newAssignmentError(kind AssignmentErrorKind, err error) *AssignmentError {
	return &AssignmentError{Kind: kind, Err: err}
}

// classifyWriteError maps a failed insert/update to its assignment error
// kind. Single attempt, surfaced to the operator; no retry.
func classifyWriteError(err error) *AssignmentError {
	switch errors.Cause(err) {
	case ErrInvalidReference:
		return newAssignmentError(InvalidReference, err)
	case ErrInvalidState:
		return newAssignmentError(InvalidState, err)
	case ErrForbidden:
		return newAssignmentError(Forbidden, err)
	}
	return newAssignmentError(Unknown, err)
}

// AssignmentErrorKindOf extracts the kind of an assignment error; Unknown
// for anything else.
func AssignmentErrorKindOf(err error) (AssignmentErrorKind, bool) {
	if aErr, ok := errors.Cause(err).(*AssignmentError); ok {
		return aErr.Kind, true
	}
	return Unknown, false
}
