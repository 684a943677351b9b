package service

import (
	"errors"
	"fmt"

	"github.com/openevent/runsheet-api/internal/models"
)

// ErrActivityNotFound signals that the requested activity does not exist.
var ErrActivityNotFound = errors.New("activity not found")

// ValidationError reports a rejected input. The row is untouched; the caller
// can fix the input and resubmit.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// InvalidTransitionError reports an operation attempted from a status that
// does not allow it.
type InvalidTransitionError struct {
	ActivityID uint
	From       models.ExecutionStatus
	Operation  string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s activity %d from status %q", e.Operation, e.ActivityID, e.From)
}

// AlreadyRunningError reports that another activity in the same day and
// schedule variant is already in progress.
type AlreadyRunningError struct {
	ActivityID       uint
	ConflictingID    uint
	ConflictingTitle string
}

func (e *AlreadyRunningError) Error() string {
	return fmt.Sprintf("activity %d cannot start: activity %d (%s) is already in progress", e.ActivityID, e.ConflictingID, e.ConflictingTitle)
}

// ConflictError reports an optimistic update that lost a race with a
// concurrent writer. Found carries the status observed on refresh, when the
// refresh itself succeeded.
type ConflictError struct {
	ActivityID uint
	Expected   models.ExecutionStatus
	Found      models.ExecutionStatus
}

func (e *ConflictError) Error() string {
	if e.Found != "" {
		return fmt.Sprintf("activity %d was updated concurrently: expected status %q, found %q", e.ActivityID, e.Expected, e.Found)
	}
	return fmt.Sprintf("activity %d was updated concurrently: expected status %q", e.ActivityID, e.Expected)
}

// StoreUnavailableError wraps a failure of the backing store. Transient; the
// core never retries on its own.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("activity store unavailable during %s: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	return &StoreUnavailableError{Op: op, Err: err}
}
