package services

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the services. Controllers map these to HTTP
// status codes with errors.Is.
var (
	// ErrValidation rejects malformed input before any write happens.
	ErrValidation = errors.New("validation error")

	// ErrNotFound is returned when a referenced user, match, or message does
	// not exist. No partial state change accompanies it.
	ErrNotFound = errors.New("not found")

	// ErrConflict reports a state-based rejection: swiping on an already
	// matched pair, opening an already viewed photo, editing someone else's
	// message. The store is unchanged.
	ErrConflict = errors.New("conflict")

	// ErrConditionFailed is the low-level signal that a conditional write
	// lost. Services either retry the transaction or translate it into
	// ErrConflict for the caller.
	ErrConditionFailed = errors.New("conditional write failed")
)

// PartialFanoutError reports that some of a multi-recipient fan-out landed
// and some did not. The operation is idempotent and safe to re-run with the
// same inputs.
type PartialFanoutError struct {
	Written int
	Total   int
	Err     error
}

func (e *PartialFanoutError) Error() string {
	return fmt.Sprintf("partial fan-out: %d/%d writes succeeded: %v", e.Written, e.Total, e.Err)
}

func (e *PartialFanoutError) Unwrap() error { return e.Err }

func validationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}
