package booking

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("booking: not found")

	// ErrVersionConflict means the write raced a concurrent writer; the caller
	// should re-read and retry deliberately, never silently overwrite.
	ErrVersionConflict = errors.New("booking: version conflict")
)

// IllegalTransitionError is returned when a guard rejects an action for the
// booking's current status. The booking is left untouched.
type IllegalTransitionError struct {
	Action Action
	Status Status
}

func (e IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition: action %q not permitted from status %q", e.Action, e.Status)
}

// ValidationError reports a missing or invalid field on an otherwise legal
// action, rejected before any state mutation.
type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ExternalOperationError wraps a collaborator failure (payment processor,
// document generator, messaging). The booking's status is unchanged and the
// caller owns the retry affordance.
type ExternalOperationError struct {
	Op  string
	Err error
}

func (e ExternalOperationError) Error() string {
	return fmt.Sprintf("external operation %s failed: %v", e.Op, e.Err)
}

func (e ExternalOperationError) Unwrap() error { return e.Err }
