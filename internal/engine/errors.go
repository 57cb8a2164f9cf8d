package engine

import "fmt"

// ValidationError rejects out-of-range or missing user input. The state
// of the timer that raised it is unchanged.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StateError rejects an operation that is not legal in the current timer
// state, e.g. starting a completed challenge or reconfiguring a running
// one. State is unchanged.
type StateError struct {
	Op     string
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func validationErr(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func stateErr(op, reason string) error {
	return &StateError{Op: op, Reason: reason}
}
