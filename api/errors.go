package countdown

import (
	"errors"
	"fmt"
)

// ErrInvalidState is matched by every StateError.
var ErrInvalidState = errors.New("invalid timer state")

// StateError is returned when a transition is attempted from a state that
// does not allow it. The timer is left untouched.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s timer from state: '%s'", e.Op, e.State)
}

func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}
