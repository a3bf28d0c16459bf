package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSelection is returned by Submit when no option is pending.
	ErrNoSelection = errors.New("session: no option selected")

	// ErrUnknownOption is returned by SelectOption for text that is not one
	// of the current question's options.
	ErrUnknownOption = errors.New("session: option not offered by current question")

	// ErrEmptySession is returned by Start when there are no questions.
	ErrEmptySession = errors.New("session: no questions to serve")

	// ErrDuplicateQuestion is returned by Start when a question id repeats.
	ErrDuplicateQuestion = errors.New("session: duplicate question")
)

// InvalidSpecError reports a malformed Spec. It is a configuration error and
// is raised before any session starts.
type InvalidSpecError struct {
	Field  string
	Reason string
}

func (e *InvalidSpecError) Error() string {
	return fmt.Sprintf("invalid session spec: %s: %s", e.Field, e.Reason)
}

// InvalidStateTransitionError reports an operation that is not allowed in
// the machine's current state. The machine is left unchanged.
type InvalidStateTransitionError struct {
	Op     string
	State  State
	Reason string
}

func (e *InvalidStateTransitionError) Error() string {
	msg := fmt.Sprintf("session: %s not allowed in state %s", e.Op, e.State)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}
