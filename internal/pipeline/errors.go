package pipeline

import (
	"fmt"
	"strings"
)

// PreconditionError reports that a step was requested before its declared
// dependencies completed. It is a user/config error and is never retried
// automatically; Missing enumerates the unmet dependencies so the user knows
// what to run first.
type PreconditionError struct {
	Phase   string
	Step    string
	Missing []string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("pipeline: %s/%s: missing dependencies: %s", e.Phase, e.Step, strings.Join(e.Missing, ", "))
}

// StepFailure wraps any non-precondition step error with the exact phase and
// step it halted on.
type StepFailure struct {
	Phase string
	Step  string
	Err   error
}

func (e *StepFailure) Error() string {
	return fmt.Sprintf("pipeline: %s/%s: %v", e.Phase, e.Step, e.Err)
}

func (e *StepFailure) Unwrap() error { return e.Err }
