package resolver

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidTarget is returned when a target is used where it has no
	// meaning, such as asking for the "main" directory of a task.
	ErrInvalidTarget = errors.New("invalid target")

	// ErrUnknownTask is returned by the checked lookups when no task has
	// the given name.
	ErrUnknownTask = errors.New("unknown task")

	// ErrCycle is wrapped by every CycleError.
	ErrCycle = errors.New("task reference cycle")
)

// CycleError is returned when the file patterns of a task refer, directly or
// through other tasks, back to the task itself.
type CycleError struct {
	// Path lists the tasks in the cycle, starting and ending with the
	// same task.
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCycle, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycle }
