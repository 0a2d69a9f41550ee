package operation

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidName is returned for an empty operation name or one containing the path separator.
	ErrInvalidName = errors.New("invalid operation name")
	// ErrInvalidWork is returned for a missing, anonymous, or numeric work function.
	ErrInvalidWork = errors.New("invalid work function")
	// ErrInvalidEstimate is returned for negative or non-finite workload estimates.
	ErrInvalidEstimate = errors.New("invalid workload estimate")
	// ErrInvalidOptions is returned for contradictory construction options.
	ErrInvalidOptions = errors.New("invalid operation options")
	// ErrExecuting is returned when attaching or re-entering an executing operation.
	ErrExecuting = errors.New("operation is already executing")
	// ErrBindingConflict is returned when a binding name is reused.
	ErrBindingConflict = errors.New("binding name conflict")
	// ErrDuplicateName is returned when a sibling already uses the operation name.
	ErrDuplicateName = errors.New("duplicate operation name")
	// ErrAlreadyAttached is returned when the operation already has a parent.
	ErrAlreadyAttached = errors.New("operation already has a parent")
	// ErrCycle is returned when attaching would make an operation its own ancestor.
	ErrCycle = errors.New("operation cannot be attached below itself")
	// ErrUnknownBinding is returned when a work function calls a name with no binding.
	ErrUnknownBinding = errors.New("unknown binding")
	// ErrStaleCallback is returned when a callback is used after its work function returned.
	ErrStaleCallback = errors.New("callback used after its operation finished")
)

// ExecError reports a work function failure together with the full path of
// the operation whose work function failed.
type ExecError struct {
	Path string
	Err  error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("operation %q failed: %v", e.Path, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// structural wraps a sentinel with the offending operation's path.
func structural(path string, sentinel error, format string, args ...any) error {
	if format == "" {
		return fmt.Errorf("%s: %w", path, sentinel)
	}
	return fmt.Errorf("%s: %w: %s", path, sentinel, fmt.Sprintf(format, args...))
}
