package tools

import (
	"errors"
	"fmt"
)

var (
	// ErrInputRejected is returned when a tool refuses its argument before
	// doing any work.
	ErrInputRejected = errors.New("input rejected")

	// ErrMissingArgument is returned when a tool that needs an argument got
	// none.
	ErrMissingArgument = errors.New("missing argument")
)

// RejectedError carries the reason an argument was refused. It matches
// ErrInputRejected with errors.Is.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return ErrInputRejected.Error() + ": " + e.Reason
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrInputRejected
}

// UnknownCommandError is returned for a command name with no tool.
type UnknownCommandError struct {
	Name string
}

func (e UnknownCommandError) Error() string {
	return "unknown command: " + Prefix + e.Name
}

// ExecutionError wraps a failure that happened while a tool ran.
type ExecutionError struct {
	Tool Kind
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Tool, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
