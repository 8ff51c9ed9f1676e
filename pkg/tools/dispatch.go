package tools

import (
	"errors"
	"fmt"
)

// Run executes cmd. Failures come back as UnknownCommandError or
// *ExecutionError.
func (t *Toolbox) Run(cmd Command) (string, error) {
	kind, ok := Lookup(cmd.Name)
	if !ok {
		return "", UnknownCommandError{Name: cmd.Name}
	}

	out, err := t.RunKind(kind, cmd.Argument)
	if err != nil {
		return "", &ExecutionError{Tool: kind, Err: err}
	}
	return out, nil
}

// RunKind executes the tool of the given kind with an optional argument.
func (t *Toolbox) RunKind(kind Kind, arg string) (string, error) {
	switch kind {
	case KindHelp:
		return Help(), nil

	case KindList:
		return t.ListDir(arg)

	case KindRead:
		if arg == "" {
			return "", ErrMissingArgument
		}
		return t.ReadPrefix(arg)

	case KindSysInfo:
		return t.SystemInfo().String(), nil

	case KindTime:
		return "Current time: " + t.now().Format(TimeLayout), nil

	case KindCalc:
		if arg == "" {
			return "", ErrMissingArgument
		}
		v, err := Calculate(arg)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s = %s", arg, FormatNumber(v)), nil

	case KindDisk:
		return t.diskSpace()

	case kindCount:
	}
	return "", fmt.Errorf("no handler for %s", kind)
}

// Dispatch runs cmd and always returns display text; errors are rendered
// with Describe.
func (t *Toolbox) Dispatch(cmd Command) string {
	out, err := t.Run(cmd)
	if err != nil {
		return Describe(err)
	}
	return out
}

// Describe renders a tool error for the user.
func Describe(err error) string {
	var (
		unknown  UnknownCommandError
		rejected *RejectedError
		execErr  *ExecutionError
	)

	switch {
	case errors.As(err, &unknown):
		return fmt.Sprintf("Unknown command: %s%s. Type %shelp for available commands.", Prefix, unknown.Name, Prefix)

	case errors.As(err, &rejected):
		if errors.As(err, &execErr) && execErr.Tool == KindCalc {
			return "Invalid expression: " + rejected.Reason + "."
		}
		return "Invalid input: " + rejected.Reason + "."

	case errors.As(err, &execErr):
		if errors.Is(err, ErrMissingArgument) {
			return "Usage: " + usageLine(execErr.Tool)
		}
		if execErr.Tool == KindCalc {
			return "Calculation error: " + execErr.Err.Error()
		}
		return fmt.Sprintf("Error running %s%s: %v", Prefix, execErr.Tool, execErr.Err)

	default:
		return "Error: " + err.Error()
	}
}

func usageLine(k Kind) string {
	line := Prefix + k.Name()
	if u := k.Usage(); u != "" {
		line += " " + u
	}
	return line
}
