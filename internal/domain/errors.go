package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnparsedReply marks a model reply with neither COMMAND: nor ANSWER:.
	ErrUnparsedReply = errors.New("model reply contained neither COMMAND: nor ANSWER:")
	// ErrCommandTimeout marks a cluster command that exceeded its deadline.
	ErrCommandTimeout = errors.New("command timed out")
	// ErrNotCommand is returned when a non-command intent reaches the gate.
	ErrNotCommand = errors.New("intent is not a command")
)

// InterpreterError reports a failed interpretation step. No command runs and no
// context is recorded when one is returned.
type InterpreterError struct {
	Stage string
	Err   error
}

func (e *InterpreterError) Error() string {
	return fmt.Sprintf("interpret (%s): %v", e.Stage, e.Err)
}

func (e *InterpreterError) Unwrap() error { return e.Err }

// LaunchError reports a command that could not be started at all.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %q: %v", e.Command, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }
