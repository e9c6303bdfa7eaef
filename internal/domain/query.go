package domain

// GateState enumerates the Command Gate lifecycle.
type GateState string

const (
	StateProposed             GateState = "proposed"
	StateAutoRun              GateState = "auto_run"
	StateAwaitingConfirmation GateState = "awaiting_confirmation"
	StateCompleted            GateState = "completed"
	StateCancelled            GateState = "cancelled"
	StateBlocked              GateState = "blocked"
	StateTimedOut             GateState = "timed_out"
)

// Terminal reports whether no further transition is possible.
func (s GateState) Terminal() bool {
	switch s {
	case StateCompleted, StateCancelled, StateBlocked, StateTimedOut:
		return true
	default:
		return false
	}
}

// Outcome is what the gate reports for a proposed command.
type Outcome struct {
	State      GateState
	Command    string
	Dangerous  bool
	Output     string
	Prompt     string
	Message    string
	ExitCode   int
	DurationMS int64
	Reasons    []string
}

// Text returns the displayable result for the outcome's state.
func (o Outcome) Text() string {
	switch o.State {
	case StateCompleted:
		return o.Output
	case StateAwaitingConfirmation:
		return o.Prompt
	default:
		return o.Message
	}
}

// ExecutionResult wraps details from the command executor.
type ExecutionResult struct {
	Stdout     string
	Stderr     string
	ExitCode   int
	DurationMS int64
}

// SessionResult is the canonical response of one query cycle.
type SessionResult struct {
	Query    string
	Intent   Intent
	Outcome  *Outcome
	Text     string
	Recorded bool
}

// Combined joins captured streams: stdout first, separated by a newline only
// when both are non-empty.
func (r ExecutionResult) Combined() string {
	return CombineOutput(r.Stdout, r.Stderr)
}

// CombineOutput is the stream-joining rule used for every displayed result.
func CombineOutput(stdout, stderr string) string {
	switch {
	case stdout == "":
		return stderr
	case stderr == "":
		return stdout
	default:
		return stdout + "\n" + stderr
	}
}
