package pipeline

import "fmt"

// State is the lifecycle position of a batch.
type State string

const (
	StateNotStarted State = "not_started"
	StateValidating State = "validating"
	StateRunning    State = "running"
	StateCompleted  State = "completed"
	StateCancelled  State = "cancelled" // Stopped between jobs by context cancellation.
	StateAborted    State = "aborted"   // Pool validation failed; nothing rendered.
)

// IsTerminal reports whether no further transitions are possible.
func (s State) IsTerminal() bool {
	switch s {
	case StateCompleted, StateCancelled, StateAborted:
		return true
	default:
		return false
	}
}

var transitions = map[State][]State{
	StateNotStarted: {StateValidating},
	StateValidating: {StateRunning, StateAborted, StateCancelled},
	StateRunning:    {StateCompleted, StateCancelled},
}

func isValidTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// transitionError is returned for an illegal state change. It indicates a
// programming error such as running the same Orchestrator twice.
type transitionError struct {
	From, To State
}

func (e *transitionError) Error() string {
	return fmt.Sprintf("invalid batch state transition %s -> %s", e.From, e.To)
}
