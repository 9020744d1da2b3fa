// Package pipeline sequences the obfuscation stages over one run.
package pipeline

import "fmt"

// State is the controller's position in the stage sequence.
type State string

const (
	StateIdle           State = "IDLE"
	StateProbeDone      State = "PROBE_DONE"
	StateCompiled       State = "COMPILED"
	StateLinked         State = "LINKED"
	StateTransformed    State = "TRANSFORMED"
	StateNativeCompiled State = "NATIVE_COMPILED"
	StateReported       State = "REPORTED"
	StateCleaned        State = "CLEANED"
	StateFailed         State = "FAILED"
)

// successor is the single forward edge from each non-terminal state.
// The pipeline is strictly linear: no stage starts before its predecessor
// succeeded.
var successor = map[State]State{
	StateIdle:           StateProbeDone,
	StateProbeDone:      StateCompiled,
	StateCompiled:       StateLinked,
	StateLinked:         StateTransformed,
	StateTransformed:    StateNativeCompiled,
	StateNativeCompiled: StateReported,
	StateReported:       StateCleaned,
}

// IsTerminal reports whether the state ends a run.
func IsTerminal(s State) bool {
	return s == StateCleaned || s == StateFailed
}

// Transition validates a single state change.
//
// Allowed moves are the forward edge of the sequence, or a jump to FAILED
// from any non-terminal state. Everything else indicates a controller bug.
func Transition(from, to State) error {
	if to == StateFailed {
		if IsTerminal(from) {
			return fmt.Errorf("disallowed transition: %s -> %s", from, to)
		}
		return nil
	}
	if successor[from] != to {
		return fmt.Errorf("disallowed transition: %s -> %s", from, to)
	}
	return nil
}
