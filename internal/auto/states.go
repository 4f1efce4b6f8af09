package auto

import "fmt"

// WantedState is the operator-level intent for the autonomous run.
type WantedState int

const (
	WantedIdle WantedState = iota
	WantedRun
)

func (w WantedState) String() string {
	switch w {
	case WantedIdle:
		return "IDLE"
	case WantedRun:
		return "RUN"
	default:
		return fmt.Sprintf("WantedState(%d)", int(w))
	}
}

// State is what the orchestrator is doing this cycle. It is derived
// every cycle from the current task's phase, never stored on the task.
type State int

const (
	StateIdle State = iota
	StateApproaching
	StateAligning
	StateExecutingPickup
	StateExecutingScore
	StateTransitioning
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateApproaching:
		return "APPROACHING"
	case StateAligning:
		return "ALIGNING"
	case StateExecutingPickup:
		return "EXECUTING_PICKUP"
	case StateExecutingScore:
		return "EXECUTING_SCORE"
	case StateTransitioning:
		return "TRANSITIONING"
	case StateComplete:
		return "COMPLETE"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
