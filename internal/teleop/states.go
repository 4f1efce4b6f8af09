package teleop

import "fmt"

// WantedState is the driver's requested assist mode.
type WantedState int

const (
	WantedManual WantedState = iota
	WantedAlign
	WantedAim
	WantedSnap
	WantedStop
)

func (w WantedState) String() string {
	switch w {
	case WantedManual:
		return "MANUAL"
	case WantedAlign:
		return "ALIGN"
	case WantedAim:
		return "AIM"
	case WantedSnap:
		return "SNAP"
	case WantedStop:
		return "STOP"
	default:
		return fmt.Sprintf("WantedState(%d)", int(w))
	}
}

// State is the assist mode actually running this cycle. Searching is
// never requested directly: the supervisor enters it on its own when
// the landmark has been lost for longer than the loss timeout.
type State int

const (
	StateManual State = iota
	StateAligning
	StateAiming
	StateSnapToTarget
	StateSearching
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateManual:
		return "MANUAL"
	case StateAligning:
		return "ALIGNING"
	case StateAiming:
		return "AIMING"
	case StateSnapToTarget:
		return "SNAP_TO_TARGET"
	case StateSearching:
		return "SEARCHING"
	case StateStopped:
		return "STOPPED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
