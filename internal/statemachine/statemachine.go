// Package statemachine provides the two-level wanted/current state
// machine base used by the autonomous orchestrator and the teleop
// alignment supervisor.
//
// Two enumerations drive every machine:
//
//   - Wanted state: high-level intent set by the caller (e.g. Idle, Run).
//   - Current state: what the machine is actually doing this cycle.
//
// Each Update snapshots the current state, asks the Logic for the next
// current state, applies it, and emits the state triple to telemetry.
package statemachine

import (
	"fmt"

	"github.com/banyan-robotics/banyan/internal/telemetry"
)

// State is the constraint for both state enumerations.
type State interface {
	comparable
	fmt.Stringer
}

// Logic supplies the transition and apply behavior of a concrete
// machine. Transition must be a pure decision over its inputs; Apply
// must be non-blocking and idempotent across repeated cycles in the
// same state.
type Logic[W State, C State] interface {
	// Transition decides the next current state from the wanted
	// state and the state the machine was in last cycle.
	Transition(wanted W, current C) C

	// Apply executes one non-blocking step of the given state.
	Apply(current C)
}

// Machine holds the state triple for a concrete state machine.
// Concrete machines embed a Machine and supply their Logic.
type Machine[W State, C State] struct {
	logKey string

	wanted   W
	current  C
	previous C

	logic Logic[W, C]
}

// New creates a state machine.
// logKey names the machine in telemetry (e.g. "auto/orchestrator").
func New[W State, C State](logKey string, initialWanted W, initialCurrent C, logic Logic[W, C]) *Machine[W, C] {
	return &Machine[W, C]{
		logKey:   logKey,
		wanted:   initialWanted,
		current:  initialCurrent,
		previous: initialCurrent,
		logic:    logic,
	}
}

// Update runs one control cycle: snapshot previous, transition, apply,
// emit. Call once per control period.
func (m *Machine[W, C]) Update() {
	m.previous = m.current
	m.current = m.logic.Transition(m.wanted, m.current)
	m.logic.Apply(m.current)

	telemetry.Emit("info", "machine.transition", "", map[string]interface{}{
		"machine":  m.logKey,
		"wanted":   m.wanted.String(),
		"current":  m.current.String(),
		"previous": m.previous.String(),
	})
}

// SetWantedState sets the high-level intent.
func (m *Machine[W, C]) SetWantedState(w W) {
	m.wanted = w
}

// WantedState returns the wanted state.
func (m *Machine[W, C]) WantedState() W {
	return m.wanted
}

// CurrentState returns the current state.
func (m *Machine[W, C]) CurrentState() C {
	return m.current
}

// PreviousState returns the current state as of the prior update.
func (m *Machine[W, C]) PreviousState() C {
	return m.previous
}

// HasStateChanged reports whether the current state differs from the
// previous cycle's.
func (m *Machine[W, C]) HasStateChanged() bool {
	return m.current != m.previous
}

// DidEnterState reports whether the machine is in state now but was
// not last cycle.
func (m *Machine[W, C]) DidEnterState(state C) bool {
	return m.current == state && m.previous != state
}

// DidExitState reports whether the machine was in state last cycle but
// is not now.
func (m *Machine[W, C]) DidExitState(state C) bool {
	return m.previous == state && m.current != state
}

// SetCurrentState sets the current state directly.
// Prefer driving transitions via the wanted state; this exists for
// machines whose wanted state mirrors the current state one-to-one.
func (m *Machine[W, C]) SetCurrentState(state C) {
	m.current = state
}
