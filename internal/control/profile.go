// Package control provides the feedback controllers used for pose
// alignment: a trapezoidal motion profile and a PID controller whose
// setpoint follows that profile, so a fresh goal never produces a step
// command.
package control

import (
	"math"

	"github.com/banyan-robotics/banyan/internal/geom"
)

// Constraints bound the velocity and acceleration of a motion profile.
type Constraints struct {
	MaxVelocity     float64
	MaxAcceleration float64
}

// State is a profile sample: a position and the velocity at it.
type State struct {
	Position float64
	Velocity float64
}

// Profile steps a setpoint toward a goal without exceeding the
// constraints. The setpoint accelerates toward the goal, cruises at
// max velocity, and decelerates so it arrives with zero velocity.
type Profile struct {
	constraints Constraints
}

// NewProfile creates a profile with the given constraints.
func NewProfile(constraints Constraints) *Profile {
	return &Profile{constraints: constraints}
}

// Calculate advances current one step of dt toward goal.
func (p *Profile) Calculate(dt float64, current State, goal State) State {
	remaining := goal.Position - current.Position
	dir := 1.0
	if remaining < 0 {
		dir = -1.0
	}
	dist := math.Abs(remaining)

	// Velocity that still allows stopping exactly at the goal.
	stoppable := math.Sqrt(2 * p.constraints.MaxAcceleration * dist)
	target := dir * math.Min(p.constraints.MaxVelocity, stoppable)

	// Accelerate toward the target velocity.
	maxDelta := p.constraints.MaxAcceleration * dt
	velocity := current.Velocity + geom.Clamp(target-current.Velocity, -maxDelta, maxDelta)

	position := current.Position + velocity*dt

	// Do not step past the goal.
	if (dir > 0 && position >= goal.Position) || (dir < 0 && position <= goal.Position) {
		if math.Abs(velocity) <= stoppable+1e-9 {
			return State{Position: goal.Position, Velocity: 0}
		}
	}
	return State{Position: position, Velocity: velocity}
}
