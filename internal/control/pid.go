package control

import "github.com/banyan-robotics/banyan/internal/geom"

// ProfiledPID is a PID controller whose setpoint is constrained by a
// trapezoidal motion profile. The controller carries cross-cycle state
// (integral term, previous error, profile setpoint), so one instance
// must not be shared between logically distinct alignment sessions.
type ProfiledPID struct {
	kp, ki, kd float64

	profile  *Profile
	setpoint State
	goal     State

	continuous bool

	integral  float64
	prevError float64
	hasPrev   bool
}

// NewProfiledPID creates a profiled PID controller.
func NewProfiledPID(kp, ki, kd float64, constraints Constraints) *ProfiledPID {
	return &ProfiledPID{
		kp:      kp,
		ki:      ki,
		kd:      kd,
		profile: NewProfile(constraints),
	}
}

// EnableContinuousInput treats the controlled quantity as an angle:
// errors are wrapped to (-pi, pi] so the controller always takes the
// shortest path around the circle.
func (c *ProfiledPID) EnableContinuousInput() {
	c.continuous = true
}

// Reset re-seeds the profile setpoint at the given measurement and
// clears the accumulated terms. Call when a new alignment session
// starts so the first cycle does not see a stale setpoint.
func (c *ProfiledPID) Reset(measurement float64) {
	c.setpoint = State{Position: measurement, Velocity: 0}
	c.integral = 0
	c.prevError = 0
	c.hasPrev = false
}

// SetGoal pre-seeds the profile goal without producing an output.
func (c *ProfiledPID) SetGoal(position float64) {
	c.goal = State{Position: position, Velocity: 0}
}

// Goal returns the current goal position.
func (c *ProfiledPID) Goal() float64 {
	return c.goal.Position
}

// Setpoint returns the current profile setpoint.
func (c *ProfiledPID) Setpoint() State {
	return c.setpoint
}

// Calculate advances the profile one step of dt toward goal and
// returns the PID output against the profiled setpoint. This is the
// only method that mutates controller state.
func (c *ProfiledPID) Calculate(measurement, goal, dt float64) float64 {
	c.goal = State{Position: goal, Velocity: 0}

	if c.continuous {
		// Shift goal and setpoint into the half-turn around the
		// measurement so the profile runs along the shortest path.
		c.goal.Position = measurement + geom.WrapAngle(c.goal.Position-measurement)
		c.setpoint.Position = measurement + geom.WrapAngle(c.setpoint.Position-measurement)
	}

	c.setpoint = c.profile.Calculate(dt, c.setpoint, c.goal)

	err := c.setpoint.Position - measurement
	if c.continuous {
		err = geom.WrapAngle(err)
	}

	c.integral += err * dt
	var derivative float64
	if c.hasPrev && dt > 0 {
		derivative = (err - c.prevError) / dt
	}
	c.prevError = err
	c.hasPrev = true

	return c.kp*err + c.ki*c.integral + c.kd*derivative
}

// Integral exposes the accumulated integral term for tests.
func (c *ProfiledPID) Integral() float64 {
	return c.integral
}
