// Package sim provides in-process stand-ins for robot hardware: a
// kinematic drivetrain, a straight-line path follower, timed
// mechanisms, and a range-limited landmark camera. They let the full
// autonomy stack run without a robot attached.
package sim

import (
	"math"
	"sync"

	"github.com/banyan-robotics/banyan/internal/geom"
	"github.com/banyan-robotics/banyan/internal/vision"
)

// Drivetrain integrates body-relative velocity commands into a field
// pose once per Step. Safe for concurrent pose reads.
type Drivetrain struct {
	mu     sync.Mutex
	pose   geom.Pose
	speeds geom.ChassisSpeeds
	period float64
}

// NewDrivetrain creates a drivetrain stepping at the given period in
// seconds.
func NewDrivetrain(period float64) *Drivetrain {
	return &Drivetrain{period: period}
}

func (d *Drivetrain) Pose() geom.Pose {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pose
}

func (d *Drivetrain) RunVelocity(speeds geom.ChassisSpeeds) {
	d.mu.Lock()
	d.speeds = speeds
	d.mu.Unlock()
}

func (d *Drivetrain) Stop() {
	d.RunVelocity(geom.ChassisSpeeds{})
}

func (d *Drivetrain) ResetOdometry(pose geom.Pose) {
	d.mu.Lock()
	d.pose = pose
	d.speeds = geom.ChassisSpeeds{}
	d.mu.Unlock()
}

// Step advances the pose by one period under the last command.
func (d *Drivetrain) Step() {
	d.mu.Lock()
	defer d.mu.Unlock()

	field := geom.Translation{X: d.speeds.VX, Y: d.speeds.VY}.RotateBy(d.pose.Rotation)
	d.pose = geom.Pose{
		Translation: d.pose.Translation.Plus(geom.Translation{
			X: field.X * d.period,
			Y: field.Y * d.period,
		}),
		Rotation: geom.NewRotation(d.pose.Rotation.Radians() + d.speeds.Omega*d.period),
	}
}

// Follower drives the drivetrain straight at its target pose with
// proportional, clamped commands. It is deliberately unsophisticated:
// no obstacle awareness, no path shaping.
type Follower struct {
	drive *Drivetrain

	target geom.Pose
	active bool

	MaxVelocity        float64
	MaxAngularVelocity float64
	PositionTolerance  float64
	RotationTolerance  float64
}

// NewFollower creates a follower with stock limits and tolerances.
func NewFollower(drive *Drivetrain) *Follower {
	return &Follower{
		drive:              drive,
		MaxVelocity:        2.0,
		MaxAngularVelocity: 2.0,
		PositionTolerance:  0.05,
		RotationTolerance:  3.0 * math.Pi / 180.0,
	}
}

func (f *Follower) FollowTo(target geom.Pose) {
	f.target = target
	f.active = true
}

func (f *Follower) Arrived() bool {
	if !f.active {
		return false
	}
	pose := f.drive.Pose()
	positionErr := pose.Translation.Distance(f.target.Translation)
	rotationErr := math.Abs(pose.Rotation.Minus(f.target.Rotation).Radians())
	return positionErr < f.PositionTolerance && rotationErr < f.RotationTolerance
}

func (f *Follower) Cancel() {
	f.active = false
	f.drive.Stop()
}

// Step commands one cycle of motion toward the target. Once arrived
// it stops commanding so other controllers can take over the base.
func (f *Follower) Step() {
	if !f.active || f.Arrived() {
		return
	}
	pose := f.drive.Pose()

	delta := f.target.Translation.Minus(pose.Translation)
	vx := geom.Clamp(2.0*delta.X, -f.MaxVelocity, f.MaxVelocity)
	vy := geom.Clamp(2.0*delta.Y, -f.MaxVelocity, f.MaxVelocity)
	headingErr := pose.Rotation.Minus(f.target.Rotation).Radians()
	omega := geom.Clamp(-2.0*headingErr, -f.MaxAngularVelocity, f.MaxAngularVelocity)

	f.drive.RunVelocity(geom.FromFieldRelative(
		geom.ChassisSpeeds{VX: vx, VY: vy, Omega: omega}, pose.Rotation))
}

// Mechanisms completes each requested action after a fixed number of
// Step calls.
type Mechanisms struct {
	actionCycles int

	pickupRunning bool
	pickupLeft    int
	scoreRunning  bool
	scoreLeft     int
}

// NewMechanisms creates mechanisms that finish any action after
// actionCycles steps.
func NewMechanisms(actionCycles int) *Mechanisms {
	return &Mechanisms{actionCycles: actionCycles}
}

func (m *Mechanisms) BeginPickup() {
	m.pickupRunning = true
	m.pickupLeft = m.actionCycles
}

func (m *Mechanisms) PickupComplete() bool {
	return m.pickupRunning && m.pickupLeft == 0
}

func (m *Mechanisms) BeginScore() {
	m.scoreRunning = true
	m.scoreLeft = m.actionCycles
}

func (m *Mechanisms) ScoreComplete() bool {
	return m.scoreRunning && m.scoreLeft == 0
}

func (m *Mechanisms) Idle() {
	m.pickupRunning = false
	m.scoreRunning = false
}

// Step advances any running action by one cycle.
func (m *Mechanisms) Step() {
	if m.pickupRunning && m.pickupLeft > 0 {
		m.pickupLeft--
	}
	if m.scoreRunning && m.scoreLeft > 0 {
		m.scoreLeft--
	}
}

// Camera reports every layout landmark within range of the robot as
// visible, with the drivetrain's own pose as the estimate.
type Camera struct {
	drive    *Drivetrain
	layout   vision.Layout
	maxRange float64
}

// NewCamera creates a camera seeing landmarks up to maxRange meters away.
func NewCamera(drive *Drivetrain, layout vision.Layout, maxRange float64) *Camera {
	return &Camera{drive: drive, layout: layout, maxRange: maxRange}
}

func (c *Camera) Observations() []vision.Observation {
	pose := c.drive.Pose()

	var ids []int
	for id, landmark := range c.layout {
		if pose.Translation.Distance(landmark.Translation) <= c.maxRange {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	return []vision.Observation{{LandmarkIDs: ids, EstimatedPose: pose}}
}
