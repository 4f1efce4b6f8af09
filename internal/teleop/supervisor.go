// Package teleop provides the driver-assist supervisor: a state
// machine layered over manual driving that can align the full pose to
// a landmark, aim the heading at one, or snap the heading to it while
// the driver keeps translation, and that falls back to an active
// search when the landmark stays out of sight.
package teleop

import (
	"math"
	"time"

	"github.com/banyan-robotics/banyan/internal/geom"
	"github.com/banyan-robotics/banyan/internal/statemachine"
	"github.com/banyan-robotics/banyan/internal/telemetry"
	"github.com/banyan-robotics/banyan/internal/vision"
)

// Drivetrain is the velocity-command surface the supervisor drives.
type Drivetrain interface {
	Pose() geom.Pose
	RunVelocity(speeds geom.ChassisSpeeds)
	Stop()
}

// InputSource supplies the driver's requested body-relative speeds.
type InputSource interface {
	Speeds() geom.ChassisSpeeds
}

// InputFunc adapts a function to the InputSource interface.
type InputFunc func() geom.ChassisSpeeds

func (f InputFunc) Speeds() geom.ChassisSpeeds { return f() }

// Clock abstracts wall time so the loss timeout is testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Config tunes the supervisor's recovery behavior.
type Config struct {
	// LossTimeout is how long the landmark may stay unseen before
	// the supervisor gives up holding its mode and starts searching.
	LossTimeout time.Duration

	// SearchKP steers the heading toward the last known bearing
	// while searching; SearchRate is both the clamp on that output
	// and the fallback rotation rate when no bearing is known.
	SearchKP   float64
	SearchRate float64

	// AimKP and AimTolerance drive the rotation-only Aim and Snap
	// modes; MaxAngularVelocity clamps their output.
	AimKP              float64
	AimTolerance       float64
	MaxAngularVelocity float64
}

// DefaultConfig returns the stock teleop assist tuning.
func DefaultConfig() Config {
	return Config{
		LossTimeout:        500 * time.Millisecond,
		SearchKP:           2.0,
		SearchRate:         0.75,
		AimKP:              3.0,
		AimTolerance:       2.0 * math.Pi / 180.0,
		MaxAngularVelocity: 2.0,
	}
}

// Deps bundles the supervisor's collaborators. Clock is optional.
type Deps struct {
	Drivetrain Drivetrain
	Input      InputSource
	Provider   vision.Provider
	Layout     vision.Layout
	Aligner    *vision.Aligner
	Clock      Clock
}

// Supervisor is the teleop assist state machine. Call Periodic once
// per control cycle; driver bindings call the Start/Toggle/Stop
// methods to change modes.
type Supervisor struct {
	*statemachine.Machine[WantedState, State]

	cfg    Config
	drive  Drivetrain
	input  InputSource
	prov   vision.Provider
	layout vision.Layout
	align  *vision.Aligner
	clock  Clock

	// active alignment goal
	landmarkID int
	target     geom.Pose
	offset     geom.Transform
	hasOffset  bool

	// landmark tracking, refreshed every Periodic
	visibleNow  bool
	lastSeen    time.Time
	lastBearing geom.Rotation
	everSeen    bool

	aligned bool
}

// NewSupervisor creates a supervisor in manual mode.
func NewSupervisor(cfg Config, deps Deps) *Supervisor {
	if deps.Clock == nil {
		deps.Clock = systemClock{}
	}
	s := &Supervisor{
		cfg:        cfg,
		drive:      deps.Drivetrain,
		input:      deps.Input,
		prov:       deps.Provider,
		layout:     deps.Layout,
		align:      deps.Aligner,
		clock:      deps.Clock,
		landmarkID: vision.NoLandmarkID,
	}
	s.Machine = statemachine.New("teleop/supervisor", WantedManual, StateManual, s)
	return s
}

// StartAlignment requests full-pose alignment: the landmark's field
// pose composed with offset is the goal pose.
func (s *Supervisor) StartAlignment(landmarkID int, offset geom.Transform) {
	s.setGoal(landmarkID)
	s.offset = offset
	s.hasOffset = true
	if pose, ok := s.layout.Lookup(landmarkID); ok {
		s.target = pose.TransformBy(offset)
	}
	s.SetWantedState(WantedAlign)
}

// StartAiming requests rotation-only aiming at the landmark while the
// driver keeps translation control.
func (s *Supervisor) StartAiming(landmarkID int) {
	s.setGoal(landmarkID)
	s.SetWantedState(WantedAim)
}

// ToggleSnapToTarget switches heading-snap mode on or off.
func (s *Supervisor) ToggleSnapToTarget(landmarkID int) {
	if s.WantedState() == WantedSnap {
		s.SetWantedState(WantedManual)
		return
	}
	s.setGoal(landmarkID)
	s.SetWantedState(WantedSnap)
}

// SetManual returns control to the driver.
func (s *Supervisor) SetManual() {
	s.SetWantedState(WantedManual)
}

// Stop halts the drivetrain until another mode is requested.
func (s *Supervisor) Stop() {
	s.SetWantedState(WantedStop)
}

// IsAligned reports whether the most recent alignment cycle was inside
// tolerance. Pure query; valid only while aligning.
func (s *Supervisor) IsAligned() bool {
	return s.aligned
}

// IsAimed reports whether the heading currently points at the last
// known landmark bearing within the aim tolerance.
func (s *Supervisor) IsAimed() bool {
	if !s.everSeen {
		return false
	}
	err := geom.WrapAngle(s.lastBearing.Radians() - s.drive.Pose().Rotation.Radians())
	return math.Abs(err) < s.cfg.AimTolerance
}

// Periodic refreshes landmark tracking and runs one machine cycle.
func (s *Supervisor) Periodic() {
	s.trackLandmark()
	s.Update()
}

func (s *Supervisor) setGoal(landmarkID int) {
	s.landmarkID = landmarkID
	s.hasOffset = false
	s.visibleNow = false
	s.everSeen = false
	s.lastSeen = s.clock.Now()
	s.aligned = false
}

// trackLandmark snapshots visibility of the active landmark and, while
// it is visible, the field bearing from the robot to it. The bearing
// is what Searching steers back toward after a loss.
func (s *Supervisor) trackLandmark() {
	s.visibleNow = false
	if s.landmarkID == vision.NoLandmarkID {
		return
	}
	// A sighting of a landmark the layout has no pose for is useless
	// to the aligner, so it must not count as visible or hold off the
	// loss timeout.
	pose, ok := s.layout.Lookup(s.landmarkID)
	if !ok {
		return
	}
	for _, obs := range s.prov.Observations() {
		if obs.Contains(s.landmarkID) {
			s.visibleNow = true
			break
		}
	}
	if !s.visibleNow {
		return
	}
	s.lastSeen = s.clock.Now()
	s.lastBearing = pose.Translation.Minus(s.drive.Pose().Translation).Angle()
	s.everSeen = true
}

// Transition maps the driver's wanted mode onto the running state.
// Aligning and Aiming demote to Searching once the loss timeout
// expires; snap does not.
func (s *Supervisor) Transition(wanted WantedState, current State) State {
	switch wanted {
	case WantedStop:
		return StateStopped
	case WantedManual:
		return StateManual
	case WantedAlign, WantedAim:
		goal := goalState(wanted)
		if s.visibleNow {
			return goal
		}
		if s.clock.Now().Sub(s.lastSeen) > s.cfg.LossTimeout {
			return StateSearching
		}
		return goal
	case WantedSnap:
		// Snap shares the base with the driver; losing the landmark
		// must never take translation away, so snap rides out a loss
		// on the last known bearing instead of searching.
		return StateSnapToTarget
	default:
		return current
	}
}

func goalState(wanted WantedState) State {
	if wanted == WantedAlign {
		return StateAligning
	}
	return StateAiming
}

// Apply runs one non-blocking step of the current assist mode.
func (s *Supervisor) Apply(current State) {
	switch current {
	case StateManual:
		if s.DidEnterState(StateManual) {
			s.aligned = false
		}
		s.drive.RunVelocity(s.input.Speeds())
	case StateAligning:
		s.handleAligning()
	case StateAiming:
		s.handleRotationOnly(false)
	case StateSnapToTarget:
		s.handleRotationOnly(true)
	case StateSearching:
		s.handleSearching()
	case StateStopped:
		if s.DidEnterState(StateStopped) {
			s.drive.Stop()
		}
	}
}

func (s *Supervisor) handleAligning() {
	if s.DidEnterState(StateAligning) {
		// Re-seed the controllers at the live pose so stale setpoints
		// from an earlier session or a search detour cannot kick.
		s.align.SetTarget(s.target)
		s.aligned = false
		if s.DidExitState(StateSearching) {
			telemetry.Emit("info", "vision.landmark_acquired", "", map[string]interface{}{
				"landmark": s.landmarkID,
				"mode":     "teleop",
			})
		}
	}
	if !s.hasOffset {
		s.drive.Stop()
		return
	}

	result := s.align.AlignToTarget(s.landmarkID, s.offset)
	if !result.LandmarkVisible {
		// Inside the loss grace period: hold rather than chase.
		s.drive.Stop()
		return
	}
	s.drive.RunVelocity(result.Speeds)
	s.aligned = result.Aligned
	telemetry.Emit("debug", "align.update", "", map[string]interface{}{
		"mode":     "teleop",
		"landmark": s.landmarkID,
		"aligned":  result.Aligned,
		"aimed":    s.IsAimed(),
	})
}

// handleRotationOnly points the heading at the last known landmark
// bearing. With driverTranslation the driver's stick keeps linear
// control; otherwise the robot only rotates in place.
func (s *Supervisor) handleRotationOnly(driverTranslation bool) {
	speeds := geom.ChassisSpeeds{}
	if driverTranslation {
		speeds = s.input.Speeds()
	}

	if s.everSeen {
		err := geom.WrapAngle(s.lastBearing.Radians() - s.drive.Pose().Rotation.Radians())
		speeds.Omega = geom.Clamp(s.cfg.AimKP*err, -s.cfg.MaxAngularVelocity, s.cfg.MaxAngularVelocity)
	} else {
		speeds.Omega = 0
	}
	s.drive.RunVelocity(speeds)
}

// handleSearching rotates toward the last known bearing with a clamped
// proportional command, or at a constant slow rate when the landmark
// was never seen, until the landmark shows up again.
func (s *Supervisor) handleSearching() {
	if s.DidEnterState(StateSearching) {
		telemetry.Emit("warn", "vision.landmark_lost", "searching for landmark", map[string]interface{}{
			"landmark": s.landmarkID,
			"mode":     "teleop",
		})
	}

	omega := s.cfg.SearchRate
	if s.everSeen {
		err := geom.WrapAngle(s.lastBearing.Radians() - s.drive.Pose().Rotation.Radians())
		omega = geom.Clamp(s.cfg.SearchKP*err, -s.cfg.SearchRate, s.cfg.SearchRate)
	}
	s.drive.RunVelocity(geom.ChassisSpeeds{Omega: omega})
}
