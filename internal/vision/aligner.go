package vision

import (
	"math"

	"github.com/banyan-robotics/banyan/internal/control"
	"github.com/banyan-robotics/banyan/internal/geom"
)

// Result is the output of one alignment evaluation. It is recomputed
// every control cycle and never persisted.
//
// An invisible landmark is not an error: LandmarkVisible false with a
// zero velocity command is the signal callers use to drive recovery.
type Result struct {
	Aligned         bool
	CorrectedPose   geom.Pose
	LandmarkVisible bool
	Speeds          geom.ChassisSpeeds
}

// PoseEstimator exposes the robot's current field pose.
type PoseEstimator interface {
	Pose() geom.Pose
}

// AlignerConfig bundles the gains, constraints, and tolerances of one
// alignment controller instance. Coarse and fine alignment use
// distinct configs (and therefore distinct Aligner instances).
type AlignerConfig struct {
	LinearKP float64
	LinearKI float64
	LinearKD float64

	AngularKP float64
	AngularKI float64
	AngularKD float64

	MaxVelocity            float64
	MaxAcceleration        float64
	MaxAngularVelocity     float64
	MaxAngularAcceleration float64

	PositionTolerance float64
	RotationTolerance float64

	// Period is the control cycle length in seconds.
	Period float64
}

// DefaultAlignerConfig returns the coarse alignment tuning.
func DefaultAlignerConfig() AlignerConfig {
	return AlignerConfig{
		LinearKP:               2.5,
		AngularKP:              2.5,
		MaxVelocity:            2.0,
		MaxAcceleration:        2.0,
		MaxAngularVelocity:     2.0,
		MaxAngularAcceleration: 2.0,
		PositionTolerance:      0.1,
		RotationTolerance:      2.0 * math.Pi / 180.0,
		Period:                 0.02,
	}
}

// FineAlignerConfig returns the fine alignment tuning: slower, tighter
// tolerances, for the last fraction of a meter.
func FineAlignerConfig() AlignerConfig {
	cfg := DefaultAlignerConfig()
	cfg.MaxVelocity = 0.5
	cfg.MaxAcceleration = 1.0
	cfg.MaxAngularVelocity = 1.0
	cfg.PositionTolerance = 0.02
	cfg.RotationTolerance = 1.0 * math.Pi / 180.0
	return cfg
}

// Aligner is the closed-loop vision alignment controller. Three
// profile-constrained PID loops (x, y, heading) run field-relative
// against the desired pose; the output is rotated into the robot's
// body frame before being returned.
//
// The controllers carry cross-cycle state, so each logically distinct
// alignment session needs its own Aligner instance.
type Aligner struct {
	cfg      AlignerConfig
	pose     PoseEstimator
	provider Provider
	layout   Layout

	xController     *control.ProfiledPID
	yController     *control.ProfiledPID
	thetaController *control.ProfiledPID
}

// NewAligner creates an alignment controller.
func NewAligner(cfg AlignerConfig, pose PoseEstimator, provider Provider, layout Layout) *Aligner {
	linear := control.Constraints{MaxVelocity: cfg.MaxVelocity, MaxAcceleration: cfg.MaxAcceleration}
	angular := control.Constraints{MaxVelocity: cfg.MaxAngularVelocity, MaxAcceleration: cfg.MaxAngularAcceleration}

	theta := control.NewProfiledPID(cfg.AngularKP, cfg.AngularKI, cfg.AngularKD, angular)
	theta.EnableContinuousInput()

	return &Aligner{
		cfg:             cfg,
		pose:            pose,
		provider:        provider,
		layout:          layout,
		xController:     control.NewProfiledPID(cfg.LinearKP, cfg.LinearKI, cfg.LinearKD, linear),
		yController:     control.NewProfiledPID(cfg.LinearKP, cfg.LinearKI, cfg.LinearKD, linear),
		thetaController: theta,
	}
}

// SetTarget re-seeds the controllers at the current robot pose so the
// first cycle of a new alignment does not see a stale setpoint. It
// produces no velocity command.
func (a *Aligner) SetTarget(target geom.Pose) {
	current := a.pose.Pose()
	a.xController.Reset(current.X())
	a.yController.Reset(current.Y())
	a.thetaController.Reset(current.Rotation.Radians())
	a.xController.SetGoal(target.X())
	a.yController.SetGoal(target.Y())
	a.thetaController.SetGoal(target.Rotation.Radians())
}

// AlignToTarget runs one alignment cycle against the landmark. The
// desired robot pose is the landmark's field pose composed with the
// caller-supplied offset transform.
//
// If the landmark is not currently observed, or has no field pose in
// the layout, the result reports LandmarkVisible false with a zero
// command and the internal controller state is left untouched: error
// must never integrate against an absent target.
func (a *Aligner) AlignToTarget(landmarkID int, offset geom.Transform) Result {
	if !a.landmarkVisible(landmarkID) {
		return Result{}
	}

	landmarkPose, ok := a.layout.Lookup(landmarkID)
	if !ok {
		// Unknown landmark is indistinguishable from an invisible one.
		return Result{}
	}

	desired := landmarkPose.TransformBy(offset)
	current := a.pose.Pose()

	// Field-relative control against the current odometry pose keeps
	// the loop stable across intermittent observation updates.
	vx := a.xController.Calculate(current.X(), desired.X(), a.cfg.Period)
	vy := a.yController.Calculate(current.Y(), desired.Y(), a.cfg.Period)
	omega := a.thetaController.Calculate(current.Rotation.Radians(), desired.Rotation.Radians(), a.cfg.Period)

	fieldSpeeds := geom.ChassisSpeeds{VX: vx, VY: vy, Omega: omega}
	bodySpeeds := geom.FromFieldRelative(fieldSpeeds, current.Rotation)

	positionError := current.Translation.Distance(desired.Translation)
	rotationError := math.Abs(current.Rotation.Minus(desired.Rotation).Radians())
	aligned := positionError < a.cfg.PositionTolerance && rotationError < a.cfg.RotationTolerance

	return Result{
		Aligned:         aligned,
		CorrectedPose:   current,
		LandmarkVisible: true,
		Speeds:          bodySpeeds,
	}
}

func (a *Aligner) landmarkVisible(landmarkID int) bool {
	if landmarkID < 0 {
		return false
	}
	for _, obs := range a.provider.Observations() {
		if obs.Contains(landmarkID) {
			return true
		}
	}
	return false
}
