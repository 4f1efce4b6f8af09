package auto

import (
	"time"

	"github.com/banyan-robotics/banyan/internal/field"
	"github.com/banyan-robotics/banyan/internal/geom"
	"github.com/banyan-robotics/banyan/internal/task"
)

// Drivetrain is the velocity-command surface of the robot base. All
// methods must be non-blocking; RunVelocity takes body-relative speeds.
type Drivetrain interface {
	Pose() geom.Pose
	RunVelocity(speeds geom.ChassisSpeeds)
	Stop()
	ResetOdometry(pose geom.Pose)
}

// PathFollower drives the robot toward a target pose over many control
// cycles. The orchestrator starts a path once per approach and then
// polls for arrival.
type PathFollower interface {
	// FollowTo starts or retargets a path toward the pose.
	FollowTo(target geom.Pose)

	// Arrived reports whether the active path reached its target.
	Arrived() bool

	// Cancel abandons the active path.
	Cancel()
}

// Mechanisms is the game-piece manipulation surface. Begin methods
// kick off an action and return immediately; the matching Complete
// method reports when the action has finished.
type Mechanisms interface {
	BeginPickup()
	PickupComplete() bool
	BeginScore()
	ScoreComplete() bool

	// Idle returns all mechanisms to their resting configuration.
	Idle()
}

// TaskResolver turns a dynamic placeholder task into a concrete one at
// runtime, typically from game state accumulated so far. Returning
// false means no target could be chosen yet; the orchestrator holds
// position and asks again next cycle.
type TaskResolver interface {
	Resolve(ctx *field.GameContext, placeholder task.Task) (task.Task, bool)
}

// ResolverFunc adapts a function to the TaskResolver interface.
type ResolverFunc func(ctx *field.GameContext, placeholder task.Task) (task.Task, bool)

func (f ResolverFunc) Resolve(ctx *field.GameContext, placeholder task.Task) (task.Task, bool) {
	return f(ctx, placeholder)
}

// Clock abstracts wall time so DELAY tasks are testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }
