package auto

import (
	"strings"
	"time"

	"github.com/banyan-robotics/banyan/internal/field"
	"github.com/banyan-robotics/banyan/internal/geom"
	"github.com/banyan-robotics/banyan/internal/statemachine"
	"github.com/banyan-robotics/banyan/internal/task"
	"github.com/banyan-robotics/banyan/internal/telemetry"
	"github.com/banyan-robotics/banyan/internal/vision"
)

// Deps bundles the collaborators an Orchestrator drives. Resolver and
// Clock are optional; Clock defaults to wall time.
type Deps struct {
	Context    *field.GameContext
	Layout     vision.Layout
	Drivetrain Drivetrain
	Follower   PathFollower
	Mechanisms Mechanisms
	Aligner    *vision.Aligner
	Resolver   TaskResolver
	Clock      Clock
}

// Orchestrator executes one routine: it walks the task list and drives
// each task through Approach, Align, Execute, and Done. The machine
// state is re-derived from the current task's phase every cycle, so
// the task list is the single source of truth for progress.
//
// Update must be called at a fixed period; every handler is
// non-blocking.
type Orchestrator struct {
	*statemachine.Machine[WantedState, State]

	context    *field.GameContext
	layout     vision.Layout
	drive      Drivetrain
	follower   PathFollower
	mechanisms Mechanisms
	aligner    *vision.Aligner
	resolver   TaskResolver
	clock      Clock

	// one-shot bookkeeping, cleared on every state change
	pathStarted        bool
	executeStarted     bool
	delayStart         time.Time
	landmarkVisible    bool
	unresolvedReported bool
}

// NewOrchestrator creates an orchestrator in the Idle state.
func NewOrchestrator(deps Deps) *Orchestrator {
	if deps.Clock == nil {
		deps.Clock = SystemClock()
	}
	o := &Orchestrator{
		context:    deps.Context,
		layout:     deps.Layout,
		drive:      deps.Drivetrain,
		follower:   deps.Follower,
		mechanisms: deps.Mechanisms,
		aligner:    deps.Aligner,
		resolver:   deps.Resolver,
		clock:      deps.Clock,
	}
	o.Machine = statemachine.New("auto/orchestrator", WantedIdle, StateIdle, o)
	return o
}

// Context returns the execution context the orchestrator is driving.
func (o *Orchestrator) Context() *field.GameContext {
	return o.context
}

// Start resets odometry to the routine's starting pose and begins
// execution on the next Update.
func (o *Orchestrator) Start(startingPose geom.Pose) {
	o.drive.ResetOdometry(startingPose)
	o.SetWantedState(WantedRun)
	telemetry.Emit("info", "routine.started", "", map[string]interface{}{
		"tasks": o.context.TaskCount(),
	})
}

// Cancel aborts the run: the follower is stopped and the machine
// returns to Idle on the next Update.
func (o *Orchestrator) Cancel() {
	o.follower.Cancel()
	o.SetWantedState(WantedIdle)
	telemetry.Emit("info", "routine.cancelled", "", map[string]interface{}{
		"task_index": o.context.CurrentTaskIndex(),
	})
}

// Transition maps intent and task progress to the next state.
func (o *Orchestrator) Transition(wanted WantedState, current State) State {
	if wanted != WantedRun {
		return StateIdle
	}
	if o.context.IsComplete() {
		return StateComplete
	}
	t := o.context.CurrentTask()
	if t == nil {
		return StateComplete
	}

	switch t.Phase() {
	case task.PhaseApproach:
		return StateApproaching
	case task.PhaseAlign:
		return StateAligning
	case task.PhaseExecute:
		if isPickupKind(t.Kind) {
			return StateExecutingPickup
		}
		return StateExecutingScore
	case task.PhaseDone:
		return StateTransitioning
	default:
		return current
	}
}

// Apply runs one non-blocking step of the current state.
func (o *Orchestrator) Apply(current State) {
	if o.HasStateChanged() {
		o.clearCycleFlags()
	}

	switch current {
	case StateIdle:
		if o.DidEnterState(StateIdle) {
			o.drive.Stop()
			o.mechanisms.Idle()
		}
	case StateApproaching:
		o.handleApproaching()
	case StateAligning:
		o.handleAligning()
	case StateExecutingPickup:
		o.handleExecutingPickup()
	case StateExecutingScore:
		o.handleExecutingScore()
	case StateTransitioning:
		o.handleTransitioning()
	case StateComplete:
		if o.DidEnterState(StateComplete) {
			o.drive.Stop()
			o.mechanisms.Idle()
			telemetry.Emit("info", "routine.completed", "", map[string]interface{}{
				"tasks":  o.context.TaskCount(),
				"scored": o.context.ScoredCount(),
			})
		}
	}
}

func (o *Orchestrator) clearCycleFlags() {
	o.pathStarted = false
	o.executeStarted = false
	o.delayStart = time.Time{}
	o.landmarkVisible = false
	o.unresolvedReported = false
}

func (o *Orchestrator) handleApproaching() {
	t := o.context.CurrentTask()
	if t.Dynamic {
		if !o.resolveDynamic(t) {
			o.drive.Stop()
			return
		}
		t = o.context.CurrentTask()
	}

	if o.DidEnterState(StateApproaching) {
		telemetry.Emit("info", "task.started", t.String(), map[string]interface{}{
			"index":    o.context.CurrentTaskIndex(),
			"kind":     t.Kind,
			"location": t.Location,
		})
	}

	// DELAY tasks wait in place; there is nothing to drive to.
	if t.Kind == "DELAY" {
		o.setPhase(t, task.PhaseExecute)
		return
	}

	if !o.pathStarted {
		o.follower.FollowTo(t.ApproachPose)
		o.pathStarted = true
		return
	}
	if o.follower.Arrived() {
		if t.RequiresAlignment() {
			o.setPhase(t, task.PhaseAlign)
		} else {
			o.setPhase(t, task.PhaseExecute)
		}
	}
}

func (o *Orchestrator) handleAligning() {
	t := o.context.CurrentTask()
	if o.DidEnterState(StateAligning) {
		o.aligner.SetTarget(t.TargetPose)
	}

	offset, ok := o.landmarkOffset(t)
	if !ok {
		// No field pose for the landmark: alignment cannot proceed.
		o.drive.Stop()
		return
	}

	result := o.aligner.AlignToTarget(t.LandmarkID, offset)

	if result.LandmarkVisible != o.landmarkVisible {
		event := "vision.landmark_lost"
		if result.LandmarkVisible {
			event = "vision.landmark_acquired"
		}
		telemetry.Emit("warn", event, "", map[string]interface{}{
			"landmark": t.LandmarkID,
			"index":    o.context.CurrentTaskIndex(),
		})
		o.landmarkVisible = result.LandmarkVisible
	}

	if !result.LandmarkVisible {
		// Hold position until the landmark comes back. There is no
		// timeout here: the run stays observable and cancellable.
		o.drive.Stop()
		return
	}

	o.drive.RunVelocity(result.Speeds)
	telemetry.Emit("debug", "align.update", "", map[string]interface{}{
		"landmark": t.LandmarkID,
		"aligned":  result.Aligned,
	})

	if result.Aligned {
		o.drive.Stop()
		o.setPhase(t, task.PhaseExecute)
	}
}

func (o *Orchestrator) handleExecutingPickup() {
	t := o.context.CurrentTask()
	if !o.executeStarted {
		o.mechanisms.BeginPickup()
		o.executeStarted = true
		return
	}
	if o.mechanisms.PickupComplete() {
		o.context.SetGamePiece(t.Location)
		o.completeTask(t)
	}
}

func (o *Orchestrator) handleExecutingScore() {
	t := o.context.CurrentTask()

	switch t.Kind {
	case "DELAY":
		if o.delayStart.IsZero() {
			o.delayStart = o.clock.Now()
		}
		if o.clock.Now().Sub(o.delayStart).Seconds() >= t.DelaySeconds {
			o.completeTask(t)
		}
		return
	case "POSE":
		// Reaching the pose is the whole task.
		o.completeTask(t)
		return
	}

	if !o.executeStarted {
		o.mechanisms.BeginScore()
		o.executeStarted = true
		return
	}
	if o.mechanisms.ScoreComplete() {
		o.context.AddScoredLocation(t.Location)
		o.context.SetGamePiece("")
		o.completeTask(t)
	}
}

func (o *Orchestrator) handleTransitioning() {
	if o.context.HasNextTask() {
		o.context.NextTask()
	}
}

func (o *Orchestrator) resolveDynamic(t *task.Task) bool {
	if o.resolver != nil {
		if resolved, ok := o.resolver.Resolve(o.context, *t); ok {
			o.context.ReplaceCurrentTask(resolved)
			telemetry.Emit("info", "task.replaced", "", map[string]interface{}{
				"index":    o.context.CurrentTaskIndex(),
				"kind":     resolved.Kind,
				"location": resolved.Location,
			})
			return true
		}
	}
	if !o.unresolvedReported {
		telemetry.Emit("warn", "auto.unresolved", "dynamic task has no resolved target, holding position", map[string]interface{}{
			"index": o.context.CurrentTaskIndex(),
			"kind":  t.Kind,
		})
		o.unresolvedReported = true
	}
	return false
}

// landmarkOffset expresses the task's target pose as a transform
// relative to its landmark's field pose.
func (o *Orchestrator) landmarkOffset(t *task.Task) (geom.Transform, bool) {
	landmarkPose, ok := o.layout.Lookup(t.LandmarkID)
	if !ok {
		return geom.Transform{}, false
	}
	return t.TargetPose.Minus(landmarkPose), true
}

func (o *Orchestrator) setPhase(t *task.Task, p task.Phase) {
	t.SetPhase(p)
	telemetry.Emit("info", "task.phase", "", map[string]interface{}{
		"index": o.context.CurrentTaskIndex(),
		"kind":  t.Kind,
		"phase": p.String(),
	})
}

func (o *Orchestrator) completeTask(t *task.Task) {
	t.SetPhase(task.PhaseDone)
	telemetry.Emit("info", "task.completed", "", map[string]interface{}{
		"index":    o.context.CurrentTaskIndex(),
		"kind":     t.Kind,
		"location": t.Location,
	})
}

func isPickupKind(kind string) bool {
	return strings.EqualFold(kind, "PICKUP")
}
