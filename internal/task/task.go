// Package task defines the unit of autonomous work: the immutable task
// description, its mutable execution phase, the registry-driven parser
// that builds tasks from routine tokens, and the execution context that
// owns the task list during a run.
package task

import (
	"fmt"

	"github.com/banyan-robotics/banyan/internal/geom"
)

// NoLandmark marks a task that needs no vision alignment.
const NoLandmark = -1

// Phase is the sub-stage a task progresses through during execution.
// Phases only move forward: Approach -> Align -> Execute -> Done, with
// Align skipped for tasks without a landmark.
type Phase int

const (
	PhaseApproach Phase = iota
	PhaseAlign
	PhaseExecute
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseApproach:
		return "APPROACH"
	case PhaseAlign:
		return "ALIGN"
	case PhaseExecute:
		return "EXECUTE"
	case PhaseDone:
		return "DONE"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Task is a single unit of autonomous work.
//
// The description (kind, location, poses, landmark) is fixed at parse
// time; only the phase mutates, and only the orchestrator driving the
// task mutates it. A dynamic task is a placeholder whose real target
// is unresolved at parse time and must be replaced before execution.
type Task struct {
	Kind         string
	Location     string
	ApproachPose geom.Pose
	TargetPose   geom.Pose
	LandmarkID   int
	Dynamic      bool

	// DelaySeconds is the wait duration for DELAY tasks, zero otherwise.
	DelaySeconds float64

	phase Phase
}

// New creates a task in the Approach phase.
func New(kind, location string, approach, target geom.Pose, landmarkID int) Task {
	return Task{
		Kind:         kind,
		Location:     location,
		ApproachPose: approach,
		TargetPose:   target,
		LandmarkID:   landmarkID,
	}
}

// Phase returns the task's current execution phase.
func (t *Task) Phase() Phase {
	return t.phase
}

// SetPhase advances the task's phase. Backward moves are ignored: a
// task's phase is monotonically non-decreasing over its lifetime.
func (t *Task) SetPhase(p Phase) {
	if p < t.phase {
		return
	}
	t.phase = p
}

// RequiresAlignment reports whether the task has a landmark to align
// against. Tasks without one skip the Align phase entirely.
func (t *Task) RequiresAlignment() bool {
	return t.LandmarkID != NoLandmark
}

// IsComplete reports whether the task reached the Done phase.
func (t *Task) IsComplete() bool {
	return t.phase == PhaseDone
}

func (t *Task) String() string {
	return fmt.Sprintf("Task{kind=%s, location=%s, phase=%s, landmark=%d}",
		t.Kind, t.Location, t.phase, t.LandmarkID)
}
