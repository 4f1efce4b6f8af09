package task

import (
	"testing"

	"github.com/banyan-robotics/banyan/internal/geom"
)

func makeTasks(n int) []Task {
	tasks := make([]Task, n)
	for i := range tasks {
		tasks[i] = New("POSE", "0,0,0", geom.Pose{}, geom.Pose{}, NoLandmark)
	}
	return tasks
}

func TestContextCursorInvariant(t *testing.T) {
	ctx := NewContext(makeTasks(3))

	if ctx.CurrentTaskIndex() != 0 {
		t.Fatalf("initial cursor = %d, want 0", ctx.CurrentTaskIndex())
	}

	// N-1 advances reach the last task.
	for i := 0; i < 2; i++ {
		if ctx.NextTask() == nil {
			t.Fatalf("NextTask returned nil at step %d", i)
		}
	}
	if ctx.CurrentTaskIndex() != 2 {
		t.Errorf("cursor = %d, want 2", ctx.CurrentTaskIndex())
	}
	if ctx.HasNextTask() {
		t.Error("HasNextTask should be false on the last task")
	}

	// One more advance is a no-op.
	if ctx.NextTask() != nil {
		t.Error("NextTask past the end should return nil")
	}
	if ctx.CurrentTaskIndex() != 2 {
		t.Error("cursor must not move past the last task")
	}
}

func TestContextIsComplete(t *testing.T) {
	ctx := NewContext(makeTasks(2))

	if ctx.IsComplete() {
		t.Fatal("fresh context must not be complete")
	}

	ctx.CurrentTask().SetPhase(PhaseDone)
	if ctx.IsComplete() {
		t.Fatal("completing a non-final task must not complete the context")
	}

	ctx.NextTask()
	if ctx.IsComplete() {
		t.Fatal("last task not yet done")
	}
	ctx.CurrentTask().SetPhase(PhaseDone)
	if !ctx.IsComplete() {
		t.Fatal("context should be complete once the last task is done")
	}
}

func TestContextDefensiveCopy(t *testing.T) {
	source := makeTasks(1)
	ctx := NewContext(source)
	source[0].SetPhase(PhaseDone)
	if ctx.CurrentTask().IsComplete() {
		t.Error("mutating the source slice must not affect the context")
	}
}

func TestReplaceCurrentTask(t *testing.T) {
	ctx := NewContext(makeTasks(2))
	resolved := New("SCORE", "E2", geom.Pose{}, geom.PoseFromDegrees(1, 1, 90), 22)
	ctx.ReplaceCurrentTask(resolved)

	current := ctx.CurrentTask()
	if current.Kind != "SCORE" || current.Location != "E2" {
		t.Errorf("current task after replace = %v", current)
	}
	// The arena slot itself was replaced.
	if ctx.Tasks()[0].Kind != "SCORE" {
		t.Error("replacement must land in the task arena")
	}
}

func TestPhaseMonotonic(t *testing.T) {
	tk := New("SCORE", "E2", geom.Pose{}, geom.Pose{}, 22)
	tk.SetPhase(PhaseExecute)
	tk.SetPhase(PhaseAlign) // backward, ignored
	if tk.Phase() != PhaseExecute {
		t.Errorf("phase = %v after backward set, want EXECUTE", tk.Phase())
	}
}

func TestEmptyContext(t *testing.T) {
	ctx := NewContext(nil)
	if ctx.CurrentTask() != nil {
		t.Error("empty context has no current task")
	}
	if !ctx.IsComplete() {
		t.Error("empty context is trivially complete")
	}
}
