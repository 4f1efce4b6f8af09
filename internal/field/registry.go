package field

import (
	"fmt"
	"strings"

	"github.com/banyan-robotics/banyan/internal/geom"
	"github.com/banyan-robotics/banyan/internal/task"
)

// Approach offsets per task kind: pickups leave more room for the
// intake than scoring does.
const (
	pickupApproachDistance = 0.8
	scoreApproachDistance  = 0.6
)

// RegistryBuilder wires the game's task kinds into a task registry.
// Factories resolve locations through the injected table at parse
// time.
type RegistryBuilder struct {
	table Locations
}

// NewRegistryBuilder creates a builder over a location table.
func NewRegistryBuilder(table Locations) *RegistryBuilder {
	return &RegistryBuilder{table: table}
}

// Build returns a registry with the game's task kinds registered.
func (b *RegistryBuilder) Build() *task.Registry {
	registry := task.NewRegistry()
	registry.Register("PICKUP", b.createPickupTask)
	registry.Register("SCORE", b.createScoreTask)
	return registry
}

func (b *RegistryBuilder) createPickupTask(location string) (task.Task, error) {
	return b.createAt("PICKUP", location, pickupApproachDistance)
}

func (b *RegistryBuilder) createScoreTask(location string) (task.Task, error) {
	// SCORE:AUTO defers target selection to a runtime strategy.
	if strings.EqualFold(location, task.DynamicLocation) {
		return b.createDynamicScoreTask(), nil
	}
	return b.createAt("SCORE", location, scoreApproachDistance)
}

func (b *RegistryBuilder) createAt(kind, location string, approachDistance float64) (task.Task, error) {
	targetPose, ok := b.table.Location(location)
	if !ok {
		return task.Task{}, fmt.Errorf("unknown location %q", location)
	}

	approachPose := task.CalculateApproachPose(targetPose, approachDistance, false)

	landmarkID := task.NoLandmark
	if id, ok := b.table.LandmarkID(location); ok {
		landmarkID = id
	}

	return task.New(kind, location, approachPose, targetPose, landmarkID), nil
}

// createDynamicScoreTask returns a placeholder that a resolution
// strategy must replace before the orchestrator reaches it. The
// orchestrator refuses to drive toward an unresolved placeholder.
func (b *RegistryBuilder) createDynamicScoreTask() task.Task {
	t := task.New("SCORE", task.DynamicLocation, geom.Pose{}, geom.Pose{}, task.NoLandmark)
	t.Dynamic = true
	return t
}
