package auto

import (
	"fmt"

	"github.com/banyan-robotics/banyan/internal/field"
	"github.com/banyan-robotics/banyan/internal/geom"
	"github.com/banyan-robotics/banyan/internal/task"
	"github.com/banyan-robotics/banyan/internal/telemetry"
	"github.com/banyan-robotics/banyan/internal/vision"
)

// Builder assembles a ready-to-run Orchestrator from a routine and the
// hardware collaborators: the location table seeds the task registry,
// the registry seeds the parser, and the parsed tasks seed the
// execution context.
type Builder struct {
	Table      field.Locations
	Layout     vision.Layout
	Provider   vision.Provider
	AlignerCfg vision.AlignerConfig

	Drivetrain Drivetrain
	Follower   PathFollower
	Mechanisms Mechanisms

	// Resolver and Clock are optional.
	Resolver TaskResolver
	Clock    Clock
}

// Build parses the routine's tasks and wires up an Orchestrator.
func (b *Builder) Build(routine *task.Routine) (*Orchestrator, error) {
	registry := field.NewRegistryBuilder(b.Table).Build()
	parser := task.NewParser(registry)

	tasks, err := parser.ParseAll(routine.Tasks)
	if err != nil {
		return nil, fmt.Errorf("building routine %q: %w", routine.Name, err)
	}

	cfg := b.AlignerCfg
	if cfg == (vision.AlignerConfig{}) {
		cfg = vision.DefaultAlignerConfig()
	}
	aligner := vision.NewAligner(cfg, b.Drivetrain, b.Provider, b.Layout)

	telemetry.Emit("info", "routine.loaded", routine.Name, map[string]interface{}{
		"name":  routine.Name,
		"tasks": len(tasks),
	})

	return NewOrchestrator(Deps{
		Context:    field.NewGameContext(tasks),
		Layout:     b.Layout,
		Drivetrain: b.Drivetrain,
		Follower:   b.Follower,
		Mechanisms: b.Mechanisms,
		Aligner:    aligner,
		Resolver:   b.Resolver,
		Clock:      b.Clock,
	}), nil
}

// BuildFromFile loads a routine from a JSON file and builds an
// Orchestrator for it. The second return value is the routine's
// starting pose, to be passed to Start.
func (b *Builder) BuildFromFile(path string) (*Orchestrator, geom.Pose, error) {
	routine, err := task.LoadRoutine(path)
	if err != nil {
		return nil, geom.Pose{}, err
	}
	o, err := b.Build(routine)
	if err != nil {
		return nil, geom.Pose{}, err
	}
	return o, routine.Start(), nil
}
