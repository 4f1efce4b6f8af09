package telemetry

import "fmt"

var allowedEvents = map[string]struct{}{
	// state machines
	"machine.transition": {},

	// routine lifecycle
	"routine.loaded":    {},
	"routine.started":   {},
	"routine.completed": {},
	"routine.cancelled": {},

	// task lifecycle
	"task.started":   {},
	"task.phase":     {},
	"task.completed": {},
	"task.replaced":  {},

	// vision alignment
	"vision.landmark_lost":     {},
	"vision.landmark_acquired": {},
	"align.update":             {},

	// dynamic task resolution
	"auto.unresolved": {},

	// system
	"system.startup":  {},
	"system.shutdown": {},
	"system.error":    {},
}

func Validate(event string) error {
	if _, ok := allowedEvents[event]; !ok {
		return fmt.Errorf("unknown event: %s", event)
	}
	return nil
}
