package task

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/banyan-robotics/banyan/internal/geom"
)

// Routine is a declarative, externally-authored description of one
// autonomous run: a starting pose for the odometry reset plus the
// ordered task tokens.
//
// JSON format:
//
//	{
//	  "name": "Right Side 4 Piece",
//	  "startingPose": [x_meters, y_meters, heading_degrees],
//	  "tasks": ["PICKUP:FEEDER_R", "SCORE:AUTO", "SCORE:E3"]
//	}
type Routine struct {
	Name         string    `json:"name"`
	StartingPose []float64 `json:"startingPose"`
	Tasks        []string  `json:"tasks"`
}

// Start returns the starting pose for the odometry reset. A missing or
// malformed startingPose falls back to the identity pose.
func (r *Routine) Start() geom.Pose {
	if len(r.StartingPose) != 3 {
		return geom.Pose{}
	}
	return geom.PoseFromDegrees(r.StartingPose[0], r.StartingPose[1], r.StartingPose[2])
}

// LoadRoutine loads a routine from a JSON file. Any structural defect
// other than a bad starting pose fails the whole load.
func LoadRoutine(path string) (*Routine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read routine file: %w", err)
	}
	return ParseRoutine(data)
}

// ParseRoutine parses routine JSON.
func ParseRoutine(data []byte) (*Routine, error) {
	var r Routine
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse routine JSON: %w", err)
	}

	if len(r.Tasks) == 0 {
		return nil, fmt.Errorf("routine %q has no tasks", r.Name)
	}

	return &r, nil
}
