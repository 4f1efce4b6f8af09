// Package vision provides landmark observation contracts and the
// closed-loop pose alignment controller that turns landmark sightings
// into velocity commands.
package vision

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/banyan-robotics/banyan/internal/geom"
)

// NoLandmarkID marks the absence of an active landmark.
const NoLandmarkID = -1

// Observation is one camera frame's worth of landmark sightings: the
// ids visible in the frame and the estimated robot field pose derived
// from them.
type Observation struct {
	LandmarkIDs   []int
	EstimatedPose geom.Pose
}

// Contains reports whether the observation includes the landmark id.
func (o Observation) Contains(id int) bool {
	for _, seen := range o.LandmarkIDs {
		if seen == id {
			return true
		}
	}
	return false
}

// Provider exposes the current control cycle's observation set.
// Implementations wrap the camera pipeline; a fresh set is expected
// every cycle and an empty set is a normal condition, not an error.
type Provider interface {
	Observations() []Observation
}

// Layout is the static landmark id to field pose lookup table for the
// current field.
type Layout map[int]geom.Pose

// Lookup returns the field pose of a landmark.
func (l Layout) Lookup(id int) (geom.Pose, bool) {
	pose, ok := l[id]
	return pose, ok
}

// layoutFile is the YAML schema for a landmark layout document.
type layoutFile struct {
	Version   int `yaml:"version"`
	Landmarks []struct {
		ID             int     `yaml:"id"`
		X              float64 `yaml:"x"`
		Y              float64 `yaml:"y"`
		HeadingDegrees float64 `yaml:"heading_degrees"`
	} `yaml:"landmarks"`
}

// LoadLayout reads a landmark layout from a YAML file.
func LoadLayout(path string) (Layout, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file layoutFile
	if err := yaml.Unmarshal(b, &file); err != nil {
		return nil, err
	}
	if file.Version != 1 {
		return nil, fmt.Errorf("unsupported landmark layout version: %d", file.Version)
	}

	layout := make(Layout, len(file.Landmarks))
	for _, lm := range file.Landmarks {
		layout[lm.ID] = geom.PoseFromDegrees(lm.X, lm.Y, lm.HeadingDegrees)
	}
	return layout, nil
}
