// Package field holds the per-game configuration: named field
// locations with their landmark ids, the task registry wiring for the
// game's task kinds, and the game-specific execution context.
package field

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/banyan-robotics/banyan/internal/geom"
)

// Locations is the field-location lookup table queried by task
// factories at parse time. It is never consulted during execution.
type Locations interface {
	// Location returns the field pose of a named location.
	Location(name string) (geom.Pose, bool)

	// LandmarkID returns the landmark associated with a location,
	// if any.
	LandmarkID(name string) (int, bool)
}

// Table is a map-backed Locations implementation, built once at
// startup and read-only afterwards.
type Table struct {
	poses     map[string]geom.Pose
	landmarks map[string]int
}

// NewTable creates an empty location table.
func NewTable() *Table {
	return &Table{
		poses:     make(map[string]geom.Pose),
		landmarks: make(map[string]int),
	}
}

// Add registers a location. landmarkID may be -1 for locations with no
// associated landmark.
func (t *Table) Add(name string, pose geom.Pose, landmarkID int) {
	t.poses[name] = pose
	if landmarkID >= 0 {
		t.landmarks[name] = landmarkID
	}
}

// Location returns the field pose of a named location.
func (t *Table) Location(name string) (geom.Pose, bool) {
	pose, ok := t.poses[name]
	return pose, ok
}

// LandmarkID returns the landmark associated with a location.
func (t *Table) LandmarkID(name string) (int, bool) {
	id, ok := t.landmarks[name]
	return id, ok
}

// tableFile is the YAML schema for a field location document.
type tableFile struct {
	Version   int `yaml:"version"`
	Locations []struct {
		Name           string  `yaml:"name"`
		X              float64 `yaml:"x"`
		Y              float64 `yaml:"y"`
		HeadingDegrees float64 `yaml:"heading_degrees"`
		LandmarkID     *int    `yaml:"landmark_id"`
	} `yaml:"locations"`
}

// LoadTable reads a field location table from a YAML file.
func LoadTable(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file tableFile
	if err := yaml.Unmarshal(b, &file); err != nil {
		return nil, err
	}
	if file.Version != 1 {
		return nil, fmt.Errorf("unsupported field table version: %d", file.Version)
	}

	table := NewTable()
	for _, loc := range file.Locations {
		id := -1
		if loc.LandmarkID != nil {
			id = *loc.LandmarkID
		}
		table.Add(loc.Name, geom.PoseFromDegrees(loc.X, loc.Y, loc.HeadingDegrees), id)
	}
	return table, nil
}

// DefaultTable returns the built-in location table for the current
// season's field: grid scoring positions plus the two feeder stations.
func DefaultTable() *Table {
	table := NewTable()

	table.Add("E2", geom.PoseFromDegrees(4.99, 2.82, 120.0), 22)
	table.Add("E3", geom.PoseFromDegrees(4.99, 2.82, 120.0), 22)
	table.Add("F2", geom.PoseFromDegrees(5.28, 2.99, 120.0), 22)
	table.Add("F3", geom.PoseFromDegrees(5.28, 2.99, 120.0), 22)

	table.Add("FEEDER_L", geom.PoseFromDegrees(1.12, 7.02, 126.0), 13)
	table.Add("FEEDER_R", geom.PoseFromDegrees(1.12, 1.03, 234.0), 12)

	return table
}
