package task

import (
	"math"
	"testing"

	"github.com/banyan-robotics/banyan/internal/geom"
)

func TestParseRoutine(t *testing.T) {
	data := []byte(`{
		"name": "Right Side 4 Piece",
		"startingPose": [7.2, 1.9, 180.0],
		"tasks": ["PICKUP:FEEDER_R", "SCORE:AUTO", "SCORE:E3"]
	}`)

	r, err := ParseRoutine(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if r.Name != "Right Side 4 Piece" {
		t.Errorf("name = %q", r.Name)
	}
	if len(r.Tasks) != 3 {
		t.Errorf("task count = %d, want 3", len(r.Tasks))
	}

	start := r.Start()
	if start.X() != 7.2 || start.Y() != 1.9 {
		t.Errorf("start = (%v,%v)", start.X(), start.Y())
	}
	if math.Abs(start.Rotation.Degrees()-180) > 1e-9 {
		t.Errorf("start heading = %v, want 180", start.Rotation.Degrees())
	}
}

func TestParseRoutineDefaultsPose(t *testing.T) {
	// Missing or malformed starting pose falls back to identity.
	cases := [][]byte{
		[]byte(`{"name": "NoPose", "tasks": ["DELAY:100"]}`),
		[]byte(`{"name": "ShortPose", "startingPose": [1.0], "tasks": ["DELAY:100"]}`),
	}
	for _, data := range cases {
		r, err := ParseRoutine(data)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if r.Start() != (geom.Pose{}) {
			t.Errorf("start = %v, want identity", r.Start())
		}
	}
}

func TestParseRoutineStructuralDefects(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"invalid json", []byte(`{`)},
		{"no tasks", []byte(`{"name": "Empty", "startingPose": [0,0,0]}`)},
		{"wrong task type", []byte(`{"name": "Bad", "tasks": [1,2]}`)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseRoutine(tc.data); err == nil {
				t.Error("expected load failure")
			}
		})
	}
}
