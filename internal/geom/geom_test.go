package geom

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestWrapAngle(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"zero", 0, 0},
		{"positive", math.Pi / 2, math.Pi / 2},
		{"just over pi", math.Pi + 0.1, -math.Pi + 0.1},
		{"just under minus pi", -math.Pi - 0.1, math.Pi - 0.1},
		{"full turn", 2 * math.Pi, 0},
		{"pi maps to pi", math.Pi, math.Pi},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := WrapAngle(tc.in)
			if math.Abs(got-tc.want) > eps {
				t.Errorf("WrapAngle(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestRotationMinusShortestPath(t *testing.T) {
	a := RotationFromDegrees(170)
	b := RotationFromDegrees(-170)
	diff := a.Minus(b)
	if math.Abs(diff.Degrees()-(-20)) > 1e-6 {
		t.Errorf("170 - (-170) should wrap to -20 degrees, got %v", diff.Degrees())
	}
}

func TestTranslationRotateBy(t *testing.T) {
	tr := Translation{X: 1, Y: 0}
	rotated := tr.RotateBy(RotationFromDegrees(90))
	if math.Abs(rotated.X) > eps || math.Abs(rotated.Y-1) > eps {
		t.Errorf("rotating (1,0) by 90 degrees = (%v,%v), want (0,1)", rotated.X, rotated.Y)
	}
}

func TestPoseTransformBy(t *testing.T) {
	// A transform applied to a rotated pose acts in the pose's own frame.
	pose := PoseFromDegrees(2, 3, 90)
	moved := pose.TransformBy(NewTransform(1, 0, NewRotation(0)))
	if math.Abs(moved.X()-2) > eps || math.Abs(moved.Y()-4) > eps {
		t.Errorf("transform along heading = (%v,%v), want (2,4)", moved.X(), moved.Y())
	}
	if math.Abs(moved.Rotation.Degrees()-90) > eps {
		t.Errorf("heading changed to %v, want 90", moved.Rotation.Degrees())
	}
}

func TestFromFieldRelative(t *testing.T) {
	// Robot facing +y: field +x velocity becomes body -y velocity.
	body := FromFieldRelative(ChassisSpeeds{VX: 1, VY: 0, Omega: 0.5}, RotationFromDegrees(90))
	if math.Abs(body.VX) > eps || math.Abs(body.VY-(-1)) > eps {
		t.Errorf("body speeds = (%v,%v), want (0,-1)", body.VX, body.VY)
	}
	if body.Omega != 0.5 {
		t.Errorf("omega should pass through, got %v", body.Omega)
	}
}

func TestTranslationAngle(t *testing.T) {
	angle := Translation{X: 0, Y: 2}.Angle()
	if math.Abs(angle.Degrees()-90) > eps {
		t.Errorf("angle of (0,2) = %v degrees, want 90", angle.Degrees())
	}
}
