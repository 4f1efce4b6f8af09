// Package geom provides the planar geometry primitives shared by the
// autonomy core: field poses, rigid transforms, and chassis velocity
// commands.
//
// Conventions:
//   - Field frame: x forward, y left, heading counter-clockwise positive.
//   - All distances in meters, all angles in radians unless a function
//     name says otherwise.
package geom

import "math"

// Rotation is a planar heading. The zero value points along +x.
type Rotation struct {
	rad float64
}

// NewRotation creates a rotation from radians.
func NewRotation(radians float64) Rotation {
	return Rotation{rad: radians}
}

// RotationFromDegrees creates a rotation from degrees.
func RotationFromDegrees(degrees float64) Rotation {
	return Rotation{rad: degrees * math.Pi / 180.0}
}

// Radians returns the heading in radians.
func (r Rotation) Radians() float64 { return r.rad }

// Degrees returns the heading in degrees.
func (r Rotation) Degrees() float64 { return r.rad * 180.0 / math.Pi }

// Cos returns the cosine of the heading.
func (r Rotation) Cos() float64 { return math.Cos(r.rad) }

// Sin returns the sine of the heading.
func (r Rotation) Sin() float64 { return math.Sin(r.rad) }

// Plus composes two rotations.
func (r Rotation) Plus(other Rotation) Rotation {
	return Rotation{rad: r.rad + other.rad}
}

// Minus returns the shortest-path angular difference r - other,
// wrapped to (-pi, pi].
func (r Rotation) Minus(other Rotation) Rotation {
	return Rotation{rad: WrapAngle(r.rad - other.rad)}
}

// WrapAngle normalizes an angle to (-pi, pi].
func WrapAngle(radians float64) float64 {
	wrapped := math.Mod(radians+math.Pi, 2*math.Pi)
	if wrapped <= 0 {
		wrapped += 2 * math.Pi
	}
	return wrapped - math.Pi
}

// Translation is a planar displacement.
type Translation struct {
	X float64
	Y float64
}

// Plus adds two translations.
func (t Translation) Plus(other Translation) Translation {
	return Translation{X: t.X + other.X, Y: t.Y + other.Y}
}

// Minus subtracts other from t.
func (t Translation) Minus(other Translation) Translation {
	return Translation{X: t.X - other.X, Y: t.Y - other.Y}
}

// RotateBy rotates the translation by the given rotation.
func (t Translation) RotateBy(r Rotation) Translation {
	return Translation{
		X: t.X*r.Cos() - t.Y*r.Sin(),
		Y: t.X*r.Sin() + t.Y*r.Cos(),
	}
}

// Norm returns the Euclidean length of the translation.
func (t Translation) Norm() float64 {
	return math.Hypot(t.X, t.Y)
}

// Distance returns the Euclidean distance to another translation.
func (t Translation) Distance(other Translation) float64 {
	return t.Minus(other).Norm()
}

// Angle returns the direction of the translation as a rotation.
func (t Translation) Angle() Rotation {
	return NewRotation(math.Atan2(t.Y, t.X))
}

// Pose is a field-frame position plus heading.
type Pose struct {
	Translation Translation
	Rotation    Rotation
}

// NewPose creates a pose from coordinates and a heading in radians.
func NewPose(x, y, headingRadians float64) Pose {
	return Pose{
		Translation: Translation{X: x, Y: y},
		Rotation:    NewRotation(headingRadians),
	}
}

// PoseFromDegrees creates a pose with the heading given in degrees.
func PoseFromDegrees(x, y, headingDegrees float64) Pose {
	return Pose{
		Translation: Translation{X: x, Y: y},
		Rotation:    RotationFromDegrees(headingDegrees),
	}
}

// X returns the field x coordinate.
func (p Pose) X() float64 { return p.Translation.X }

// Y returns the field y coordinate.
func (p Pose) Y() float64 { return p.Translation.Y }

// TransformBy composes the pose with a transform expressed in the
// pose's own frame.
func (p Pose) TransformBy(t Transform) Pose {
	return Pose{
		Translation: p.Translation.Plus(t.Translation.RotateBy(p.Rotation)),
		Rotation:    p.Rotation.Plus(t.Rotation),
	}
}

// Minus returns the transform that, applied to other, yields p:
// other.TransformBy(p.Minus(other)) == p.
func (p Pose) Minus(other Pose) Transform {
	return Transform{
		Translation: p.Translation.Minus(other.Translation).RotateBy(NewRotation(-other.Rotation.Radians())),
		Rotation:    p.Rotation.Minus(other.Rotation),
	}
}

// Transform is a rigid displacement between two poses, expressed in the
// frame of the source pose.
type Transform struct {
	Translation Translation
	Rotation    Rotation
}

// NewTransform creates a transform from a displacement and rotation.
func NewTransform(x, y float64, rotation Rotation) Transform {
	return Transform{Translation: Translation{X: x, Y: y}, Rotation: rotation}
}

// ChassisSpeeds is a planar velocity command: linear components in
// meters per second and an angular rate in radians per second. Whether
// the components are field-relative or body-relative depends on
// context; FromFieldRelative converts between the two.
type ChassisSpeeds struct {
	VX    float64
	VY    float64
	Omega float64
}

// FromFieldRelative rotates a field-relative velocity command into the
// robot's body frame given the current heading.
func FromFieldRelative(field ChassisSpeeds, heading Rotation) ChassisSpeeds {
	rotated := Translation{X: field.VX, Y: field.VY}.RotateBy(NewRotation(-heading.Radians()))
	return ChassisSpeeds{VX: rotated.X, VY: rotated.Y, Omega: field.Omega}
}

// Clamp keeps value inside [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
