package task

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/banyan-robotics/banyan/internal/geom"
)

// DynamicLocation is the reserved location token marking a task whose
// real target is resolved at runtime rather than parse time.
const DynamicLocation = "AUTO"

// Parser converts routine tokens into tasks. Game-agnostic built-ins
// (DELAY, POSE) are always available; everything else resolves through
// the registry.
type Parser struct {
	registry *Registry
}

// NewParser creates a parser backed by the given registry.
func NewParser(registry *Registry) *Parser {
	return &Parser{registry: registry}
}

// Registry returns the underlying registry (for inspection).
func (p *Parser) Registry() *Registry {
	return p.registry
}

// Parse converts one token into a task.
func (p *Parser) Parse(token string) (Task, error) {
	action, _, _ := strings.Cut(token, ":")
	switch strings.ToUpper(strings.TrimSpace(action)) {
	case "DELAY":
		return parseDelay(token)
	case "POSE":
		return parsePose(token)
	}
	return p.registry.Create(token)
}

// ParseAll converts a token list into a task list. Fails atomically on
// the first unparsable token.
func (p *Parser) ParseAll(tokens []string) ([]Task, error) {
	tasks := make([]Task, 0, len(tokens))
	for _, token := range tokens {
		t, err := p.Parse(token)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// parseDelay handles "DELAY:milliseconds". The duration is stored in
// seconds on the resulting task.
func parseDelay(token string) (Task, error) {
	_, args, ok := strings.Cut(token, ":")
	if !ok {
		return Task{}, parseErrorf(token, "DELAY requires format DELAY:milliseconds")
	}

	millis, err := strconv.ParseFloat(strings.TrimSpace(args), 64)
	if err != nil {
		return Task{}, parseErrorf(token, "invalid delay duration %q", args)
	}

	seconds := millis / 1000.0
	t := New("DELAY", strconv.FormatFloat(seconds, 'f', -1, 64), geom.Pose{}, geom.Pose{}, NoLandmark)
	t.DelaySeconds = seconds
	return t, nil
}

// parsePose handles "POSE:x,y,headingDegrees". Approach and target
// pose are identical; the task needs no landmark.
func parsePose(token string) (Task, error) {
	_, args, ok := strings.Cut(token, ":")
	if !ok {
		return Task{}, parseErrorf(token, "POSE requires format POSE:x,y,theta")
	}

	coords := strings.Split(args, ",")
	if len(coords) != 3 {
		return Task{}, parseErrorf(token, "POSE requires exactly 3 coordinates, got %d", len(coords))
	}

	values := make([]float64, 3)
	for i, c := range coords {
		v, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil {
			return Task{}, parseErrorf(token, "invalid coordinate %q", c)
		}
		values[i] = v
	}

	pose := geom.PoseFromDegrees(values[0], values[1], values[2])
	location := fmt.Sprintf("%.2f,%.2f,%.1f", values[0], values[1], values[2])
	return New("POSE", location, pose, pose, NoLandmark), nil
}

// CalculateApproachPose positions an approach pose a fixed distance in
// front of the target, along the target's heading. With inverseHeading
// the approach comes from the opposite direction.
func CalculateApproachPose(target geom.Pose, offsetDistance float64, inverseHeading bool) geom.Pose {
	angle := target.Rotation.Radians()
	if inverseHeading {
		angle += math.Pi
	}

	// Offset backward along the heading so the approach sits in front
	// of the target.
	return geom.Pose{
		Translation: geom.Translation{
			X: target.X() - math.Cos(angle)*offsetDistance,
			Y: target.Y() - math.Sin(angle)*offsetDistance,
		},
		Rotation: target.Rotation,
	}
}

// IsDynamicToken reports whether a token's location is the reserved
// dynamic marker (e.g. "SCORE:AUTO").
func IsDynamicToken(token string) bool {
	_, location, ok := strings.Cut(token, ":")
	if !ok {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(location), DynamicLocation)
}

// SplitToken splits "ACTION:LOCATION" into its components.
func SplitToken(token string) (action, location string, ok bool) {
	action, location, ok = strings.Cut(token, ":")
	return strings.TrimSpace(action), strings.TrimSpace(location), ok
}
