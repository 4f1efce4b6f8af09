package teleop

import (
	"math"
	"testing"
	"time"

	"github.com/banyan-robotics/banyan/internal/geom"
	"github.com/banyan-robotics/banyan/internal/vision"
)

type fakeDrive struct {
	pose       geom.Pose
	lastSpeeds geom.ChassisSpeeds
	stops      int
}

func (d *fakeDrive) Pose() geom.Pose { return d.pose }

func (d *fakeDrive) RunVelocity(s geom.ChassisSpeeds) { d.lastSpeeds = s }

func (d *fakeDrive) Stop() {
	d.stops++
	d.lastSpeeds = geom.ChassisSpeeds{}
}

type fakeProvider struct {
	observations []vision.Observation
}

func (p *fakeProvider) Observations() []vision.Observation { return p.observations }

func (p *fakeProvider) see(id int) {
	p.observations = []vision.Observation{{LandmarkIDs: []int{id}}}
}

func (p *fakeProvider) blind() { p.observations = nil }

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type rig struct {
	sup      *Supervisor
	drive    *fakeDrive
	provider *fakeProvider
	clock    *fakeClock
	stick    geom.ChassisSpeeds
}

const testLandmark = 22

func newRig(t *testing.T) *rig {
	t.Helper()
	r := &rig{
		drive:    &fakeDrive{pose: geom.PoseFromDegrees(3.0, 3.0, 0.0)},
		provider: &fakeProvider{},
		clock:    &fakeClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)},
	}
	layout := vision.Layout{testLandmark: geom.PoseFromDegrees(5.5, 3.2, -60.0)}
	aligner := vision.NewAligner(vision.DefaultAlignerConfig(), r.drive, r.provider, layout)

	r.sup = NewSupervisor(DefaultConfig(), Deps{
		Drivetrain: r.drive,
		Input:      InputFunc(func() geom.ChassisSpeeds { return r.stick }),
		Provider:   r.provider,
		Layout:     layout,
		Aligner:    aligner,
		Clock:      r.clock,
	})
	return r
}

func (r *rig) step(t *testing.T, want State) {
	t.Helper()
	r.sup.Periodic()
	if got := r.sup.CurrentState(); got != want {
		t.Fatalf("after periodic: state = %s, want %s", got, want)
	}
}

func TestSupervisorManualPassesThroughDriverInput(t *testing.T) {
	r := newRig(t)
	r.stick = geom.ChassisSpeeds{VX: 1.2, VY: -0.3, Omega: 0.5}

	r.step(t, StateManual)
	if r.drive.lastSpeeds != r.stick {
		t.Fatalf("speeds = %+v, want driver input %+v", r.drive.lastSpeeds, r.stick)
	}
}

func TestSupervisorLossTimeoutEntersSearchingThenRecoversToAligning(t *testing.T) {
	r := newRig(t)
	offset := geom.NewTransform(-0.6, 0, geom.RotationFromDegrees(180))

	// Visible from the start: supervisor aligns and commands motion.
	r.provider.see(testLandmark)
	r.sup.StartAlignment(testLandmark, offset)
	r.step(t, StateAligning)
	r.step(t, StateAligning)
	if r.drive.lastSpeeds == (geom.ChassisSpeeds{}) {
		t.Fatal("no motion while aligning off target")
	}

	// Lost inside the grace period: state holds, robot stops.
	r.provider.blind()
	r.clock.advance(100 * time.Millisecond)
	r.step(t, StateAligning)
	if r.drive.lastSpeeds != (geom.ChassisSpeeds{}) {
		t.Fatalf("speeds not zeroed during loss grace period: %+v", r.drive.lastSpeeds)
	}

	// Past the timeout: searching, rotating toward the last bearing.
	r.clock.advance(DefaultConfig().LossTimeout)
	r.step(t, StateSearching)
	if r.drive.lastSpeeds.Omega == 0 {
		t.Fatal("searching without rotation")
	}
	if r.drive.lastSpeeds.VX != 0 || r.drive.lastSpeeds.VY != 0 {
		t.Fatalf("searching with translation: %+v", r.drive.lastSpeeds)
	}

	// Reacquired: straight back to aligning.
	r.provider.see(testLandmark)
	r.step(t, StateAligning)
	r.step(t, StateAligning)
	if r.drive.lastSpeeds == (geom.ChassisSpeeds{}) {
		t.Fatal("no motion after reacquiring the landmark")
	}
}

func TestSupervisorSearchRotatesTowardLastKnownBearing(t *testing.T) {
	r := newRig(t)
	cfg := DefaultConfig()

	// Landmark at (5.5, 3.2) from (3.0, 3.0): bearing slightly above
	// +x. Seen once, then lost, with the heading pointed well away.
	r.provider.see(testLandmark)
	r.sup.StartAiming(testLandmark)
	r.step(t, StateAiming)

	r.provider.blind()
	r.drive.pose = geom.PoseFromDegrees(3.0, 3.0, 170.0)
	r.clock.advance(cfg.LossTimeout + time.Millisecond)
	r.step(t, StateSearching)

	// Bearing error is large and negative, so the clamped P output
	// saturates at the search rate toward the target.
	if got := r.drive.lastSpeeds.Omega; math.Abs(got+cfg.SearchRate) > 1e-9 {
		t.Fatalf("search omega = %v, want %v", got, -cfg.SearchRate)
	}
}

func TestSupervisorSearchWithoutBearingRotatesConstantly(t *testing.T) {
	r := newRig(t)
	cfg := DefaultConfig()

	// Never seen: the grace period expires without a bearing.
	r.sup.StartAlignment(testLandmark, geom.Transform{})
	r.clock.advance(cfg.LossTimeout + time.Millisecond)
	r.step(t, StateSearching)

	if got := r.drive.lastSpeeds.Omega; got != cfg.SearchRate {
		t.Fatalf("blind search omega = %v, want constant %v", got, cfg.SearchRate)
	}
}

func TestSupervisorAimingIsRotationOnlyAndReportsAimed(t *testing.T) {
	r := newRig(t)

	r.provider.see(testLandmark)
	r.sup.StartAiming(testLandmark)
	r.stick = geom.ChassisSpeeds{VX: 2.0}

	r.step(t, StateAiming)
	if r.drive.lastSpeeds.VX != 0 || r.drive.lastSpeeds.VY != 0 {
		t.Fatalf("aiming commanded translation: %+v", r.drive.lastSpeeds)
	}
	if r.drive.lastSpeeds.Omega == 0 {
		t.Fatal("aiming commanded no rotation despite heading error")
	}
	if r.sup.IsAimed() {
		t.Fatal("IsAimed true with heading well off the bearing")
	}

	// Point the heading straight at the landmark.
	bearing := geom.Translation{X: 5.5, Y: 3.2}.Minus(geom.Translation{X: 3.0, Y: 3.0}).Angle()
	r.drive.pose = geom.Pose{Translation: r.drive.pose.Translation, Rotation: bearing}
	r.step(t, StateAiming)
	if !r.sup.IsAimed() {
		t.Fatal("IsAimed false with heading on the bearing")
	}
}

func TestSupervisorSnapKeepsDriverTranslation(t *testing.T) {
	r := newRig(t)

	r.provider.see(testLandmark)
	r.sup.ToggleSnapToTarget(testLandmark)
	r.stick = geom.ChassisSpeeds{VX: 1.5, VY: 0.4, Omega: 0.9}

	r.step(t, StateSnapToTarget)
	if r.drive.lastSpeeds.VX != 1.5 || r.drive.lastSpeeds.VY != 0.4 {
		t.Fatalf("snap dropped driver translation: %+v", r.drive.lastSpeeds)
	}
	if r.drive.lastSpeeds.Omega == r.stick.Omega {
		t.Fatal("snap left the driver's rotation in place of the snap command")
	}

	// Second toggle returns to manual.
	r.sup.ToggleSnapToTarget(testLandmark)
	r.step(t, StateManual)
	if r.drive.lastSpeeds != r.stick {
		t.Fatalf("manual speeds = %+v, want driver input", r.drive.lastSpeeds)
	}
}

func TestSupervisorSnapRidesOutLandmarkLoss(t *testing.T) {
	r := newRig(t)
	cfg := DefaultConfig()

	r.provider.see(testLandmark)
	r.sup.ToggleSnapToTarget(testLandmark)
	r.step(t, StateSnapToTarget)

	// Loss past the timeout must not demote snap: the driver keeps
	// translation while the heading holds the last known bearing.
	r.provider.blind()
	r.clock.advance(cfg.LossTimeout + time.Millisecond)
	r.stick = geom.ChassisSpeeds{VX: 1.0, VY: -0.5}
	r.step(t, StateSnapToTarget)

	if r.drive.lastSpeeds.VX != 1.0 || r.drive.lastSpeeds.VY != -0.5 {
		t.Fatalf("driver translation lost after landmark loss: %+v", r.drive.lastSpeeds)
	}
	if r.drive.lastSpeeds.Omega == 0 {
		t.Fatal("snap stopped steering toward the last known bearing")
	}
}

func TestSupervisorTimesOutOnLandmarkMissingFromLayout(t *testing.T) {
	r := newRig(t)
	cfg := DefaultConfig()

	// Sighted constantly, but with no field pose the aligner can use.
	// The sightings must not hold off the loss timeout.
	r.provider.see(99)
	r.sup.StartAlignment(99, geom.Transform{})
	r.step(t, StateAligning)
	if r.drive.lastSpeeds != (geom.ChassisSpeeds{}) {
		t.Fatalf("moved toward a landmark with no field pose: %+v", r.drive.lastSpeeds)
	}

	r.clock.advance(cfg.LossTimeout + time.Millisecond)
	r.step(t, StateSearching)
	if got := r.drive.lastSpeeds.Omega; got != cfg.SearchRate {
		t.Fatalf("search omega = %v, want constant %v", got, cfg.SearchRate)
	}
}

func TestSupervisorStopHaltsUntilNewMode(t *testing.T) {
	r := newRig(t)
	r.stick = geom.ChassisSpeeds{VX: 1.0}

	r.step(t, StateManual)
	r.sup.Stop()
	r.step(t, StateStopped)
	if r.drive.lastSpeeds != (geom.ChassisSpeeds{}) {
		t.Fatalf("speeds after stop: %+v", r.drive.lastSpeeds)
	}

	r.sup.SetManual()
	r.step(t, StateManual)
	if r.drive.lastSpeeds != r.stick {
		t.Fatal("manual input not restored after stop")
	}
}

func TestSupervisorAlignmentConverges(t *testing.T) {
	r := newRig(t)
	cfg := vision.DefaultAlignerConfig()
	target := geom.PoseFromDegrees(5.5, 3.2, -60.0).TransformBy(
		geom.NewTransform(-0.6, 0, geom.RotationFromDegrees(180)))

	r.provider.see(testLandmark)
	r.sup.StartAlignment(testLandmark, geom.NewTransform(-0.6, 0, geom.RotationFromDegrees(180)))

	for cycle := 0; cycle < 800; cycle++ {
		r.sup.Periodic()
		// Integrate the body-frame command back into the field pose.
		field := geom.Translation{X: r.drive.lastSpeeds.VX, Y: r.drive.lastSpeeds.VY}.
			RotateBy(r.drive.pose.Rotation)
		r.drive.pose = geom.Pose{
			Translation: r.drive.pose.Translation.Plus(
				geom.Translation{X: field.X * cfg.Period, Y: field.Y * cfg.Period}),
			Rotation: geom.NewRotation(r.drive.pose.Rotation.Radians() +
				r.drive.lastSpeeds.Omega*cfg.Period),
		}
		if r.sup.IsAligned() {
			break
		}
	}

	if !r.sup.IsAligned() {
		t.Fatal("alignment did not converge")
	}
	if d := r.drive.pose.Translation.Distance(target.Translation); d > cfg.PositionTolerance {
		t.Fatalf("final position error %v exceeds tolerance", d)
	}
}
