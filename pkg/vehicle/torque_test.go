package vehicle

import (
	"math"
	"testing"
)

func testCurve() TorqueCurve {
	return NewTorqueCurve([]TorquePoint{
		{RPM: 1000, Torque: 100},
		{RPM: 5000, Torque: 200},
		{RPM: 9000, Torque: 150},
	})
}

func TestTorqueAt_BelowCalibratedRange(t *testing.T) {
	got := testCurve().TorqueAt(500)
	if got != 100 {
		t.Errorf("expected flat extrapolation to 100, got %f", got)
	}
}

func TestTorqueAt_AboveCalibratedRange(t *testing.T) {
	got := testCurve().TorqueAt(9500)
	if got != 150 {
		t.Errorf("expected flat extrapolation to 150, got %f", got)
	}
}

func TestTorqueAt_SegmentMidpoint(t *testing.T) {
	// Midpoint of the 1000-5000 segment: 100 + 0.5*100.
	got := testCurve().TorqueAt(3000)
	if got != 150 {
		t.Errorf("expected 150 at midpoint, got %f", got)
	}
}

func TestTorqueAt_InterpolationInsideSegment(t *testing.T) {
	// Quarter of the way through the 1000-5000 segment.
	got := testCurve().TorqueAt(2000)
	if got != 125 {
		t.Errorf("expected 125, got %f", got)
	}
}

func TestTorqueAt_ExactCalibrationPoints(t *testing.T) {
	c := testCurve()
	cases := []struct {
		rpm  float64
		want float64
	}{
		{1000, 100},
		{5000, 200},
		{9000, 150},
	}
	for _, tc := range cases {
		if got := c.TorqueAt(tc.rpm); got != tc.want {
			t.Errorf("TorqueAt(%f): expected %f, got %f", tc.rpm, tc.want, got)
		}
	}
}

func TestTorqueAt_NegativeRPMClampedToZero(t *testing.T) {
	got := testCurve().TorqueAt(-2000)
	if got != 100 {
		t.Errorf("expected negative RPM to behave like 0, got %f", got)
	}
}

func TestTorqueAt_EmptyCurve(t *testing.T) {
	var c TorqueCurve
	for _, rpm := range []float64{-100, 0, 3000, 1e9} {
		if got := c.TorqueAt(rpm); got != 0 {
			t.Errorf("TorqueAt(%f) on empty curve: expected 0, got %f", rpm, got)
		}
	}
}

func TestTorqueAt_SinglePoint(t *testing.T) {
	c := NewTorqueCurve([]TorquePoint{{RPM: 4000, Torque: 180}})
	for _, rpm := range []float64{0, 4000, 12000} {
		if got := c.TorqueAt(rpm); got != 180 {
			t.Errorf("TorqueAt(%f): expected 180, got %f", rpm, got)
		}
	}
}

func TestNewTorqueCurve_SortsInput(t *testing.T) {
	c := NewTorqueCurve([]TorquePoint{
		{RPM: 9000, Torque: 150},
		{RPM: 1000, Torque: 100},
		{RPM: 5000, Torque: 200},
	})
	pts := c.Points()
	if len(pts) != 3 {
		t.Fatalf("expected 3 points, got %d", len(pts))
	}
	for i := 1; i < len(pts); i++ {
		if pts[i-1].RPM >= pts[i].RPM {
			t.Errorf("points not strictly ascending at index %d: %f >= %f", i, pts[i-1].RPM, pts[i].RPM)
		}
	}
	if got := c.TorqueAt(3000); got != 150 {
		t.Errorf("expected interpolation over sorted points to give 150, got %f", got)
	}
}

func TestNewTorqueCurve_DuplicateRPMKeepsLast(t *testing.T) {
	c := NewTorqueCurve([]TorquePoint{
		{RPM: 3000, Torque: 120},
		{RPM: 3000, Torque: 140},
	})
	if c.Len() != 1 {
		t.Fatalf("expected duplicates collapsed to 1 point, got %d", c.Len())
	}
	if got := c.TorqueAt(3000); got != 140 {
		t.Errorf("expected last duplicate to win, got %f", got)
	}
}

func TestNewTorqueCurve_DoesNotAliasInput(t *testing.T) {
	in := []TorquePoint{
		{RPM: 2000, Torque: 90},
		{RPM: 1000, Torque: 80},
	}
	c := NewTorqueCurve(in)
	in[0].Torque = -1
	in[1].Torque = -1
	if got := c.TorqueAt(1000); got != 80 {
		t.Errorf("curve aliased caller slice: expected 80, got %f", got)
	}
}

func TestMaxPowerWatts_PeakNotAtTorquePeak(t *testing.T) {
	// Torque peaks at 5000 RPM but power peaks at 9000 RPM.
	got := testCurve().MaxPowerWatts()
	want := 150 * 9000 * 2 * math.Pi / 60
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected peak power %f, got %f", want, got)
	}
}

func TestMaxPowerWatts_EmptyCurve(t *testing.T) {
	var c TorqueCurve
	if got := c.MaxPowerWatts(); got != 0 {
		t.Errorf("expected 0 for empty curve, got %f", got)
	}
}
