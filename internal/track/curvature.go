package track

import (
	"math"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/apexsim/apexsim/pkg/vehicle"
)

// Standard gravity in m/s^2.
const gravity = 9.80665

// collinearArea2 is the twice-area threshold below which three points
// count as a straight line.
const collinearArea2 = 1e-9

// Headings returns the direction of each centerline segment as radians
// from the +X axis in (-pi, pi]. A track with n vertices has n-1
// segments.
func (t *Track) Headings() []float64 {
	if len(t.points) < 2 {
		return nil
	}
	out := make([]float64, len(t.points)-1)
	for i := range out {
		dx := t.points[i+1].X - t.points[i].X
		dy := t.points[i+1].Y - t.points[i].Y
		out[i] = math.Atan2(dy, dx)
	}
	return out
}

// circumradius returns the radius of the circle through three points.
// Collinear points return +Inf.
func circumradius(a, b, c geom.XY) float64 {
	ab := math.Hypot(b.X-a.X, b.Y-a.Y)
	bc := math.Hypot(c.X-b.X, c.Y-b.Y)
	ca := math.Hypot(a.X-c.X, a.Y-c.Y)
	// Twice the triangle area, unsigned.
	area2 := math.Abs((b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X))
	if area2 < collinearArea2 {
		return math.Inf(1)
	}
	return ab * bc * ca / (2 * area2)
}

// CurvatureRadii estimates the corner radius at each vertex from the
// circle through it and its two neighbours. Endpoints and straights
// are +Inf.
func (t *Track) CurvatureRadii() []float64 {
	out := make([]float64, len(t.points))
	for i := range out {
		out[i] = math.Inf(1)
	}
	for i := 1; i < len(t.points)-1; i++ {
		out[i] = circumradius(t.points[i-1], t.points[i], t.points[i+1])
	}
	return out
}

// CornerSpeed is the theoretical steady-state cornering speed in m/s
// for a corner radius and lateral friction coefficient. Load transfer
// and aero are ignored.
func CornerSpeed(radius, muY float64) float64 {
	if math.IsInf(radius, 1) {
		return math.Inf(1)
	}
	if radius <= 0 || muY <= 0 {
		return 0
	}
	return math.Sqrt(muY * gravity * radius)
}

// CornerSpeeds returns the per-vertex theoretical corner speed for the
// given tires.
func (t *Track) CornerSpeeds(tires vehicle.TireParams) []float64 {
	radii := t.CurvatureRadii()
	out := make([]float64, len(radii))
	for i, r := range radii {
		out[i] = CornerSpeed(r, tires.MuY)
	}
	return out
}

// Corner describes the tightest point of a lap.
type Corner struct {
	Index  int
	Radius float64
	Speed  float64
}

// SlowestCorner finds the vertex with the lowest theoretical corner
// speed for the given tires. ok is false when every vertex sits on a
// straight.
func (t *Track) SlowestCorner(tires vehicle.TireParams) (Corner, bool) {
	best := Corner{Index: -1, Radius: math.Inf(1), Speed: math.Inf(1)}
	for i, r := range t.CurvatureRadii() {
		speed := CornerSpeed(r, tires.MuY)
		if speed < best.Speed {
			best = Corner{Index: i, Radius: r, Speed: speed}
		}
	}
	if best.Index < 0 {
		return Corner{}, false
	}
	return best, true
}
