package vehicle

import (
	"math"
	"sort"
)

// TorquePoint is one sample of the engine calibration table.
type TorquePoint struct {
	RPM    float64 `json:"rpm"`
	Torque float64 `json:"torque"` // N·m
}

// TorqueCurve is an engine calibration table held sorted by ascending RPM.
// The zero value is an empty curve; every query on it returns 0.
type TorqueCurve struct {
	points []TorquePoint
}

// NewTorqueCurve builds a curve from calibration samples in any order.
// Duplicate RPM keys keep the last sample given.
func NewTorqueCurve(points []TorquePoint) TorqueCurve {
	if len(points) == 0 {
		return TorqueCurve{}
	}
	sorted := make([]TorquePoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RPM < sorted[j].RPM
	})
	out := sorted[:1]
	for _, pt := range sorted[1:] {
		if pt.RPM == out[len(out)-1].RPM {
			out[len(out)-1] = pt
			continue
		}
		out = append(out, pt)
	}
	return TorqueCurve{points: out}
}

// Len returns the number of calibration points.
func (c TorqueCurve) Len() int { return len(c.points) }

// Points returns a copy of the calibration table in ascending RPM order.
func (c TorqueCurve) Points() []TorquePoint {
	out := make([]TorquePoint, len(c.points))
	copy(out, c.points)
	return out
}

// TorqueAt returns the interpolated engine torque in N·m at the given RPM.
// Negative RPM is treated as 0. Outside the calibrated range the nearest
// endpoint torque is returned, and an empty curve always yields 0; the
// function is total and never fails mid-simulation.
func (c TorqueCurve) TorqueAt(rpm float64) float64 {
	if len(c.points) == 0 {
		return 0
	}
	if rpm < 0 {
		rpm = 0
	}
	first, last := c.points[0], c.points[len(c.points)-1]
	if rpm <= first.RPM {
		return first.Torque
	}
	if rpm >= last.RPM {
		return last.Torque
	}
	// First point at or above rpm; rpm is strictly inside the range here.
	hi := sort.Search(len(c.points), func(i int) bool {
		return c.points[i].RPM >= rpm
	})
	p1, p2 := c.points[hi-1], c.points[hi]
	frac := (rpm - p1.RPM) / (p2.RPM - p1.RPM)
	return p1.Torque + frac*(p2.Torque-p1.Torque)
}

// MaxPowerWatts returns the peak engine power across the calibration table,
// in watts. Empty curve yields 0.
func (c TorqueCurve) MaxPowerWatts() float64 {
	var max float64
	for _, pt := range c.points {
		if p := pt.Torque * pt.RPM * 2 * math.Pi / 60; p > max {
			max = p
		}
	}
	return max
}
