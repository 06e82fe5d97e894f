package vehicle

import "math"

// MaxGears bounds the stack scratch used by OptimalGear. Transmissions with
// more gears still work, they just cost one heap allocation per call.
const MaxGears = 12

// standstillSpeed is the velocity floor below which gear selection is
// meaningless and first gear is returned.
const standstillSpeed = 0.1 // m/s

// Optimal engine band as fractions of MaxRPM.
const (
	optimalBandLow  = 0.70
	optimalBandHigh = 0.90
)

// OptimalGear picks the transmission gear for the given road speed, returned
// as a 1-based index into GearRatios. The function is total: any finite input
// yields a gear in [1, len(GearRatios)].
//
// targetRPM is an optional hint. When it lies inside [MinRPM, MaxRPM] it
// replaces the default 70%-of-max floor of the optimal band (capped at 90% of
// max); zero or an out-of-range hint keeps the default band. The hint never
// widens the hard [MinRPM, MaxRPM] safety range.
//
// Selection runs three strategies, each a total fallback for the previous:
// tallest gear inside the optimal band, then tallest gear inside the safe
// range, then damage control. Under damage control an over-revving vehicle
// gets the top gear (lowest RPM available) rather than defaulting to first,
// a lugging vehicle gets first gear, and a mixed situation gets the gear
// closest to the band floor with ties kept on the lower gear.
func (p PowertrainParams) OptimalGear(velocity, tireRadius, targetRPM float64) int {
	n := len(p.GearRatios)
	if n == 0 || tireRadius <= 0 || velocity <= standstillSpeed {
		return 1
	}

	var scratch [MaxGears]float64
	rpms := scratch[:0]
	if n > MaxGears {
		rpms = make([]float64, 0, n)
	}
	wheelSpeed := velocity / tireRadius // rad/s
	for _, ratio := range p.GearRatios {
		rpms = append(rpms, wheelSpeed*ratio*p.FinalDrive*60/(2*math.Pi))
	}

	optimalLow := optimalBandLow * p.MaxRPM
	if targetRPM >= p.MinRPM && targetRPM <= p.MaxRPM {
		optimalLow = math.Min(targetRPM, optimalBandHigh*p.MaxRPM)
	}

	// Tallest gear already in the power band.
	for i := n - 1; i >= 0; i-- {
		if rpms[i] >= optimalLow && rpms[i] <= p.MaxRPM {
			return i + 1
		}
	}

	// Tallest gear inside the safe operating range.
	for i := n - 1; i >= 0; i-- {
		if rpms[i] >= p.MinRPM && rpms[i] <= p.MaxRPM {
			return i + 1
		}
	}

	// No gear is safe; every RPM is outside [MinRPM, MaxRPM].
	allHigh, allLow := true, true
	for _, rpm := range rpms {
		if rpm <= p.MaxRPM {
			allHigh = false
		}
		if rpm >= p.MinRPM {
			allLow = false
		}
	}
	if allHigh {
		return n // top gear minimises RPM
	}
	if allLow {
		return 1 // first gear maximises RPM
	}

	// Mixed over- and under-rev: closest to the band floor. The scan keeps
	// the first strictly smaller distance, so exact ties stay on the lower
	// gear.
	best := 0
	bestDist := math.Abs(rpms[0] - optimalLow)
	for i := 1; i < n; i++ {
		if d := math.Abs(rpms[i] - optimalLow); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best + 1
}

// GearRPM returns the engine RPM the given 1-based gear would produce at the
// given road speed, or 0 for an out-of-range gear or non-positive radius.
func (p PowertrainParams) GearRPM(gear int, velocity, tireRadius float64) float64 {
	if gear < 1 || gear > len(p.GearRatios) || tireRadius <= 0 {
		return 0
	}
	return velocity / tireRadius * p.GearRatios[gear-1] * p.FinalDrive * 60 / (2 * math.Pi)
}
