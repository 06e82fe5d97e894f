package vehicle

import "testing"

// testPowertrain mirrors a long-ratio competition gearbox: top gear cruises
// in the power band around 55 m/s with maxRPM 7500.
func testPowertrain() PowertrainParams {
	return PowertrainParams{
		Torque:     testCurve(),
		GearRatios: []float64{3.5, 1.3, 0.9},
		FinalDrive: 4.0,
		Efficiency: 0.9,
		MinRPM:     900,
		MaxRPM:     7500,
	}
}

func TestOptimalGear_EmptyRatioTable(t *testing.T) {
	p := testPowertrain()
	p.GearRatios = nil
	if got := p.OptimalGear(30, 0.33, 0); got != 1 {
		t.Errorf("expected gear 1 for empty table, got %d", got)
	}
}

func TestOptimalGear_InvalidTireRadius(t *testing.T) {
	p := testPowertrain()
	if got := p.OptimalGear(30, 0, 0); got != 1 {
		t.Errorf("expected gear 1 for zero radius, got %d", got)
	}
	if got := p.OptimalGear(30, -0.3, 0); got != 1 {
		t.Errorf("expected gear 1 for negative radius, got %d", got)
	}
}

func TestOptimalGear_Standstill(t *testing.T) {
	p := testPowertrain()
	if got := p.OptimalGear(0.05, 0.33, 0); got != 1 {
		t.Errorf("expected gear 1 at standstill, got %d", got)
	}
	if got := p.OptimalGear(0.1, 0.33, 0); got != 1 {
		t.Errorf("expected gear 1 at the 0.1 m/s threshold, got %d", got)
	}
}

func TestOptimalGear_HighSpeedSelectsTopGear(t *testing.T) {
	// At 300 km/h every shorter gear over-revs past 15000; only the top
	// gear keeps the engine usable.
	p := PowertrainParams{
		GearRatios: []float64{13.0, 10.2, 8.3, 6.8, 5.7, 4.9, 4.2, 3.7},
		FinalDrive: 1.0,
		MinRPM:     5000,
		MaxRPM:     15000,
	}
	if got := p.OptimalGear(83.33, 0.22, 0); got != 8 {
		t.Errorf("expected gear 8, got %d", got)
	}
}

func TestOptimalGear_AllOverRevReturnsTopGear(t *testing.T) {
	// Faster still: even top gear exceeds maxRPM. Damage control must pick
	// the top gear, never fall back to first.
	p := PowertrainParams{
		GearRatios: []float64{13.0, 10.2, 8.3, 6.8, 5.7, 4.9, 4.2, 3.7},
		FinalDrive: 1.0,
		MinRPM:     5000,
		MaxRPM:     15000,
	}
	if got := p.OptimalGear(120, 0.22, 0); got != 8 {
		t.Errorf("expected top gear under total over-rev, got %d", got)
	}
}

func TestOptimalGear_AllLuggingReturnsFirstGear(t *testing.T) {
	// Crawling speed: even first gear sits below minRPM.
	p := PowertrainParams{
		GearRatios: []float64{13.0, 10.2, 8.3, 6.8, 5.7, 4.9, 4.2, 3.7},
		FinalDrive: 1.0,
		MinRPM:     5000,
		MaxRPM:     15000,
	}
	if got := p.OptimalGear(2, 0.22, 0); got != 1 {
		t.Errorf("expected gear 1 under lugging, got %d", got)
	}
}

func TestOptimalGear_OptimalBandPreferred(t *testing.T) {
	// 45 m/s: the top gear falls short of the band floor and is merely
	// valid, gear 2 sits inside the band. Gear 2 wins.
	p := testPowertrain()
	if got := p.OptimalGear(45, 0.33, 0); got != 2 {
		t.Errorf("expected gear 2 in the power band, got %d", got)
	}
}

func TestOptimalGear_TallestBandGearWins(t *testing.T) {
	// Close-ratio box where two gears land inside the band at 50 m/s; the
	// taller one wins.
	p := PowertrainParams{
		GearRatios: []float64{1.2, 1.0},
		FinalDrive: 4.0,
		MinRPM:     900,
		MaxRPM:     7500,
	}
	if got := p.OptimalGear(50, 0.33, 0); got != 2 {
		t.Errorf("expected the tallest in-band gear 2, got %d", got)
	}
}

func TestOptimalGear_ValidRangeFallback(t *testing.T) {
	// 30 m/s: first gear over-revs, gears 2 and 3 sit below the band floor
	// but inside the safe range. The tallest valid gear wins.
	p := testPowertrain()
	if got := p.OptimalGear(30, 0.33, 0); got != 3 {
		t.Errorf("expected tallest valid gear 3, got %d", got)
	}
}

func TestOptimalGear_MixedFallbackPicksClosestToBand(t *testing.T) {
	// First gear over-revs, second lugs; neither is valid. The gear whose
	// RPM lands closest to the band floor wins.
	p := PowertrainParams{
		GearRatios: []float64{10.0, 0.5},
		FinalDrive: 4.0,
		MinRPM:     900,
		MaxRPM:     7500,
	}
	if got := p.OptimalGear(10, 0.33, 0); got != 2 {
		t.Errorf("expected gear 2 (closest to band floor), got %d", got)
	}
}

func TestOptimalGear_MixedFallbackTieKeepsLowerGear(t *testing.T) {
	// Gears 1 and 2 share a ratio, so their distances to the band floor are
	// bitwise identical; the tie must stay on the lower gear.
	p := PowertrainParams{
		GearRatios: []float64{5.0, 5.0, 0.1},
		FinalDrive: 4.0,
		MinRPM:     900,
		MaxRPM:     7500,
	}
	if got := p.OptimalGear(15, 0.33, 0); got != 1 {
		t.Errorf("expected tie to keep gear 1, got %d", got)
	}
}

func TestOptimalGear_TargetRPMLowersBandFloor(t *testing.T) {
	// Default band floor 5250 rejects the top gear at 40 m/s; a 4000 RPM
	// hint admits it.
	p := testPowertrain()
	if got := p.OptimalGear(40, 0.33, 4000); got != 3 {
		t.Errorf("expected hint to admit gear 3, got %d", got)
	}
}

func TestOptimalGear_TargetRPMCappedAtNinetyPercent(t *testing.T) {
	// A hint just under maxRPM is capped at 90% of max, so gear 2 at about
	// 7000 RPM still counts as in-band at 46.5 m/s.
	p := testPowertrain()
	if got := p.OptimalGear(46.5, 0.33, 7400); got != 2 {
		t.Errorf("expected capped hint to keep gear 2 in band, got %d", got)
	}
}

func TestOptimalGear_TargetRPMOutOfRangeIgnored(t *testing.T) {
	p := testPowertrain()
	want := p.OptimalGear(40, 0.33, 0)
	for _, hint := range []float64{-500, 100, 16000} {
		if got := p.OptimalGear(40, 0.33, hint); got != want {
			t.Errorf("hint %f: expected default selection %d, got %d", hint, want, got)
		}
	}
}

func TestOptimalGear_MoreGearsThanScratch(t *testing.T) {
	// Fourteen gears exceeds the stack scratch; selection must still work.
	p := PowertrainParams{
		GearRatios: []float64{13, 12, 11, 10, 9, 8, 7, 6, 5, 4.5, 4.2, 4.0, 3.9, 0.9},
		FinalDrive: 4.0,
		MinRPM:     900,
		MaxRPM:     7500,
	}
	if got := p.OptimalGear(55, 0.33, 0); got != 14 {
		t.Errorf("expected gear 14, got %d", got)
	}
}

func TestOptimalGear_AlwaysInRange(t *testing.T) {
	tables := [][]float64{
		{3.2},
		{3.5, 1.3, 0.9},
		{13.0, 10.2, 8.3, 6.8, 5.7, 4.9, 4.2, 3.7},
		{2.0, 2.5, 1.5}, // out of order on purpose
	}
	velocities := []float64{0.2, 1, 5, 20, 55, 83.33, 150, 400}
	hints := []float64{0, 3000, 9999}
	for _, ratios := range tables {
		p := PowertrainParams{
			GearRatios: ratios,
			FinalDrive: 4.0,
			MinRPM:     900,
			MaxRPM:     7500,
		}
		for _, v := range velocities {
			for _, hint := range hints {
				got := p.OptimalGear(v, 0.33, hint)
				if got < 1 || got > len(ratios) {
					t.Fatalf("OptimalGear(%f, 0.33, %f) with %d gears out of range: %d", v, hint, len(ratios), got)
				}
			}
		}
	}
}

func TestGearRPM_MatchesSelectionArithmetic(t *testing.T) {
	p := testPowertrain()
	// 55 m/s in gear 3: 55/0.33 * 0.9 * 4.0 * 60/(2*pi) ~= 5729 RPM.
	got := p.GearRPM(3, 55, 0.33)
	if got < 5728 || got > 5731 {
		t.Errorf("expected about 5729 RPM, got %f", got)
	}
}

func TestGearRPM_InvalidInputs(t *testing.T) {
	p := testPowertrain()
	if got := p.GearRPM(0, 55, 0.33); got != 0 {
		t.Errorf("expected 0 for gear 0, got %f", got)
	}
	if got := p.GearRPM(4, 55, 0.33); got != 0 {
		t.Errorf("expected 0 for gear beyond table, got %f", got)
	}
	if got := p.GearRPM(1, 55, 0); got != 0 {
		t.Errorf("expected 0 for zero radius, got %f", got)
	}
}
