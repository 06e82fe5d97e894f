// Package util provides small helpers shared across the simulator tooling.
package util

import (
	"fmt"
	"os"
)

// EnsureDir creates dir (and parents) if it does not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return nil
}

// MPSToKPH converts metres per second to kilometres per hour.
func MPSToKPH(mps float64) float64 {
	return mps * 3.6
}

// KPHToMPS converts kilometres per hour to metres per second.
func KPHToMPS(kph float64) float64 {
	return kph / 3.6
}

// FormatSpeed renders a speed in m/s as "x.x m/s (y.y km/h)" for CLI output.
func FormatSpeed(mps float64) string {
	return fmt.Sprintf("%.1f m/s (%.1f km/h)", mps, MPSToKPH(mps))
}
