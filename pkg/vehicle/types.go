// Package vehicle is the powertrain decision layer of the simulator: torque
// curve interpolation, gear selection and configuration validation. Everything
// here is a pure read over an immutable Config; the package does no logging,
// no allocation on the per-timestep path, and is safe for concurrent use once
// a Config has been validated.
package vehicle

// MassParams describes the sprung mass and its distribution.
type MassParams struct {
	Mass               float64 // kg
	CoGHeight          float64 // centre of gravity height, m
	Wheelbase          float64 // m
	WeightDistribution float64 // front axle share, 0..1
}

// AeroParams describes the aerodynamic reference values.
type AeroParams struct {
	DragCoeff   float64 // dimensionless Cd
	FrontalArea float64 // m^2
	AirDensity  float64 // kg/m^3
}

// TireParams describes the tire grip model inputs.
type TireParams struct {
	MuX             float64 // longitudinal friction coefficient
	MuY             float64 // lateral friction coefficient
	Radius          float64 // rolling radius, m
	LoadSensitivity float64 // grip falloff with vertical load, 0..1.5
}

// PowertrainParams aggregates the engine calibration and transmission
// geometry consumed by gear selection.
type PowertrainParams struct {
	Torque     TorqueCurve
	GearRatios []float64 // index 0 = first gear, last = top gear
	FinalDrive float64
	Efficiency float64 // fraction of engine power reaching the wheels, (0,1]
	MinRPM     float64
	MaxRPM     float64
}

// BrakeParams describes the braking system limits.
type BrakeParams struct {
	MaxForce float64 // N
	Bias     float64 // front share, 0..1
}

// Config is a complete vehicle description. It is built once by a loader,
// passed through Validate exactly once, and treated as read-only afterwards.
type Config struct {
	Name       string
	Mass       MassParams
	Aero       AeroParams
	Tires      TireParams
	Powertrain PowertrainParams
	Brakes     BrakeParams
}

// GearCount returns the number of gears in the transmission.
func (c *Config) GearCount() int {
	return len(c.Powertrain.GearRatios)
}
