// Package garage loads vehicle description files and keeps the loaded fleet
// available to the command layer. It is the external collaborator that feeds
// populated configurations to the core decision layer; nothing here validates
// physics, that stays with vehicle.Validate.
package garage

import "github.com/apexsim/apexsim/pkg/vehicle"

// VehicleFile is the on-disk JSON shape of a vehicle description.
// Field names follow the configuration vocabulary used by the simulator's
// documentation (snake_case, SI units).
type VehicleFile struct {
	Name string `json:"name"`

	Mass               float64 `json:"mass"`                // kg
	CoGHeight          float64 `json:"cog_height"`          // m
	Wheelbase          float64 `json:"wheelbase"`           // m
	WeightDistribution float64 `json:"weight_distribution"` // front axle share

	DragCoefficient float64 `json:"drag_coefficient"`
	FrontalArea     float64 `json:"frontal_area"` // m^2
	AirDensity      float64 `json:"air_density"`  // kg/m^3

	MuX             float64 `json:"mu_x"`
	MuY             float64 `json:"mu_y"`
	TireRadius      float64 `json:"tire_radius"` // m
	LoadSensitivity float64 `json:"load_sensitivity"`

	TorqueCurve          []vehicle.TorquePoint `json:"torque_curve"`
	GearRatios           []float64             `json:"gear_ratios"`
	FinalDriveRatio      float64               `json:"final_drive_ratio"`
	DrivetrainEfficiency float64               `json:"drivetrain_efficiency"`
	MinRPM               float64               `json:"min_rpm"`
	MaxRPM               float64               `json:"max_rpm"`

	MaxBrakeForce float64 `json:"max_brake_force"` // N
	BrakeBias     float64 `json:"brake_bias"`      // front share
}

// ToConfig converts the file shape to the core configuration.
func (f VehicleFile) ToConfig() *vehicle.Config {
	return &vehicle.Config{
		Name: f.Name,
		Mass: vehicle.MassParams{
			Mass:               f.Mass,
			CoGHeight:          f.CoGHeight,
			Wheelbase:          f.Wheelbase,
			WeightDistribution: f.WeightDistribution,
		},
		Aero: vehicle.AeroParams{
			DragCoeff:   f.DragCoefficient,
			FrontalArea: f.FrontalArea,
			AirDensity:  f.AirDensity,
		},
		Tires: vehicle.TireParams{
			MuX:             f.MuX,
			MuY:             f.MuY,
			Radius:          f.TireRadius,
			LoadSensitivity: f.LoadSensitivity,
		},
		Powertrain: vehicle.PowertrainParams{
			Torque:     vehicle.NewTorqueCurve(f.TorqueCurve),
			GearRatios: f.GearRatios,
			FinalDrive: f.FinalDriveRatio,
			Efficiency: f.DrivetrainEfficiency,
			MinRPM:     f.MinRPM,
			MaxRPM:     f.MaxRPM,
		},
		Brakes: vehicle.BrakeParams{
			MaxForce: f.MaxBrakeForce,
			Bias:     f.BrakeBias,
		},
	}
}

// FromConfig converts a core configuration back to the file shape, used when
// persisting garage entries.
func FromConfig(cfg *vehicle.Config) VehicleFile {
	return VehicleFile{
		Name:                 cfg.Name,
		Mass:                 cfg.Mass.Mass,
		CoGHeight:            cfg.Mass.CoGHeight,
		Wheelbase:            cfg.Mass.Wheelbase,
		WeightDistribution:   cfg.Mass.WeightDistribution,
		DragCoefficient:      cfg.Aero.DragCoeff,
		FrontalArea:          cfg.Aero.FrontalArea,
		AirDensity:           cfg.Aero.AirDensity,
		MuX:                  cfg.Tires.MuX,
		MuY:                  cfg.Tires.MuY,
		TireRadius:           cfg.Tires.Radius,
		LoadSensitivity:      cfg.Tires.LoadSensitivity,
		TorqueCurve:          cfg.Powertrain.Torque.Points(),
		GearRatios:           cfg.Powertrain.GearRatios,
		FinalDriveRatio:      cfg.Powertrain.FinalDrive,
		DrivetrainEfficiency: cfg.Powertrain.Efficiency,
		MinRPM:               cfg.Powertrain.MinRPM,
		MaxRPM:               cfg.Powertrain.MaxRPM,
		MaxBrakeForce:        cfg.Brakes.MaxForce,
		BrakeBias:            cfg.Brakes.Bias,
	}
}
