package vehicle

import "fmt"

// Severity classifies a Diagnostic. Errors block simulation, warnings do not.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("severity(%d)", uint8(s))
	}
}

// Diagnostic is one finding from Validate. Value carries the offending
// number (a length for the table checks) so callers can render diagnostics
// without parsing Message.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Value    float64  `json:"value"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s: %s", d.Severity, d.Field, d.Message)
}

// Validate checks a complete configuration for physical plausibility. Every
// check runs; nothing short-circuits, so one call surfaces every problem at
// once. The boolean is false when any error-severity diagnostic is present;
// warnings never fail a configuration. Validate performs no mutation and no
// output, presentation belongs to the caller.
func Validate(cfg *Config) (bool, []Diagnostic) {
	var diags []Diagnostic
	fail := func(field, format string, value float64) {
		diags = append(diags, Diagnostic{
			Severity: SeverityError,
			Field:    field,
			Message:  fmt.Sprintf(format, value),
			Value:    value,
		})
	}
	failMsg := func(field, msg string, value float64) {
		diags = append(diags, Diagnostic{
			Severity: SeverityError,
			Field:    field,
			Message:  msg,
			Value:    value,
		})
	}
	warnMsg := func(field, msg string, value float64) {
		diags = append(diags, Diagnostic{
			Severity: SeverityWarning,
			Field:    field,
			Message:  msg,
			Value:    value,
		})
	}

	if cfg.Mass.Mass <= 0 {
		fail("mass", "mass must be positive, got %.3f kg", cfg.Mass.Mass)
	}
	if cfg.Mass.CoGHeight < 0 {
		fail("cog_height", "centre of gravity height must not be negative, got %.3f m", cfg.Mass.CoGHeight)
	}
	if cfg.Mass.Wheelbase <= 0 {
		fail("wheelbase", "wheelbase must be positive, got %.3f m", cfg.Mass.Wheelbase)
	}
	if wd := cfg.Mass.WeightDistribution; wd < 0 || wd > 1 {
		fail("weight_distribution", "weight distribution must be within [0.0, 1.0], got %.3f", wd)
	}
	if cfg.Aero.FrontalArea <= 0 {
		fail("frontal_area", "frontal area must be positive, got %.3f m^2", cfg.Aero.FrontalArea)
	}
	if cfg.Aero.AirDensity <= 0 {
		fail("air_density", "air density must be positive, got %.3f kg/m^3", cfg.Aero.AirDensity)
	}
	if cfg.Tires.MuX <= 0 {
		fail("mu_x", "longitudinal friction coefficient must be positive, got %.3f", cfg.Tires.MuX)
	}
	if cfg.Tires.MuY <= 0 {
		fail("mu_y", "lateral friction coefficient must be positive, got %.3f", cfg.Tires.MuY)
	}
	if cfg.Tires.Radius <= 0 {
		fail("tire_radius", "tire radius must be positive, got %.3f m", cfg.Tires.Radius)
	}
	if ls := cfg.Tires.LoadSensitivity; ls < 0 || ls > 1.5 {
		fail("load_sensitivity", "load sensitivity %.3f outside [0.0, 1.5]; racing slicks are typically 0.8-0.95, road tires 1.0-1.2", ls)
	}
	if cfg.Powertrain.Torque.Len() == 0 {
		failMsg("torque_curve", "torque curve is empty; at least one calibration point is required", 0)
	}
	if len(cfg.Powertrain.GearRatios) == 0 {
		failMsg("gear_ratios", "gear ratio table is empty; at least one gear is required", 0)
	}
	if cfg.Powertrain.FinalDrive <= 0 {
		fail("final_drive_ratio", "final drive ratio must be positive, got %.3f", cfg.Powertrain.FinalDrive)
	}
	if eff := cfg.Powertrain.Efficiency; eff <= 0 || eff > 1 {
		fail("drivetrain_efficiency", "drivetrain efficiency must be within (0.0, 1.0], got %.3f", eff)
	}
	if cfg.Powertrain.MaxRPM <= cfg.Powertrain.MinRPM {
		failMsg("max_rpm",
			fmt.Sprintf("max RPM %.0f must strictly exceed min RPM %.0f", cfg.Powertrain.MaxRPM, cfg.Powertrain.MinRPM),
			cfg.Powertrain.MaxRPM)
	}

	ratios := cfg.Powertrain.GearRatios
	for i := 0; i+1 < len(ratios); i++ {
		if ratios[i] <= ratios[i+1] {
			warnMsg("gear_ratios",
				fmt.Sprintf("gear %d ratio %.3f does not exceed gear %d ratio %.3f; ratios normally descend", i+1, ratios[i], i+2, ratios[i+1]),
				ratios[i+1])
		}
	}
	if len(ratios) > 1 && ratios[0] <= ratios[len(ratios)-1] {
		warnMsg("gear_ratios",
			fmt.Sprintf("first gear ratio %.3f does not exceed top gear ratio %.3f", ratios[0], ratios[len(ratios)-1]),
			ratios[0])
	}

	if cfg.Brakes.MaxForce <= 0 {
		fail("max_brake_force", "max brake force must be positive, got %.3f N", cfg.Brakes.MaxForce)
	}
	if b := cfg.Brakes.Bias; b < 0 || b > 1 {
		fail("brake_bias", "brake bias must be within [0.0, 1.0], got %.3f", b)
	}

	ok := true
	for _, d := range diags {
		if d.Severity == SeverityError {
			ok = false
			break
		}
	}
	return ok, diags
}
