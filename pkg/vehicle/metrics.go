package vehicle

import "math"

// wattsPerHP converts watts to mechanical horsepower.
const wattsPerHP = 745.7

// PowerToWeight returns peak engine power per kilogram of vehicle mass, in
// hp/kg. An empty torque curve or non-positive mass yields 0.
func (c *Config) PowerToWeight() float64 {
	if c.Mass.Mass <= 0 {
		return 0
	}
	return c.Powertrain.Torque.MaxPowerWatts() / wattsPerHP / c.Mass.Mass
}

// MaxTheoreticalSpeed returns the speed in m/s at which aerodynamic drag
// consumes all of the drivetrain's peak power, solving
// v = (2*P / (rho*Cd*A))^(1/3). This is a power-limited upper bound, not a
// gear-limited one. Degenerate aero values or an empty curve yield 0.
func (c *Config) MaxTheoreticalSpeed() float64 {
	power := c.Powertrain.Torque.MaxPowerWatts() * c.Powertrain.Efficiency
	denom := c.Aero.AirDensity * c.Aero.DragCoeff * c.Aero.FrontalArea
	if power <= 0 || denom <= 0 {
		return 0
	}
	return math.Cbrt(2 * power / denom)
}
