package sweep

// Point is one computed sample of a characterization sweep.
type Point struct {
	Velocity   float64 // m/s
	Gear       int     // 1-based gear index
	RPM        float64
	Torque     float64 // Nm at the crank
	PowerKW    float64 // kW at the wheels, after driveline losses
	DriveForce float64 // N at the contact patch
}
