package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/apexsim/apexsim/pkg/vehicle"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent
// tables in the database schema
var DatabaseModels = []interface{}{
	&GarageVehicle{},
	&ValidationRun{},
	&SweepRun{},
	&SweepPoint{},
}

////////////////////////
// GARAGE MODELS
////////////////////////

// GarageVehicle is a stored vehicle definition. Scalar parameters map to
// columns; the torque curve and gear ratios are JSON blobs so the schema
// survives gear count changes.
type GarageVehicle struct {
	gorm.Model
	Name               string         `json:"name" gorm:"size:127;uniqueIndex"`
	Mass               float64        `json:"mass"`
	CoGHeight          float64        `json:"cogHeight"`
	Wheelbase          float64        `json:"wheelbase"`
	WeightDistribution float64        `json:"weightDistribution"`
	DragCoeff          float64        `json:"dragCoefficient"`
	FrontalArea        float64        `json:"frontalArea"`
	AirDensity         float64        `json:"airDensity"`
	MuX                float64        `json:"muX"`
	MuY                float64        `json:"muY"`
	TireRadius         float64        `json:"tireRadius"`
	LoadSensitivity    float64        `json:"loadSensitivity"`
	TorqueCurve        datatypes.JSON `json:"torqueCurve" gorm:"default:'[]'"`
	GearRatios         datatypes.JSON `json:"gearRatios" gorm:"default:'[]'"`
	FinalDrive         float64        `json:"finalDriveRatio"`
	Efficiency         float64        `json:"drivetrainEfficiency"`
	MinRPM             float64        `json:"minRPM"`
	MaxRPM             float64        `json:"maxRPM"`
	MaxBrakeForce      float64        `json:"maxBrakeForce"`
	BrakeBias          float64        `json:"brakeBias"`
}

func (*GarageVehicle) TableName() string {
	return "garage_vehicles"
}

// sliceToJSON marshals a slice for a JSON column. Empty and nil slices
// both store as an empty array.
func sliceToJSON[T any](items []T) datatypes.JSON {
	if len(items) == 0 {
		return datatypes.JSON("[]")
	}
	data, err := json.Marshal(items)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(data)
}

// NewGarageVehicle converts a runtime vehicle config into its stored form.
func NewGarageVehicle(cfg *vehicle.Config) *GarageVehicle {
	return &GarageVehicle{
		Name:               cfg.Name,
		Mass:               cfg.Mass.Mass,
		CoGHeight:          cfg.Mass.CoGHeight,
		Wheelbase:          cfg.Mass.Wheelbase,
		WeightDistribution: cfg.Mass.WeightDistribution,
		DragCoeff:          cfg.Aero.DragCoeff,
		FrontalArea:        cfg.Aero.FrontalArea,
		AirDensity:         cfg.Aero.AirDensity,
		MuX:                cfg.Tires.MuX,
		MuY:                cfg.Tires.MuY,
		TireRadius:         cfg.Tires.Radius,
		LoadSensitivity:    cfg.Tires.LoadSensitivity,
		TorqueCurve:        sliceToJSON(cfg.Powertrain.Torque.Points()),
		GearRatios:         sliceToJSON(cfg.Powertrain.GearRatios),
		FinalDrive:         cfg.Powertrain.FinalDrive,
		Efficiency:         cfg.Powertrain.Efficiency,
		MinRPM:             cfg.Powertrain.MinRPM,
		MaxRPM:             cfg.Powertrain.MaxRPM,
		MaxBrakeForce:      cfg.Brakes.MaxForce,
		BrakeBias:          cfg.Brakes.Bias,
	}
}

// Config converts the stored form back into a runtime vehicle config.
func (g *GarageVehicle) Config() (*vehicle.Config, error) {
	var points []vehicle.TorquePoint
	if len(g.TorqueCurve) > 0 {
		if err := json.Unmarshal(g.TorqueCurve, &points); err != nil {
			return nil, fmt.Errorf("vehicle %s has a malformed torque curve: %w", g.Name, err)
		}
	}
	var ratios []float64
	if len(g.GearRatios) > 0 {
		if err := json.Unmarshal(g.GearRatios, &ratios); err != nil {
			return nil, fmt.Errorf("vehicle %s has malformed gear ratios: %w", g.Name, err)
		}
	}

	return &vehicle.Config{
		Name: g.Name,
		Mass: vehicle.MassParams{
			Mass:               g.Mass,
			CoGHeight:          g.CoGHeight,
			Wheelbase:          g.Wheelbase,
			WeightDistribution: g.WeightDistribution,
		},
		Aero: vehicle.AeroParams{
			DragCoeff:   g.DragCoeff,
			FrontalArea: g.FrontalArea,
			AirDensity:  g.AirDensity,
		},
		Tires: vehicle.TireParams{
			MuX:             g.MuX,
			MuY:             g.MuY,
			Radius:          g.TireRadius,
			LoadSensitivity: g.LoadSensitivity,
		},
		Powertrain: vehicle.PowertrainParams{
			Torque:     vehicle.NewTorqueCurve(points),
			GearRatios: ratios,
			FinalDrive: g.FinalDrive,
			Efficiency: g.Efficiency,
			MinRPM:     g.MinRPM,
			MaxRPM:     g.MaxRPM,
		},
		Brakes: vehicle.BrakeParams{
			MaxForce: g.MaxBrakeForce,
			Bias:     g.BrakeBias,
		},
	}, nil
}

// Upsert inserts the vehicle or updates the row sharing its name.
func (g *GarageVehicle) Upsert(db *gorm.DB) (created bool, err error) {
	var existing GarageVehicle
	err = db.Where("name = ?", g.Name).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true, db.Create(g).Error
		}
		return false, err
	}
	g.ID = existing.ID
	g.CreatedAt = existing.CreatedAt
	return false, db.Save(g).Error
}

////////////////////////
// RUN RESULT MODELS
////////////////////////

// ValidationRun is one validator pass over a vehicle.
type ValidationRun struct {
	gorm.Model
	VehicleName  string         `json:"vehicleName" gorm:"size:127;index"`
	OK           bool           `json:"ok"`
	ErrorCount   int            `json:"errorCount"`
	WarningCount int            `json:"warningCount"`
	Diagnostics  datatypes.JSON `json:"diagnostics" gorm:"default:'[]'"`
}

func (*ValidationRun) TableName() string {
	return "validation_runs"
}

// NewValidationRun builds the stored form of a validator result.
func NewValidationRun(vehicleName string, ok bool, diags []vehicle.Diagnostic) *ValidationRun {
	run := &ValidationRun{
		VehicleName: vehicleName,
		OK:          ok,
		Diagnostics: sliceToJSON(diags),
	}
	for _, d := range diags {
		switch d.Severity {
		case vehicle.SeverityError:
			run.ErrorCount++
		case vehicle.SeverityWarning:
			run.WarningCount++
		}
	}
	return run
}

// SweepRun is one velocity sweep over a vehicle, with its points.
type SweepRun struct {
	gorm.Model
	RunID         string       `json:"runId" gorm:"size:127;index"`
	VehicleName   string       `json:"vehicleName" gorm:"size:127;index"`
	StartedAt     time.Time    `json:"startedAt" gorm:"type:timestamptz;index:idx_sweep_started"`
	VelocityStart float64      `json:"velocityStart"`
	VelocityEnd   float64      `json:"velocityEnd"`
	VelocityStep  float64      `json:"velocityStep"`
	TargetRPM     float64      `json:"targetRPM"`
	PointCount    int          `json:"pointCount"`
	DurationMs    float32      `json:"durationMs"`
	Points        []SweepPoint `json:"points" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignKey:SweepRunID"`
}

func (*SweepRun) TableName() string {
	return "sweep_runs"
}

// SweepPoint is one decision-layer sample within a sweep.
type SweepPoint struct {
	ID         uint    `json:"id" gorm:"primarykey"`
	SweepRunID uint    `json:"sweepRunId" gorm:"index:idx_sweep_point_run"`
	Velocity   float64 `json:"velocity"`
	Gear       int     `json:"gear"`
	RPM        float64 `json:"rpm"`
	Torque     float64 `json:"torque"`
	PowerKW    float64 `json:"powerKW"`
	DriveForce float64 `json:"driveForce"`
}

func (*SweepPoint) TableName() string {
	return "sweep_points"
}
