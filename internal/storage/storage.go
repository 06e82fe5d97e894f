// internal/storage/storage.go
package storage

import "github.com/apexsim/apexsim/internal/model"

// Backend is the interface all results stores must satisfy
type Backend interface {
	// Lifecycle
	Name() string
	Init() error
	Close() error

	// Garage
	SaveVehicle(v *model.GarageVehicle) error
	GetVehicle(name string) (*model.GarageVehicle, bool, error)
	ListVehicles() ([]string, error)

	// Run results
	SaveValidationRun(run *model.ValidationRun) error
	SaveSweepRun(run *model.SweepRun) error
	RecentValidationRuns(limit int) ([]model.ValidationRun, error)
	RecentSweepRuns(limit int) ([]model.SweepRun, error)
}

// Dumper is an optional interface for backends that can snapshot their
// contents into a standalone database file.
type Dumper interface {
	DumpTo(path string) error
}
