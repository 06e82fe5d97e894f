// internal/storage/memory/memory.go
package memory

import (
	"sort"
	"sync"

	"github.com/apexsim/apexsim/internal/model"
)

// Backend keeps garage vehicles and run results in process memory. It
// backs tests and the default storage.type=memory mode where nothing
// needs to survive the process.
type Backend struct {
	vehicles       map[string]*model.GarageVehicle // keyed by Name
	validationRuns []model.ValidationRun
	sweepRuns      []model.SweepRun

	idCounter uint
	mu        sync.RWMutex
}

// New creates a new memory backend
func New() *Backend {
	return &Backend{
		vehicles: make(map[string]*model.GarageVehicle),
	}
}

// Name identifies the backend type
func (b *Backend) Name() string {
	return "memory"
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// SaveVehicle upserts a vehicle definition keyed by name
func (b *Backend) SaveVehicle(v *model.GarageVehicle) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if existing, ok := b.vehicles[v.Name]; ok {
		v.ID = existing.ID
	} else {
		b.idCounter++
		v.ID = b.idCounter
	}
	stored := *v
	b.vehicles[v.Name] = &stored
	return nil
}

// GetVehicle looks up a vehicle definition by name
func (b *Backend) GetVehicle(name string) (*model.GarageVehicle, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if v, ok := b.vehicles[name]; ok {
		out := *v
		return &out, true, nil
	}
	return nil, false, nil
}

// ListVehicles returns stored vehicle names, sorted
func (b *Backend) ListVehicles() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.vehicles))
	for name := range b.vehicles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// SaveValidationRun records a validator result
func (b *Backend) SaveValidationRun(run *model.ValidationRun) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	run.ID = b.idCounter
	b.validationRuns = append(b.validationRuns, *run)
	return nil
}

// SaveSweepRun records a sweep with its points
func (b *Backend) SaveSweepRun(run *model.SweepRun) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	run.ID = b.idCounter
	stored := *run
	stored.Points = make([]model.SweepPoint, len(run.Points))
	copy(stored.Points, run.Points)
	b.sweepRuns = append(b.sweepRuns, stored)
	return nil
}

// RecentValidationRuns returns up to limit results, newest first.
// A non-positive limit returns everything.
func (b *Backend) RecentValidationRuns(limit int) ([]model.ValidationRun, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return recent(b.validationRuns, limit), nil
}

// RecentSweepRuns returns up to limit sweeps, newest first.
// A non-positive limit returns everything.
func (b *Backend) RecentSweepRuns(limit int) ([]model.SweepRun, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return recent(b.sweepRuns, limit), nil
}

// recent copies the tail of history in reverse insertion order.
func recent[T any](history []T, limit int) []T {
	if limit <= 0 || limit > len(history) {
		limit = len(history)
	}
	out := make([]T, 0, limit)
	for i := len(history) - 1; i >= len(history)-limit; i-- {
		out = append(out, history[i])
	}
	return out
}
