package garage

import (
	"sort"
	"sync"

	"github.com/apexsim/apexsim/pkg/vehicle"
)

// VehicleEntry pairs a loaded file with its converted core configuration.
type VehicleEntry struct {
	Path   string
	File   VehicleFile
	Config *vehicle.Config
}

// Registry caches loaded vehicles by name so repeated commands avoid
// re-reading files.
type Registry struct {
	m        sync.Mutex
	vehicles map[string]*VehicleEntry
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		vehicles: make(map[string]*VehicleEntry),
	}
}

// Reset drops every cached vehicle.
func (r *Registry) Reset() {
	r.m.Lock()
	defer r.m.Unlock()
	r.vehicles = make(map[string]*VehicleEntry)
}

// Add caches an entry under its vehicle name, replacing any previous one.
func (r *Registry) Add(entry *VehicleEntry) {
	r.m.Lock()
	defer r.m.Unlock()
	r.vehicles[entry.Config.Name] = entry
}

// Get returns the cached entry for a vehicle name.
func (r *Registry) Get(name string) (*VehicleEntry, bool) {
	r.m.Lock()
	defer r.m.Unlock()
	entry, ok := r.vehicles[name]
	return entry, ok
}

// Names returns the cached vehicle names in sorted order.
func (r *Registry) Names() []string {
	r.m.Lock()
	defer r.m.Unlock()
	names := make([]string, 0, len(r.vehicles))
	for name := range r.vehicles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of cached vehicles.
func (r *Registry) Len() int {
	r.m.Lock()
	defer r.m.Unlock()
	return len(r.vehicles)
}
