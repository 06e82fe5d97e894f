package run

import (
	"sync"
	"time"

	"github.com/apexsim/apexsim/pkg/vehicle"
)

// Info identifies one tool invocation: a validation, sweep or track run.
type Info struct {
	ID        string
	Vehicle   string
	StartedAt time.Time
}

// NewInfo builds an Info for the named vehicle with a timestamp-derived ID.
func NewInfo(vehicleName string) Info {
	now := time.Now().UTC()
	return Info{
		ID:        now.Format("20060102_150405") + "-" + vehicleName,
		Vehicle:   vehicleName,
		StartedAt: now,
	}
}

// Context holds the run currently in progress and the vehicle it operates
// on. Writers and sinks read it for tagging; only the command layer sets it.
type Context struct {
	mu   sync.RWMutex
	info Info
	cfg  *vehicle.Config
}

// NewContext creates a Context with no run in progress.
func NewContext() *Context {
	return &Context{info: Info{ID: "idle", Vehicle: "none"}}
}

// Set installs the active run and its vehicle configuration.
func (c *Context) Set(info Info, cfg *vehicle.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.info = info
	c.cfg = cfg
}

// Info returns the active run identity.
func (c *Context) Info() Info {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.info
}

// Vehicle returns the active vehicle configuration, nil when idle.
func (c *Context) Vehicle() *vehicle.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}
