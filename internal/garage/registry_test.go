package garage

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexsim/apexsim/pkg/vehicle"
)

func entryNamed(name string) *VehicleEntry {
	return &VehicleEntry{
		Path:   name + ".json",
		Config: &vehicle.Config{Name: name},
	}
}

func TestRegistry_NewRegistry(t *testing.T) {
	reg := NewRegistry()

	require.NotNil(t, reg)
	assert.Equal(t, 0, reg.Len())
	assert.Empty(t, reg.Names())
}

func TestRegistry_AddAndGet(t *testing.T) {
	reg := NewRegistry()

	reg.Add(entryNamed("gt3"))

	got, ok := reg.Get("gt3")
	require.True(t, ok, "expected to find vehicle gt3")
	assert.Equal(t, "gt3", got.Config.Name)
	assert.Equal(t, "gt3.json", got.Path)
}

func TestRegistry_Get_NotFound(t *testing.T) {
	reg := NewRegistry()

	_, ok := reg.Get("missing")
	assert.False(t, ok, "expected not to find vehicle missing")
}

func TestRegistry_Add_ReplacesSameName(t *testing.T) {
	reg := NewRegistry()

	reg.Add(entryNamed("gt3"))
	replacement := entryNamed("gt3")
	replacement.Path = "garage/gt3-evo.json"
	reg.Add(replacement)

	require.Equal(t, 1, reg.Len())
	got, ok := reg.Get("gt3")
	require.True(t, ok)
	assert.Equal(t, "garage/gt3-evo.json", got.Path)
}

func TestRegistry_Names_Sorted(t *testing.T) {
	reg := NewRegistry()

	reg.Add(entryNamed("mx5"))
	reg.Add(entryNamed("formula"))
	reg.Add(entryNamed("gt3"))

	assert.Equal(t, []string{"formula", "gt3", "mx5"}, reg.Names())
}

func TestRegistry_Reset(t *testing.T) {
	reg := NewRegistry()

	reg.Add(entryNamed("gt3"))
	reg.Add(entryNamed("mx5"))
	require.Equal(t, 2, reg.Len())

	reg.Reset()

	assert.Equal(t, 0, reg.Len())

	reg.Add(entryNamed("formula"))
	_, ok := reg.Get("formula")
	assert.True(t, ok, "expected to find vehicle added after reset")
}

func TestRegistry_Concurrent(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			reg.Add(entryNamed(fmt.Sprintf("car-%03d", n)))
		}(i)
	}
	wg.Wait()

	require.Equal(t, 100, reg.Len())

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			reg.Get(fmt.Sprintf("car-%03d", n))
		}(i)
	}
	wg.Wait()
}
