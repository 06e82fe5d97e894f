package garage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apexsim/apexsim/internal/config"
)

// ErrNoVehicles is returned by LoadDir when the directory holds no vehicle
// files at all.
var ErrNoVehicles = errors.New("no vehicle files found")

// Load reads one vehicle description file. The returned configuration is
// populated but not validated; callers run vehicle.Validate before trusting
// it. A missing name falls back to the file's base name, a missing tire
// radius to the configured default.
func Load(path string) (*VehicleEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vehicle file: %w", err)
	}

	var file VehicleFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing vehicle file %s: %w", path, err)
	}

	if file.Name == "" {
		file.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if file.TireRadius == 0 {
		file.TireRadius = config.GetFloat64("defaultTireRadius")
	}

	return &VehicleEntry{
		Path:   path,
		File:   file,
		Config: file.ToConfig(),
	}, nil
}

// LoadDir reads every .json file in dir. Files that fail to parse are
// collected as errors but do not stop the remaining files from loading.
func LoadDir(dir string) ([]*VehicleEntry, error) {
	names, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing vehicle dir: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoVehicles, dir)
	}

	var (
		entries []*VehicleEntry
		errs    []error
	)
	for _, name := range names {
		entry, err := Load(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		errs = append(errs, ErrNoVehicles)
	}
	return entries, errors.Join(errs...)
}
