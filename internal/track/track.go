// Package track loads circuit centerlines and derives the geometry the
// simulator cares about: projected coordinates, segment headings,
// curvature radii and theoretical corner speeds.
//
// Waypoints live on disk as WGS84 lon/lat and are projected to
// EPSG:3857 meters once on load, so all downstream math works on a
// flat plane.
package track

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// ErrInvalidWaypoints is returned when a track has fewer than two
// usable waypoints.
var ErrInvalidWaypoints = errors.New("track needs at least 2 waypoints")

// File is the on-disk JSON shape of a track definition. Each waypoint
// is [lon, lat] or [lon, lat, elev] in WGS84 degrees, elevation in
// meters.
type File struct {
	Name      string      `json:"name"`
	Waypoints [][]float64 `json:"waypoints"`
}

// Track is a projected centerline with per-vertex elevations.
type Track struct {
	Name string

	points     []geom.XY
	elevations []float64
	centerline geom.LineString
}

// New projects WGS84 lon/lat waypoints to EPSG:3857 and builds the
// centerline.
func New(name string, waypoints [][]float64) (*Track, error) {
	if len(waypoints) < 2 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidWaypoints, len(waypoints))
	}

	transform := wgs84.EPSG().Transform(4326, 3857)

	points := make([]geom.XY, 0, len(waypoints))
	elevations := make([]float64, 0, len(waypoints))
	flat := make([]float64, 0, len(waypoints)*2)
	for i, wp := range waypoints {
		if len(wp) < 2 {
			return nil, fmt.Errorf("waypoint %d has insufficient values", i)
		}
		x, y, _ := transform(wp[0], wp[1], 0)
		var elev float64
		if len(wp) > 2 {
			elev = wp[2]
		}
		points = append(points, geom.XY{X: x, Y: y})
		elevations = append(elevations, elev)
		flat = append(flat, x, y)
	}

	return &Track{
		Name:       name,
		points:     points,
		elevations: elevations,
		centerline: geom.NewLineString(geom.NewSequence(flat, geom.DimXY)),
	}, nil
}

// NewProjected builds a track from a centerline already in EPSG:3857
// meters, as produced by EncodePolyline.
func NewProjected(name string, centerline geom.LineString) (*Track, error) {
	seq := centerline.Coordinates()
	if seq.Length() < 2 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidWaypoints, seq.Length())
	}
	points := make([]geom.XY, seq.Length())
	for i := range points {
		points[i] = seq.GetXY(i)
	}
	return &Track{Name: name, points: points, centerline: centerline}, nil
}

// Load reads a track definition from disk. The name falls back to the
// file name when the file does not set one.
func Load(path string) (*Track, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading track file %s: %w", path, err)
	}
	var file File
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing track file %s: %w", path, err)
	}
	if file.Name == "" {
		file.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return New(file.Name, file.Waypoints)
}

// Centerline returns the projected centerline.
func (t *Track) Centerline() geom.LineString { return t.centerline }

// Points returns a copy of the projected vertices.
func (t *Track) Points() []geom.XY {
	out := make([]geom.XY, len(t.points))
	copy(out, t.points)
	return out
}

// Length returns the centerline length in meters.
func (t *Track) Length() float64 { return t.centerline.Length() }

// ElevationGain sums the positive elevation deltas over the lap in
// meters. Tracks loaded without elevations report 0.
func (t *Track) ElevationGain() float64 {
	var gain float64
	for i := 1; i < len(t.elevations); i++ {
		if d := t.elevations[i] - t.elevations[i-1]; d > 0 {
			gain += d
		}
	}
	return gain
}
