package track

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// One degree of longitude at the equator in EPSG:3857 meters.
const oneDegreeAtEquator = 111319.49079327358

func TestNew_ProjectsEquatorLongitude(t *testing.T) {
	trk, err := New("equator", [][]float64{{0, 0}, {1, 0}})
	require.NoError(t, err)

	pts := trk.Points()
	require.Len(t, pts, 2)
	assert.InDelta(t, 0.0, pts[0].X, 1e-6)
	assert.InDelta(t, 0.0, pts[0].Y, 1e-6)
	assert.InDelta(t, oneDegreeAtEquator, pts[1].X, 1e-3)
	assert.InDelta(t, 0.0, pts[1].Y, 1e-6)
	assert.InDelta(t, oneDegreeAtEquator, trk.Length(), 1e-3)
}

func TestNew_TooFewWaypoints(t *testing.T) {
	_, err := New("short", [][]float64{{6.94, 50.33}})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidWaypoints))
}

func TestNew_BadWaypoint(t *testing.T) {
	_, err := New("bad", [][]float64{{6.94, 50.33}, {6.95}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "waypoint 1")
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ring.json")
	content := `{
		"name": "test-ring",
		"waypoints": [
			[6.9400, 50.3300, 401.0],
			[6.9410, 50.3310, 405.5],
			[6.9425, 50.3305, 402.0]
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	trk, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test-ring", trk.Name)
	assert.Len(t, trk.Points(), 3)
	assert.Greater(t, trk.Length(), 0.0)
	assert.InDelta(t, 4.5, trk.ElevationGain(), 1e-9)
}

func TestLoad_NameFallsBackToFileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nordschleife.json")
	content := `{"waypoints": [[6.94, 50.33], [6.95, 50.34]]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	trk, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "nordschleife", trk.Name)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading track file")
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"waypoints": `), 0644))

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing track file")
}

func TestNewProjected_FromPolyline(t *testing.T) {
	ls, err := ParsePolyline("[[0,0],[100,0],[100,100]]")
	require.NoError(t, err)

	trk, err := NewProjected("paddock", ls)
	require.NoError(t, err)

	assert.Equal(t, "paddock", trk.Name)
	assert.Len(t, trk.Points(), 3)
	assert.InDelta(t, 200.0, trk.Length(), 1e-9)
	assert.Equal(t, 0.0, trk.ElevationGain())
}

func TestTrack_ElevationGain(t *testing.T) {
	trk, err := New("hilly", [][]float64{
		{0, 0, 100},
		{0.001, 0, 110},
		{0.002, 0, 105},
		{0.003, 0, 112},
	})
	require.NoError(t, err)

	// +10, downhill, +7.
	assert.InDelta(t, 17.0, trk.ElevationGain(), 1e-9)
}
