package track

import (
	"encoding/json"
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"
)

// ParsePolyline parses a JSON array of projected coordinates into a
// geom.LineString. Input format: "[[x1,y1],[x2,y2],...]" in EPSG:3857
// meters.
func ParsePolyline(input string) (geom.LineString, error) {
	var coords [][]float64
	if err := json.Unmarshal([]byte(input), &coords); err != nil {
		return geom.LineString{}, fmt.Errorf("failed to parse polyline JSON: %w", err)
	}

	if len(coords) < 2 {
		return geom.LineString{}, fmt.Errorf("polyline must have at least 2 points, got %d", len(coords))
	}

	flat := make([]float64, 0, len(coords)*2)
	for i, coord := range coords {
		if len(coord) < 2 {
			return geom.LineString{}, fmt.Errorf("coordinate %d has insufficient values", i)
		}
		flat = append(flat, coord[0], coord[1])
	}

	return geom.NewLineString(geom.NewSequence(flat, geom.DimXY)), nil
}

// EncodePolyline serializes a projected centerline into the JSON array
// format ParsePolyline reads.
func EncodePolyline(ls geom.LineString) (string, error) {
	seq := ls.Coordinates()
	coords := make([][]float64, seq.Length())
	for i := range coords {
		xy := seq.GetXY(i)
		coords[i] = []float64{xy.X, xy.Y}
	}
	raw, err := json.Marshal(coords)
	if err != nil {
		return "", fmt.Errorf("failed to encode polyline JSON: %w", err)
	}
	return string(raw), nil
}
