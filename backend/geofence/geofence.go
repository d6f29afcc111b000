// Package geofence decides whether a report location falls inside the
// configured service boundary polygon.
package geofence

import (
	"errors"
	"fmt"
	"os"

	geojson "github.com/paulmach/go.geojson"
)

var (
	// ErrInvalidPolygon marks a degenerate boundary configuration.
	ErrInvalidPolygon = errors.New("boundary polygon needs at least 3 vertices")
	// ErrOutOfBounds is returned by Admit for points outside the boundary.
	ErrOutOfBounds = errors.New("location is outside the service boundary")
)

type Vertex struct {
	Lat float64
	Lon float64
}

// Fence is a simple closed ring. Vertices are kept without the repeated
// closing vertex; the ring is treated as implicitly closed.
type Fence struct {
	ring []Vertex
}

// New builds a fence from an ordered vertex list. A ring whose last vertex
// repeats the first is accepted and normalized.
func New(ring []Vertex) (*Fence, error) {
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	if len(ring) < 3 {
		return nil, ErrInvalidPolygon
	}
	f := &Fence{ring: make([]Vertex, len(ring))}
	copy(f.ring, ring)
	return f, nil
}

// FromGeoJSON parses a GeoJSON feature carrying a Polygon geometry and
// builds a fence from its outer ring. GeoJSON positions are [lon, lat].
func FromGeoJSON(data []byte) (*Fence, error) {
	feature, err := geojson.UnmarshalFeature(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse boundary feature: %w", err)
	}
	if feature.Geometry == nil || !feature.Geometry.IsPolygon() || len(feature.Geometry.Polygon) == 0 {
		return nil, fmt.Errorf("boundary feature must carry a Polygon geometry: %w", ErrInvalidPolygon)
	}
	outer := feature.Geometry.Polygon[0]
	ring := make([]Vertex, 0, len(outer))
	for _, pos := range outer {
		if len(pos) < 2 {
			return nil, ErrInvalidPolygon
		}
		ring = append(ring, Vertex{Lat: pos[1], Lon: pos[0]})
	}
	return New(ring)
}

// FromGeoJSONFile reads a boundary feature from disk.
func FromGeoJSONFile(path string) (*Fence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read boundary file %s: %w", path, err)
	}
	return FromGeoJSON(data)
}

// Contains reports whether the point lies inside the fence using the
// ray-casting even-odd rule. Points exactly on an edge get whatever the
// even-odd rule yields; callers must not rely on either outcome there.
func (f *Fence) Contains(lat, lon float64) bool {
	inside := false
	n := len(f.ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := f.ring[i].Lat, f.ring[i].Lon
		xj, yj := f.ring[j].Lat, f.ring[j].Lon
		intersect := (yi > lon) != (yj > lon) &&
			lat < (xj-xi)*(lon-yi)/(yj-yi)+xi
		if intersect {
			inside = !inside
		}
	}
	return inside
}

// Admit gates report creation: nil inside the boundary, ErrOutOfBounds outside.
func (f *Fence) Admit(lat, lon float64) error {
	if !f.Contains(lat, lon) {
		return ErrOutOfBounds
	}
	return nil
}

// Vertices returns a copy of the fence ring.
func (f *Fence) Vertices() []Vertex {
	out := make([]Vertex, len(f.ring))
	copy(out, f.ring)
	return out
}
