package geofence

import (
	"errors"
	"testing"
)

// Campus boundary used by the mobile client.
var campusRing = []Vertex{
	{19.022028, 72.869722},
	{19.021528, 72.872333},
	{19.0211667, 72.8722222},
	{19.020861, 72.871222},
	{19.0205556, 72.8705556},
	{19.020833, 72.869556},
}

func TestContains(t *testing.T) {
	f, err := New(campusRing)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	testCases := []struct {
		name string
		lat  float64
		lon  float64
		e    bool
	}{
		{"inside campus", 19.0211, 72.8710, true},
		{"far outside", 19.05, 72.90, false},
		{"north of boundary", 19.03, 72.8710, false},
		{"just inside northwest", 19.0215, 72.8700, true},
		{"zero point", 0, 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.Contains(tc.lat, tc.lon); got != tc.e {
				t.Errorf("Contains(%v, %v) = %v, want %v", tc.lat, tc.lon, got, tc.e)
			}
		})
	}
}

func TestNewClosedRing(t *testing.T) {
	closed := append(append([]Vertex{}, campusRing...), campusRing[0])
	f, err := New(closed)
	if err != nil {
		t.Fatalf("New with closing vertex: %v", err)
	}
	if len(f.Vertices()) != len(campusRing) {
		t.Errorf("closing vertex not dropped: got %d vertices, want %d", len(f.Vertices()), len(campusRing))
	}
	if !f.Contains(19.0211, 72.8710) {
		t.Error("closed-ring fence rejects a point the open-ring fence accepts")
	}
}

func TestNewDegenerate(t *testing.T) {
	for _, ring := range [][]Vertex{
		nil,
		{{19.0, 72.8}},
		{{19.0, 72.8}, {19.1, 72.9}},
		// Two vertices plus the closing repeat still degenerate.
		{{19.0, 72.8}, {19.1, 72.9}, {19.0, 72.8}},
	} {
		if _, err := New(ring); !errors.Is(err, ErrInvalidPolygon) {
			t.Errorf("New(%v) err = %v, want ErrInvalidPolygon", ring, err)
		}
	}
}

func TestAdmit(t *testing.T) {
	f, err := New(campusRing)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := f.Admit(19.0211, 72.8710); err != nil {
		t.Errorf("Admit(inside) = %v, want nil", err)
	}
	if err := f.Admit(19.05, 72.90); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Admit(outside) = %v, want ErrOutOfBounds", err)
	}
}

func TestFromGeoJSON(t *testing.T) {
	data := []byte(`{
		"type": "Feature",
		"properties": {"name": "campus"},
		"geometry": {
			"type": "Polygon",
			"coordinates": [[
				[72.869722, 19.022028],
				[72.872333, 19.021528],
				[72.8722222, 19.0211667],
				[72.871222, 19.020861],
				[72.8705556, 19.0205556],
				[72.869556, 19.020833],
				[72.869722, 19.022028]
			]]
		}
	}`)
	f, err := FromGeoJSON(data)
	if err != nil {
		t.Fatalf("FromGeoJSON: %v", err)
	}
	if !f.Contains(19.0211, 72.8710) {
		t.Error("geojson fence rejects an in-bounds point")
	}
	if f.Contains(19.05, 72.90) {
		t.Error("geojson fence accepts an out-of-bounds point")
	}
}

func TestFromGeoJSONRejectsNonPolygon(t *testing.T) {
	data := []byte(`{
		"type": "Feature",
		"geometry": {"type": "Point", "coordinates": [72.87, 19.02]}
	}`)
	if _, err := FromGeoJSON(data); !errors.Is(err, ErrInvalidPolygon) {
		t.Errorf("FromGeoJSON(point) err = %v, want ErrInvalidPolygon", err)
	}
}
