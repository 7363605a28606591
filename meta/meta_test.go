package meta

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeMeta(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meta.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadValid(t *testing.T) {
	path := writeMeta(t, `{
		"lat_list": [33.0, 33.5, 34.0],
		"lon_list": [-119.0, -118.5],
		"nx": 2,
		"ny": 3,
		"max depth": 5000.0,
		"model": "cvmsi",
		"horizon": "Z2.5"
	}`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("expected load to succeed; got %v", err)
	}
	if m.NX != 2 || m.NY != 3 {
		t.Fatalf("expected nx=2 ny=3; got nx=%d ny=%d", m.NX, m.NY)
	}
	if m.CellCount() != 6 {
		t.Fatalf("expected 6 cells; got %d", m.CellCount())
	}
	if m.MaxDepth == nil || *m.MaxDepth != 5000.0 {
		t.Fatalf("expected max depth 5000; got %v", m.MaxDepth)
	}
	if !m.LatAscending() {
		t.Fatalf("expected ascending latitudes")
	}
	lonMin, lonMax, latMin, latMax := m.Bounds()
	if lonMin != -119.0 || lonMax != -118.5 || latMin != 33.0 || latMax != 34.0 {
		t.Fatalf("unexpected bounds: %v %v %v %v", lonMin, lonMax, latMin, latMax)
	}
}

func TestLoadUnderscoreMaxDepth(t *testing.T) {
	path := writeMeta(t, `{
		"lat_list": [34.0, 33.0],
		"lon_list": [-119.0, -118.0],
		"nx": 2,
		"ny": 2,
		"max_depth": 15000
	}`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("expected load to succeed; got %v", err)
	}
	if m.MaxDepth == nil || *m.MaxDepth != 15000 {
		t.Fatalf("expected max depth 15000; got %v", m.MaxDepth)
	}
	if m.LatAscending() {
		t.Fatalf("expected descending latitudes")
	}
}

func TestLoadSpacedKeyWins(t *testing.T) {
	path := writeMeta(t, `{
		"lat_list": [33.0, 34.0],
		"lon_list": [-119.0, -118.0],
		"nx": 1,
		"ny": 1,
		"max depth": 100,
		"max_depth": 200
	}`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("expected load to succeed; got %v", err)
	}
	if m.MaxDepth == nil || *m.MaxDepth != 100 {
		t.Fatalf("expected spaced key to win with 100; got %v", m.MaxDepth)
	}
}

func TestLoadMissingRequiredKey(t *testing.T) {
	path := writeMeta(t, `{
		"lat_list": [33.0, 34.0],
		"nx": 2,
		"ny": 2
	}`)

	_, err := Load(path)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError for missing lon_list; got %v", err)
	}
}

func TestLoadBadDimensions(t *testing.T) {
	path := writeMeta(t, `{
		"lat_list": [33.0, 34.0],
		"lon_list": [-119.0, -118.0],
		"nx": 0,
		"ny": 2
	}`)

	_, err := Load(path)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError for nx=0; got %v", err)
	}
}

func TestLoadNotJSON(t *testing.T) {
	path := writeMeta(t, "nx 2\nny 2\n")

	_, err := Load(path)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError for non-JSON input; got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	var perr *ParseError
	if errors.As(err, &perr) {
		t.Fatalf("missing file should surface as I/O error, not ParseError")
	}
}

func TestDefaultTitle(t *testing.T) {
	cases := []struct {
		model, horizon, want string
	}{
		{"cvmsi", "Z2.5", "Z2.5 basin depth, cvmsi"},
		{"", "Z1.0", "Z1.0 basin depth"},
		{"cca", "", "Basin depth, cca"},
		{"", "", "Basin depth"},
	}
	for _, tc := range cases {
		m := &Metadata{Model: tc.model, Horizon: tc.horizon}
		if got := m.DefaultTitle(); got != tc.want {
			t.Fatalf("expected title %q; got %q", tc.want, got)
		}
	}
}
