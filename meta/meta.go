// Package meta reads the JSON metadata companion that the extraction
// executable writes next to each depth data file. The metadata describes the
// sampling grid (latitude/longitude node lists, nx, ny) and optionally the
// model name, depth horizon label, and the model's maximum depth.
package meta

import (
	"fmt"
	"math"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Metadata describes a single extraction run. LatList and LonList hold the
// grid node coordinates in file order; they are kept as written, so LatList
// may be descending when the extractor scanned north to south.
type Metadata struct {
	LatList  []float64
	LonList  []float64
	NX       int
	NY       int
	MaxDepth *float64 // nil when the extractor did not report one
	Model    string
	Horizon  string
}

// ParseError reports a metadata file that could not be decoded or is missing
// required fields.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("meta: parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// rawMetadata mirrors the JSON layout. The extractor historically wrote the
// max-depth key with an embedded space; newer runs use an underscore. Both
// are accepted, the spaced form wins when both are present.
type rawMetadata struct {
	LatList        []float64 `json:"lat_list"`
	LonList        []float64 `json:"lon_list"`
	NX             int       `json:"nx"`
	NY             int       `json:"ny"`
	MaxDepthSpaced *float64  `json:"max depth"`
	MaxDepth       *float64  `json:"max_depth"`
	Model          string    `json:"model"`
	Horizon        string    `json:"horizon"`
}

// Load reads and validates the metadata file at path.
func Load(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("meta: read %s: %w", path, err)
	}

	var raw rawMetadata
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	m := &Metadata{
		LatList: raw.LatList,
		LonList: raw.LonList,
		NX:      raw.NX,
		NY:      raw.NY,
		Model:   strings.TrimSpace(raw.Model),
		Horizon: strings.TrimSpace(raw.Horizon),
	}
	switch {
	case raw.MaxDepthSpaced != nil:
		m.MaxDepth = raw.MaxDepthSpaced
	case raw.MaxDepth != nil:
		m.MaxDepth = raw.MaxDepth
	}

	if err := m.validate(); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return m, nil
}

func (m *Metadata) validate() error {
	if m.NX <= 0 || m.NY <= 0 {
		return fmt.Errorf("grid dimensions must be positive, got nx=%d ny=%d", m.NX, m.NY)
	}
	if len(m.LatList) < 2 {
		return fmt.Errorf("lat_list needs at least 2 entries, got %d", len(m.LatList))
	}
	if len(m.LonList) < 2 {
		return fmt.Errorf("lon_list needs at least 2 entries, got %d", len(m.LonList))
	}
	for i, v := range m.LatList {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("lat_list[%d] is not finite", i)
		}
	}
	for i, v := range m.LonList {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("lon_list[%d] is not finite", i)
		}
	}
	if m.MaxDepth != nil && (math.IsNaN(*m.MaxDepth) || *m.MaxDepth < 0) {
		return fmt.Errorf("max depth must be a non-negative number, got %v", *m.MaxDepth)
	}
	return nil
}

// CellCount returns the expected number of samples for a complete grid.
func (m *Metadata) CellCount() int { return m.NX * m.NY }

// Bounds returns the geographic bounding box of the sampling grid.
func (m *Metadata) Bounds() (lonMin, lonMax, latMin, latMax float64) {
	lonMin, lonMax = minMax(m.LonList)
	latMin, latMax = minMax(m.LatList)
	return lonMin, lonMax, latMin, latMax
}

// LatAscending reports whether the latitude nodes run south to north in file
// order. When false the sample grid needs a vertical flip before rendering.
func (m *Metadata) LatAscending() bool {
	return m.LatList[0] < m.LatList[len(m.LatList)-1]
}

// DefaultTitle builds a plot title from the model and horizon fields, falling
// back to a generic label when the metadata carries neither.
func (m *Metadata) DefaultTitle() string {
	switch {
	case m.Horizon != "" && m.Model != "":
		return fmt.Sprintf("%s basin depth, %s", m.Horizon, m.Model)
	case m.Horizon != "":
		return fmt.Sprintf("%s basin depth", m.Horizon)
	case m.Model != "":
		return fmt.Sprintf("Basin depth, %s", m.Model)
	default:
		return "Basin depth"
	}
}

func minMax(vals []float64) (lo, hi float64) {
	lo, hi = vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
