// Package cmap maps depth values to colors. It carries the two colormaps the
// Python plotting stack made popular with this data (jet, viridis) as
// control-point gradients and exposes gonum's perceptually-uniform moreland
// maps under short names. A resolved Map satisfies gonum/plot's
// palette.ColorMap so it can drive both the raster and the color bar.
package cmap

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	lev "github.com/agnivade/levenshtein"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"

	"basinmap/strutil"
)

// ConfigError reports an invalid colormap request.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "cmap: " + e.Msg }

// UnknownMapError reports a colormap name that is not registered, with a
// nearest-name suggestion when one is close enough to be a likely typo.
type UnknownMapError struct {
	Name       string
	Suggestion string
}

func (e *UnknownMapError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("cmap: unknown colormap %q (did you mean %q?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("cmap: unknown colormap %q", e.Name)
}

// Map is a named colormap bound to a depth range and an opacity. Values
// outside [Min,Max] clip to the extreme colors; a zero-width range maps
// everything to the top color. NaN input renders fully transparent.
type Map struct {
	name  string
	base  func(t float64) color.NRGBA // t in [0,1]
	alpha float64
	min   float64
	max   float64
}

var _ palette.ColorMap = (*Map)(nil)

type builder func() func(t float64) color.NRGBA

var registry = map[string]builder{
	"jet":                func() func(float64) color.NRGBA { return gradient(jetStops) },
	"viridis":            func() func(float64) color.NRGBA { return gradient(viridisStops) },
	"kindlmann":          func() func(float64) color.NRGBA { return fromColorMap(moreland.Kindlmann()) },
	"extended-kindlmann": func() func(float64) color.NRGBA { return fromColorMap(moreland.ExtendedKindlmann()) },
	"blackbody":          func() func(float64) color.NRGBA { return fromColorMap(moreland.BlackBody()) },
	"bluered":            func() func(float64) color.NRGBA { return fromColorMap(moreland.SmoothBlueRed()) },
}

// Names lists the registered colormap names, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Lookup resolves name into a Map with the given opacity. The range defaults
// to [0,1] until SetMin/SetMax bind it to the resolved scale bounds.
func Lookup(name string, alpha float64) (*Map, error) {
	if alpha < 0 || alpha > 1 || math.IsNaN(alpha) {
		return nil, &ConfigError{Msg: fmt.Sprintf("alpha must be in [0,1], got %v", alpha)}
	}
	key := strutil.NormalizeLower(name)
	build, ok := registry[key]
	if !ok {
		return nil, &UnknownMapError{Name: name, Suggestion: suggest(key)}
	}
	return &Map{name: key, base: build(), alpha: alpha, min: 0, max: 1}, nil
}

func suggest(name string) string {
	best, bestDist := "", 3
	for _, candidate := range Names() {
		if d := lev.ComputeDistance(name, candidate); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}

// Name returns the registered name of the colormap.
func (m *Map) Name() string { return m.name }

// At maps a depth value to a color, clipping out-of-range values to the
// extreme colors. NaN (missing) is transparent. The error is always nil;
// the signature matches palette.ColorMap.
func (m *Map) At(v float64) (color.Color, error) {
	if math.IsNaN(v) {
		return color.NRGBA{}, nil
	}
	var t float64
	if m.max <= m.min {
		t = 1 // degenerate range: everything takes the top color
	} else {
		t = (v - m.min) / (m.max - m.min)
		if t < 0 {
			t = 0
		}
		if t > 1 {
			t = 1
		}
	}
	c := m.base(t)
	c.A = uint8(m.alpha*float64(c.A) + 0.5)
	return c, nil
}

// Min returns the lower bound of the mapped range.
func (m *Map) Min() float64 { return m.min }

// Max returns the upper bound of the mapped range.
func (m *Map) Max() float64 { return m.max }

// SetMin sets the lower bound of the mapped range.
func (m *Map) SetMin(v float64) { m.min = v }

// SetMax sets the upper bound of the mapped range.
func (m *Map) SetMax(v float64) { m.max = v }

// Alpha returns the opacity applied to mapped colors.
func (m *Map) Alpha() float64 { return m.alpha }

// SetAlpha sets the opacity applied to mapped colors.
func (m *Map) SetAlpha(a float64) { m.alpha = a }

// Palette returns n discrete colors spanning the map for raster rendering.
func (m *Map) Palette(n int) palette.Palette {
	if n < 1 {
		n = 1
	}
	cols := make([]color.Color, n)
	for i := range cols {
		t := 1.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		c := m.base(t)
		c.A = uint8(m.alpha*float64(c.A) + 0.5)
		cols[i] = c
	}
	return discrete(cols)
}

type discrete []color.Color

func (p discrete) Colors() []color.Color { return p }

type stop struct {
	t       float64
	r, g, b uint8
}

// Anchor points follow the reference matplotlib tables closely enough for
// map work; intermediate colors are linear in RGB.
var jetStops = []stop{
	{0.000, 0x00, 0x00, 0x7f},
	{0.125, 0x00, 0x00, 0xff},
	{0.375, 0x00, 0xff, 0xff},
	{0.625, 0xff, 0xff, 0x00},
	{0.875, 0xff, 0x00, 0x00},
	{1.000, 0x7f, 0x00, 0x00},
}

var viridisStops = []stop{
	{0.000, 68, 1, 84},
	{0.125, 72, 40, 120},
	{0.250, 62, 74, 137},
	{0.375, 49, 104, 142},
	{0.500, 38, 130, 142},
	{0.625, 31, 158, 137},
	{0.750, 53, 183, 121},
	{0.875, 109, 205, 89},
	{1.000, 253, 231, 37},
}

func gradient(stops []stop) func(t float64) color.NRGBA {
	return func(t float64) color.NRGBA {
		if t <= stops[0].t {
			s := stops[0]
			return color.NRGBA{R: s.r, G: s.g, B: s.b, A: 0xff}
		}
		for i := 1; i < len(stops); i++ {
			if t <= stops[i].t {
				lo, hi := stops[i-1], stops[i]
				f := (t - lo.t) / (hi.t - lo.t)
				return color.NRGBA{
					R: lerp(lo.r, hi.r, f),
					G: lerp(lo.g, hi.g, f),
					B: lerp(lo.b, hi.b, f),
					A: 0xff,
				}
			}
		}
		s := stops[len(stops)-1]
		return color.NRGBA{R: s.r, G: s.g, B: s.b, A: 0xff}
	}
}

func lerp(a, b uint8, f float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*f + 0.5)
}

func fromColorMap(cm palette.ColorMap) func(t float64) color.NRGBA {
	cm.SetMin(0)
	cm.SetMax(1)
	return func(t float64) color.NRGBA {
		c, err := cm.At(t)
		if err != nil {
			// Range is fixed to [0,1]; only NaN can get here.
			return color.NRGBA{}
		}
		r, g, b, a := c.RGBA()
		return color.NRGBA{
			R: uint8(r >> 8),
			G: uint8(g >> 8),
			B: uint8(b >> 8),
			A: uint8(a >> 8),
		}
	}
}
