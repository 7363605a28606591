// Package render draws an extraction onto a raster map: a filled grid when
// the samples cover the full metadata grid, a colored scatter otherwise. The
// plot and canvas are explicit objects; nothing is kept in package state, so
// the same inputs always produce the same bytes.
package render

import (
	"fmt"
	"image/color"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"basinmap/cmap"
	"basinmap/meta"
	"basinmap/sample"
	"basinmap/scale"
)

// Style selects the drawing representation.
type Style string

const (
	// StyleAuto picks grid when the sample count matches the metadata grid,
	// scatter otherwise.
	StyleAuto Style = "auto"
	// StyleGrid forces the filled-grid representation; a sample count that
	// does not match the metadata grid is then an error.
	StyleGrid Style = "grid"
	// StyleScatter forces per-point glyphs.
	StyleScatter Style = "scatter"
)

// ParseStyle validates a style string from the command line or config file.
func ParseStyle(s string) (Style, error) {
	switch Style(s) {
	case StyleAuto, StyleGrid, StyleScatter:
		return Style(s), nil
	}
	return "", fmt.Errorf("render: unknown style %q (want auto, grid, or scatter)", s)
}

// IOError reports a failure writing the output image.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("render: write %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

const (
	defaultDPI      = 300
	defaultWidthIn  = 10.0
	defaultHeightIn = 8.0
	paletteColors   = 255
	colorBarWidth   = 1.4 * vg.Inch
	glyphRadius     = 2 // points
)

// Options configures one render.
type Options struct {
	Style  Style
	Title  string // empty means derive from metadata
	Bounds scale.Bounds
	Map    *cmap.Map

	DPI      int     // dots per inch, default 300
	WidthIn  float64 // figure width in inches, default 10
	HeightIn float64 // figure height in inches, default 8
}

func (o *Options) fillDefaults(m *meta.Metadata) {
	if o.Style == "" {
		o.Style = StyleAuto
	}
	if o.Title == "" {
		o.Title = m.DefaultTitle()
	}
	if o.DPI <= 0 {
		o.DPI = defaultDPI
	}
	if o.WidthIn <= 0 {
		o.WidthIn = defaultWidthIn
	}
	if o.HeightIn <= 0 {
		o.HeightIn = defaultHeightIn
	}
}

// Result summarizes a completed render.
type Result struct {
	Points int   // well-formed samples drawn
	Style  Style // representation actually used
}

// Render draws the sample set onto a map sized by the metadata bounding box
// and writes a PNG to outPath.
func Render(set *sample.Set, m *meta.Metadata, opts Options, outPath string) (Result, error) {
	opts.fillDefaults(m)
	if opts.Map == nil {
		return Result{}, fmt.Errorf("render: no colormap configured")
	}
	opts.Map.SetMin(opts.Bounds.Min)
	opts.Map.SetMax(opts.Bounds.Max)

	style := opts.Style
	if style == StyleAuto {
		if len(set.Samples) == m.CellCount() {
			style = StyleGrid
		} else {
			style = StyleScatter
		}
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"

	switch style {
	case StyleGrid:
		g, err := sample.BuildGrid(set, m)
		if err != nil {
			return Result{}, err
		}
		p.Add(newDepthHeatMap(g, opts))
	case StyleScatter:
		sc, err := newDepthScatter(set, opts)
		if err != nil {
			return Result{}, err
		}
		p.Add(sc)
	}

	// The map extent comes from the metadata bounding box, not from the data,
	// so partial extractions still draw at the full region size.
	lonMin, lonMax, latMin, latMax := m.Bounds()
	p.X.Min, p.X.Max = lonMin, lonMax
	p.Y.Min, p.Y.Max = latMin, latMax

	img := vgimg.NewWith(
		vgimg.UseWH(vg.Length(opts.WidthIn)*vg.Inch, vg.Length(opts.HeightIn)*vg.Inch),
		vgimg.UseDPI(opts.DPI),
	)
	dc := draw.New(img)

	if opts.Bounds.Degenerate() {
		// A zero-width scale has no gradient to explain; skip the bar.
		p.Draw(dc)
	} else {
		mapArea := draw.Crop(dc, 0, -colorBarWidth, 0, 0)
		barArea := draw.Crop(dc, dc.Rectangle.Size().X-colorBarWidth, 0, 0, 0)
		p.Draw(mapArea)
		drawColorBar(barArea, opts.Map)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return Result{}, &IOError{Path: outPath, Err: err}
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		f.Close()
		return Result{}, &IOError{Path: outPath, Err: err}
	}
	if err := f.Close(); err != nil {
		return Result{}, &IOError{Path: outPath, Err: err}
	}

	return Result{Points: set.Stats.Rows, Style: style}, nil
}

func newDepthHeatMap(g *sample.Grid, opts Options) *plotter.HeatMap {
	b := opts.Bounds
	var hm *plotter.HeatMap
	if b.Degenerate() {
		// One-color palette keeps the cell-to-color math finite.
		hm = plotter.NewHeatMap(g, opts.Map.Palette(1))
		hm.Min = b.Min - 0.5
		hm.Max = b.Max + 0.5
	} else {
		hm = plotter.NewHeatMap(g, opts.Map.Palette(paletteColors))
		hm.Min = b.Min
		hm.Max = b.Max
	}
	// Out-of-range cells clip to the extreme colors rather than erroring.
	hm.Underflow, _ = opts.Map.At(math.Inf(-1))
	hm.Overflow, _ = opts.Map.At(math.Inf(1))
	hm.NaN = color.NRGBA{}
	return hm
}

func newDepthScatter(set *sample.Set, opts Options) (*plotter.Scatter, error) {
	pts := make(plotter.XYs, len(set.Samples))
	for i, s := range set.Samples {
		pts[i].X = s.Lon
		pts[i].Y = s.Lat
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("render: scatter: %w", err)
	}
	depths := set.Depths()
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		c, _ := opts.Map.At(depths[i])
		return draw.GlyphStyle{
			Color:  c,
			Radius: vg.Points(glyphRadius),
			Shape:  draw.BoxGlyph{},
		}
	}
	return sc, nil
}

func drawColorBar(dc draw.Canvas, m *cmap.Map) {
	p := plot.New()
	p.HideX()
	p.Y.Label.Text = "Depth (m)"
	p.Add(&plotter.ColorBar{ColorMap: m, Vertical: true})
	p.Draw(dc)
}
