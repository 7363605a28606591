package sample

import (
	"fmt"
	"math"

	"basinmap/meta"
)

// Grid is a complete (ny, nx) depth raster in ascending latitude and
// longitude order, ready for rendering. It satisfies the GridXYZ contract of
// gonum's heat-map plotter without importing it.
type Grid struct {
	xs []float64 // length nx, ascending longitudes
	ys []float64 // length ny, ascending latitudes
	z  []float64 // row-major, z[r*nx+c], NaN for missing cells
}

// BuildGrid reshapes a full extraction into a raster using the metadata's
// grid shape. The sample count must equal nx*ny. When the metadata latitude
// list runs north to south, rows are flipped so the grid is always ascending,
// mirroring the extractor's scan order.
func BuildGrid(set *Set, m *meta.Metadata) (*Grid, error) {
	nx, ny := m.NX, m.NY
	if got, want := len(set.Samples), m.CellCount(); got != want {
		return nil, fmt.Errorf("sample: grid size mismatch: expected %d points, got %d", want, got)
	}

	g := &Grid{
		xs: axisNodes(m.LonList, nx),
		ys: axisNodes(m.LatList, ny),
		z:  make([]float64, nx*ny),
	}

	flip := !m.LatAscending()
	for i, s := range set.Samples {
		r := i / nx
		c := i % nx
		if flip {
			r = ny - 1 - r
		}
		g.z[r*nx+c] = s.Depth
	}
	return g, nil
}

// axisNodes returns n ascending axis coordinates. When the metadata list has
// exactly one node per grid column/row it is used directly (sorted ascending);
// otherwise nodes are spaced evenly across the list's extent.
func axisNodes(list []float64, n int) []float64 {
	lo, hi := minMax(list)
	if len(list) == n {
		out := make([]float64, n)
		if list[0] <= list[n-1] {
			copy(out, list)
		} else {
			for i, v := range list {
				out[n-1-i] = v
			}
		}
		return out
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
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

// Dims returns the number of columns and rows.
func (g *Grid) Dims() (c, r int) { return len(g.xs), len(g.ys) }

// Z returns the depth at column c, row r; NaN marks a missing cell.
func (g *Grid) Z(c, r int) float64 { return g.z[r*len(g.xs)+c] }

// X returns the longitude of column c.
func (g *Grid) X(c int) float64 { return g.xs[c] }

// Y returns the latitude of row r.
func (g *Grid) Y(r int) float64 { return g.ys[r] }

// MissingCells counts NaN cells in the raster.
func (g *Grid) MissingCells() int {
	n := 0
	for _, v := range g.z {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}
