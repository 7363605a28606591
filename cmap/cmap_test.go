package cmap

import (
	"errors"
	"image/color"
	"math"
	"testing"
)

func colorAt(t *testing.T, m *Map, v float64) color.NRGBA {
	t.Helper()
	c, err := m.At(v)
	if err != nil {
		t.Fatalf("At(%v): %v", v, err)
	}
	return c.(color.NRGBA)
}

func TestLookupKnownNames(t *testing.T) {
	for _, name := range Names() {
		m, err := Lookup(name, 1.0)
		if err != nil {
			t.Fatalf("expected %q to resolve; got %v", name, err)
		}
		if m.Name() != name {
			t.Fatalf("expected name %q; got %q", name, m.Name())
		}
	}
}

func TestLookupNormalizesName(t *testing.T) {
	m, err := Lookup("  JET ", 1.0)
	if err != nil {
		t.Fatalf("expected case-insensitive lookup; got %v", err)
	}
	if m.Name() != "jet" {
		t.Fatalf("expected jet; got %q", m.Name())
	}
}

func TestLookupUnknownSuggests(t *testing.T) {
	_, err := Lookup("viridiz", 1.0)
	var uerr *UnknownMapError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UnknownMapError; got %v", err)
	}
	if uerr.Suggestion != "viridis" {
		t.Fatalf("expected suggestion viridis; got %q", uerr.Suggestion)
	}
}

func TestLookupBadAlpha(t *testing.T) {
	for _, alpha := range []float64{-0.1, 1.5, math.NaN()} {
		_, err := Lookup("jet", alpha)
		var cerr *ConfigError
		if !errors.As(err, &cerr) {
			t.Fatalf("expected ConfigError for alpha %v; got %v", alpha, err)
		}
	}
}

func TestExtremesMapToEndColors(t *testing.T) {
	m, err := Lookup("jet", 1.0)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	m.SetMin(100)
	m.SetMax(4000)

	lo := colorAt(t, m, 100)
	hi := colorAt(t, m, 4000)
	if (lo != color.NRGBA{R: 0x00, G: 0x00, B: 0x7f, A: 0xff}) {
		t.Fatalf("expected bottom jet color at min; got %+v", lo)
	}
	if (hi != color.NRGBA{R: 0x7f, G: 0x00, B: 0x00, A: 0xff}) {
		t.Fatalf("expected top jet color at max; got %+v", hi)
	}
}

func TestClipping(t *testing.T) {
	m, err := Lookup("jet", 1.0)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	m.SetMin(0)
	m.SetMax(3000)

	atMax := colorAt(t, m, 3000)
	beyond := colorAt(t, m, 5000)
	if atMax != beyond {
		t.Fatalf("expected 5000 to clip to the 3000 color; got %+v vs %+v", beyond, atMax)
	}
	atMin := colorAt(t, m, 0)
	below := colorAt(t, m, -200)
	if atMin != below {
		t.Fatalf("expected -200 to clip to the 0 color; got %+v vs %+v", below, atMin)
	}
}

func TestDegenerateRangeSingleColor(t *testing.T) {
	m, err := Lookup("viridis", 1.0)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	m.SetMin(1000)
	m.SetMax(1000)

	a := colorAt(t, m, 500)
	b := colorAt(t, m, 1000)
	c := colorAt(t, m, 2000)
	if a != b || b != c {
		t.Fatalf("expected one color for degenerate range; got %+v %+v %+v", a, b, c)
	}
	top := colorAt(t, m, math.Inf(1))
	if a != top {
		t.Fatalf("expected the top color; got %+v want %+v", a, top)
	}
}

func TestMissingIsTransparent(t *testing.T) {
	m, err := Lookup("jet", 0.6)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	m.SetMin(0)
	m.SetMax(3000)
	c := colorAt(t, m, math.NaN())
	if c.A != 0 {
		t.Fatalf("expected NaN to be transparent; got %+v", c)
	}
}

func TestAlphaApplied(t *testing.T) {
	m, err := Lookup("jet", 0.6)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	m.SetMin(0)
	m.SetMax(3000)
	c := colorAt(t, m, 3000)
	alpha := 0.6
	if want := uint8(alpha*255 + 0.5); c.A != want {
		t.Fatalf("expected alpha %d; got %d", want, c.A)
	}
}

func TestPaletteSpansMap(t *testing.T) {
	m, err := Lookup("jet", 1.0)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	cols := m.Palette(255).Colors()
	if len(cols) != 255 {
		t.Fatalf("expected 255 colors; got %d", len(cols))
	}
	first := cols[0].(color.NRGBA)
	last := cols[254].(color.NRGBA)
	if (first != color.NRGBA{R: 0x00, G: 0x00, B: 0x7f, A: 0xff}) {
		t.Fatalf("expected palette to start at the bottom color; got %+v", first)
	}
	if (last != color.NRGBA{R: 0x7f, G: 0x00, B: 0x00, A: 0xff}) {
		t.Fatalf("expected palette to end at the top color; got %+v", last)
	}
}
