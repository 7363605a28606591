// Package sample parses the whitespace-delimited depth files the extraction
// executable writes: one sample per line, either "lon lat depth" or the full
// five-column form "lon lat flag d1 d2" where the flag selects which of the
// two depth columns applies. A depth of exactly -1.0 marks a cell outside the
// model and becomes NaN.
package sample

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/gosuri/uiprogress"
)

const missingSentinel = -1.0

// Sample is one extracted basin-depth value. Depth is NaN when the extractor
// flagged the cell as outside the model.
type Sample struct {
	Lon   float64
	Lat   float64
	Depth float64
}

// Missing reports whether the sample carries no usable depth.
func (s Sample) Missing() bool { return math.IsNaN(s.Depth) }

// Stats accumulates over a scan. Min and Max cover non-missing depths only
// and are meaningless when Valid is zero.
type Stats struct {
	Rows      int // well-formed rows, missing included
	Valid     int // rows with a usable depth
	Missing   int
	Malformed int // skipped rows
	Min       float64
	Max       float64
}

func (st *Stats) observe(s Sample) {
	st.Rows++
	if s.Missing() {
		st.Missing++
		return
	}
	if st.Valid == 0 || s.Depth < st.Min {
		st.Min = s.Depth
	}
	if st.Valid == 0 || s.Depth > st.Max {
		st.Max = s.Depth
	}
	st.Valid++
}

// ParseError reports a data file that yielded no usable samples.
type ParseError struct {
	Path string
	Line int // 0 when the failure is not tied to one line
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("sample: parse %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("sample: parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Scanner streams samples from a reader. Malformed rows are skipped and
// counted; callers that need to surface them log via the Warn hook.
// Re-scanning a fresh reader over the same bytes yields the same sequence.
type Scanner struct {
	s       *bufio.Scanner
	line    int
	current Sample
	stats   Stats

	// Warn, when set, receives one message per skipped row.
	Warn func(format string, args ...any)
}

// NewScanner wraps r for streaming sample reads.
func NewScanner(r io.Reader) *Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &Scanner{s: s}
}

// Scan advances to the next well-formed sample. It skips blank lines,
// comment lines starting with '#', and malformed rows.
func (sc *Scanner) Scan() bool {
	for sc.s.Scan() {
		sc.line++
		text := strings.TrimSpace(sc.s.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		smp, err := parseRow(strings.Fields(text))
		if err != nil {
			sc.stats.Malformed++
			if sc.Warn != nil {
				sc.Warn("skipping line %d: %v", sc.line, err)
			}
			continue
		}
		sc.current = smp
		sc.stats.observe(smp)
		return true
	}
	return false
}

// Sample returns the sample produced by the last successful Scan.
func (sc *Scanner) Sample() Sample { return sc.current }

// Line returns the 1-based line number of the last row read.
func (sc *Scanner) Line() int { return sc.line }

// Stats returns the running tallies for the scan so far.
func (sc *Scanner) Stats() Stats { return sc.stats }

// Err returns the first non-EOF error encountered by the underlying reader.
func (sc *Scanner) Err() error { return sc.s.Err() }

func parseRow(fields []string) (Sample, error) {
	var smp Sample
	switch {
	case len(fields) < 3:
		return smp, fmt.Errorf("expected at least 3 columns, got %d", len(fields))
	case len(fields) == 4:
		return smp, fmt.Errorf("ambiguous 4-column row")
	}

	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return smp, fmt.Errorf("column %d: %q is not a number", i+1, f)
		}
		vals[i] = v
	}

	smp.Lon = vals[0]
	smp.Lat = vals[1]
	if len(vals) == 3 {
		smp.Depth = vals[2]
	} else {
		// Five-column extractor output: column 3 is a surface-count flag.
		// Exactly one crossing means the first depth column holds the value.
		if vals[2] == 1 {
			smp.Depth = vals[3]
		} else {
			smp.Depth = vals[4]
		}
	}
	if smp.Depth == missingSentinel {
		smp.Depth = math.NaN()
	}
	return smp, nil
}

// Set is a fully-read data file: the buffered samples plus their stats.
type Set struct {
	Samples []Sample
	Stats   Stats
}

// Depths returns the depth column in file order.
func (set *Set) Depths() []float64 {
	out := make([]float64, len(set.Samples))
	for i, s := range set.Samples {
		out[i] = s.Depth
	}
	return out
}

// ReadFile reads the whole data file in one buffered pass, computing stats as
// it goes. warn receives one message per skipped row; nil suppresses them.
// A file with zero well-formed rows is a ParseError.
func ReadFile(path string, warn func(string, ...any)) (*Set, error) {
	return readFile(path, warn, false)
}

// ReadFileProgress behaves like ReadFile but draws a terminal progress bar
// sized by the file's byte length, for multi-million-row extractions.
func ReadFileProgress(path string, warn func(string, ...any)) (*Set, error) {
	return readFile(path, warn, true)
}

func readFile(path string, warn func(string, ...any), progress bool) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sample: open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if progress {
		if fi, err := f.Stat(); err == nil && fi.Size() > 0 {
			uiprogress.Start()
			bar := uiprogress.AddBar(int(fi.Size())).AppendCompleted()
			r = &progressReader{r: f, bar: bar}
			defer uiprogress.Stop()
		}
	}

	sc := NewScanner(r)
	sc.Warn = warn

	set := &Set{}
	for sc.Scan() {
		set.Samples = append(set.Samples, sc.Sample())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("sample: read %s: %w", path, err)
	}
	set.Stats = sc.Stats()
	if set.Stats.Rows == 0 {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("no well-formed rows (%d malformed)", set.Stats.Malformed)}
	}
	return set, nil
}

type progressReader struct {
	r    io.Reader
	bar  *uiprogress.Bar
	read int
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	pr.read += n
	_ = pr.bar.Set(pr.read)
	return n, err
}
