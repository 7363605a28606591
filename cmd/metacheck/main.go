// Command metacheck validates a metadata companion file and prints its
// fields, so a bad extraction run is caught before anyone waits on a render.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"basinmap/meta"
)

func main() {
	path := flag.String("meta", "", "metadata JSON file to check")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "missing required -meta flag")
		os.Exit(2)
	}

	m, err := meta.Load(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid metadata: %v\n", err)
		os.Exit(1)
	}

	lonMin, lonMax, latMin, latMax := m.Bounds()
	fmt.Printf("grid: %dx%d (%s cells)\n", m.NX, m.NY, humanize.Comma(int64(m.CellCount())))
	fmt.Printf("extent: lon [%g, %g], lat [%g, %g]\n", lonMin, lonMax, latMin, latMax)
	order := "south to north"
	if !m.LatAscending() {
		order = "north to south"
	}
	fmt.Printf("scan order: %s\n", order)
	if m.MaxDepth != nil {
		fmt.Printf("max depth: %g m\n", *m.MaxDepth)
	} else {
		fmt.Println("max depth: not reported (metadata scale mode unavailable)")
	}
	if m.Model != "" {
		fmt.Printf("model: %s\n", m.Model)
	}
	if m.Horizon != "" {
		fmt.Printf("horizon: %s\n", m.Horizon)
	}
}
