// Command runlog lists recent render runs from the catalog database.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"basinmap/catalog"
)

func main() {
	dbPath := flag.String("catalog", "catalog.db", "run-catalog database path")
	limit := flag.Int("n", 20, "number of runs to show")
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.LUTC)

	if _, err := os.Stat(*dbPath); err != nil {
		log.Fatalf("Catalog not found: %v", err)
	}

	cat, err := catalog.Open(*dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer cat.Close()

	runs, err := cat.Recent(*limit)
	if err != nil {
		log.Fatal(err)
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tDATA\tROWS\tSCALE\tCMAP\tOUTPUT")
	for _, r := range runs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s [%g, %g]\t%s\t%s\n",
			r.ID,
			humanize.Time(r.StartedAt),
			r.DataPath,
			humanize.Comma(int64(r.Rows)),
			r.ScaleMode, r.ScaleMin, r.ScaleMax,
			r.Cmap,
			r.OutputPath)
	}
	w.Flush()
}
