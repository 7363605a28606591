// Command jobgen generates a Slurm submission script and metadata companion
// from a YAML job spec. It never talks to the scheduler; submit the script
// with sbatch yourself.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"basinmap/jobgen"
)

func main() {
	specPath := flag.String("spec", "", "YAML job spec path")
	outDir := flag.String("dir", ".", "directory to write the script and metadata into")
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.LUTC)

	if *specPath == "" {
		fmt.Fprintln(os.Stderr, "missing required -spec flag")
		os.Exit(2)
	}

	spec, err := jobgen.LoadSpec(*specPath)
	if err != nil {
		log.Fatalf("Invalid job spec: %v", err)
	}

	scriptPath, metaPath, err := jobgen.WriteFiles(spec, *outDir)
	if err != nil {
		log.Fatal(err)
	}

	nx, ny := spec.GridShape()
	fmt.Printf("Wrote script: %s\n", scriptPath)
	fmt.Printf("Wrote metadata: %s (%dx%d grid)\n", metaPath, nx, ny)
	fmt.Printf("Submit with: sbatch %s\n", scriptPath)
}
