// Command basinmap renders a basin-depth extraction (data file + metadata
// companion) into a PNG map. The heavy lifting — querying the velocity model
// and extracting depth horizons — happens in an external batch executable;
// this tool only consumes its output files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"basinmap/catalog"
	"basinmap/cmap"
	"basinmap/config"
	"basinmap/meta"
	"basinmap/render"
	"basinmap/sample"
	"basinmap/scale"
)

type options struct {
	dataPath string
	metaPath string
	outPath  string

	scaleMode string
	userMin   *float64
	userMax   *float64
	cmapName  string
	alpha     float64
	title     string
	style     string
	dpi       int
	widthIn   float64
	heightIn  float64

	catalogPath string
	logFile     string
	progress    bool
}

type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
		os.Exit(2)
	}

	cleanup, err := setupLogging(opts.logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := run(opts); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(exitCode(err))
	}
}

// parseFlags merges the optional config file with explicit command-line
// flags; a flag given on the command line always wins.
func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet("basinmap", flag.ContinueOnError)

	configPath := fs.String("config", "", "optional YAML config file with render defaults")
	dataPath := fs.String("data", "", "extraction data file (whitespace-delimited samples)")
	metaPath := fs.String("meta", "", "metadata JSON companion file")
	outPath := fs.String("out", "", "output PNG path")
	scaleMode := fs.String("scale", "", "color scale mode: auto, metadata, or user")
	userMin := fs.Float64("user-min", math.NaN(), "lower color-scale bound (user mode, default 0)")
	userMax := fs.Float64("user-max", math.NaN(), "upper color-scale bound (required in user mode)")
	cmapName := fs.String("cmap", "", "colormap name (see -list-cmaps)")
	listCmaps := fs.Bool("list-cmaps", false, "list available colormaps and exit")
	alpha := fs.Float64("alpha", math.NaN(), "opacity of the depth layer, 0..1")
	title := fs.String("title", "", "plot title (default derives from metadata)")
	style := fs.String("style", "", "representation: auto, grid, or scatter")
	dpi := fs.Int("dpi", 0, "output resolution in dots per inch")
	width := fs.Float64("width", 0, "figure width in inches")
	height := fs.Float64("height", 0, "figure height in inches")
	catalogPath := fs.String("catalog", "", "SQLite run-catalog path (empty disables)")
	logFile := fs.String("log", "", "tee log output to this file")
	progress := fs.Bool("progress", false, "show a progress bar while reading data")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *listCmaps {
		for _, name := range cmap.Names() {
			fmt.Println(name)
		}
		os.Exit(0)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return nil, &usageError{msg: err.Error()}
		}
		cfg = loaded
	}

	opts := &options{
		dataPath:    *dataPath,
		metaPath:    *metaPath,
		outPath:     *outPath,
		scaleMode:   cfg.Render.ScaleMode,
		cmapName:    cfg.Render.Cmap,
		alpha:       cfg.Render.Alpha,
		title:       *title,
		style:       cfg.Render.Style,
		dpi:         cfg.Render.DPI,
		widthIn:     cfg.Render.WidthIn,
		heightIn:    cfg.Render.HeightIn,
		catalogPath: cfg.Catalog.Path,
		logFile:     cfg.Logging.File,
		progress:    *progress,
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["scale"] {
		opts.scaleMode = *scaleMode
	}
	if set["cmap"] {
		opts.cmapName = *cmapName
	}
	if set["alpha"] {
		opts.alpha = *alpha
	}
	if set["style"] {
		opts.style = *style
	}
	if set["dpi"] {
		opts.dpi = *dpi
	}
	if set["width"] {
		opts.widthIn = *width
	}
	if set["height"] {
		opts.heightIn = *height
	}
	if set["catalog"] {
		opts.catalogPath = *catalogPath
	}
	if set["log"] {
		opts.logFile = *logFile
	}
	if set["user-min"] {
		v := *userMin
		opts.userMin = &v
	}
	if set["user-max"] {
		v := *userMax
		opts.userMax = &v
	}

	switch {
	case opts.dataPath == "":
		return nil, &usageError{msg: "missing required -data flag"}
	case opts.metaPath == "":
		return nil, &usageError{msg: "missing required -meta flag"}
	case opts.outPath == "":
		return nil, &usageError{msg: "missing required -out flag"}
	}
	return opts, nil
}

func run(opts *options) error {
	started := time.Now().UTC()

	mode, err := scale.ParseMode(opts.scaleMode)
	if err != nil {
		return err
	}
	style, err := render.ParseStyle(opts.style)
	if err != nil {
		return &usageError{msg: err.Error()}
	}
	colors, err := cmap.Lookup(opts.cmapName, opts.alpha)
	if err != nil {
		return err
	}

	m, err := meta.Load(opts.metaPath)
	if err != nil {
		return err
	}
	_, _, latMin, latMax := m.Bounds()
	log.Printf("Metadata: nx=%d, ny=%d, lat-range=(%g, %g)", m.NX, m.NY, latMin, latMax)

	readFile := sample.ReadFile
	if opts.progress {
		readFile = sample.ReadFileProgress
	}
	set, err := readFile(opts.dataPath, log.Printf)
	if err != nil {
		return err
	}
	if set.Stats.Malformed > 0 {
		log.Printf("Skipped %s malformed rows", humanize.Comma(int64(set.Stats.Malformed)))
	}

	bounds, err := scale.Resolve(mode, m, set.Stats, opts.userMin, opts.userMax)
	if err != nil {
		return err
	}
	if bounds.Degenerate() {
		log.Printf("Color scale is degenerate (min == max == %g); rendering a single color", bounds.Min)
	} else {
		log.Printf("Using color scale min=%g, max=%g", bounds.Min, bounds.Max)
	}

	res, err := render.Render(set, m, render.Options{
		Style:    style,
		Title:    opts.title,
		Bounds:   bounds,
		Map:      colors,
		DPI:      opts.dpi,
		WidthIn:  opts.widthIn,
		HeightIn: opts.heightIn,
	}, opts.outPath)
	if err != nil {
		return err
	}
	log.Printf("Rendered %s points as %s", humanize.Comma(int64(res.Points)), res.Style)
	log.Printf("Map saved to %s", opts.outPath)

	if opts.catalogPath != "" {
		recordRun(opts, m, set, mode, bounds, res, started)
	}
	return nil
}

// recordRun appends the render to the run catalog. Catalog trouble is worth
// a warning, never a failed render.
func recordRun(opts *options, m *meta.Metadata, set *sample.Set, mode scale.Mode, bounds scale.Bounds, res render.Result, started time.Time) {
	dataHash, err := catalog.FingerprintFile(opts.dataPath)
	if err != nil {
		log.Printf("Catalog: %v", err)
		return
	}
	metaHash, err := catalog.FingerprintFile(opts.metaPath)
	if err != nil {
		log.Printf("Catalog: %v", err)
		return
	}
	cat, err := catalog.Open(opts.catalogPath)
	if err != nil {
		log.Printf("Catalog: %v", err)
		return
	}
	defer cat.Close()

	id, err := cat.Record(catalog.Run{
		StartedAt:  started,
		DataPath:   opts.dataPath,
		DataHash:   dataHash,
		MetaPath:   opts.metaPath,
		MetaHash:   metaHash,
		Rows:       res.Points,
		ScaleMode:  string(mode),
		ScaleMin:   bounds.Min,
		ScaleMax:   bounds.Max,
		Cmap:       opts.cmapName,
		OutputPath: opts.outPath,
	})
	if err != nil {
		log.Printf("Catalog: %v", err)
		return
	}
	log.Printf("Catalog: recorded run %d", id)
}

// exitCode maps configuration mistakes to 2 (matching flag-usage failures)
// and everything else that went wrong to 1.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var (
		uerr  *usageError
		serr  *scale.ConfigError
		cerr  *cmap.ConfigError
		mderr *cmap.UnknownMapError
	)
	if errors.As(err, &uerr) || errors.As(err, &serr) || errors.As(err, &cerr) || errors.As(err, &mderr) {
		return 2
	}
	return 1
}
