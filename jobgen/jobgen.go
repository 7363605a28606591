// Package jobgen turns a YAML job spec into the Slurm submission script that
// runs the extraction executable, plus the metadata JSON the renderer reads
// afterwards. It only writes files; submitting the script and watching the
// job is the scheduler's business.
package jobgen

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"basinmap/strutil"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ConfigError reports an invalid job spec.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "jobgen: " + e.Msg }

// Region is the geographic extraction window in decimal degrees.
type Region struct {
	LonMin float64 `yaml:"lon_min"`
	LonMax float64 `yaml:"lon_max"`
	LatMin float64 `yaml:"lat_min"`
	LatMax float64 `yaml:"lat_max"`
}

// Spec describes one extraction job.
type Spec struct {
	Name       string  `yaml:"name"`
	Model      string  `yaml:"model"`
	Horizon    string  `yaml:"horizon"` // e.g. Z1.0, Z2.5
	Region     Region  `yaml:"region"`
	Spacing    float64 `yaml:"spacing"`   // grid step in degrees
	MaxDepth   float64 `yaml:"max_depth"` // meters; 0 omits it from metadata
	Executable string  `yaml:"executable"`
	Queue      string  `yaml:"queue"`
	Account    string  `yaml:"account"`
	Nodes      int     `yaml:"nodes"`
	Wallclock  string  `yaml:"wallclock"` // HH:MM:SS
}

var wallclockRE = regexp.MustCompile(`^\d{1,3}:\d{2}:\d{2}$`)

// LoadSpec reads and validates a job spec from a YAML file.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jobgen: read %s: %w", path, err)
	}
	var s Spec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("parse %s: %v", path, err)}
	}
	s.fillDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Spec) fillDefaults() {
	s.Horizon = strutil.NormalizeUpper(s.Horizon)
	if s.Queue == "" {
		s.Queue = "normal"
	}
	if s.Nodes == 0 {
		s.Nodes = 1
	}
	if s.Wallclock == "" {
		s.Wallclock = "01:00:00"
	}
}

// Validate checks the spec for fields the scheduler or executable would
// reject anyway, so the failure happens here instead of hours into a queue.
func (s *Spec) Validate() error {
	switch {
	case strings.TrimSpace(s.Name) == "":
		return &ConfigError{Msg: "job name is required"}
	case strings.TrimSpace(s.Model) == "":
		return &ConfigError{Msg: "model name is required"}
	case strings.TrimSpace(s.Executable) == "":
		return &ConfigError{Msg: "executable path is required"}
	case s.Region.LonMin >= s.Region.LonMax:
		return &ConfigError{Msg: fmt.Sprintf("lon_min %g must be below lon_max %g", s.Region.LonMin, s.Region.LonMax)}
	case s.Region.LatMin >= s.Region.LatMax:
		return &ConfigError{Msg: fmt.Sprintf("lat_min %g must be below lat_max %g", s.Region.LatMin, s.Region.LatMax)}
	case s.Spacing <= 0:
		return &ConfigError{Msg: "spacing must be positive"}
	case s.Nodes < 1:
		return &ConfigError{Msg: "nodes must be at least 1"}
	case !wallclockRE.MatchString(s.Wallclock):
		return &ConfigError{Msg: fmt.Sprintf("wallclock %q must be HH:MM:SS", s.Wallclock)}
	case s.MaxDepth < 0:
		return &ConfigError{Msg: "max_depth cannot be negative"}
	}
	return nil
}

// GridShape returns the nx, ny node counts the extractor will produce for
// this region and spacing, inclusive of both edges.
func (s *Spec) GridShape() (nx, ny int) {
	// The epsilon keeps an exact multiple (1.0 / 0.1) from flooring one
	// node short under binary floating point.
	const eps = 1e-9
	nx = int(math.Floor((s.Region.LonMax-s.Region.LonMin)/s.Spacing+eps)) + 1
	ny = int(math.Floor((s.Region.LatMax-s.Region.LatMin)/s.Spacing+eps)) + 1
	return nx, ny
}

// DataFileName is the data file the generated script tells the extractor to
// write, and therefore the file the renderer should be pointed at.
func (s *Spec) DataFileName() string { return s.Name + ".txt" }

// MetaFileName is the metadata companion written next to the script.
func (s *Spec) MetaFileName() string { return s.Name + "_meta.json" }

// ScriptFileName is the generated submission script.
func (s *Spec) ScriptFileName() string { return s.Name + ".sbatch" }

var scriptTemplate = template.Must(template.New("sbatch").Parse(`#!/bin/bash
#SBATCH -J {{.Name}}
#SBATCH -p {{.Queue}}
#SBATCH -N {{.Nodes}}
#SBATCH -t {{.Wallclock}}
{{- if .Account}}
#SBATCH -A {{.Account}}
{{- end}}
#SBATCH -o {{.Name}}.%j.out

srun {{.Executable}} \
	-m {{.Model}} \
	-z {{.Horizon}} \
	-b {{.Region.LonMin}},{{.Region.LatMin}},{{.Region.LonMax}},{{.Region.LatMax}} \
	-s {{.Spacing}} \
	-o {{.DataFileName}}
`))

// Script renders the Slurm submission script text.
func (s *Spec) Script() (string, error) {
	var buf bytes.Buffer
	if err := scriptTemplate.Execute(&buf, s); err != nil {
		return "", fmt.Errorf("jobgen: render script: %w", err)
	}
	return buf.String(), nil
}

// metadataFile mirrors the JSON layout the renderer's meta package reads.
// The max-depth key keeps the extractor's historical spaced spelling.
type metadataFile struct {
	LatList  []float64 `json:"lat_list"`
	LonList  []float64 `json:"lon_list"`
	NX       int       `json:"nx"`
	NY       int       `json:"ny"`
	MaxDepth *float64  `json:"max depth,omitempty"`
	Model    string    `json:"model"`
	Horizon  string    `json:"horizon"`
}

// Metadata builds the metadata JSON bytes for the job's grid.
func (s *Spec) Metadata() ([]byte, error) {
	nx, ny := s.GridShape()
	m := metadataFile{
		LatList: axis(s.Region.LatMin, s.Spacing, ny),
		LonList: axis(s.Region.LonMin, s.Spacing, nx),
		NX:      nx,
		NY:      ny,
		Model:   s.Model,
		Horizon: s.Horizon,
	}
	if s.MaxDepth > 0 {
		m.MaxDepth = &s.MaxDepth
	}
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("jobgen: marshal metadata: %w", err)
	}
	return out, nil
}

func axis(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// WriteFiles writes the submission script and metadata JSON into dir and
// returns their paths.
func WriteFiles(s *Spec, dir string) (scriptPath, metaPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("jobgen: ensure dir: %w", err)
	}

	script, err := s.Script()
	if err != nil {
		return "", "", err
	}
	scriptPath = filepath.Join(dir, s.ScriptFileName())
	if err := os.WriteFile(scriptPath, []byte(script), 0o755); err != nil {
		return "", "", fmt.Errorf("jobgen: write %s: %w", scriptPath, err)
	}

	metaBytes, err := s.Metadata()
	if err != nil {
		return "", "", err
	}
	metaPath = filepath.Join(dir, s.MetaFileName())
	if err := os.WriteFile(metaPath, metaBytes, 0o644); err != nil {
		return "", "", fmt.Errorf("jobgen: write %s: %w", metaPath, err)
	}
	return scriptPath, metaPath, nil
}
