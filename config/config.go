package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds renderer defaults loaded from an optional YAML file.
// Command-line flags override anything set here.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Catalog CatalogConfig `yaml:"catalog"`
	Logging LoggingConfig `yaml:"logging"`
}

// RenderConfig contains plot appearance defaults.
type RenderConfig struct {
	Cmap      string  `yaml:"cmap"`
	Alpha     float64 `yaml:"alpha"`
	Style     string  `yaml:"style"`
	ScaleMode string  `yaml:"scale_mode"`
	DPI       int     `yaml:"dpi"`
	WidthIn   float64 `yaml:"width_in"`
	HeightIn  float64 `yaml:"height_in"`
}

// CatalogConfig contains run-catalog settings.
type CatalogConfig struct {
	Path string `yaml:"path"` // empty disables the catalog
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	File string `yaml:"file"` // tee log output to this file when set
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Cmap:      "viridis",
			Alpha:     1.0,
			Style:     "auto",
			ScaleMode: "auto",
			DPI:       300,
			WidthIn:   10,
			HeightIn:  8,
		},
	}
}

// Load loads configuration from a YAML file, filling unset fields with the
// built-in defaults.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.Render.Cmap == "" {
		c.Render.Cmap = def.Render.Cmap
	}
	if c.Render.Alpha == 0 {
		c.Render.Alpha = def.Render.Alpha
	}
	if c.Render.Style == "" {
		c.Render.Style = def.Render.Style
	}
	if c.Render.ScaleMode == "" {
		c.Render.ScaleMode = def.Render.ScaleMode
	}
	if c.Render.DPI == 0 {
		c.Render.DPI = def.Render.DPI
	}
	if c.Render.WidthIn == 0 {
		c.Render.WidthIn = def.Render.WidthIn
	}
	if c.Render.HeightIn == 0 {
		c.Render.HeightIn = def.Render.HeightIn
	}
}

// Print displays the effective configuration.
func (c *Config) Print() {
	fmt.Printf("Render: cmap=%s alpha=%.2f style=%s scale=%s %dx%din @%ddpi\n",
		c.Render.Cmap, c.Render.Alpha, c.Render.Style, c.Render.ScaleMode,
		int(c.Render.WidthIn), int(c.Render.HeightIn), c.Render.DPI)
	if c.Catalog.Path != "" {
		fmt.Printf("Catalog: %s\n", c.Catalog.Path)
	}
	if c.Logging.File != "" {
		fmt.Printf("Logging: %s\n", c.Logging.File)
	}
}
