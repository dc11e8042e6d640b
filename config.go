package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const configFileName = ".mindcanvas.yaml"

type Config struct {
	SaveDirectory string `yaml:"save_directory"`
	StartMenu     bool   `yaml:"start_menu"`
	Confirmations bool   `yaml:"confirmations"`
	Autosave      bool   `yaml:"autosave"`
	LogFile       string `yaml:"log_file"`
	LogLevel      string `yaml:"log_level"`
	HistoryLimit  int    `yaml:"history_limit"`

	Zoom   ZoomConfig   `yaml:"zoom"`
	Layout LayoutConfig `yaml:"layout"`
	Router RouterConfig `yaml:"router"`
}

type ZoomConfig struct {
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Step float64 `yaml:"step"`
}

type LayoutConfig struct {
	Spacing       float64 `yaml:"spacing"`
	LevelHeight   float64 `yaml:"level_height"`
	TopMargin     float64 `yaml:"top_margin"`
	MaxNodeWidth  float64 `yaml:"max_node_width"`
	OrphanColumns int     `yaml:"orphan_columns"`
}

type RouterConfig struct {
	Curvature    float64 `yaml:"curvature"`
	CurvatureCap float64 `yaml:"curvature_cap"`
	HitTolerance float64 `yaml:"hit_tolerance"`
}

func defaultConfig() *Config {
	return &Config{
		StartMenu:     true,
		Confirmations: true,
		Autosave:      true,
		LogLevel:      "info",
		HistoryLimit:  200,
		Zoom:          ZoomConfig{Min: defaultMinZoom, Max: defaultMaxZoom, Step: 0.1},
		Layout: LayoutConfig{
			Spacing:      4,
			LevelHeight:  6,
			TopMargin:    2,
			MaxNodeWidth: maxNodeWidth,
		},
		Router: RouterConfig{
			Curvature:    defaultCurvature,
			CurvatureCap: defaultCurvatureCap,
			HitTolerance: defaultHitTolerance,
		},
	}
}

// loadConfig reads the YAML config at path over the defaults. An empty
// path means ~/.mindcanvas.yaml, which is allowed to be missing.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	homeDir, homeErr := os.UserHomeDir()
	explicit := path != ""
	if !explicit {
		if homeErr != nil {
			return config, nil
		}
		path = filepath.Join(homeDir, configFileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if config.SaveDirectory != "" {
		config.SaveDirectory = expandPath(config.SaveDirectory, homeDir)
	}
	if config.LogFile != "" {
		config.LogFile = expandPath(config.LogFile, homeDir)
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return config, nil
}

func expandPath(value, homeDir string) string {
	if strings.HasPrefix(value, "~") && homeDir != "" {
		value = filepath.Join(homeDir, strings.TrimPrefix(value, "~"))
	}
	if !filepath.IsAbs(value) {
		if absPath, err := filepath.Abs(value); err == nil {
			value = absPath
		}
	}
	return value
}

func (c *Config) validate() error {
	if c.Zoom.Min <= 0 || c.Zoom.Max < c.Zoom.Min {
		return fmt.Errorf("zoom limits must satisfy 0 < min <= max, got %g..%g", c.Zoom.Min, c.Zoom.Max)
	}
	if c.Zoom.Step <= 0 {
		return fmt.Errorf("zoom step must be positive, got %g", c.Zoom.Step)
	}
	if c.Layout.LevelHeight <= 0 || c.Layout.MaxNodeWidth < minNodeWidth {
		return fmt.Errorf("layout level_height must be positive and max_node_width at least %d", minNodeWidth)
	}
	if c.Layout.Spacing < 0 || c.Layout.TopMargin < 0 || c.Layout.OrphanColumns < 0 {
		return fmt.Errorf("layout spacing, top_margin and orphan_columns must not be negative, got %g, %g, %d",
			c.Layout.Spacing, c.Layout.TopMargin, c.Layout.OrphanColumns)
	}
	if c.Router.Curvature < 0 || c.Router.CurvatureCap < 0 || c.Router.HitTolerance < 0 {
		return errors.New("router settings must not be negative")
	}
	return nil
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}

// MapDirectory is where the store keeps map files.
func (c *Config) MapDirectory() string {
	if c.SaveDirectory != "" {
		return filepath.Join(c.SaveDirectory, "maps")
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".mindcanvas", "maps")
	}
	return "maps"
}

func (c *Config) slogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c *Config) newLayoutEngine(estimator SizeEstimator) *LayoutEngine {
	e := NewLayoutEngine(estimator)
	e.Spacing = c.Layout.Spacing
	e.LevelHeight = c.Layout.LevelHeight
	e.TopMargin = c.Layout.TopMargin
	e.MaxNodeWidth = c.Layout.MaxNodeWidth
	e.OrphanColumns = c.Layout.OrphanColumns
	return e
}

func (c *Config) newEdgeRouter(geometry GeometryProvider, viewport *Viewport) *EdgeRouter {
	r := NewEdgeRouter(geometry, viewport)
	r.Curvature = c.Router.Curvature
	r.CurvatureCap = c.Router.CurvatureCap
	r.HitTolerance = c.Router.HitTolerance
	return r
}
