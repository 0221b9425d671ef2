// Package config loads tool settings from defaults, an optional YAML file
// and V2M_-prefixed environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config carries every tunable of the export pipeline.
type Config struct {
	ProjectName string `yaml:"project_name" env:"PROJECT_NAME"`
	InputDir    string `yaml:"input_dir" env:"INPUT_DIR"`
	OutputPath  string `yaml:"output_path" env:"OUTPUT_PATH"`

	// Workers limits parallel frame extraction. Zero means auto-size
	// from CPU count and available memory.
	Workers int `yaml:"workers" env:"WORKERS"`

	// ImageMaxWidth downsizes burned frames wider than this many pixels
	// before embedding. Zero disables downsizing.
	ImageMaxWidth int `yaml:"image_max_width" env:"IMAGE_MAX_WIDTH"`
	// ImageWidthInches is the display width of embedded images.
	ImageWidthInches float64 `yaml:"image_width_inches" env:"IMAGE_WIDTH_INCHES"`

	DefaultColor     string `yaml:"default_color" env:"DEFAULT_COLOR"`
	DefaultThickness int    `yaml:"default_thickness" env:"DEFAULT_THICKNESS"`

	// SourceLink, when set, is rendered as a QR code on the title page.
	SourceLink string `yaml:"source_link" env:"SOURCE_LINK"`

	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// Region suggestion tuning.
	SuggestMinArea       int     `yaml:"suggest_min_area" env:"SUGGEST_MIN_AREA"`
	SuggestEdgeThreshold float64 `yaml:"suggest_edge_threshold" env:"SUGGEST_EDGE_THRESHOLD"`
	SuggestMax           int     `yaml:"suggest_max" env:"SUGGEST_MAX"`
}

// Palette maps the named annotation colors to R,G,B values.
var Palette = map[string][3]uint8{
	"red":    {255, 0, 0},
	"blue":   {0, 0, 255},
	"green":  {0, 255, 0},
	"yellow": {255, 255, 0},
	"orange": {255, 165, 0},
	"purple": {128, 0, 128},
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		ProjectName:          "Manual",
		InputDir:             ".",
		OutputPath:           "manual.docx",
		ImageMaxWidth:        1280,
		ImageWidthInches:     5.0,
		DefaultColor:         "red",
		DefaultThickness:     3,
		LogLevel:             "info",
		SuggestMinArea:       500,
		SuggestEdgeThreshold: 30.0,
		SuggestMax:           10,
	}
}

// Load builds the effective configuration: defaults, then the YAML file at
// path if non-empty, then V2M_ environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "V2M_"}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges that would otherwise surface deep inside the
// pipeline.
func (c Config) Validate() error {
	if c.DefaultThickness < 1 || c.DefaultThickness > 10 {
		return fmt.Errorf("default_thickness %d out of range 1-10", c.DefaultThickness)
	}
	if _, err := ParseColor(c.DefaultColor); err != nil {
		return fmt.Errorf("default_color: %w", err)
	}
	if c.ImageWidthInches <= 0 {
		return fmt.Errorf("image_width_inches must be positive, got %g", c.ImageWidthInches)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// Color returns the default annotation color as R,G,B.
func (c Config) Color() [3]uint8 {
	col, err := ParseColor(c.DefaultColor)
	if err != nil {
		return Palette["red"]
	}
	return col
}

// ParseColor accepts a palette name or a "#rrggbb" hex triple.
func ParseColor(s string) ([3]uint8, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if col, ok := Palette[name]; ok {
		return col, nil
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		v, err := strconv.ParseUint(name[1:], 16, 32)
		if err != nil {
			return [3]uint8{}, fmt.Errorf("bad hex color %q", s)
		}
		return [3]uint8{uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
	}
	return [3]uint8{}, fmt.Errorf("unknown color %q", s)
}
