package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"

	"refillmap/internal/geo"
	"refillmap/internal/viewport"
)

// Config holds all application configuration.
type Config struct {
	Mode              string              `mapstructure:"mode"`
	MinScale          float64             `mapstructure:"min_scale"`
	MaxScale          float64             `mapstructure:"max_scale"`
	Initial           InitialConfig       `mapstructure:"initial"`
	Cluster           ClusterConfig       `mapstructure:"cluster"`
	VisibilityPadding float64             `mapstructure:"visibility_padding"`
	Accommodation     AccommodationConfig `mapstructure:"accommodation"`
	Gesture           GestureConfig       `mapstructure:"gesture"`
	HitRadiusPx       float64             `mapstructure:"hit_radius_px"`
	Terminal          TerminalConfig      `mapstructure:"terminal"`
	Data              DataConfig          `mapstructure:"data"`
	Log               LogConfig           `mapstructure:"log"`
}

type InitialConfig struct {
	CenterX float64 `mapstructure:"center_x"`
	CenterY float64 `mapstructure:"center_y"`
	Zoom    float64 `mapstructure:"zoom"`
}

type ClusterConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	PixelRadius float64 `mapstructure:"pixel_radius"`
	MinCount    int     `mapstructure:"min_count"`
	DisableZoom float64 `mapstructure:"disable_zoom"`
}

type AccommodationConfig struct {
	OffsetPx  float64       `mapstructure:"offset_px"`
	Duration  time.Duration `mapstructure:"duration"`
	FocusZoom float64       `mapstructure:"focus_zoom"`
}

type GestureConfig struct {
	WheelSensitivity float64 `mapstructure:"wheel_sensitivity"`
	WheelStep        float64 `mapstructure:"wheel_step"`
	ClickEpsilonPx   float64 `mapstructure:"click_epsilon_px"`
}

// TerminalConfig maps character cells to screen pixels
type TerminalConfig struct {
	CellWidth float64 `mapstructure:"cell_width"`
	Aspect    float64 `mapstructure:"aspect"`
}

// CellSize returns the pixel width and height of one character cell
func (t TerminalConfig) CellSize() (float64, float64) {
	return t.CellWidth, t.CellWidth * t.Aspect
}

type DataConfig struct {
	Stations string `mapstructure:"stations"`
	Basemap  string `mapstructure:"basemap"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

const (
	ModeGeographic = "geographic"
	ModePlane      = "plane"
)

// Load reads configuration from file and environment variables.
// An empty path searches for refillmap.yaml in the working directory and
// $HOME/.refillmap; a missing file is fine in that case. A non-empty mode
// takes priority because the defaults depend on it.
func Load(path, mode string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("refillmap")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.refillmap")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	// Environment variables: REFILLMAP_CLUSTER_PIXEL_RADIUS → cluster.pixel_radius
	v.SetEnvPrefix("REFILLMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", ModeGeographic)
	if mode != "" {
		v.Set("mode", mode)
	}
	setDefaults(v, normalizeMode(v.GetString("mode")))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Mode = normalizeMode(cfg.Mode)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Defaults returns the built-in configuration for a mode without reading
// any file or environment
func Defaults(mode string) (*Config, error) {
	v := viper.New()
	mode = normalizeMode(mode)
	v.SetDefault("mode", mode)
	setDefaults(v, mode)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal defaults: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, mode string) {
	if mode == ModePlane {
		v.SetDefault("min_scale", 0.25)
		v.SetDefault("max_scale", 64)
		v.SetDefault("initial.center_x", 50)
		v.SetDefault("initial.center_y", 50)
		v.SetDefault("initial.zoom", 2)
		v.SetDefault("cluster.disable_zoom", 3)
	} else {
		v.SetDefault("min_scale", math.Exp2(5))
		v.SetDefault("max_scale", math.Exp2(18))
		v.SetDefault("initial.center_x", -0.1278)
		v.SetDefault("initial.center_y", 51.5074)
		v.SetDefault("initial.zoom", 14)
		v.SetDefault("cluster.disable_zoom", 15)
	}

	v.SetDefault("cluster.enabled", true)
	v.SetDefault("cluster.pixel_radius", 60)
	v.SetDefault("cluster.min_count", 2)
	v.SetDefault("visibility_padding", 0.5)
	v.SetDefault("accommodation.offset_px", 150)
	v.SetDefault("accommodation.duration", 800*time.Millisecond)
	v.SetDefault("accommodation.focus_zoom", 0)
	v.SetDefault("gesture.wheel_sensitivity", 0.0015)
	v.SetDefault("gesture.wheel_step", 100)
	v.SetDefault("gesture.click_epsilon_px", 4)
	v.SetDefault("hit_radius_px", 12)
	v.SetDefault("terminal.cell_width", 8)
	v.SetDefault("terminal.aspect", 2)
	v.SetDefault("data.stations", "")
	v.SetDefault("data.basemap", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

func normalizeMode(mode string) string {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "plane", "normalized":
		return ModePlane
	case "", "geographic", "geo", "mercator":
		return ModeGeographic
	default:
		return mode
	}
}

// Validate checks that every option is usable, reporting all problems at once.
func (c *Config) Validate() error {
	var errs []string

	if _, ok := geo.SpaceByName(c.Mode); !ok {
		errs = append(errs, fmt.Sprintf("mode must be geographic or plane, got %q", c.Mode))
	}
	if !(c.MinScale > 0) || math.IsInf(c.MinScale, 0) {
		errs = append(errs, fmt.Sprintf("min_scale must be positive, got %g", c.MinScale))
	}
	if !(c.MaxScale >= c.MinScale) || math.IsInf(c.MaxScale, 0) {
		errs = append(errs, fmt.Sprintf("max_scale must be finite and >= min_scale, got %g < %g", c.MaxScale, c.MinScale))
	}
	if math.IsNaN(c.Initial.Zoom) || math.IsInf(c.Initial.Zoom, 0) {
		errs = append(errs, "initial.zoom must be finite")
	}
	if c.Cluster.PixelRadius < 0 {
		errs = append(errs, "cluster.pixel_radius must not be negative")
	}
	if c.Cluster.MinCount < 2 {
		errs = append(errs, fmt.Sprintf("cluster.min_count must be at least 2, got %d", c.Cluster.MinCount))
	}
	if c.VisibilityPadding < 0 {
		errs = append(errs, "visibility_padding must not be negative")
	}
	if c.Accommodation.Duration < 0 {
		errs = append(errs, "accommodation.duration must not be negative")
	}
	if c.Accommodation.FocusZoom < 0 {
		errs = append(errs, "accommodation.focus_zoom must not be negative")
	}
	if !(c.Gesture.WheelSensitivity > 0) {
		errs = append(errs, "gesture.wheel_sensitivity must be positive")
	}
	if !(c.Gesture.WheelStep > 0) {
		errs = append(errs, "gesture.wheel_step must be positive")
	}
	if c.Gesture.ClickEpsilonPx < 0 {
		errs = append(errs, "gesture.click_epsilon_px must not be negative")
	}
	if !(c.HitRadiusPx > 0) {
		errs = append(errs, "hit_radius_px must be positive")
	}
	if !(c.Terminal.CellWidth > 0) || !(c.Terminal.Aspect > 0) {
		errs = append(errs, "terminal.cell_width and terminal.aspect must be positive")
	}
	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level %q is not a known level", c.Log.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Space returns the coordinate space strategy for the configured mode
func (c *Config) Space() geo.Space {
	space, _ := geo.SpaceByName(c.Mode)
	return space
}

// Limits returns the viewport scale bounds
func (c *Config) Limits() viewport.Limits {
	return viewport.Limits{MinScale: c.MinScale, MaxScale: c.MaxScale}
}

// InitialCenter returns the world point the map opens on
func (c *Config) InitialCenter() geo.Point {
	return geo.Pt(c.Initial.CenterX, c.Initial.CenterY)
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Stations string
	Basemap  string
	LogFile  string
	Aspect   float64
}

// Resolve applies CLI flags on top of the loaded configuration.
// Flags take priority when non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.Stations != "" {
		c.Data.Stations = flags.Stations
	}
	if flags.Basemap != "" {
		c.Data.Basemap = flags.Basemap
	}
	if flags.Aspect > 0 {
		c.Terminal.Aspect = flags.Aspect
	}
	// -d means debug output, so it also raises the level
	if flags.LogFile != "" {
		c.Log.File = flags.LogFile
		c.Log.Level = "debug"
	}
}
