package nodearea

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the tunables of an area plugin and its extensions. It is
// loaded from TOML; every field has a usable default.
type Config struct {
	// ZoomIntensity is the relative zoom step of one wheel notch.
	ZoomIntensity float64 `toml:"zoom_intensity"`
	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `toml:"log_level"`

	Restrict  RestrictConfig  `toml:"restrict"`
	Snap      SnapConfig      `toml:"snap"`
	ZoomAt    ZoomAtConfig    `toml:"zoom_at"`
	Selection SelectionConfig `toml:"selection"`
}

// RestrictConfig bounds the area transform.
type RestrictConfig struct {
	Enabled bool    `toml:"enabled"`
	MinZoom float64 `toml:"min_zoom"`
	MaxZoom float64 `toml:"max_zoom"`
	Left    float64 `toml:"left"`
	Top     float64 `toml:"top"`
	Right   float64 `toml:"right"`
	Bottom  float64 `toml:"bottom"`
}

// SnapConfig aligns node positions to a grid.
type SnapConfig struct {
	Enabled bool    `toml:"enabled"`
	Size    float64 `toml:"size"`
	// Dynamic snaps while dragging; otherwise nodes snap once released.
	Dynamic bool `toml:"dynamic"`
}

// ZoomAtConfig controls fit-to-nodes.
type ZoomAtConfig struct {
	Scale float64 `toml:"scale"`
	// Duration of the animated transition in seconds; 0 jumps.
	Duration float64 `toml:"duration"`
}

// SelectionConfig controls node selection.
type SelectionConfig struct {
	Enabled          bool `toml:"enabled"`
	AccumulateOnCtrl bool `toml:"accumulate_on_ctrl"`
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		ZoomIntensity: DefaultZoomIntensity,
		LogLevel:      "info",
		Restrict: RestrictConfig{
			MinZoom: 0.1,
			MaxZoom: 1,
			Right:   1000,
			Bottom:  1000,
		},
		Snap:      SnapConfig{Size: 16, Dynamic: true},
		ZoomAt:    ZoomAtConfig{Scale: 0.9},
		Selection: SelectionConfig{Enabled: true, AccumulateOnCtrl: true},
	}
}

// ParseConfig decodes TOML data over the defaults and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a TOML file. A missing file yields the
// defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first out-of-range value, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	if c.ZoomIntensity <= 0 || c.ZoomIntensity >= 1 {
		return fmt.Errorf("%w: zoom_intensity must be in (0, 1), got %v", ErrInvalidConfig, c.ZoomIntensity)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.Restrict.MinZoom <= 0 || c.Restrict.MaxZoom < c.Restrict.MinZoom {
		return fmt.Errorf("%w: restrict zoom range [%v, %v]", ErrInvalidConfig, c.Restrict.MinZoom, c.Restrict.MaxZoom)
	}
	if c.Restrict.Right < c.Restrict.Left || c.Restrict.Bottom < c.Restrict.Top {
		return fmt.Errorf("%w: restrict translation box is inverted", ErrInvalidConfig)
	}
	if c.Snap.Size <= 0 {
		return fmt.Errorf("%w: snap size must be positive, got %v", ErrInvalidConfig, c.Snap.Size)
	}
	if c.ZoomAt.Scale <= 0 || c.ZoomAt.Scale > 1 {
		return fmt.Errorf("%w: zoom_at scale must be in (0, 1], got %v", ErrInvalidConfig, c.ZoomAt.Scale)
	}
	if c.ZoomAt.Duration < 0 {
		return fmt.Errorf("%w: zoom_at duration must not be negative", ErrInvalidConfig)
	}
	return nil
}
