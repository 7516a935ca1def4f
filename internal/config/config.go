// Package config loads application configuration from file and
// environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	Dataset DatasetConfig `mapstructure:"dataset"`
	Map     MapConfig     `mapstructure:"map"`
}

// BackendConfig points at the segmentation service.
type BackendConfig struct {
	URL            string `mapstructure:"url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// DatasetConfig selects the class list and model sent with each
// prediction request.
type DatasetConfig struct {
	Classes []string `mapstructure:"classes"`
	Model   string   `mapstructure:"model"`
	// MaskThreshold binarizes the soft output when promoting a
	// prediction to editable polygons.
	MaskThreshold float64 `mapstructure:"mask_threshold"`
}

// MapConfig configures the basemap and extent selection.
type MapConfig struct {
	TileURL      string  `mapstructure:"tile_url"`
	CenterLat    float64 `mapstructure:"center_lat"`
	CenterLng    float64 `mapstructure:"center_lng"`
	Zoom         int     `mapstructure:"zoom"`
	ExtentSide   float64 `mapstructure:"extent_side"`
	ShowPixelMap bool    `mapstructure:"show_pixel_map"`
}

// Load reads configuration from config.yaml and GLACIER_* environment
// variables.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults: the Karakoram test region used during development.
	v.SetDefault("backend.url", "http://localhost:5000")
	v.SetDefault("backend.timeout_seconds", 30)
	v.SetDefault("dataset.classes", []string{"clean_ice", "debris"})
	v.SetDefault("dataset.model", "unet_dropout")
	v.SetDefault("dataset.mask_threshold", 0.6)
	v.SetDefault("map.tile_url", "https://tile.openstreetmap.org/{z}/{x}/{y}.png")
	v.SetDefault("map.center_lat", 35.72)
	v.SetDefault("map.center_lng", 75.35)
	v.SetDefault("map.zoom", 11)
	v.SetDefault("map.extent_side", 10000)
	v.SetDefault("map.show_pixel_map", false)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: GLACIER_BACKEND_URL → backend.url
	v.SetEnvPrefix("GLACIER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Backend.URL == "" {
		errs = append(errs, "backend.url is required")
	}
	if c.Backend.TimeoutSeconds <= 0 {
		errs = append(errs, "backend.timeout_seconds must be positive")
	}
	if len(c.Dataset.Classes) == 0 {
		errs = append(errs, "dataset.classes must not be empty")
	}
	if c.Dataset.Model == "" {
		errs = append(errs, "dataset.model is required")
	}
	if c.Dataset.MaskThreshold < 0 || c.Dataset.MaskThreshold > 1 {
		errs = append(errs, fmt.Sprintf("dataset.mask_threshold must be in [0,1], got %g", c.Dataset.MaskThreshold))
	}
	if c.Map.TileURL == "" {
		errs = append(errs, "map.tile_url is required")
	}
	if c.Map.Zoom < 1 || c.Map.Zoom > 19 {
		errs = append(errs, fmt.Sprintf("map.zoom must be 1-19, got %d", c.Map.Zoom))
	}
	if c.Map.ExtentSide <= 0 {
		errs = append(errs, "map.extent_side must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
