package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all launcher configuration. Read once at boot; no
// hot-reload.
type Config struct {
	Matrix  MatrixConfig
	Loop    LoopConfig
	Input   InputConfig
	Rescue  RescueConfig
	HTTP    HTTPConfig
	Apps    AppsConfig
	Logging LogConfig
}

// MatrixConfig holds the chained panel geometry.
type MatrixConfig struct {
	PanelWidth  int `envconfig:"MATRIX_PANEL_WIDTH" default:"64"`
	PanelHeight int `envconfig:"MATRIX_PANEL_HEIGHT" default:"32"`
	ChainLength int `envconfig:"MATRIX_CHAIN_LENGTH" default:"4"`
	Parallel    int `envconfig:"MATRIX_PARALLEL" default:"1"`
	Brightness  int `envconfig:"MATRIX_BRIGHTNESS" default:"60"`
}

// LoopConfig tunes the scheduler loop.
type LoopConfig struct {
	FrameRate     int           `envconfig:"FRAME_RATE" default:"60"`
	HangThreshold int           `envconfig:"HANG_THRESHOLD" default:"5"`
	StopGrace     time.Duration `envconfig:"STOP_GRACE" default:"2s"`
}

// InputConfig tunes event normalization.
type InputConfig struct {
	Debounce  time.Duration `envconfig:"INPUT_DEBOUNCE" default:"40ms"`
	NavRepeat time.Duration `envconfig:"NAV_REPEAT" default:"140ms"`
}

// RescueConfig tunes the fallback mode.
type RescueConfig struct {
	HoldTime      time.Duration `envconfig:"RESCUE_HOLD" default:"5s"`
	DropTolerance time.Duration `envconfig:"RESCUE_DROP_TOLERANCE" default:"350ms"`
	Cooldown      time.Duration `envconfig:"RESCUE_COOLDOWN" default:"3s"`
}

// HTTPConfig holds the debug/control surface configuration.
type HTTPConfig struct {
	Enabled bool   `envconfig:"HTTP_ENABLED" default:"true"`
	Addr    string `envconfig:"HTTP_ADDR" default:":8090"`
}

// AppsConfig controls app discovery.
type AppsConfig struct {
	ManifestDir string `envconfig:"APPS_MANIFEST_DIR" default:""`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Matrix: MatrixConfig{
			PanelWidth:  64,
			PanelHeight: 32,
			ChainLength: 4,
			Parallel:    1,
			Brightness:  60,
		},
		Loop: LoopConfig{
			FrameRate:     60,
			HangThreshold: 5,
			StopGrace:     2 * time.Second,
		},
		Input: InputConfig{
			Debounce:  40 * time.Millisecond,
			NavRepeat: 140 * time.Millisecond,
		},
		Rescue: RescueConfig{
			HoldTime:      5 * time.Second,
			DropTolerance: 350 * time.Millisecond,
			Cooldown:      3 * time.Second,
		},
		HTTP: HTTPConfig{
			Enabled: true,
			Addr:    ":8090",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// Validate rejects unusable geometry or pacing.
func (c *Config) Validate() error {
	m := c.Matrix
	if m.PanelWidth <= 0 || m.PanelHeight <= 0 || m.ChainLength <= 0 || m.Parallel <= 0 {
		return fmt.Errorf("invalid matrix geometry: %dx%d chain %d parallel %d",
			m.PanelWidth, m.PanelHeight, m.ChainLength, m.Parallel)
	}
	if c.Loop.FrameRate <= 0 || c.Loop.FrameRate > 240 {
		return fmt.Errorf("invalid frame rate: %d", c.Loop.FrameRate)
	}
	if c.Loop.HangThreshold <= 0 {
		return fmt.Errorf("invalid hang threshold: %d", c.Loop.HangThreshold)
	}
	return nil
}

// FramePeriod returns the tick period derived from the frame rate.
func (c *Config) FramePeriod() time.Duration {
	return time.Second / time.Duration(c.Loop.FrameRate)
}
