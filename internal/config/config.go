package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/inamate/canvasedit/internal/engine"
)

type Config struct {
	Port           int           `envconfig:"PORT" default:"8080"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	JWTSecret      string        `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	TokenTTL       time.Duration `envconfig:"TOKEN_TTL" default:"12h"`
	AllowedOrigins string        `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`

	SnapEnabled   bool    `envconfig:"SNAP_ENABLED" default:"true"`
	SnapScreen    bool    `envconfig:"SNAP_SCREEN" default:"true"`
	SnapCenter    bool    `envconfig:"SNAP_CENTER" default:"true"`
	SnapSources   bool    `envconfig:"SNAP_SOURCES" default:"true"`
	SnapDistance  float64 `envconfig:"SNAP_DISTANCE" default:"10"`
	HandleRadius  float64 `envconfig:"HANDLE_RADIUS" default:"6"`
	DragThreshold float64 `envconfig:"DRAG_THRESHOLD" default:"2"`

	CanvasWidth  float64 `envconfig:"CANVAS_WIDTH" default:"1920"`
	CanvasHeight float64 `envconfig:"CANVAS_HEIGHT" default:"1080"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// EngineSettings returns the interaction settings described by cfg.
func (c *Config) EngineSettings() engine.Settings {
	s := engine.DefaultSettings()
	s.Snap = engine.SnapConfig{
		Enabled:  c.SnapEnabled,
		Screen:   c.SnapScreen,
		Center:   c.SnapCenter,
		Sources:  c.SnapSources,
		Distance: c.SnapDistance,
	}
	s.HandleRadius = c.HandleRadius
	s.DragThreshold = c.DragThreshold
	return s
}

// Origins splits AllowedOrigins on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
