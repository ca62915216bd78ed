// Package config loads the kolgraph YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/TFMV/kolgraph/physics"
)

var validate = validator.New()

// Config holds all kolgraph configuration.
type Config struct {
	Viewport ViewportConfig `yaml:"viewport"`
	Physics  PhysicsConfig  `yaml:"physics"`
	Jitter   JitterConfig   `yaml:"jitter"`
	Loop     LoopConfig     `yaml:"loop"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ViewportConfig is the default simulation area.
type ViewportConfig struct {
	Width  float64 `yaml:"width" validate:"gt=0"`
	Height float64 `yaml:"height" validate:"gt=0"`
}

// PhysicsConfig holds force constants and node sizing.
type PhysicsConfig struct {
	Centering     float64 `yaml:"centering" validate:"gte=0"`
	Repulsion     float64 `yaml:"repulsion" validate:"gte=0"`
	DistanceFloor float64 `yaml:"distance_floor" validate:"gt=0"`
	ZeroDistance  float64 `yaml:"zero_distance" validate:"gt=0"`
	Attraction    float64 `yaml:"attraction" validate:"gte=0"`

	// Theta 0 selects exact pairwise repulsion, > 0 selects Barnes-Hut
	Theta float64 `yaml:"theta" validate:"gte=0"`

	BaseRadius     float64 `yaml:"base_radius" validate:"gt=0"`
	ScorePerRadius float64 `yaml:"score_per_radius" validate:"gt=0"`
	KOLBonus       float64 `yaml:"kol_bonus" validate:"gte=0"`

	Seed int64 `yaml:"seed"` // 0 picks a random seed per session
}

// JitterConfig controls the periodic liveliness nudge.
type JitterConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Interval  uint64  `yaml:"interval" validate:"gte=1"` // steps between bursts
	Fraction  float64 `yaml:"fraction" validate:"gte=0,lte=1"`
	Amplitude float64 `yaml:"amplitude" validate:"gte=0"`
}

// LoopConfig sets the frame cadence.
type LoopConfig struct {
	FPS int `yaml:"fps" validate:"gte=1,lte=240"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr         string        `yaml:"addr" validate:"required"`
	MaxSessions  int           `yaml:"max_sessions" validate:"gte=1"`
	CreateRate   float64       `yaml:"create_rate" validate:"gte=0"` // sessions per second, 0 disables
	CreateBurst  int           `yaml:"create_burst" validate:"gte=0"`
	MaxNodes     int           `yaml:"max_nodes" validate:"gte=1"`
	SessionIdle  time.Duration `yaml:"session_idle" validate:"gte=0"` // 0 keeps idle sessions
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

// Default returns the reference configuration.
func Default() *Config {
	p := physics.DefaultParams()
	return &Config{
		Viewport: ViewportConfig{Width: 800, Height: 600},
		Physics: PhysicsConfig{
			Centering:      p.Centering,
			Repulsion:      p.Repulsion,
			DistanceFloor:  p.DistanceFloor,
			ZeroDistance:   p.ZeroDistance,
			Attraction:     p.Attraction,
			BaseRadius:     physics.BaseRadius,
			ScorePerRadius: physics.ScorePerRadius,
			KOLBonus:       physics.KOLBonus,
		},
		Jitter: JitterConfig{
			Enabled:   false,
			Interval:  180,
			Fraction:  0.25,
			Amplitude: 15,
		},
		Loop: LoopConfig{FPS: 60},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxSessions:  64,
			CreateRate:   5,
			CreateBurst:  10,
			MaxNodes:     2000,
			SessionIdle:  2 * time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file yields the defaults;
// an empty path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("KOLGRAPH_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if level := os.Getenv("KOLGRAPH_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", formatValidationError(err))
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	for _, e := range validationErrs {
		field := e.Namespace()
		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "gt", "gte":
			return fmt.Errorf("%s: must be %s %s", field, comparison(e.Tag()), e.Param())
		case "lte":
			return fmt.Errorf("%s: must not exceed %s", field, e.Param())
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, e.Param())
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}
	return err
}

func comparison(tag string) string {
	if tag == "gt" {
		return "greater than"
	}
	return "at least"
}

// PhysicsParams converts the force constants.
func (c *Config) PhysicsParams() physics.Params {
	return physics.Params{
		Centering:     c.Physics.Centering,
		Repulsion:     c.Physics.Repulsion,
		DistanceFloor: c.Physics.DistanceFloor,
		ZeroDistance:  c.Physics.ZeroDistance,
		Attraction:    c.Physics.Attraction,
	}
}

// Repulsion selects the repulsion strategy.
func (c *Config) Repulsion() physics.Repulsion {
	if c.Physics.Theta > 0 {
		return physics.BarnesHut{Theta: c.Physics.Theta}
	}
	return physics.Pairwise{}
}

// ResolveSeed picks the seed for one session: a non-zero seed wins, then the
// configured one, then the clock.
func (c *Config) ResolveSeed(seed int64) int64 {
	if seed == 0 {
		seed = c.Physics.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return seed
}

// StateOptions builds the physics options for one session. The seed goes
// through ResolveSeed; pass the resolved value to NewJitter as well so
// placement and noise agree.
func (c *Config) StateOptions(seed int64) []physics.Option {
	seed = c.ResolveSeed(seed)

	opts := []physics.Option{
		physics.WithSeed(seed),
		physics.WithParams(c.PhysicsParams()),
		physics.WithRepulsion(c.Repulsion()),
		physics.WithRadius(physics.LinearRadius(c.Physics.BaseRadius, c.Physics.ScorePerRadius, c.Physics.KOLBonus)),
	}
	if c.Jitter.Enabled {
		opts = append(opts, physics.WithPerturber(c.NewJitter(seed)))
	}
	return opts
}

// NewJitter creates the configured jitter source regardless of Enabled.
func (c *Config) NewJitter(seed int64) *physics.NoiseJitter {
	return physics.NewNoiseJitter(seed, c.Jitter.Interval, c.Jitter.Fraction, c.Jitter.Amplitude)
}
