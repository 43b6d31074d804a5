// Package config holds the yaml configuration for the demo world the
// CLI builds: gravity, timestep, solver iteration counts and the spawn
// layout of the falling bodies.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt          = 1.0 / 60.0
	DefaultSteps       = 300
	DefaultGravityY    = -9.81
	DefaultSpawnBodies = 8
	DefaultSpawnHeight = 6.0
	DefaultSpacing     = 1.5
	DefaultRadius      = 0.5
)

type Config struct {
	Preset     string           `yaml:"preset"`
	Gravity    GravityConfig    `yaml:"gravity"`
	Dt         float32          `yaml:"dt"`
	Steps      int              `yaml:"steps"`
	Iterations IterationsConfig `yaml:"iterations"`
	Spawn      SpawnConfig      `yaml:"spawn"`
}

type GravityConfig struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
}

type IterationsConfig struct {
	Velocity uint32 `yaml:"velocity"`
	Position uint32 `yaml:"position"`
}

// SpawnConfig lays out the falling bodies of the demo scene.
type SpawnConfig struct {
	Bodies  int     `yaml:"bodies"`
	Height  float32 `yaml:"height"`
	Spacing float32 `yaml:"spacing"`
	Radius  float32 `yaml:"radius"`
}

func DefaultConfig() *Config {
	return &Config{
		Gravity: GravityConfig{Y: DefaultGravityY},
		Dt:      DefaultDt,
		Steps:   DefaultSteps,
		Iterations: IterationsConfig{
			Velocity: 4,
			Position: 1,
		},
		Spawn: SpawnConfig{
			Bodies:  DefaultSpawnBodies,
			Height:  DefaultSpawnHeight,
			Spacing: DefaultSpacing,
			Radius:  DefaultRadius,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("config: dt must be positive, got %v", c.Dt)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("config: steps must be positive, got %d", c.Steps)
	}
	if c.Spawn.Bodies < 0 {
		return fmt.Errorf("config: spawn bodies must not be negative, got %d", c.Spawn.Bodies)
	}
	if c.Spawn.Radius <= 0 {
		return fmt.Errorf("config: spawn radius must be positive, got %v", c.Spawn.Radius)
	}
	return nil
}
