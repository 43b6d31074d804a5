package config

var Presets = map[string]*Config{
	"earth": {
		Preset:  "earth",
		Gravity: GravityConfig{Y: -9.81},
		Dt:      1.0 / 60.0, Steps: 300,
		Iterations: IterationsConfig{Velocity: 4, Position: 1},
		Spawn:      SpawnConfig{Bodies: 8, Height: 6.0, Spacing: 1.5, Radius: 0.5},
	},
	"moon": {
		Preset:  "moon",
		Gravity: GravityConfig{Y: -1.62},
		Dt:      1.0 / 60.0, Steps: 600,
		Iterations: IterationsConfig{Velocity: 4, Position: 1},
		Spawn:      SpawnConfig{Bodies: 8, Height: 10.0, Spacing: 1.5, Radius: 0.5},
	},
	"precise": {
		Preset:  "precise",
		Gravity: GravityConfig{Y: -9.81},
		Dt:      1.0 / 240.0, Steps: 1200,
		Iterations: IterationsConfig{Velocity: 16, Position: 4},
		Spawn:      SpawnConfig{Bodies: 4, Height: 6.0, Spacing: 2.0, Radius: 0.5},
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
