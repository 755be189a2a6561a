package config

import (
	"math"
	"sort"

	"github.com/san-kum/kapitza/internal/dynamo"
	"github.com/san-kum/kapitza/internal/physics"
)

func preset(mutate func(*Config)) *Config {
	cfg := DefaultConfig()
	mutate(cfg)
	return cfg
}

var Presets = map[string]*Config{
	// released horizontally, held near the hanging position by the drive
	"stable": DefaultConfig(),

	"inverted": preset(func(c *Config) {
		c.Params = physics.Params{Amplitude: 0.1, Frequency: 60, Length: 2, Gravity: physics.StandardGravity}
		c.Initial = InitialConfig{Phi: math.Pi, Omega: math.Pi / 100}
	}),

	"damped": preset(func(c *Config) {
		c.Params = physics.Params{Amplitude: 0.1, Frequency: 60, Length: 2, Gravity: physics.StandardGravity, Friction: 0.005}
		c.Initial = InitialConfig{Phi: math.Pi, Omega: math.Pi / 100}
	}),

	"simple": preset(func(c *Config) {
		c.Params = physics.Params{Length: 1, Gravity: physics.StandardGravity}
		c.Initial = InitialConfig{Phi: math.Pi / 3}
		c.Interval = dynamo.Interval{Start: 0, End: 20}
		c.Method = "DOP853"
		c.Tolerance.RelTol = 1e-8
		c.Tolerance.AbsTol = 1e-10
	}),

	// drive too slow to hold the rod upright
	"unstable": preset(func(c *Config) {
		c.Params = physics.Params{Amplitude: 0.24, Frequency: 10, Length: 1, Gravity: physics.StandardGravity}
		c.Initial = InitialConfig{Phi: math.Pi - 0.1}
		c.Interval = dynamo.Interval{Start: 0, End: 50}
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
