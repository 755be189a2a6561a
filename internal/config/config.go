package config

import (
	"fmt"
	"math"
	"os"

	"github.com/san-kum/kapitza/internal/dynamo"
	"github.com/san-kum/kapitza/internal/integrators"
	"github.com/san-kum/kapitza/internal/physics"
	"github.com/san-kum/kapitza/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMethod   = integrators.LSODA
	DefaultStart    = 0.0
	DefaultEnd      = 200.0
	DefaultPhi      = math.Pi / 2
	DefaultOmega    = 0.0
	DefaultHistory  = 50
	DefaultFrameDt  = 0.02
	DefaultFPS      = 50
	DefaultRelTol   = 1e-3
	DefaultAbsTol   = 1e-6
	DefaultMaxSteps = 10_000_000
	DefaultOutput   = "runs"
)

type Config struct {
	Method    string          `yaml:"method"`
	Params    physics.Params  `yaml:"params"`
	Initial   InitialConfig   `yaml:"initial"`
	Interval  dynamo.Interval `yaml:"interval"`
	Tolerance ToleranceConfig `yaml:"tolerance"`
	Animation AnimationConfig `yaml:"animation"`
	Output    OutputConfig    `yaml:"output"`
}

type InitialConfig struct {
	Phi   float64 `yaml:"phi"`
	Omega float64 `yaml:"omega"`
}

type ToleranceConfig struct {
	RelTol   float64 `yaml:"rtol"`
	AbsTol   float64 `yaml:"atol"`
	MaxStep  float64 `yaml:"max_step,omitempty"`
	MaxSteps int     `yaml:"max_steps,omitempty"`
}

// AnimationConfig holds display settings only; none of them affect the
// integration.
type AnimationConfig struct {
	FrameDt float64 `yaml:"frame_dt"`
	History int     `yaml:"history"`
	FPS     int     `yaml:"fps"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// DefaultConfig is the pendulum released horizontally on a fast, stable
// drive, watched for 200 s.
func DefaultConfig() *Config {
	return &Config{
		Method:  string(DefaultMethod),
		Params:  physics.DefaultParams(),
		Initial: InitialConfig{Phi: DefaultPhi, Omega: DefaultOmega},
		Interval: dynamo.Interval{
			Start: DefaultStart,
			End:   DefaultEnd,
		},
		Tolerance: ToleranceConfig{
			RelTol:   DefaultRelTol,
			AbsTol:   DefaultAbsTol,
			MaxSteps: DefaultMaxSteps,
		},
		Animation: AnimationConfig{
			FrameDt: DefaultFrameDt,
			History: DefaultHistory,
			FPS:     DefaultFPS,
		},
		Output: OutputConfig{Dir: DefaultOutput},
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of base, so keys missing from the file keep
// the base values. base is not modified.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks everything except the method name, which ResolveMethod
// owns.
func (c *Config) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if err := c.Interval.Validate(); err != nil {
		return err
	}
	if !c.InitialState().IsValid() {
		return fmt.Errorf("%w: initial (%g, %g)", dynamo.ErrInvalidState, c.Initial.Phi, c.Initial.Omega)
	}
	if err := c.Options().Validate(); err != nil {
		return err
	}
	if !(c.Animation.FrameDt > 0) {
		return &dynamo.ParameterError{Name: "frame_dt", Value: c.Animation.FrameDt, Reason: "must be positive"}
	}
	if c.Animation.History < 0 {
		return &dynamo.ParameterError{Name: "history", Value: float64(c.Animation.History), Reason: "must be non-negative"}
	}
	if c.Animation.FPS <= 0 {
		return &dynamo.ParameterError{Name: "fps", Value: float64(c.Animation.FPS), Reason: "must be positive"}
	}
	return nil
}

func (c *Config) InitialState() dynamo.State {
	return dynamo.State{c.Initial.Phi, c.Initial.Omega}
}

func (c *Config) Options() integrators.Options {
	return integrators.Options{
		RelTol:   c.Tolerance.RelTol,
		AbsTol:   c.Tolerance.AbsTol,
		MaxStep:  c.Tolerance.MaxStep,
		MaxSteps: c.Tolerance.MaxSteps,
	}
}

// FrameCount is the number of animation frames covering the interval at
// the configured frame spacing.
func (c *Config) FrameCount() int {
	n := int(math.Round(c.Interval.Span() / c.Animation.FrameDt))
	if n < 1 {
		return 1
	}
	return n
}

// ResolveMethod parses the configured method. With fallback set, an
// unknown name resolves to DefaultMethod and the second result reports
// that it happened; otherwise the parse error is returned unchanged.
func (c *Config) ResolveMethod(fallback bool) (integrators.Method, bool, error) {
	m, err := integrators.ParseMethod(c.Method)
	if err == nil {
		return m, false, nil
	}
	if fallback {
		return DefaultMethod, true, nil
	}
	return "", false, err
}

// Run builds the integration request described by the config.
func (c *Config) Run(fallback bool) (sim.Run, error) {
	if err := c.Validate(); err != nil {
		return sim.Run{}, err
	}
	m, _, err := c.ResolveMethod(fallback)
	if err != nil {
		return sim.Run{}, err
	}
	return sim.Run{
		Params:   c.Params,
		Initial:  c.InitialState(),
		Interval: c.Interval,
		Method:   m.String(),
		Options:  c.Options(),
	}, nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
