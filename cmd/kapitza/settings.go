package main

import (
	"fmt"
	"log/slog"

	"github.com/san-kum/kapitza/internal/config"
	"github.com/san-kum/kapitza/internal/sim"
	"github.com/san-kum/kapitza/internal/storage"
	"github.com/san-kum/kapitza/internal/viz"
	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	method     string

	amplitude float64
	frequency float64
	length    float64
	gravity   float64
	friction  float64
	phi       float64
	omega     float64
	tStart    float64
	tEnd      float64
	rtol      float64
	atol      float64
	maxStep   float64
	frameDt   float64
	history   int
	fps       int

	outPath       string
	plotOut       string
	gifOut        string
	withSVG       bool
	theme         string
	snapshot      string
	snapshotFrame int
	gifEvery      int
	plotDir       string
	withLyapunov  bool

	searchAxes     []string
	searchMetric   string
	searchMaximize bool

	sweepMin, sweepMax          float64
	sweepSteps                  int
	sweepTransient, sweepRecord float64
)

func addSimFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "start from a built-in configuration")
	f.StringVarP(&method, "method", "m", def.Method, "integration method")
	f.Float64Var(&amplitude, "a", def.Params.Amplitude, "pivot amplitude")
	f.Float64Var(&frequency, "n", def.Params.Frequency, "pivot angular frequency")
	f.Float64Var(&length, "l", def.Params.Length, "rod length")
	f.Float64Var(&gravity, "g", def.Params.Gravity, "gravitational acceleration")
	f.Float64Var(&friction, "gamma", def.Params.Friction, "friction coefficient")
	f.Float64Var(&phi, "phi", def.Initial.Phi, "initial angle from the hanging position")
	f.Float64Var(&omega, "omega", def.Initial.Omega, "initial angular velocity")
	f.Float64Var(&tStart, "start", def.Interval.Start, "interval start")
	f.Float64Var(&tEnd, "end", def.Interval.End, "interval end")
	f.Float64Var(&rtol, "rtol", def.Tolerance.RelTol, "relative tolerance")
	f.Float64Var(&atol, "atol", def.Tolerance.AbsTol, "absolute tolerance")
	f.Float64Var(&maxStep, "max-step", 0, "largest step (0: unbounded)")
	f.Float64Var(&frameDt, "frame-dt", def.Animation.FrameDt, "simulated time between frames")
	f.IntVar(&history, "history", def.Animation.History, "bob trail length in frames")
	f.IntVar(&fps, "fps", def.Animation.FPS, "playback frame rate")
}

// resolveConfig layers preset, config file and explicitly set flags, in
// that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		slog.Debug("preset applied", "preset", preset)
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		slog.Debug("config loaded", "path", configFile)
	}

	flags := cmd.Flags()
	setString := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	setFloat := func(name string, dst *float64, v float64) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	setInt := func(name string, dst *int, v int) {
		if flags.Changed(name) {
			*dst = v
		}
	}

	setString("method", &cfg.Method, method)
	setFloat("a", &cfg.Params.Amplitude, amplitude)
	setFloat("n", &cfg.Params.Frequency, frequency)
	setFloat("l", &cfg.Params.Length, length)
	setFloat("g", &cfg.Params.Gravity, gravity)
	setFloat("gamma", &cfg.Params.Friction, friction)
	setFloat("phi", &cfg.Initial.Phi, phi)
	setFloat("omega", &cfg.Initial.Omega, omega)
	setFloat("start", &cfg.Interval.Start, tStart)
	setFloat("end", &cfg.Interval.End, tEnd)
	setFloat("rtol", &cfg.Tolerance.RelTol, rtol)
	setFloat("atol", &cfg.Tolerance.AbsTol, atol)
	setFloat("max-step", &cfg.Tolerance.MaxStep, maxStep)
	setFloat("frame-dt", &cfg.Animation.FrameDt, frameDt)
	setInt("history", &cfg.Animation.History, history)
	setInt("fps", &cfg.Animation.FPS, fps)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveRun turns the config into a run request, applying the --fallback
// policy for unknown methods.
func resolveRun(cfg *config.Config) (sim.Run, error) {
	m, fellBack, err := cfg.ResolveMethod(fallback)
	if err != nil {
		return sim.Run{}, err
	}
	if fellBack {
		slog.Warn("unknown method, using default", "requested", cfg.Method, "method", m)
	}
	run, err := cfg.Run(fallback)
	if err != nil {
		return sim.Run{}, err
	}
	slog.Debug("run resolved",
		"method", run.Method,
		"params", run.Params,
		"initial", run.Initial,
		"interval", run.Interval,
		"rtol", run.Options.RelTol,
		"atol", run.Options.AbsTol,
	)
	return run, nil
}

func openStore(cfg *config.Config) (*storage.Store, error) {
	dir := dataDir
	if dir == "" {
		dir = cfg.Output.Dir
	}
	st := storage.New(dir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func themeNames() []string { return viz.ThemeNames() }
