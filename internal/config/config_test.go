package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/kapitza/internal/dynamo"
	"github.com/san-kum/kapitza/internal/integrators"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Method != "LSODA" {
		t.Errorf("expected method LSODA, got %s", cfg.Method)
	}
	if cfg.Params.Amplitude != 0.24 || cfg.Params.Frequency != 54 || cfg.Params.Length != 1 {
		t.Errorf("unexpected params %+v", cfg.Params)
	}
	if cfg.Initial.Phi != math.Pi/2 || cfg.Initial.Omega != 0 {
		t.Errorf("unexpected initial state %+v", cfg.Initial)
	}
	if cfg.Interval.Start != 0 || cfg.Interval.End != 200 {
		t.Errorf("unexpected interval %v", cfg.Interval)
	}
	if cfg.Animation.History != 50 {
		t.Errorf("expected history 50, got %d", cfg.Animation.History)
	}
	if n := cfg.FrameCount(); n != 10000 {
		t.Errorf("expected 10000 frames, got %d", n)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := GetPreset("damped")
	cfg.Animation.History = 12
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := "method: radau\nparams:\n  gamma: 0.3\ninterval:\n  end: 5\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Params.Friction != 0.3 || cfg.Params.Frequency != 54 {
		t.Errorf("expected gamma override on default params, got %+v", cfg.Params)
	}
	if cfg.Interval.End != 5 || cfg.Interval.Start != 0 {
		t.Errorf("unexpected interval %v", cfg.Interval)
	}
	m, _, err := cfg.ResolveMethod(false)
	if err != nil || m != integrators.Radau {
		t.Errorf("expected Radau, got %v, %v", m, err)
	}
}

func TestLoadOverPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "over.yaml")
	if err := os.WriteFile(path, []byte("initial:\n  omega: 1.5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	base := GetPreset("inverted")
	cfg, err := LoadOver(path, base)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Initial.Phi != math.Pi || cfg.Initial.Omega != 1.5 {
		t.Errorf("expected preset phi with file omega, got %+v", cfg.Initial)
	}
	if cfg.Params.Frequency != 60 {
		t.Errorf("expected preset frequency, got %g", cfg.Params.Frequency)
	}
	if base.Initial.Omega != math.Pi/100 {
		t.Error("LoadOver modified its base")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("params: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		target error
	}{
		{"reversed interval", func(c *Config) { c.Interval.End = -1 }, dynamo.ErrInvalidInterval},
		{"zero length", func(c *Config) { c.Params.Length = 0 }, dynamo.ErrParameterBounds},
		{"nan initial", func(c *Config) { c.Initial.Phi = math.NaN() }, dynamo.ErrInvalidState},
		{"zero frame dt", func(c *Config) { c.Animation.FrameDt = 0 }, dynamo.ErrParameterBounds},
		{"negative history", func(c *Config) { c.Animation.History = -1 }, dynamo.ErrParameterBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Tolerance.RelTol = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected zero rtol to be rejected")
	}
}

func TestResolveMethod(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Method = "Unsupported"

	if _, _, err := cfg.ResolveMethod(false); !errors.Is(err, dynamo.ErrUnsupportedMethod) {
		t.Errorf("expected ErrUnsupportedMethod without fallback, got %v", err)
	}

	m, fellBack, err := cfg.ResolveMethod(true)
	if err != nil || !fellBack || m != DefaultMethod {
		t.Errorf("expected fallback to %s, got %s %v %v", DefaultMethod, m, fellBack, err)
	}

	cfg.Method = "bdf"
	if m, fellBack, err := cfg.ResolveMethod(true); err != nil || fellBack || m != integrators.BDF {
		t.Errorf("expected BDF without fallback, got %s %v %v", m, fellBack, err)
	}
}

func TestRun(t *testing.T) {
	run, err := GetPreset("inverted").Run(false)
	if err != nil {
		t.Fatal(err)
	}
	if run.Method != "LSODA" || run.Initial[0] != math.Pi || run.Initial[1] != math.Pi/100 {
		t.Errorf("unexpected run %+v", run)
	}
	if run.Options.RelTol != DefaultRelTol {
		t.Errorf("expected default rtol, got %g", run.Options.RelTol)
	}
}

func TestGetPreset(t *testing.T) {
	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		if cfg == nil {
			t.Fatalf("preset %s missing", name)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
		if _, _, err := cfg.ResolveMethod(false); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}

	cfg := GetPreset("simple")
	if cfg.Params.Amplitude != 0 || cfg.Params.Friction != 0 {
		t.Errorf("simple preset must be undriven and undamped, got %+v", cfg.Params)
	}
	cfg.Params.Length = 99
	if Presets["simple"].Params.Length == 99 {
		t.Error("GetPreset must return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	want := []string{"damped", "inverted", "simple", "stable", "unstable"}
	got := ListPresets()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}
}
