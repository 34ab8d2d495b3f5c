package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/advhover/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Env != DefaultEnv {
		t.Errorf("expected env %s, got %s", DefaultEnv, cfg.Env)
	}
	if cfg.AggregateSteps() != 2 {
		t.Errorf("expected 2 substeps per control step, got %d", cfg.AggregateSteps())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset(DefaultEnv, "stress")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Disturbance.Bound[0] != 5.3e-3 {
		t.Errorf("expected bound 5.3e-3, got %v", cfg.Disturbance.Bound[0])
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset(DefaultEnv, "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "hover") != nil {
		t.Error("expected nil for nonexistent env")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets(DefaultEnv)
	if len(presets) == 0 {
		t.Error("expected presets for the adversarial env")
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] > presets[i] {
			t.Errorf("presets not sorted: %v", presets)
		}
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent env")
	}
}

func TestPresetsValidate(t *testing.T) {
	for env, presets := range Presets {
		for name, cfg := range presets {
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s/%s: %v", env, name, err)
			}
			if cfg.Env != env {
				t.Errorf("%s/%s: preset targets %s", env, name, cfg.Env)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   error
	}{
		{"control faster than sim", func(c *Config) { c.ControlFrequency = 400 }, dynamo.ErrParameterBounds},
		{"uneven ratio", func(c *Config) { c.ControlFrequency = 30 }, dynamo.ErrParameterBounds},
		{"zero episodes", func(c *Config) { c.Episodes = 0 }, dynamo.ErrParameterBounds},
		{"negative bound", func(c *Config) { c.Disturbance.Bound = []float64{-1, 0, 0} }, dynamo.ErrParameterBounds},
		{"short bound", func(c *Config) { c.Disturbance.Bound = []float64{1, 1} }, dynamo.ErrDimensionMismatch},
		{"nan constant", func(c *Config) { c.Disturbance.Constant = []float64{math.NaN(), 0, 0} }, dynamo.ErrParameterBounds},
		{"attitude too wide", func(c *Config) { c.Termination.MaxAttitudeDeg = 270 }, dynamo.ErrParameterBounds},
		{"negative drag", func(c *Config) { c.Physics.DragCoeff = -1 }, dynamo.ErrParameterBounds},
		{"nan drag", func(c *Config) { c.Physics.DragCoeff = math.NaN() }, dynamo.ErrParameterBounds},
		{"nan ground threshold", func(c *Config) { c.Physics.GroundThreshold = math.NaN() }, dynamo.ErrParameterBounds},
		{"infinite ground threshold", func(c *Config) { c.Physics.GroundThreshold = math.Inf(1) }, dynamo.ErrParameterBounds},
		{"nan min altitude", func(c *Config) { v := math.NaN(); c.Termination.MinAltitude = &v }, dynamo.ErrParameterBounds},
		{"nan max rate", func(c *Config) { c.Termination.MaxRateDeg = math.NaN() }, dynamo.ErrParameterBounds},
		{"instant motors", func(c *Config) { c.Motor.TimeConstant = 0 }, dynamo.ErrParameterBounds},
		{"underpowered", func(c *Config) { c.Motor.Thrust2Weight = 0.9 }, dynamo.ErrParameterBounds},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := GetPreset(DefaultEnv, "stress")
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Episodes != cfg.Episodes || loaded.Disturbance.Kind != "uniform" {
		t.Errorf("round trip lost fields: %+v", loaded.Disturbance)
	}
	if Vec3(loaded.Disturbance.Bound, [3]float64{}) != [3]float64{5.3e-3, 5.3e-3, 1.43e-4} {
		t.Errorf("unexpected bound %v", loaded.Disturbance.Bound)
	}
}

func TestVec3(t *testing.T) {
	def := [3]float64{1, 2, 3}
	if Vec3(nil, def) != def {
		t.Error("nil should fall back to the default")
	}
	if Vec3([]float64{4, 5, 6}, def) != [3]float64{4, 5, 6} {
		t.Error("three entries should be copied")
	}
}

func TestLoadNaNDrag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nan.yaml")
	if err := os.WriteFile(path, []byte("physics:\n  drag_coeff: .nan\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestMinAltitudeZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "floor.yaml")
	if err := os.WriteFile(path, []byte("termination:\n  min_altitude: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Termination.MinAltitude == nil || *cfg.Termination.MinAltitude != 0 {
		t.Errorf("min_altitude 0 should be kept, got %v", cfg.Termination.MinAltitude)
	}
	if DefaultConfig().Termination.MinAltitude != nil {
		t.Error("default config should leave min_altitude unset")
	}
}
