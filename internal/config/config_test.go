package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestFileLayerOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "core.json")
	body := `{"worldSize": 90, "loadingRadius": 2, "dreadHysteresis": 0.1}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WorldSize != 90 {
		t.Errorf("WorldSize = %d, want 90", cfg.WorldSize)
	}
	if cfg.LoadingRadius != 2 {
		t.Errorf("LoadingRadius = %d, want 2", cfg.LoadingRadius)
	}
	if cfg.Hysteresis != 0.1 {
		t.Errorf("Hysteresis = %g, want 0.1", cfg.Hysteresis)
	}
	// Untouched keys keep defaults
	if cfg.MaxResident != 2000 {
		t.Errorf("MaxResident = %d, want default 2000", cfg.MaxResident)
	}
}

func TestEnvLayerOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "core.json")
	if err := os.WriteFile(path, []byte(`{"seed": 7}`), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("WORLD_SEED", "42")
	t.Setenv("SAVE_DIR", "/tmp/dread-saves")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Seed != 42 {
		t.Errorf("Seed = %d, want env override 42", cfg.Seed)
	}
	if cfg.SaveDir != "/tmp/dread-saves" {
		t.Errorf("SaveDir = %q, want env override", cfg.SaveDir)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.WorldSize = 0 },
		func(c *Config) { c.LoadingRadius = -1 },
		func(c *Config) { c.MaxResident = 10 },
		func(c *Config) { c.Hysteresis = 0.3 },
		func(c *Config) { c.Thresholds = [4]float64{0.5, 0.4, 0.6, 0.8} },
		func(c *Config) { c.Workers = 0 },
		func(c *Config) { c.GenTimeoutSec = 0 },
	}
	for i, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load("/nonexistent/core.json"); err == nil {
		t.Error("expected error for missing config file")
	}
}
