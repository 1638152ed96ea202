package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ClockHz != defaultClockHz {
		t.Errorf("ClockHz = %v, want %v", cfg.ClockHz, defaultClockHz)
	}
	if cfg.Scale != defaultScale {
		t.Errorf("Scale = %v, want %v", cfg.Scale, defaultScale)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chip8.toml")

	content := "clock_hz = 1000\nscale = 8\nfullscreen = true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ClockHz != 1000 {
		t.Errorf("ClockHz = %v, want 1000", cfg.ClockHz)
	}
	if cfg.Scale != 8 {
		t.Errorf("Scale = %v, want 8", cfg.Scale)
	}
	if !cfg.Fullscreen {
		t.Error("Fullscreen = false, want true")
	}
}

func TestLoadRejectsOutOfRangeClock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chip8.toml")

	if err := os.WriteFile(path, []byte("clock_hz = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path, nil)
	if err == nil {
		t.Fatal("Load did not reject clock_hz below the allowed minimum")
	}

	var cerr *ConfigError
	if !asConfigError(err, &cerr) {
		t.Fatalf("err = %v, want *ConfigError", err)
	}
}

func TestLoadAppliesClockHzFlag(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Float64("clock-hz", 0, "override the instruction clock rate (Hz)")
	flags.Int("scale", 0, "override the window scale factor")

	if err := flags.Parse([]string{"--clock-hz=1000"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("", flags)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ClockHz != 1000 {
		t.Errorf("ClockHz = %v, want 1000 (the dashed --clock-hz flag must resolve to the clock_hz field)", cfg.ClockHz)
	}
}

func TestLoadMissingFileIsNotFatal(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"), nil)
	if err != nil {
		t.Fatalf("Load should tolerate a missing config file, got: %v", err)
	}
}

func asConfigError(err error, target **ConfigError) bool {
	e, ok := err.(*ConfigError)
	if ok {
		*target = e
	}
	return ok
}
