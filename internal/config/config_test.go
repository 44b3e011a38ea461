package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAndValidateDefaults(t *testing.T) {
	path := writeConfig(t, `interpreter: python3.11`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Interpreter != "python3.11" {
		t.Fatalf("interpreter = %q", cfg.Interpreter)
	}
	if cfg.Timeout.Duration != 30*time.Second {
		t.Fatalf("timeout default = %s, want 30s", cfg.Timeout.Duration)
	}
	if cfg.Pool.MaxThreads != 4 {
		t.Fatalf("pool.max_threads default = %d, want 4", cfg.Pool.MaxThreads)
	}
	if cfg.Arena.InitialBytes != 1<<16 {
		t.Fatalf("arena.initial_bytes default = %d, want %d", cfg.Arena.InitialBytes, 1<<16)
	}
}

func TestValidateFillsDefaultsOnEmptyConfig(t *testing.T) {
	cfg := &Config{}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Interpreter != "python3" {
		t.Fatalf("interpreter = %q, want python3", cfg.Interpreter)
	}
}

func TestValidateRejectsNegativeStackSize(t *testing.T) {
	cfg := &Config{Pool: PoolConfig{StackSize: -1}}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected an error for a negative stack size")
	}
}

func TestValidateRejectsMaxBytesBelowInitial(t *testing.T) {
	cfg := &Config{Arena: ArenaConfig{InitialBytes: 1024, MaxBytes: 512}}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected an error when max_bytes < initial_bytes")
	}
}

func TestApplyEnvOverridesInterpreter(t *testing.T) {
	t.Setenv("PYIMPORTLS_INTERPRETER", "python3.12")
	path := writeConfig(t, `interpreter: python3.9`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Interpreter != "python3.12" {
		t.Fatalf("interpreter = %q, want env override python3.12", cfg.Interpreter)
	}
}

func TestDurationUnmarshalsFromYAML(t *testing.T) {
	path := writeConfig(t, "timeout: 45s\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timeout.Duration != 45*time.Second {
		t.Fatalf("timeout = %s, want 45s", cfg.Timeout.Duration)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
