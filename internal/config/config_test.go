package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture %s failed: %v", name, err)
	}
	return path
}

func TestLoadAppliesDefaultsForOmittedFields(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
server:
  http_addr: ":9090"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want :9090 (explicit)", cfg.Server.HTTPAddr)
	}
	if cfg.Server.Env != defaultEnv {
		t.Errorf("Env = %q, want default %q", cfg.Server.Env, defaultEnv)
	}
	if cfg.Backtest.Workers != defaultWorkerCount {
		t.Errorf("Workers = %d, want default %d", cfg.Backtest.Workers, defaultWorkerCount)
	}
	if cfg.Sandbox.CallTimeoutSeconds != defaultSandboxCallTimeout {
		t.Errorf("CallTimeoutSeconds = %d, want default %d", cfg.Sandbox.CallTimeoutSeconds, defaultSandboxCallTimeout)
	}
}

func TestLoadRejectsInvalidBounds(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
backtest:
  default_position_size: 2.5
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation to reject an out-of-range position size")
	}
}

func TestLoadResolvesIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
server:
  http_addr: ":7000"
  env: "base"
`)
	main := writeFile(t, dir, "main.yaml", `
include:
  - base.yaml
backtest:
  workers: 4
`)
	cfg, err := Load(main)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.HTTPAddr != ":7000" {
		t.Errorf("HTTPAddr = %q, want :7000 from the included file", cfg.Server.HTTPAddr)
	}
	if cfg.Backtest.Workers != 4 {
		t.Errorf("Workers = %d, want 4 from the main file", cfg.Backtest.Workers)
	}
}

func TestLoadDetectsIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "include:\n  - b.yaml\n")
	bPath := writeFile(t, dir, "b.yaml", "include:\n  - a.yaml\n")
	if _, err := Load(bPath); err == nil {
		t.Fatal("expected an include-cycle error")
	}
}

func TestLoadRejectsMissingPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatal("expected an error for an empty config path")
	}
}
