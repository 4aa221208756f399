package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MemoryLimitGB != Default().MemoryLimitGB {
		t.Fatalf("expected default memory limit, got %d", cfg.MemoryLimitGB)
	}
}

func TestLoadParsesYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("bucket: my-bucket\njobs: 4\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Bucket != "my-bucket" || cfg.Jobs != 4 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("bucket: file-bucket\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("UBFLEET_BUCKET", "env-bucket")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Bucket != "env-bucket" {
		t.Fatalf("expected env override to win, got %q", cfg.Bucket)
	}
}
