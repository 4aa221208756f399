// Package config loads the optional YAML configuration file every
// ubfleet subcommand reads before applying flag overrides. Precedence is
// flag > env > file > default.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the run-wide defaults a deployment wants to fix once
// rather than repeat on every invocation.
type Config struct {
	Bucket         string `yaml:"bucket"`
	Jobs           int    `yaml:"jobs"`
	MemoryLimitGB  int    `yaml:"memory_limit_gb"`
	Target         string `yaml:"target"`
	MetricsAddr    string `yaml:"metrics_addr"`
	IgnoreListFile string `yaml:"ignore_list_file"`
}

// Default returns the built-in defaults, used when no config file exists
// and no flags or environment variables override them.
func Default() Config {
	return Config{
		MemoryLimitGB: 8,
		Target:        "x86_64-unknown-linux-gnu",
	}
}

// Load reads path as YAML into a Config seeded with Default(); a missing
// file is not an error (the caller simply gets the defaults). Values are
// then overridden from environment variables (UBFLEET_BUCKET,
// UBFLEET_JOBS, UBFLEET_MEMORY_LIMIT_GB, UBFLEET_TARGET,
// UBFLEET_METRICS_ADDR, UBFLEET_IGNORE_LIST_FILE) before flags are applied
// on top by the caller.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// No file: defaults stand.
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("UBFLEET_BUCKET"); v != "" {
		cfg.Bucket = v
	}
	if v := os.Getenv("UBFLEET_JOBS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Jobs = n
		}
	}
	if v := os.Getenv("UBFLEET_MEMORY_LIMIT_GB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MemoryLimitGB = n
		}
	}
	if v := os.Getenv("UBFLEET_TARGET"); v != "" {
		cfg.Target = v
	}
	if v := os.Getenv("UBFLEET_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("UBFLEET_IGNORE_LIST_FILE"); v != "" {
		cfg.IgnoreListFile = v
	}
}
