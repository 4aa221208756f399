package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ubfleet/ubfleet/internal/applog"
	"github.com/ubfleet/ubfleet/internal/config"
	"github.com/ubfleet/ubfleet/internal/metrics"
	"github.com/ubfleet/ubfleet/internal/orchestrator"
	"github.com/ubfleet/ubfleet/internal/pkgid"
	"github.com/ubfleet/ubfleet/internal/registry"
	"github.com/ubfleet/ubfleet/internal/storage"
)

// validTools are the accepted --tool values; the enum is deliberately
// extensible (build/check run the same worker protocol with no
// instrumentation).
var validTools = map[string]bool{"miri": true, "asan": true, "build": true, "check": true}

type runFlags struct {
	crates        int
	crateList     string
	memoryLimitGB int
	rerun         bool
	tool          string
	bucket        string
	jobs          int
	rev           bool
	target        string
	metricsAddr   string
	ignoreList    string
	dockerContext string
}

func newRunCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a tool's test suite across a ranked package list inside sandboxed workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			return runRun(cmd.Context(), cfgPath, f)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&f.crates, "crates", 0, "Run only the top N most-downloaded packages")
	flags.StringVar(&f.crateList, "crate-list", "", "File listing name@version / name/version / name, one per whitespace token")
	flags.IntVar(&f.memoryLimitGB, "memory-limit-gb", 0, "Per-worker memory cap in GiB (default 8, or config)")
	flags.BoolVar(&f.rerun, "rerun", false, "Re-run packages that already have a recent transcript")
	flags.StringVar(&f.tool, "tool", "", "Instrumentation tool: miri, asan, build, or check")
	flags.StringVar(&f.bucket, "bucket", "", "Object store bucket (default: config)")
	flags.IntVar(&f.jobs, "jobs", 0, "Number of concurrent workers (default: number of CPUs)")
	flags.BoolVar(&f.rev, "rev", false, "Pop the biggest packages first instead of last")
	flags.StringVar(&f.target, "target", "", "Target triple passed to workers (default: config)")
	flags.StringVar(&f.metricsAddr, "metrics-addr", "", "Optional address to serve Prometheus /metrics on")
	flags.StringVar(&f.ignoreList, "ignore-list", "", "File of package names to permanently skip")
	flags.StringVar(&f.dockerContext, "docker-context", "docker", "Docker build context directory for the sandbox image")
	cmd.MarkFlagsMutuallyExclusive("crates", "crate-list")

	return cmd
}

func runRun(ctx context.Context, cfgPath string, f runFlags) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	applyRunOverrides(&cfg, f)

	if !validTools[f.tool] {
		return fmt.Errorf("run: --tool must be one of miri, asan, build, check (got %q)", f.tool)
	}
	if cfg.Bucket == "" {
		return fmt.Errorf("run: --bucket (or config bucket) is required")
	}

	jobs := f.jobs
	if jobs <= 0 {
		jobs = cfg.Jobs
	}
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	imageTag := f.tool + "-the-world"
	if err := buildSandboxImage(ctx, imageTag, f.tool, f.dockerContext); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	store, err := storage.NewS3Store(ctx, cfg.Bucket)
	if err != nil {
		return fmt.Errorf("run: connect to bucket %s: %w", cfg.Bucket, err)
	}

	ranked, err := loadRankedPackages(ctx, store, f.crates, f.crateList)
	if err != nil {
		return fmt.Errorf("run: load package list: %w", err)
	}

	ignoreList := map[string]bool{}
	ignoreListFile := f.ignoreList
	if ignoreListFile == "" {
		ignoreListFile = cfg.IgnoreListFile
	}
	if ignoreListFile != "" {
		data, err := os.ReadFile(ignoreListFile)
		if err != nil {
			return fmt.Errorf("run: read ignore list: %w", err)
		}
		ignoreList = registry.IgnoreSet(data)
	}

	m := metrics.New()
	metricsAddr := f.metricsAddr
	if metricsAddr == "" {
		metricsAddr = cfg.MetricsAddr
	}
	m.Serve(ctx, metricsAddr)

	poolCfg := orchestrator.Config{
		Tool:          f.tool,
		Target:        cfg.Target,
		Bucket:        cfg.Bucket,
		Jobs:          jobs,
		MemoryLimitGB: cfg.MemoryLimitGB,
		Rerun:         f.rerun,
		Rev:           f.rev,
		IgnoreList:    ignoreList,
	}
	spawner := orchestrator.DockerSpawner{Image: imageTag, MemoryLimitGB: cfg.MemoryLimitGB}

	pool := orchestrator.NewPool(poolCfg, spawner, store)
	pool.SetMetrics(m)

	fmt.Fprintf(os.Stderr, "%s %d packages with tool=%s jobs=%d\n",
		color.GreenString("running"), len(ranked), f.tool, jobs)

	return pool.Run(ctx, ranked)
}

func applyRunOverrides(cfg *config.Config, f runFlags) {
	if f.bucket != "" {
		cfg.Bucket = f.bucket
	}
	if f.memoryLimitGB > 0 {
		cfg.MemoryLimitGB = f.memoryLimitGB
	}
	if f.target != "" {
		cfg.Target = f.target
	}
}

// loadRankedPackages downloads the registry dump from storage and applies
// --crates or --crate-list (mutually exclusive, enforced by the flag
// parser) to pick the package set.
func loadRankedPackages(ctx context.Context, store storage.Store, cratesN int, crateListPath string) ([]pkgid.Package, error) {
	crateListData, err := store.Download(ctx, "crates.json")
	if err != nil {
		return nil, fmt.Errorf("download crates.json: %w", err)
	}
	downloadsData, err := store.Download(ctx, "downloads.json")
	if err != nil {
		return nil, fmt.Errorf("download downloads.json: %w", err)
	}

	downloads, err := registry.LoadDownloads(downloadsData)
	if err != nil {
		return nil, err
	}
	all, err := registry.LoadCrateList(crateListData, downloads)
	if err != nil {
		return nil, err
	}
	all = pkgid.Dedup(all)
	pkgid.SortByRank(all)

	switch {
	case crateListPath != "":
		data, err := os.ReadFile(crateListPath)
		if err != nil {
			return nil, fmt.Errorf("read crate list: %w", err)
		}
		return registry.ParseCrateListFile(data, all)
	case cratesN > 0:
		if cratesN > len(all) {
			cratesN = len(all)
		}
		return all[:cratesN], nil
	default:
		return all, nil
	}
}

// buildSandboxImage builds the sandbox image via `docker build`. The
// image contents are the sandbox's business; the orchestrator only needs
// it to exist before workers spawn.
func buildSandboxImage(ctx context.Context, tag, tool, dockerContext string) error {
	dockerfile := fmt.Sprintf("%s/Dockerfile-%s", dockerContext, tool)
	cmd := exec.CommandContext(ctx, "docker", "build", "-t", tag, "-f", dockerfile, dockerContext)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("build sandbox image %s: %w", tag, err)
	}
	applog.Info().Str("tag", tag).Msg("run: sandbox image built")
	return nil
}
