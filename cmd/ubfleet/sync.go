package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ubfleet/ubfleet/internal/aggregator"
	"github.com/ubfleet/ubfleet/internal/config"
	"github.com/ubfleet/ubfleet/internal/metrics"
	"github.com/ubfleet/ubfleet/internal/registry"
	"github.com/ubfleet/ubfleet/internal/storage"
)

type syncFlags struct {
	tool        string
	bucket      string
	metricsAddr string
}

func newSyncCmd() *cobra.Command {
	var f syncFlags

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Re-diagnose and re-render every stored transcript, then publish the listing pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			return runSync(cmd.Context(), cfgPath, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.tool, "tool", "", "Instrumentation tool whose pages to rebuild")
	flags.StringVar(&f.bucket, "bucket", "", "Object store bucket (default: config)")
	flags.StringVar(&f.metricsAddr, "metrics-addr", "", "Optional address to serve Prometheus /metrics on")

	return cmd
}

func runSync(ctx context.Context, cfgPath string, f syncFlags) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if f.bucket != "" {
		cfg.Bucket = f.bucket
	}
	if !validTools[f.tool] {
		return fmt.Errorf("sync: --tool must be one of miri, asan, build, check (got %q)", f.tool)
	}
	if cfg.Bucket == "" {
		return fmt.Errorf("sync: --bucket (or config bucket) is required")
	}

	store, err := storage.NewS3Store(ctx, cfg.Bucket)
	if err != nil {
		return fmt.Errorf("sync: connect to bucket %s: %w", cfg.Bucket, err)
	}

	downloadsData, err := store.Download(ctx, "downloads.json")
	if err != nil {
		return fmt.Errorf("sync: download downloads.json: %w", err)
	}
	downloads, err := registry.LoadDownloads(downloadsData)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	m := metrics.New()
	metricsAddr := f.metricsAddr
	if metricsAddr == "" {
		metricsAddr = cfg.MetricsAddr
	}
	m.Serve(ctx, metricsAddr)

	agg := aggregator.New(store, f.tool, downloads)
	agg.SetMetrics(m)

	fmt.Fprintf(os.Stderr, "%s tool=%s\n", color.CyanString("syncing"), f.tool)
	return agg.Run(ctx)
}
