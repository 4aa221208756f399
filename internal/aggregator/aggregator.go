// Package aggregator runs the download -> diagnose -> render -> publish
// pass over everything the orchestrator has uploaded, then composes the
// UB listing and landing pages.
package aggregator

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ubfleet/ubfleet/internal/applog"
	"github.com/ubfleet/ubfleet/internal/diagnose"
	"github.com/ubfleet/ubfleet/internal/metrics"
	"github.com/ubfleet/ubfleet/internal/pkgid"
	"github.com/ubfleet/ubfleet/internal/storage"
	"github.com/ubfleet/ubfleet/internal/term"
)

// maxInFlight bounds the number of concurrent HTML renders.
const maxInFlight = 256

// Result is one package's outcome after a pass over its raw transcript.
type Result struct {
	Package pkgid.Package
	Status  pkgid.Status
}

// Aggregator drives the pass described above for one tool.
type Aggregator struct {
	store     storage.Store
	tool      string
	downloads map[string]uint64
	metrics   *metrics.Metrics
}

// New builds an Aggregator. downloads maps a package name to its recent
// download count, as loaded from downloads.json; a name absent from the
// map is treated as Downloads: 0, matching the "unknown" convention.
func New(store storage.Store, tool string, downloads map[string]uint64) *Aggregator {
	return &Aggregator{store: store, tool: tool, downloads: downloads}
}

// SetMetrics attaches optional render counters; a nil Aggregator.metrics
// (the default) is a no-op everywhere it's read.
func (a *Aggregator) SetMetrics(m *metrics.Metrics) {
	a.metrics = m
}

// Run downloads every raw transcript under <tool>/raw/, diagnoses and
// renders each, re-uploading the rendered log only when it changed, then
// publishes the UB listing and landing pages.
func (a *Aggregator) Run(ctx context.Context) error {
	objs, err := a.store.List(ctx, a.tool+"/raw/")
	if err != nil {
		return fmt.Errorf("aggregator: list raw transcripts: %w", err)
	}

	var mu sync.Mutex
	results := make([]Result, 0, len(objs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInFlight)
	for _, obj := range objs {
		obj := obj
		name, version, ok := storage.ParseRawKey(a.tool, obj.Key)
		if !ok {
			continue
		}
		g.Go(func() error {
			result, err := a.processOne(gctx, name, version)
			if err != nil {
				applog.Warn().Err(err).Str("package", name).Str("version", version).
					Msg("aggregator: processing package failed")
				return nil
			}
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("aggregator: render pass: %w", err)
	}

	if err := a.publishUBListing(ctx, results); err != nil {
		return fmt.Errorf("aggregator: publish UB listing: %w", err)
	}
	if err := a.publishLanding(ctx, results); err != nil {
		return fmt.Errorf("aggregator: publish landing page: %w", err)
	}
	if err := a.publishErrorPage(ctx); err != nil {
		return fmt.Errorf("aggregator: publish error page: %w", err)
	}
	return nil
}

// processOne downloads, diagnoses, and renders one package, re-uploading
// the log only if its content changed.
func (a *Aggregator) processOne(ctx context.Context, name, version string) (Result, error) {
	rawKey := storage.RawKey(a.tool, name, version)
	compressed, err := a.store.Download(ctx, rawKey)
	if err != nil {
		return Result{}, fmt.Errorf("download raw: %w", err)
	}

	raw, err := storage.DecompressXZ(compressed)
	if err != nil {
		return Result{}, fmt.Errorf("decompress raw: %w", err)
	}

	status := diagnose.Diagnose(raw)
	html := term.RenderBuffered(name+" "+version, raw)

	logKey := storage.LogKey(a.tool, name, version)
	if changed, err := a.logChanged(ctx, logKey, html); err != nil {
		return Result{}, fmt.Errorf("check existing log: %w", err)
	} else if changed {
		if err := a.store.Upload(ctx, logKey, []byte(html), "text/html; charset=utf-8"); err != nil {
			return Result{}, fmt.Errorf("upload log: %w", err)
		}
		if a.metrics != nil {
			a.metrics.LogsChanged.Inc()
		}
	}
	if a.metrics != nil {
		a.metrics.RendersCompleted.Inc()
	}

	pkg := pkgid.Package{
		Name:      name,
		Version:   pkgid.ParseVersion(version),
		Downloads: a.downloads[name],
	}
	return Result{Package: pkg, Status: status}, nil
}

// logChanged reports whether html differs from the currently stored log
// (or there is no currently stored log at all).
func (a *Aggregator) logChanged(ctx context.Context, logKey, html string) (bool, error) {
	existing, err := a.store.Download(ctx, logKey)
	if err != nil {
		return true, nil
	}
	return !bytes.Equal(existing, []byte(html)), nil
}
