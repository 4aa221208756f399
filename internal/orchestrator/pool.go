package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ubfleet/ubfleet/internal/applog"
	"github.com/ubfleet/ubfleet/internal/metrics"
	"github.com/ubfleet/ubfleet/internal/pkgid"
	"github.com/ubfleet/ubfleet/internal/storage"
)

// recentWindow is how far back ListFinished looks when filtering already
// completed packages out of a non-rerun invocation.
const recentWindow = 90 * 24 * time.Hour

// Config is the orchestrator's input: the ranked package list is supplied
// separately to Run, everything else here is run-wide configuration.
type Config struct {
	Tool           string
	Target         string
	Bucket         string
	Jobs           int
	MemoryLimitGB  int
	Rerun          bool
	Rev            bool
	IgnoreList     map[string]bool
}

// Pool drives jobs workers against a shared Queue, fanning them out with
// errgroup and collecting each run's transcript into storage.
type Pool struct {
	cfg     Config
	spawner Spawner
	store   storage.Store
	metrics *metrics.Metrics
}

// NewPool builds a Pool. spawner is the sandbox-process boundary; store is
// where completed transcripts are uploaded.
func NewPool(cfg Config, spawner Spawner, store storage.Store) *Pool {
	if cfg.Jobs <= 0 {
		cfg.Jobs = 1
	}
	if cfg.IgnoreList == nil {
		cfg.IgnoreList = map[string]bool{}
	}
	return &Pool{cfg: cfg, spawner: spawner, store: store}
}

// SetMetrics attaches optional throughput counters; a nil Pool.metrics
// (the default) is a no-op everywhere it's read.
func (p *Pool) SetMetrics(m *metrics.Metrics) {
	p.metrics = m
}

// Run filters ranked down to the packages that still need a run (unless
// Rerun is set), orders the remainder per OrderForPop, and fans jobs
// workers out over the resulting queue until it is drained or ctx is
// cancelled by the first fatal worker error.
func (p *Pool) Run(ctx context.Context, ranked []pkgid.Package) error {
	pending, err := p.filterExisting(ctx, ranked)
	if err != nil {
		return fmt.Errorf("orchestrator: filter existing: %w", err)
	}

	queue := NewQueue(OrderForPop(pending, p.cfg.Rev))
	if p.metrics != nil {
		p.metrics.QueueDepth.Set(float64(queue.Len()))
	}
	runUUID := uuid.NewString()
	sentinel := Sentinel(runUUID)
	env := WorkerEnv{
		RunUUID:   runUUID,
		Tool:      p.cfg.Tool,
		Target:    p.cfg.Target,
		Delimiter: sentinel,
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < p.cfg.Jobs; i++ {
		cpuIndex := i
		g.Go(func() error {
			return p.runWorkerLoop(gctx, cpuIndex, env, sentinel, queue)
		})
	}
	return g.Wait()
}

// filterExisting subtracts packages already uploaded to raw/ within
// recentWindow, unless Rerun is set.
func (p *Pool) filterExisting(ctx context.Context, ranked []pkgid.Package) ([]pkgid.Package, error) {
	if p.cfg.Rerun {
		return ranked, nil
	}

	prefix := p.cfg.Tool + "/raw/"
	finished, err := p.store.ListFinished(ctx, prefix, recentWindow)
	if err != nil {
		return nil, err
	}

	done := make(map[pkgid.Key]bool, len(finished))
	for _, obj := range finished {
		if name, version, ok := storage.ParseRawKey(p.cfg.Tool, obj.Key); ok {
			done[pkgid.Key{Name: name, Version: version}] = true
		}
	}

	out := make([]pkgid.Package, 0, len(ranked))
	for _, pkg := range ranked {
		if !done[pkg.Key()] {
			out = append(out, pkg)
		}
	}
	return out, nil
}

// runWorkerLoop is the body of one errgroup goroutine: spawn a worker,
// drain the queue, respawning on every crash, until the queue is empty.
func (p *Pool) runWorkerLoop(ctx context.Context, cpuIndex int, env WorkerEnv, sentinel string, queue *Queue) error {
	child, err := p.spawner.Spawn(ctx, cpuIndex, env)
	if err != nil {
		return fmt.Errorf("orchestrator: spawn worker %d: %w", cpuIndex, err)
	}
	// The deferred close must see the current child, not the one spawned
	// first: respawns reassign it.
	defer func() { child.Close() }()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		pkg, ok := queue.Pop()
		if !ok {
			return nil
		}
		if p.metrics != nil {
			p.metrics.QueueDepth.Set(float64(queue.Len()))
		}

		if p.cfg.IgnoreList[pkg.Name] {
			continue
		}

		runStart := time.Now()
		transcript, runErr := runOnce(child, pkg, sentinel)
		if runErr != nil {
			applog.Warn().Err(runErr).Str("package", pkg.Name).Int("cpu", cpuIndex).
				Msg("orchestrator: worker run failed")
		}

		if child.Exited() {
			applog.Warn().Str("package", pkg.Name).Int("cpu", cpuIndex).
				Msg("orchestrator: worker crashed, discarding run and respawning")
			if p.metrics != nil {
				p.metrics.WorkerCrashes.Inc()
			}
			child.Close()
			child, err = p.spawner.Spawn(ctx, cpuIndex, env)
			if err != nil {
				return fmt.Errorf("orchestrator: respawn worker %d: %w", cpuIndex, err)
			}
			continue
		}

		if runErr != nil {
			continue
		}

		compressed, err := storage.CompressXZ(transcript)
		if err != nil {
			applog.Warn().Err(err).Str("package", pkg.Name).Msg("orchestrator: compress transcript failed")
			continue
		}

		key := storage.RawKey(p.cfg.Tool, pkg.Name, pkg.Version.String())
		if err := p.store.Upload(ctx, key, compressed, "application/x-xz"); err != nil {
			applog.Warn().Err(err).Str("package", pkg.Name).Msg("orchestrator: upload transcript failed")
			continue
		}
		if p.metrics != nil {
			p.metrics.PackagesCompleted.Inc()
			p.metrics.RunDuration.Observe(time.Since(runStart).Seconds())
		}
	}
}
