// Package metrics exposes a small Prometheus registry for the
// orchestrator's and aggregator's throughput counters, grounded on
// etalazz-vsa's churn-telemetry module: collectors held per Metrics value
// and registered against a private registry (not the global default one, so
// multiple Pool/Aggregator instances in the same test binary don't
// collide), served over an opt-in HTTP endpoint.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the set of counters/gauges the orchestrator and aggregator
// report into. The zero value is unusable; construct with New.
type Metrics struct {
	reg *prometheus.Registry

	PackagesCompleted prometheus.Counter
	WorkerCrashes     prometheus.Counter
	QueueDepth        prometheus.Gauge
	RunDuration       prometheus.Histogram

	RendersCompleted prometheus.Counter
	LogsChanged      prometheus.Counter
}

// New builds a Metrics with every collector registered against a fresh,
// private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		reg: reg,
		PackagesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ubfleet_packages_completed_total",
			Help: "Total packages whose transcript was uploaded successfully.",
		}),
		WorkerCrashes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ubfleet_worker_crashes_total",
			Help: "Total worker crashes detected and recovered from.",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ubfleet_queue_depth",
			Help: "Packages still pending in the shared queue.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ubfleet_run_duration_seconds",
			Help:    "Wall-clock time of one package's tool run.",
			Buckets: prometheus.DefBuckets,
		}),
		RendersCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ubfleet_aggregator_renders_total",
			Help: "Total packages diagnosed and rendered by the aggregator.",
		}),
		LogsChanged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ubfleet_aggregator_logs_changed_total",
			Help: "Total rendered logs that differed from the previously stored one.",
		}),
	}

	reg.MustRegister(
		m.PackagesCompleted,
		m.WorkerCrashes,
		m.QueueDepth,
		m.RunDuration,
		m.RendersCompleted,
		m.LogsChanged,
	)
	return m
}

// Serve starts a /metrics HTTP endpoint on addr in the background,
// shutting down when ctx is cancelled. A non-empty addr is opt-in, via
// the --metrics-addr flag.
func (m *Metrics) Serve(ctx context.Context, addr string) {
	if addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		_ = srv.ListenAndServe()
	}()
}
