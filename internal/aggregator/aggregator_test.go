package aggregator

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ubfleet/ubfleet/internal/metrics"
	"github.com/ubfleet/ubfleet/internal/storage"
)

func putRaw(t *testing.T, store *storage.MemStore, tool, name, version, transcript string) {
	t.Helper()
	compressed, err := storage.CompressXZ([]byte(transcript))
	if err != nil {
		t.Fatalf("CompressXZ: %v", err)
	}
	key := storage.RawKey(tool, name, version)
	if err := store.Upload(context.Background(), key, compressed, "application/octet-stream"); err != nil {
		t.Fatalf("Upload raw: %v", err)
	}
}

func TestAggregatorRendersAndPublishesListing(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()

	putRaw(t, store, "miri", "ub-crate", "1.0.0", "Undefined Behavior: pointer out of bounds\n")
	putRaw(t, store, "miri", "clean-crate", "2.0.0", "test result: ok\n")

	agg := New(store, "miri", map[string]uint64{"ub-crate": 100, "clean-crate": 5})
	if err := agg.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, key := range []string{
		storage.LogKey("miri", "ub-crate", "1.0.0"),
		storage.LogKey("miri", "clean-crate", "2.0.0"),
	} {
		if _, err := store.Download(ctx, key); err != nil {
			t.Errorf("expected a rendered log at %s: %v", key, err)
		}
	}

	listing, err := store.Download(ctx, storage.UBListingKey("miri"))
	if err != nil {
		t.Fatalf("expected a UB listing page: %v", err)
	}
	if !strings.Contains(string(listing), "ub-crate") {
		t.Errorf("UB listing should mention ub-crate, got %s", listing)
	}
	if strings.Contains(string(listing), "clean-crate") {
		t.Errorf("UB listing should not mention the passing crate, got %s", listing)
	}

	landing, err := store.Download(ctx, storage.LandingKey("miri"))
	if err != nil {
		t.Fatalf("expected a landing page: %v", err)
	}
	if !strings.Contains(string(landing), "ub-crate") || !strings.Contains(string(landing), "clean-crate") {
		t.Errorf("landing page should list every rendered package, got %s", landing)
	}
}

func TestAggregatorSkipsReuploadWhenLogUnchanged(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()
	putRaw(t, store, "miri", "stable-crate", "1.0.0", "test result: ok\n")

	agg := New(store, "miri", nil)
	if err := agg.Run(ctx); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	first, err := store.Download(ctx, storage.LogKey("miri", "stable-crate", "1.0.0"))
	if err != nil {
		t.Fatalf("Download log: %v", err)
	}

	m := metrics.New()
	agg.SetMetrics(m)
	if err := agg.Run(ctx); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	second, err := store.Download(ctx, storage.LogKey("miri", "stable-crate", "1.0.0"))
	if err != nil {
		t.Fatalf("Download log after second run: %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("unchanged transcript produced a different log: %q vs %q", first, second)
	}

	if got := testutil.ToFloat64(m.RendersCompleted); got != 1 {
		t.Errorf("expected 1 render recorded on the metrics-attached run, got %v", got)
	}
	if got := testutil.ToFloat64(m.LogsChanged); got != 0 {
		t.Errorf("expected no log-changed increment when content is identical, got %v", got)
	}
}

func TestAggregatorRecordsLogChangedMetric(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()
	putRaw(t, store, "miri", "new-crate", "1.0.0", "test result: ok\n")

	agg := New(store, "miri", nil)
	m := metrics.New()
	agg.SetMetrics(m)

	if err := agg.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := testutil.ToFloat64(m.LogsChanged); got != 1 {
		t.Errorf("expected 1 log-changed increment for a newly rendered log, got %v", got)
	}
	if got := testutil.ToFloat64(m.RendersCompleted); got != 1 {
		t.Errorf("expected 1 render recorded, got %v", got)
	}
}

func TestAggregatorDedupsToHighestVersionInListing(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()
	putRaw(t, store, "miri", "dup-crate", "1.0.0", "Undefined Behavior: use of uninitialized memory\n")
	putRaw(t, store, "miri", "dup-crate", "2.0.0", "Undefined Behavior: use of uninitialized memory\n")

	agg := New(store, "miri", map[string]uint64{"dup-crate": 1})
	if err := agg.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	listing, err := store.Download(ctx, storage.UBListingKey("miri"))
	if err != nil {
		t.Fatalf("Download UB listing: %v", err)
	}
	if strings.Count(string(listing), "/miri/logs/dup-crate/") != 1 {
		t.Errorf("expected exactly one dup-crate row (highest version kept), got %s", listing)
	}
	if !strings.Contains(string(listing), "2.0.0") {
		t.Errorf("expected the kept row to be the higher version, got %s", listing)
	}
}
