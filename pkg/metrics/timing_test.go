package metrics_test

import (
	"testing"
	"time"

	"github.com/daishaoxing/kegg-animate-pathway/pkg/metrics"
)

func TestTimingMetric_RecordAndStats(t *testing.T) {
	metrics.ResetAll()
	defer metrics.ResetAll()

	if !metrics.Enabled() {
		t.Skip("metrics disabled via KEGGANIM_METRICS")
	}

	metrics.FrameRender.Record(10 * time.Millisecond)
	metrics.FrameRender.Record(30 * time.Millisecond)

	s := metrics.FrameRender.Stats()
	if s.Count != 2 {
		t.Fatalf("expected 2 measurements, got %d", s.Count)
	}
	if s.TotalMs != 40 {
		t.Errorf("total: got %.1fms, want 40ms", s.TotalMs)
	}
	if s.AvgMs != 20 {
		t.Errorf("avg: got %.1fms, want 20ms", s.AvgMs)
	}
	if s.MaxMs != 30 {
		t.Errorf("max: got %.1fms, want 30ms", s.MaxMs)
	}
	if s.MinMs != 10 {
		t.Errorf("min: got %.1fms, want 10ms", s.MinMs)
	}
}

func TestTimer_RecordsOnStop(t *testing.T) {
	metrics.ResetAll()
	defer metrics.ResetAll()

	if !metrics.Enabled() {
		t.Skip("metrics disabled via KEGGANIM_METRICS")
	}

	stop := metrics.Timer(metrics.Encode)
	stop()

	if got := metrics.Encode.Count(); got != 1 {
		t.Fatalf("expected 1 measurement after stop, got %d", got)
	}
}

func TestTimer_NilMetricIsNoop(t *testing.T) {
	stop := metrics.Timer(nil)
	stop() // must not panic
}

func TestAllTimingStats_OmitsEmptyMetrics(t *testing.T) {
	metrics.ResetAll()
	defer metrics.ResetAll()

	if !metrics.Enabled() {
		t.Skip("metrics disabled via KEGGANIM_METRICS")
	}

	metrics.Aggregate.Record(5 * time.Millisecond)

	stats := metrics.AllTimingStats()
	if len(stats) != 1 {
		t.Fatalf("expected 1 populated metric, got %d", len(stats))
	}
	if stats[0].Name != metrics.Aggregate.Name() {
		t.Errorf("unexpected metric reported: %s", stats[0].Name)
	}
}
