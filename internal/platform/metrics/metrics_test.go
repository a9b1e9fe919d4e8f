package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAppendCountsByOutcome(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := MustNew(reg)

	m.RecordAppend("appended")
	m.RecordAppend("appended")
	m.RecordAppend("append_failed")

	if got := testutil.ToFloat64(m.appends.WithLabelValues("appended")); got != 2 {
		t.Fatalf("appended counter = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.appends.WithLabelValues("append_failed")); got != 1 {
		t.Fatalf("append_failed counter = %v, want 1", got)
	}
}

func TestRecordCountRefreshStatusLabels(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := MustNew(reg)

	m.RecordCountRefresh(true)
	m.RecordCountRefresh(false)

	if got := testutil.ToFloat64(m.countRefreshes.WithLabelValues("ok")); got != 1 {
		t.Fatalf("ok counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.countRefreshes.WithLabelValues("error")); got != 1 {
		t.Fatalf("error counter = %v, want 1", got)
	}
}

func TestNilMetricsAreNoOps(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.RecordAppend("appended")
	m.RecordIgnored("ignored_self")
	m.RecordCountRefresh(true)
}
