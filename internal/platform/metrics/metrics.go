// Package metrics exposes Prometheus collectors reporting add-on
// controller activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "cartside"
	subsystem = "addon"
)

// Metrics holds the collectors recorded by the add-on controller.
type Metrics struct {
	appends        *prometheus.CounterVec
	ignoredEvents  *prometheus.CounterVec
	countRefreshes *prometheus.CounterVec
}

// MustNew constructs a Metrics instance registered with reg. Registration
// errors panic, mirroring promauto semantics so configuration bugs surface
// early. Callers that need isolated metric names (tests) should pass a
// fresh registry.
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	appends := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "appends_total",
			Help:      "Total add-on append attempts by outcome.",
		},
		[]string{"outcome"},
	)
	ignoredEvents := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "ignored_events_total",
			Help:      "Total cart-update notifications rejected before any side effect, by reason.",
		},
		[]string{"reason"},
	)
	countRefreshes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "count_refreshes_total",
			Help:      "Total cart-count refresh fetches by status.",
		},
		[]string{"status"},
	)
	reg.MustRegister(appends, ignoredEvents, countRefreshes)
	return &Metrics{
		appends:        appends,
		ignoredEvents:  ignoredEvents,
		countRefreshes: countRefreshes,
	}
}

// RecordAppend counts one append attempt with the given outcome label.
func (m *Metrics) RecordAppend(outcome string) {
	if m == nil || m.appends == nil {
		return
	}
	m.appends.WithLabelValues(outcome).Inc()
}

// RecordIgnored counts one rejected notification with the given reason label.
func (m *Metrics) RecordIgnored(reason string) {
	if m == nil || m.ignoredEvents == nil {
		return
	}
	m.ignoredEvents.WithLabelValues(reason).Inc()
}

// RecordCountRefresh counts one cart-count fetch.
func (m *Metrics) RecordCountRefresh(ok bool) {
	if m == nil || m.countRefreshes == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.countRefreshes.WithLabelValues(status).Inc()
}
