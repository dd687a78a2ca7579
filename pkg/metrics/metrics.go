// Package metrics exposes prometheus instrumentation for the
// impersonation subsystem.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	GuardedCallsTotal        *prometheus.CounterVec
	ImpersonationStartsTotal prometheus.Counter
	ImpersonationStopsTotal  prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		GuardedCallsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "atlas_guarded_effect_calls_total",
			Help: "Total number of guarded effect invocations, split by service and mocked outcome",
		}, []string{"service", "mocked"}),
		ImpersonationStartsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "atlas_impersonation_starts_total",
			Help: "Total number of impersonation sessions started",
		}),
		ImpersonationStopsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "atlas_impersonation_stops_total",
			Help: "Total number of impersonation sessions stopped",
		}),
	}
}

func (m *Metrics) ObserveGuardedCall(service string, mocked bool) {
	m.GuardedCallsTotal.WithLabelValues(service, strconv.FormatBool(mocked)).Inc()
}

func (m *Metrics) IncrementImpersonationStarts() {
	m.ImpersonationStartsTotal.Inc()
}

func (m *Metrics) IncrementImpersonationStops() {
	m.ImpersonationStopsTotal.Inc()
}
