// Package metrics exposes pagelens telemetry as Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles every collector the pool and tools update. A nil
// *Metrics is valid and turns all updates into no-ops, so telemetry stays
// optional.
type Metrics struct {
	InstancesTotal  prometheus.Gauge
	InstancesActive prometheus.Gauge
	InstancesIdle   prometheus.Gauge
	MemoryAlloc     prometheus.Gauge

	InstancesCreated  prometheus.Counter
	InstancesClosed   prometheus.Counter
	HealthChecksTotal prometheus.Counter
	RecoveriesTotal   prometheus.Counter

	AnalysesTotal *prometheus.CounterVec
}

// New registers all pagelens collectors with reg and returns the bundle.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		InstancesTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pagelens_pool_instances",
			Help: "Number of tracked browser instances.",
		}),
		InstancesActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pagelens_pool_instances_active",
			Help: "Number of browser instances currently busy.",
		}),
		InstancesIdle: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pagelens_pool_instances_idle",
			Help: "Number of browser instances ready or idle.",
		}),
		MemoryAlloc: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pagelens_memory_alloc_bytes",
			Help: "Heap bytes allocated by the process.",
		}),
		InstancesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "pagelens_pool_instances_created_total",
			Help: "Browser instances created over the process lifetime.",
		}),
		InstancesClosed: factory.NewCounter(prometheus.CounterOpts{
			Name: "pagelens_pool_instances_closed_total",
			Help: "Browser instances closed over the process lifetime.",
		}),
		HealthChecksTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "pagelens_pool_health_checks_total",
			Help: "Health check sweeps performed.",
		}),
		RecoveriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "pagelens_pool_recoveries_total",
			Help: "Recovery attempts for errored browser instances.",
		}),
		AnalysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pagelens_analyses_total",
			Help: "Page analyses by outcome.",
		}, []string{"outcome"}),
	}
}

// ObservePool records the current instance counts. Safe on a nil receiver.
func (m *Metrics) ObservePool(total, active, idle int) {
	if m == nil {
		return
	}
	m.InstancesTotal.Set(float64(total))
	m.InstancesActive.Set(float64(active))
	m.InstancesIdle.Set(float64(idle))
}

// ObserveMemory records the current heap allocation. Safe on a nil receiver.
func (m *Metrics) ObserveMemory(allocBytes uint64) {
	if m == nil {
		return
	}
	m.MemoryAlloc.Set(float64(allocBytes))
}

// IncCreated counts a created instance. Safe on a nil receiver.
func (m *Metrics) IncCreated() {
	if m == nil {
		return
	}
	m.InstancesCreated.Inc()
}

// IncClosed counts a closed instance. Safe on a nil receiver.
func (m *Metrics) IncClosed() {
	if m == nil {
		return
	}
	m.InstancesClosed.Inc()
}

// IncHealthCheck counts a health sweep. Safe on a nil receiver.
func (m *Metrics) IncHealthCheck() {
	if m == nil {
		return
	}
	m.HealthChecksTotal.Inc()
}

// IncRecovery counts a recovery attempt. Safe on a nil receiver.
func (m *Metrics) IncRecovery() {
	if m == nil {
		return
	}
	m.RecoveriesTotal.Inc()
}

// IncAnalysis counts an analysis by outcome ("ok" or "error"). Safe on a
// nil receiver.
func (m *Metrics) IncAnalysis(outcome string) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(outcome).Inc()
}
