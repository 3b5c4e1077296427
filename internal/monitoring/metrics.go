package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Evaluation modes
const (
	ModeEval     = "eval"
	ModePrepared = "prepared"
	ModeBytecode = "bytecode"
	ModeCall     = "call"
	ModePrepare  = "prepare"
)

// StatusOK labels a successful evaluation; failures use the error kind
const StatusOK = "ok"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Runtime lifecycle
	RuntimesCreated prometheus.Counter
	RuntimesActive  prometheus.Gauge

	// Execution
	Evaluations     *prometheus.CounterVec
	EvalDuration    *prometheus.HistogramVec
	PreparedScripts prometheus.Counter
	BytecodeSize    prometheus.Histogram

	// Pool
	PoolAvailable prometheus.Gauge

	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds running totals for callers without a scraper
type Snapshot struct {
	Evaluations   int64
	Failures      int64
	TotalDuration time.Duration
	Runtimes      int64
}

// AverageDuration returns the mean evaluation time
func (s Snapshot) AverageDuration() time.Duration {
	if s.Evaluations == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(s.Evaluations)
}

// NewMetrics creates the collectors and registers them on reg.
// A nil registerer leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RuntimesCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "jsrt_runtimes_created_total",
				Help: "Total number of JavaScript runtimes created",
			},
		),
		RuntimesActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "jsrt_runtimes_active",
				Help: "Number of open JavaScript runtimes",
			},
		),
		Evaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jsrt_evaluations_total",
				Help: "Total number of script evaluations",
			},
			[]string{"mode", "status"},
		),
		EvalDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jsrt_evaluation_duration_seconds",
				Help:    "Script evaluation duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"mode"},
		),
		PreparedScripts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "jsrt_prepared_scripts_total",
				Help: "Total number of prepared scripts",
			},
		),
		BytecodeSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "jsrt_bytecode_size_bytes",
				Help:    "Size of compiled bytecode containers in bytes",
				Buckets: prometheus.ExponentialBuckets(256, 4, 8),
			},
		),
		PoolAvailable: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "jsrt_pool_available",
				Help: "Number of idle runtimes in pools",
			},
		),
	}
}

// RecordEvaluation records one evaluation
func (m *Metrics) RecordEvaluation(mode, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.Evaluations.WithLabelValues(mode, status).Inc()
	m.EvalDuration.WithLabelValues(mode).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.Evaluations++
	m.snapshot.TotalDuration += duration
	if status != StatusOK {
		m.snapshot.Failures++
	}
	m.mu.Unlock()
}

// RuntimeOpened records a new runtime
func (m *Metrics) RuntimeOpened() {
	if m == nil {
		return
	}
	m.RuntimesCreated.Inc()
	m.RuntimesActive.Inc()

	m.mu.Lock()
	m.snapshot.Runtimes++
	m.mu.Unlock()
}

// RuntimeClosed records a closed runtime
func (m *Metrics) RuntimeClosed() {
	if m == nil {
		return
	}
	m.RuntimesActive.Dec()
}

// IncPreparedScripts increments the prepared scripts counter
func (m *Metrics) IncPreparedScripts() {
	if m == nil {
		return
	}
	m.PreparedScripts.Inc()
}

// ObserveBytecode records the size of a compiled container
func (m *Metrics) ObserveBytecode(size int) {
	if m == nil {
		return
	}
	m.BytecodeSize.Observe(float64(size))
}

// AddPoolAvailable moves the idle runtime gauge by delta
func (m *Metrics) AddPoolAvailable(delta int) {
	if m == nil {
		return
	}
	m.PoolAvailable.Add(float64(delta))
}

// Snapshot returns the running totals
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
