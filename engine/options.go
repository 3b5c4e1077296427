package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/jsbridge/internal/monitoring"
)

// Metrics collects runtime and evaluation metrics. One value is shared by
// every runtime that reports to the same registry.
type Metrics = monitoring.Metrics

// NewMetrics registers the engine collectors on reg. Call it once per
// registry and pass the result to WithMetrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return monitoring.NewMetrics(reg)
}

// Option configures a Runtime or a Pool.
type Option func(*options)

type options struct {
	logger  *zap.Logger
	metrics *Metrics
	console bool
}

func defaultOptions() *options {
	return &options{logger: zap.NewNop()}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// WithLogger sets the logger for lifecycle events and console output.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics reports to m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithConsole installs a console global whose output goes to the logger.
func WithConsole() Option {
	return func(o *options) {
		o.console = true
	}
}
