/*
Package monitoring provides Prometheus metrics for JavaScript runtimes.

# Overview

Metrics are registered once per registerer and shared by every runtime and
pool that is handed the same *Metrics. A nil *Metrics is valid and records
nothing, so instrumented code never has to check whether metrics are on.

# Metrics

- jsrt_runtimes_created_total, jsrt_runtimes_active
- jsrt_evaluations_total{mode,status}
- jsrt_evaluation_duration_seconds{mode}
- jsrt_bytecode_size_bytes
- jsrt_prepared_scripts_total
- jsrt_pool_available

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	timer := monitoring.NewTimer(metrics, monitoring.ModeEval)
	// ... run the script ...
	timer.Stop(monitoring.StatusOK)

Expose the registry with promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).
*/
package monitoring
