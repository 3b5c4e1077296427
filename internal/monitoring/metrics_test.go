package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.RuntimeOpened()
	m.RecordEvaluation(ModeEval, StatusOK, time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "jsrt_runtimes_created_total")
	assert.Contains(t, names, "jsrt_evaluations_total")
	assert.Contains(t, names, "jsrt_evaluation_duration_seconds")
}

func TestRecordEvaluation(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordEvaluation(ModeEval, StatusOK, 2*time.Millisecond)
	m.RecordEvaluation(ModeEval, "evaluation", 4*time.Millisecond)
	m.RecordEvaluation(ModeBytecode, StatusOK, 3*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evaluations.WithLabelValues(ModeEval, StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evaluations.WithLabelValues(ModeEval, "evaluation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evaluations.WithLabelValues(ModeBytecode, StatusOK)))

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.Evaluations)
	assert.Equal(t, int64(1), snap.Failures)
	assert.Equal(t, 3*time.Millisecond, snap.AverageDuration())
}

func TestRuntimeLifecycle(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RuntimeOpened()
	m.RuntimeOpened()
	m.RuntimeClosed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RuntimesCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RuntimesActive))
	assert.Equal(t, int64(2), m.Snapshot().Runtimes)
}

func TestPoolAndBytecode(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.AddPoolAvailable(4)
	m.AddPoolAvailable(-1)
	m.ObserveBytecode(1024)
	m.IncPreparedScripts()

	assert.Equal(t, 3.0, testutil.ToFloat64(m.PoolAvailable))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PreparedScripts))
	assert.Equal(t, 1, testutil.CollectAndCount(m.BytecodeSize))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RuntimeOpened()
		m.RuntimeClosed()
		m.RecordEvaluation(ModeCall, StatusOK, time.Millisecond)
		m.IncPreparedScripts()
		m.ObserveBytecode(10)
		m.AddPoolAvailable(1)
		NewTimer(m, ModeEval).Stop(StatusOK)
	})
	assert.Equal(t, Snapshot{}, m.Snapshot())
}

func TestTimer(t *testing.T) {
	m := NewMetrics(nil)

	timer := NewTimer(m, ModePrepared)
	time.Sleep(time.Millisecond)
	d := timer.Stop(StatusOK)

	assert.GreaterOrEqual(t, d, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evaluations.WithLabelValues(ModePrepared, StatusOK)))
}

func TestSnapshotAverageEmpty(t *testing.T) {
	assert.Equal(t, time.Duration(0), Snapshot{}.AverageDuration())
}
