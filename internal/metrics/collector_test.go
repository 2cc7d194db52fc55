package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCollector_ObserveRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg, zap.NewNop())

	c.ObserveRun("question", 120*time.Millisecond, true)
	c.ObserveRun("question", 80*time.Millisecond, true)
	c.ObserveRun("question", 10*time.Millisecond, false)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.runsTotal.WithLabelValues("question", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.runsTotal.WithLabelValues("question", "failed")))
}

func TestCollector_ObserveStep(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg, zap.NewNop())

	c.ObserveStep("question", "Ask", 5*time.Millisecond, true)
	c.ObserveStep("question", "Ask", 3*time.Millisecond, true)
	c.ObserveStep("question", "Evaluate", time.Millisecond, false)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.stepsTotal.WithLabelValues("question", "Ask", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.stepsTotal.WithLabelValues("question", "Evaluate", "failed")))
}

func TestCollector_RegistersAllMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg, zap.NewNop())

	c.ObserveRun("g", time.Second, true)
	c.ObserveStep("g", "n", time.Millisecond, true)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["graphflow_runs_total"])
	assert.True(t, names["graphflow_run_duration_seconds"])
	assert.True(t, names["graphflow_steps_total"])
	assert.True(t, names["graphflow_step_duration_seconds"])
}
