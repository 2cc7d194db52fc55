// Package metrics provides internal metrics collection for graph runs.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器：记录图运行与节点步骤的计数和耗时。
type Collector struct {
	runsTotal    *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	stepsTotal   *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器，并在 reg 上注册全部指标。
func NewCollector(reg prometheus.Registerer, logger *zap.Logger) *Collector {
	factory := promauto.With(reg)
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.runsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "graphflow",
			Name:      "runs_total",
			Help:      "Total number of graph runs",
		},
		[]string{"graph", "status"},
	)

	c.runDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "graphflow",
			Name:      "run_duration_seconds",
			Help:      "Graph run duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"graph"},
	)

	c.stepsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "graphflow",
			Name:      "steps_total",
			Help:      "Total number of executed node steps",
		},
		[]string{"graph", "node", "status"},
	)

	c.stepDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "graphflow",
			Name:      "step_duration_seconds",
			Help:      "Node step duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"graph", "node"},
	)

	return c
}

// ObserveRun 记录一次图运行。
func (c *Collector) ObserveRun(graph string, duration time.Duration, ok bool) {
	c.runsTotal.WithLabelValues(graph, statusLabel(ok)).Inc()
	c.runDuration.WithLabelValues(graph).Observe(duration.Seconds())
}

// ObserveStep 记录一次节点步骤。
func (c *Collector) ObserveStep(graph, node string, duration time.Duration, ok bool) {
	c.stepsTotal.WithLabelValues(graph, node, statusLabel(ok)).Inc()
	c.stepDuration.WithLabelValues(graph, node).Observe(duration.Seconds())
}

func statusLabel(ok bool) string {
	if ok {
		return "completed"
	}
	return "failed"
}
