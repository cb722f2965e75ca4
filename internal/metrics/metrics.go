// Package metrics provides Prometheus instrumentation for loads, fits and pipelines.
package metrics

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "wordvec"

// Registry holds every metric of the wordvec command.
type Registry struct {
	reg *prometheus.Registry

	// Load Metrics
	LoadLines    *prometheus.CounterVec
	LoadSkipped  *prometheus.CounterVec
	LoadDuration *prometheus.HistogramVec

	// Training Metrics
	FitTrees    *prometheus.CounterVec
	FitDuration *prometheus.HistogramVec

	// Pipeline Metrics
	StepItems             *prometheus.CounterVec
	StepDuration          *prometheus.HistogramVec
	StepTransportDuration *prometheus.HistogramVec

	// Benchmark Metrics
	BenchMeanDuration *prometheus.GaugeVec
}

// NewRegistry creates the metrics and registers them in reg.
func NewRegistry(reg *prometheus.Registry) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		reg: reg,

		LoadLines: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "load",
				Name:      "lines_total",
				Help:      "Total number of lines read",
			},
			[]string{"strategy"},
		),

		LoadSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "load",
				Name:      "skipped_lines_total",
				Help:      "Total number of invalid lines skipped",
			},
			[]string{"strategy"},
		),

		LoadDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "load",
				Name:      "duration_seconds",
				Help:      "Time spent loading word vectors",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 16),
			},
			[]string{"strategy", "workers"},
		),

		FitTrees: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "forest",
				Name:      "trees_total",
				Help:      "Total number of trees grown",
			},
			[]string{"workers"},
		),

		FitDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "forest",
				Name:      "fit_duration_seconds",
				Help:      "Time spent fitting a forest",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 16),
			},
			[]string{"workers"},
		),

		StepItems: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "step_items_total",
				Help:      "Total number of elements pushed by a step",
			},
			[]string{"pipeline", "step"},
		),

		StepDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "step_duration_seconds",
				Help:      "Time spent by a step on one element",
				Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 12),
			},
			[]string{"pipeline", "step"},
		),

		StepTransportDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "step_transport_duration_seconds",
				Help:      "Time a step waited for its input or its consumer",
				Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 12),
			},
			[]string{"pipeline", "step"},
		),

		BenchMeanDuration: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "bench",
				Name:      "mean_duration_seconds",
				Help:      "Mean duration of a benchmark case",
			},
			[]string{"workload", "strategy", "workers"},
		),
	}
}

// ObserveLoad records a load.
func (r *Registry) ObserveLoad(strategy string, workers, lines, skipped int, duration time.Duration) {
	r.LoadLines.WithLabelValues(strategy).Add(float64(lines))
	r.LoadSkipped.WithLabelValues(strategy).Add(float64(skipped))
	r.LoadDuration.WithLabelValues(strategy, strconv.Itoa(workers)).Observe(duration.Seconds())
}

// ObserveFit records a forest fit.
func (r *Registry) ObserveFit(trees, workers int, duration time.Duration) {
	label := strconv.Itoa(workers)
	r.FitTrees.WithLabelValues(label).Add(float64(trees))
	r.FitDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// ObserveBench records the mean duration of a benchmark case.
func (r *Registry) ObserveBench(workload, strategy string, workers int, mean time.Duration) {
	r.BenchMeanDuration.WithLabelValues(workload, strategy, strconv.Itoa(workers)).Set(mean.Seconds())
}

// WriteTextfile writes every metric to path in the text exposition format.
func (r *Registry) WriteTextfile(path string) error {
	return errors.Wrapf(prometheus.WriteToTextfile(path, r.reg), "unable to write metrics to %s", path)
}
