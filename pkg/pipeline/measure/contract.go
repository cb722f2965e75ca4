package measure

import "time"

// Measure holds one Metric per step.
type Measure interface {
	AddMetric(name string, concurrent int) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
}

// Metric aggregates the durations observed for a step.
type Metric interface {
	// AddDuration records the time spent in the step function for one element.
	AddDuration(elapsed time.Duration)
	// AddTransportDuration records the time spent waiting for one element of inputStepName.
	AddTransportDuration(inputStepName string, elapsed time.Duration)
	AVGDuration() time.Duration
	// AVGTransportDuration returns the average wait per input step, divided by the step concurrency.
	AVGTransportDuration() map[string]time.Duration
	SetTotalDuration(endDuration time.Duration)
	GetTotalDuration() time.Duration
	Count() int64
}
