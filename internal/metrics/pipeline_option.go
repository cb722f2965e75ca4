package metrics

import (
	"time"

	"github.com/askiada/go-wordvec/pkg/pipeline/model"
)

type pipelineMetrics struct {
	model.NopOption

	registry *Registry
	name     string
}

func (pm *pipelineMetrics) observe(step *model.StepInfo, transport, computation time.Duration) {
	pm.registry.StepItems.WithLabelValues(pm.name, step.Name).Inc()
	pm.registry.StepDuration.WithLabelValues(pm.name, step.Name).Observe(computation.Seconds())
	pm.registry.StepTransportDuration.WithLabelValues(pm.name, step.Name).Observe(transport.Seconds())
}

func (pm *pipelineMetrics) OnStepOutput(_, step *model.StepInfo, iterationDuration, computationDuration time.Duration) error {
	pm.observe(step, iterationDuration, computationDuration)

	return nil
}

func (pm *pipelineMetrics) OnSplitterOutput(_, splitterStep *model.StepInfo, iterationDuration, computationDuration time.Duration) error {
	pm.observe(splitterStep, iterationDuration, computationDuration)

	return nil
}

func (pm *pipelineMetrics) OnMergerOutput(_, outputStep *model.StepInfo, iterationDuration time.Duration) error {
	pm.observe(outputStep, iterationDuration, 0)

	return nil
}

func (pm *pipelineMetrics) OnSinkOutput(_, step *model.StepInfo, iterationDuration, computationDuration time.Duration) error {
	pm.observe(step, iterationDuration, computationDuration)

	return nil
}

// PipelineOption exports the activity of every step of the pipeline called name.
func (r *Registry) PipelineOption(name string) model.PipelineOption {
	return &pipelineMetrics{registry: r, name: name}
}
