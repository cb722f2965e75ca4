package model

import "time"

// PipelineOption observes a pipeline. The pipeline calls New when it is created,
// the Prepare hooks while steps are added, the On hooks every time a step pushes an
// element downstream and Finish once every step returned without error.
type PipelineOption interface {
	New() error

	stepHooks
	splitterHooks
	mergerHooks
	sinkHooks

	Finish() error
}

type stepHooks interface {
	// PrepareStep runs when the step is added to the pipeline.
	PrepareStep(parentStep, step *StepInfo) error
	// OnStepOutput runs every time the step pushes an element to its output.
	OnStepOutput(parentStep, step *StepInfo, iterationDuration, computationDuration time.Duration) error
}

type splitterHooks interface {
	PrepareSplitter(parentStep, splitterStep *StepInfo) error
	OnSplitterOutput(parentStep, splitterStep *StepInfo, iterationDuration, computationDuration time.Duration) error
}

type mergerHooks interface {
	PrepareMerger(parentSteps []*StepInfo, step *StepInfo) error
	OnMergerOutput(parentStep, outputStep *StepInfo, iterationDuration time.Duration) error
}

type sinkHooks interface {
	PrepareSink(parentStep, step *StepInfo) error
	OnSinkOutput(parentStep, step *StepInfo, iterationDuration, computationDuration time.Duration) error
	// AfterSink runs once the sink consumed its whole input.
	AfterSink(step *StepInfo, totalDuration time.Duration) error
}

// NopOption implements every hook of PipelineOption as a no-op.
// Options embed it and override the hooks they care about.
type NopOption struct{}

func (NopOption) New() error    { return nil }
func (NopOption) Finish() error { return nil }

func (NopOption) PrepareStep(_, _ *StepInfo) error { return nil }

func (NopOption) OnStepOutput(_, _ *StepInfo, _, _ time.Duration) error { return nil }

func (NopOption) PrepareSplitter(_, _ *StepInfo) error { return nil }

func (NopOption) OnSplitterOutput(_, _ *StepInfo, _, _ time.Duration) error { return nil }

func (NopOption) PrepareMerger(_ []*StepInfo, _ *StepInfo) error { return nil }

func (NopOption) OnMergerOutput(_, _ *StepInfo, _ time.Duration) error { return nil }

func (NopOption) PrepareSink(_, _ *StepInfo) error { return nil }

func (NopOption) OnSinkOutput(_, _ *StepInfo, _, _ time.Duration) error { return nil }

func (NopOption) AfterSink(_ *StepInfo, _ time.Duration) error { return nil }

var _ PipelineOption = NopOption{}
