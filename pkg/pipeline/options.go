package pipeline

import "github.com/askiada/go-wordvec/pkg/pipeline/model"

// StepOption configures a step.
type StepOption func(s *model.StepInfo)

// StepConcurrency sets how many goroutines run the step function.
func StepConcurrency(concurrent int) StepOption {
	return func(s *model.StepInfo) {
		s.Concurrent = concurrent
	}
}

// StepBufferSize sets the capacity of the step output channel.
func StepBufferSize(size int) StepOption {
	return func(s *model.StepInfo) {
		s.BufferSize = size
	}
}

// SplitterOption configures a splitter.
type SplitterOption[I any] func(s *Splitter[I])

// SplitterBufferSize sets the capacity of every splitter output.
func SplitterBufferSize[I any](bufferSize int) SplitterOption[I] {
	return func(s *Splitter[I]) {
		s.bufferSize = bufferSize
	}
}

func newStepInfo(stepType model.StepType, name string, opts ...StepOption) *model.StepInfo {
	info := &model.StepInfo{
		Type:       stepType,
		Name:       name,
		Concurrent: 1,
	}

	for _, opt := range opts {
		opt(info)
	}

	if info.Concurrent < 1 {
		info.Concurrent = 1
	}

	if info.BufferSize < 0 {
		info.BufferSize = 0
	}

	return info
}
