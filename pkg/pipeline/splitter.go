package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-wordvec/pkg/pipeline/model"
)

// Splitter broadcasts every element of its input to Total outputs.
type Splitter[I any] struct {
	mu            sync.Mutex
	currIdx       int
	mainStep      *model.Step[I]
	splittedSteps []*model.Step[I]
	bufferSize    int
	Total         int
}

// Get returns the next unclaimed output. It returns false once every output was claimed.
func (s *Splitter[I]) Get() (*model.Step[I], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currIdx >= len(s.splittedSteps) {
		return nil, false
	}

	step := s.splittedSteps[s.currIdx]
	s.currIdx++

	return step, true
}

func prepareSplitter[I any](pipe *Pipeline, input *model.Step[I], splitter *Splitter[I]) error {
	for _, opt := range pipe.opts {
		err := opt.PrepareSplitter(input.Details, splitter.mainStep.Details)
		if err != nil {
			return errors.Wrap(err, "unable to run prepare splitter function")
		}
	}

	return nil
}

func runSplitter[I any](ctx context.Context, pipe *Pipeline, input *model.Step[I], splitter *Splitter[I]) error {
	for {
		startIter := time.Now()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case entry, ok := <-input.Output:
			if !ok {
				return nil
			}

			startFn := time.Now()

			for _, step := range splitter.splittedSteps {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case step.Output <- entry:
				}
			}

			endFn := time.Since(startFn)

			for _, opt := range pipe.opts {
				err := opt.OnSplitterOutput(input.Details, splitter.mainStep.Details, startFn.Sub(startIter), endFn)
				if err != nil {
					return errors.Wrap(err, "unable to run on splitter output function")
				}
			}
		}
	}
}

// AddSplitter adds a step copying every element of input to total outputs, claimed with
// Splitter.Get. A slow output holds the others back once its buffer is full.
func AddSplitter[I any](pipe *Pipeline, name string, input *model.Step[I], total int, opts ...SplitterOption[I]) (*Splitter[I], error) {
	if pipe == nil {
		return nil, ErrPipelineMustBeSet
	}

	if input == nil {
		return nil, ErrInputMustBeSet
	}

	if total <= 0 {
		return nil, ErrSplitterTotal
	}

	splitter := &Splitter[I]{
		Total: total,
		mainStep: &model.Step[I]{
			Details: &model.StepInfo{
				Type:       model.SplitterStepType,
				Name:       name,
				Concurrent: 1,
			},
		},
	}

	for _, opt := range opts {
		opt(splitter)
	}

	if splitter.bufferSize <= 0 {
		splitter.bufferSize = 1
	}

	splitter.mainStep.Details.BufferSize = splitter.bufferSize
	splitter.splittedSteps = make([]*model.Step[I], total)

	for i := range total {
		splitter.splittedSteps[i] = &model.Step[I]{
			Details: splitter.mainStep.Details,
			Output:  make(chan I, splitter.bufferSize),
		}
	}

	err := prepareSplitter(pipe, input, splitter)
	if err != nil {
		return nil, err
	}

	errC := make(chan error, 1)

	pipe.register(name, errC, func(ctx context.Context) {
		defer func() {
			for _, step := range splitter.splittedSteps {
				close(step.Output)
			}

			close(errC)
		}()

		err := runSplitter(ctx, pipe, input, splitter)
		if err != nil {
			errC <- err
		}
	})

	return splitter, nil
}
