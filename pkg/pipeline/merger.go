package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-wordvec/pkg/pipeline/model"
)

func prepareMerger[I any](pipe *Pipeline, name string, steps ...*model.Step[I]) (*model.Step[I], error) {
	if pipe == nil {
		return nil, ErrPipelineMustBeSet
	}

	if len(steps) == 0 {
		return nil, ErrInputMustBeSet
	}

	stepInfos := make([]*model.StepInfo, len(steps))
	bufferSize := 0

	for i, step := range steps {
		if step == nil {
			return nil, ErrInputMustBeSet
		}

		stepInfos[i] = step.Details

		if step.Details != nil {
			bufferSize = max(bufferSize, step.Details.BufferSize)
		}
	}

	outputStep := &model.Step[I]{
		Details: &model.StepInfo{
			Type:       model.MergerStepType,
			Name:       name,
			Concurrent: len(steps),
			BufferSize: bufferSize,
		},
		Output: make(chan I, bufferSize),
	}

	for _, opt := range pipe.opts {
		err := opt.PrepareMerger(stepInfos, outputStep.Details)
		if err != nil {
			return nil, errors.Wrap(err, "unable to run prepare merger function")
		}
	}

	return outputStep, nil
}

func runStepMerger[I any](ctx context.Context, pipe *Pipeline, step, outputStep *model.Step[I]) error {
	for {
		startIter := time.Now()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case entry, ok := <-step.Output:
			if !ok {
				return nil
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case outputStep.Output <- entry:
			}

			endIter := time.Since(startIter)

			for _, opt := range pipe.opts {
				err := opt.OnMergerOutput(step.Details, outputStep.Details, endIter)
				if err != nil {
					return errors.Wrap(err, "unable to run on merger output function")
				}
			}
		}
	}
}

// AddMerger adds a step merging the output of steps into a single channel.
// The output buffer is as large as the largest input buffer. The output is closed once
// every input is exhausted.
func AddMerger[I any](pipe *Pipeline, name string, steps ...*model.Step[I]) (*model.Step[I], error) {
	outputStep, err := prepareMerger(pipe, name, steps...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to prepare merger")
	}

	errC := make(chan error, len(steps))

	pipe.register(name, errC, func(ctx context.Context) {
		wgrp := sync.WaitGroup{}
		wgrp.Add(len(steps))

		for _, step := range steps {
			go func() {
				defer wgrp.Done()

				err := runStepMerger(ctx, pipe, step, outputStep)
				if err != nil {
					errC <- err
				}
			}()
		}

		wgrp.Wait()
		close(outputStep.Output)
		close(errC)
	})

	return outputStep, nil
}
