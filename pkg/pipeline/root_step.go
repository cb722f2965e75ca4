package pipeline

import (
	"context"

	"github.com/pkg/errors"

	"github.com/askiada/go-wordvec/pkg/pipeline/model"
)

// AddRootStep adds a step producing the elements of the pipeline. stepFn must stop
// sending on rootChan once ctx is done. rootChan is closed when stepFn returns.
func AddRootStep[O any](pipe *Pipeline, name string, stepFn func(ctx context.Context, rootChan chan<- O) error, opts ...StepOption) (*model.Step[O], error) {
	if pipe == nil {
		return nil, ErrPipelineMustBeSet
	}

	info := newStepInfo(model.RootStepType, name, opts...)
	step := &model.Step[O]{
		Details: info,
		Output:  make(chan O, info.BufferSize),
	}

	for _, opt := range pipe.opts {
		err := opt.PrepareStep(model.StartStep.Details, step.Details)
		if err != nil {
			return nil, errors.Wrap(err, "unable to run prepare step function")
		}
	}

	errC := make(chan error, 1)

	pipe.register(name, errC, func(ctx context.Context) {
		defer func() {
			close(step.Output)
			close(errC)
		}()

		err := stepFn(ctx, step.Output)
		if err != nil {
			errC <- err
		}
	})

	return step, nil
}
