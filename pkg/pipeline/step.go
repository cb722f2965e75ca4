package pipeline

import (
	"context"
	"reflect"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-wordvec/pkg/pipeline/model"
)

func isZero[O any](out O) bool {
	return reflect.ValueOf(&out).Elem().IsZero()
}

func onStepOutput[I, O any](opts []model.PipelineOption, input *model.Step[I], output *model.Step[O], iteration, computation time.Duration) error {
	for _, opt := range opts {
		err := opt.OnStepOutput(input.Details, output.Details, iteration, computation)
		if err != nil {
			return errors.Wrap(err, "unable to run on step output function")
		}
	}

	return nil
}

func sequentialOneToOneFn[I, O any](
	ctx context.Context,
	goIdx int,
	opts []model.PipelineOption,
	input *model.Step[I],
	output *model.Step[O],
	oneToOneFn func(context.Context, I) (O, error),
	dropZero bool,
) error {
	for {
		start := time.Now()
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "go routine %d", goIdx)
		case in, ok := <-input.Output:
			if !ok {
				return nil
			}

			startFn := time.Now()

			out, err := oneToOneFn(ctx, in)
			if err != nil {
				return errors.Wrapf(err, "go routine %d", goIdx)
			}

			endFn := time.Since(startFn)

			if dropZero && isZero(out) {
				continue
			}

			// the context is checked again so every running goroutine stops adding
			// elements once the pipeline is cancelled
			select {
			case <-ctx.Done():
				return errors.Wrapf(ctx.Err(), "go routine %d", goIdx)
			case output.Output <- out:
				err := onStepOutput(opts, input, output, time.Since(start)-endFn, endFn)
				if err != nil {
					return err
				}
			}
		}
	}
}

func concurrentOneToOneFn[I, O any](
	ctx context.Context,
	opts []model.PipelineOption,
	input *model.Step[I],
	output *model.Step[O],
	oneToOneFn func(context.Context, I) (O, error),
	dropZero bool,
) error {
	errGrp, dCtx := errgroup.WithContext(ctx)
	// each consumer stops as soon as one of them fails
	for goIdx := range output.Details.Concurrent {
		errGrp.Go(func() error {
			return sequentialOneToOneFn(dCtx, goIdx, opts, input, output, oneToOneFn, dropZero)
		})
	}

	return errGrp.Wait()
}

func runOneToOne[I, O any](
	ctx context.Context,
	opts []model.PipelineOption,
	input *model.Step[I],
	output *model.Step[O],
	oneToOneFn func(context.Context, I) (O, error),
	dropZero bool,
) error {
	if output.Details.Concurrent <= 1 {
		return sequentialOneToOneFn(ctx, 0, opts, input, output, oneToOneFn, dropZero)
	}

	return concurrentOneToOneFn(ctx, opts, input, output, oneToOneFn, dropZero)
}

func sequentialOneToManyFn[I, O any](
	ctx context.Context,
	goIdx int,
	opts []model.PipelineOption,
	input *model.Step[I],
	output *model.Step[O],
	oneToManyFn func(context.Context, I) ([]O, error),
) error {
	for {
		start := time.Now()
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "go routine %d", goIdx)
		case in, ok := <-input.Output:
			if !ok {
				return nil
			}

			startFn := time.Now()

			outs, err := oneToManyFn(ctx, in)
			if err != nil {
				return errors.Wrapf(err, "go routine %d", goIdx)
			}

			endFn := time.Since(startFn)

			for _, out := range outs {
				select {
				case <-ctx.Done():
					return errors.Wrapf(ctx.Err(), "go routine %d", goIdx)
				case output.Output <- out:
				}
			}

			err = onStepOutput(opts, input, output, time.Since(start)-endFn, endFn)
			if err != nil {
				return err
			}
		}
	}
}

func concurrentOneToManyFn[I, O any](
	ctx context.Context,
	opts []model.PipelineOption,
	input *model.Step[I],
	output *model.Step[O],
	oneToManyFn func(context.Context, I) ([]O, error),
) error {
	errGrp, dCtx := errgroup.WithContext(ctx)
	for goIdx := range output.Details.Concurrent {
		errGrp.Go(func() error {
			return sequentialOneToManyFn(dCtx, goIdx, opts, input, output, oneToManyFn)
		})
	}

	return errGrp.Wait()
}

func runOneToMany[I, O any](
	ctx context.Context,
	opts []model.PipelineOption,
	input *model.Step[I],
	output *model.Step[O],
	oneToManyFn func(context.Context, I) ([]O, error),
) error {
	if output.Details.Concurrent <= 1 {
		return sequentialOneToManyFn(ctx, 0, opts, input, output, oneToManyFn)
	}

	return concurrentOneToManyFn(ctx, opts, input, output, oneToManyFn)
}

func prepareStep[I, O any](pipe *Pipeline, name string, input *model.Step[I], opts ...StepOption) (*model.Step[O], error) {
	if pipe == nil {
		return nil, ErrPipelineMustBeSet
	}

	if input == nil {
		return nil, ErrInputMustBeSet
	}

	info := newStepInfo(model.NormalStepType, name, opts...)
	step := &model.Step[O]{
		Details: info,
		Output:  make(chan O, info.BufferSize),
	}

	for _, opt := range pipe.opts {
		err := opt.PrepareStep(input.Details, step.Details)
		if err != nil {
			return nil, errors.Wrap(err, "unable to run prepare step function")
		}
	}

	return step, nil
}

func addStep[I, O any](pipe *Pipeline, input *model.Step[I], step *model.Step[O], stepFn func(ctx context.Context, input *model.Step[I], output *model.Step[O]) error) {
	errC := make(chan error, 1)

	pipe.register(step.Details.Name, errC, func(ctx context.Context) {
		defer func() {
			close(step.Output)
			close(errC)
		}()

		err := stepFn(ctx, input, step)
		if err != nil {
			errC <- err
		}
	})
}

// AddStepOneToOne adds a step producing exactly one output per input.
func AddStepOneToOne[I, O any](pipe *Pipeline, name string, input *model.Step[I], oneToOneFn func(context.Context, I) (O, error), opts ...StepOption) (*model.Step[O], error) {
	step, err := prepareStep[I, O](pipe, name, input, opts...)
	if err != nil {
		return nil, err
	}

	addStep(pipe, input, step, func(ctx context.Context, in *model.Step[I], out *model.Step[O]) error {
		return runOneToOne(ctx, pipe.opts, in, out, oneToOneFn, false)
	})

	return step, nil
}

// AddStepOneToOneOrZero adds a step producing at most one output per input.
// Zero values returned by oneToOneFn are not pushed downstream.
func AddStepOneToOneOrZero[I, O any](pipe *Pipeline, name string, input *model.Step[I], oneToOneFn func(context.Context, I) (O, error), opts ...StepOption) (*model.Step[O], error) {
	step, err := prepareStep[I, O](pipe, name, input, opts...)
	if err != nil {
		return nil, err
	}

	addStep(pipe, input, step, func(ctx context.Context, in *model.Step[I], out *model.Step[O]) error {
		return runOneToOne(ctx, pipe.opts, in, out, oneToOneFn, true)
	})

	return step, nil
}

// AddStepOneToMany adds a step producing any number of outputs per input.
func AddStepOneToMany[I, O any](pipe *Pipeline, name string, input *model.Step[I], oneToManyFn func(context.Context, I) ([]O, error), opts ...StepOption) (*model.Step[O], error) {
	step, err := prepareStep[I, O](pipe, name, input, opts...)
	if err != nil {
		return nil, err
	}

	addStep(pipe, input, step, func(ctx context.Context, in *model.Step[I], out *model.Step[O]) error {
		return runOneToMany(ctx, pipe.opts, in, out, oneToManyFn)
	})

	return step, nil
}
