package loader

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/askiada/go-wordvec/pkg/embedding"
	"github.com/askiada/go-wordvec/pkg/pipeline"
	"github.com/askiada/go-wordvec/pkg/pipeline/model"
	"github.com/askiada/go-wordvec/pkg/source"
)

// loadPipelined runs one reader step per input, merged into opts.Workers parse goroutines
// feeding a single aggregator sink.
func loadPipelined(ctx context.Context, p *parser, inputs []source.Input, opts Options, builder *embedding.Builder) error {
	pipe, err := pipeline.New(opts.PipelineOptions...)
	if err != nil {
		return errors.Wrap(err, "unable to create pipeline")
	}

	readers := make([]*model.Step[line], 0, len(inputs))

	for idx, input := range inputs {
		name := "read"
		if len(inputs) > 1 {
			name = fmt.Sprintf("read %s", input.Name)
		}

		reader, err := pipeline.AddRootStep(pipe, name, func(ctx context.Context, rootChan chan<- line) error {
			return p.read(ctx, idx, input, opts.MaxLineSize, func(l line) error {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case rootChan <- l:
					return nil
				}
			})
		}, pipeline.StepBufferSize(opts.BufferSize))
		if err != nil {
			return errors.Wrapf(err, "unable to add reader of %s", input.Name)
		}

		readers = append(readers, reader)
	}

	lines := readers[0]

	if len(readers) > 1 {
		lines, err = pipeline.AddMerger(pipe, "merge", readers...)
		if err != nil {
			return errors.Wrap(err, "unable to add merger")
		}
	}

	records, err := pipeline.AddStepOneToOneOrZero(pipe, "parse", lines, func(_ context.Context, l line) (*embedding.Record, error) {
		rec, ok, err := p.parse(l)
		if err != nil || !ok {
			return nil, err
		}

		return &rec, nil
	}, pipeline.StepConcurrency(opts.Workers), pipeline.StepBufferSize(opts.BufferSize))
	if err != nil {
		return errors.Wrap(err, "unable to add parse step")
	}

	err = pipeline.AddSink(pipe, "aggregate", records, func(_ context.Context, rec *embedding.Record) error {
		builder.Add(*rec)

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "unable to add aggregate sink")
	}

	return pipe.Run(ctx)
}
