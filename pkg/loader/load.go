package loader

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-wordvec/pkg/embedding"
	"github.com/askiada/go-wordvec/pkg/source"
)

// Result is the outcome of a load.
type Result struct {
	Embeddings *embedding.Embeddings
	// Lines is the number of lines read, empty lines and headers included.
	Lines int
	// Skipped is the number of invalid lines ignored with SkipInvalid.
	Skipped  int
	Duration time.Duration
	Strategy Strategy
	Workers  int
}

type loadFn func(ctx context.Context, p *parser, inputs []source.Input, opts Options, builder *embedding.Builder) error

func strategyFn(strategy Strategy) (loadFn, error) {
	switch strategy {
	case Sequential:
		return loadSequential, nil
	case Shared:
		return loadShared, nil
	case Sharded:
		return loadSharded, nil
	case Pipelined:
		return loadPipelined, nil
	default:
		return nil, errors.Wrapf(ErrUnknownStrategy, "%q", strategy)
	}
}

// Load reads every line of inputs and returns the embeddings they hold.
func Load(ctx context.Context, inputs []source.Input, opts Options) (*Result, error) {
	if len(inputs) == 0 {
		return nil, source.ErrNoInput
	}

	opts = opts.withDefaults()

	fn, err := strategyFn(opts.Strategy)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	dim := opts.Dim
	if dim <= 0 {
		dim, err = inferDim(ctx, inputs, opts)
		if err != nil {
			return nil, errors.Wrap(err, "unable to infer vector dimension")
		}
	}

	p := &parser{dim: dim, skipInvalid: opts.SkipInvalid}
	builder := embedding.NewBuilder(0)

	err = fn(ctx, p, inputs, opts, builder)
	if err != nil {
		return nil, errors.Wrapf(err, "%s load", opts.Strategy)
	}

	emb, err := builder.Build()
	if err != nil {
		return nil, errors.Wrap(err, "unable to build embeddings")
	}

	res := &Result{
		Embeddings: emb,
		Lines:      int(p.lines.Load()),
		Skipped:    int(p.skipped.Load()),
		Duration:   time.Since(start),
		Strategy:   opts.Strategy,
		Workers:    opts.Workers,
	}

	opts.Logger.InfoContext(ctx, "vectors loaded",
		"strategy", res.Strategy,
		"workers", res.Workers,
		"lines", res.Lines,
		"vectors", emb.Len(),
		"skipped", res.Skipped,
		"duration", res.Duration,
	)

	if opts.Metrics != nil {
		opts.Metrics.ObserveLoad(string(res.Strategy), res.Workers, res.Lines, res.Skipped, res.Duration)
	}

	return res, nil
}
