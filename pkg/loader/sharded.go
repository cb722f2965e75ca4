package loader

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-wordvec/pkg/embedding"
	"github.com/askiada/go-wordvec/pkg/source"
)

// loadSharded reads chunks of lines on one goroutine. Each of the opts.Workers goroutines
// parses whole chunks into its own builder, the builders are merged once every chunk is done.
func loadSharded(ctx context.Context, p *parser, inputs []source.Input, opts Options, builder *embedding.Builder) error {
	errGrp, dCtx := errgroup.WithContext(ctx)
	chunks := make(chan []line, max(1, opts.BufferSize/opts.ChunkSize))

	errGrp.Go(func() error {
		defer close(chunks)

		send := func(chunk []line) error {
			select {
			case <-dCtx.Done():
				return dCtx.Err()
			case chunks <- chunk:
				return nil
			}
		}

		chunk := make([]line, 0, opts.ChunkSize)

		err := p.readAll(dCtx, inputs, opts.MaxLineSize, func(l line) error {
			chunk = append(chunk, l)
			if len(chunk) < opts.ChunkSize {
				return nil
			}

			full := chunk
			chunk = make([]line, 0, opts.ChunkSize)

			return send(full)
		})
		if err != nil {
			return err
		}

		if len(chunk) > 0 {
			return send(chunk)
		}

		return nil
	})

	shards := make([]*embedding.Builder, opts.Workers)

	for w := range opts.Workers {
		shards[w] = embedding.NewBuilder(opts.ChunkSize)

		errGrp.Go(func() error {
			for chunk := range chunks {
				for _, l := range chunk {
					rec, ok, err := p.parse(l)
					if err != nil {
						return err
					}

					if ok {
						shards[w].Add(rec)
					}
				}
			}

			return nil
		})
	}

	err := errGrp.Wait()
	if err != nil {
		return err
	}

	for w, shard := range shards {
		opts.Logger.DebugContext(ctx, "shard parsed", "shard", w, "records", shard.Len())
	}

	builder.Merge(shards...)

	return nil
}
