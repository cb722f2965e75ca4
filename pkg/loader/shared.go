package loader

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-wordvec/pkg/embedding"
	"github.com/askiada/go-wordvec/pkg/source"
)

// loadShared reads lines on one goroutine and parses them on opts.Workers goroutines
// adding to the same builder.
func loadShared(ctx context.Context, p *parser, inputs []source.Input, opts Options, builder *embedding.Builder) error {
	errGrp, dCtx := errgroup.WithContext(ctx)
	lines := make(chan line, opts.BufferSize)

	errGrp.Go(func() error {
		defer close(lines)

		return p.readAll(dCtx, inputs, opts.MaxLineSize, func(l line) error {
			select {
			case <-dCtx.Done():
				return dCtx.Err()
			case lines <- l:
				return nil
			}
		})
	})

	for range opts.Workers {
		errGrp.Go(func() error {
			for l := range lines {
				rec, ok, err := p.parse(l)
				if err != nil {
					return err
				}

				if ok {
					builder.Add(rec)
				}
			}

			return nil
		})
	}

	return errGrp.Wait()
}
