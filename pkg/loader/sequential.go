package loader

import (
	"context"

	"github.com/askiada/go-wordvec/pkg/embedding"
	"github.com/askiada/go-wordvec/pkg/source"
)

func loadSequential(ctx context.Context, p *parser, inputs []source.Input, opts Options, builder *embedding.Builder) error {
	return p.readAll(ctx, inputs, opts.MaxLineSize, func(l line) error {
		rec, ok, err := p.parse(l)
		if err != nil || !ok {
			return err
		}

		builder.Add(rec)

		return nil
	})
}
