package loader

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/askiada/go-wordvec/pkg/embedding"
	"github.com/askiada/go-wordvec/pkg/source"
)

var errStopScan = errors.New("stop scan")

type line struct {
	pos    embedding.Pos
	source string
	text   string
}

// parser turns lines into records. It is shared by every worker of a load.
type parser struct {
	dim         int
	skipInvalid bool

	lines   atomic.Int64
	skipped atomic.Int64
}

// parse returns false for lines that hold no record.
func (p *parser) parse(l line) (embedding.Record, bool, error) {
	text := strings.TrimSpace(l.text)
	if text == "" {
		return embedding.Record{}, false, nil
	}

	if l.pos.Line == 1 && embedding.IsHeader(text) {
		return embedding.Record{}, false, nil
	}

	rec, err := embedding.ParseLine(text, p.dim)
	if err != nil {
		if p.skipInvalid {
			p.skipped.Add(1)

			return embedding.Record{}, false, nil
		}

		return embedding.Record{}, false, &LineError{Source: l.source, Line: l.pos.Line, Err: err}
	}

	rec.Pos = l.pos

	return rec, true, nil
}

// read calls fn with every line of the input at index idx.
func (p *parser) read(ctx context.Context, idx int, input source.Input, maxLineSize int, fn func(l line) error) error {
	return source.ReadLines(ctx, input, maxLineSize, func(lineNo int, text string) error {
		p.lines.Add(1)

		return fn(line{
			pos:    embedding.Pos{Source: idx, Line: lineNo},
			source: input.Name,
			text:   text,
		})
	})
}

// readAll calls fn with every line of every input, in order.
func (p *parser) readAll(ctx context.Context, inputs []source.Input, maxLineSize int, fn func(l line) error) error {
	for idx, input := range inputs {
		err := p.read(ctx, idx, input, maxLineSize, fn)
		if err != nil {
			return err
		}
	}

	return nil
}

// inferDim returns the dimension of the first data line of inputs.
func inferDim(ctx context.Context, inputs []source.Input, opts Options) (int, error) {
	dim := 0

	for idx, input := range inputs {
		err := source.ReadLines(ctx, input, opts.MaxLineSize, func(lineNo int, text string) error {
			text = strings.TrimSpace(text)
			if text == "" || (lineNo == 1 && embedding.IsHeader(text)) {
				return nil
			}

			d, err := embedding.InferDim(text)
			if err != nil {
				if opts.SkipInvalid {
					return nil
				}

				return &LineError{Source: input.Name, Line: lineNo, Err: err}
			}

			dim = d

			return errStopScan
		})

		switch {
		case errors.Is(err, errStopScan):
			opts.Logger.DebugContext(ctx, "inferred vector dimension", "dim", dim, "input", inputs[idx].Name)

			return dim, nil
		case err != nil:
			return 0, err
		}
	}

	return 0, nil
}
