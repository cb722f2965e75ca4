package loader

import (
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-wordvec/pkg/pipeline/model"
	"github.com/askiada/go-wordvec/pkg/source"
)

// Strategy is a way of spreading the load over goroutines.
type Strategy string

const (
	Sequential Strategy = "sequential"
	Shared     Strategy = "shared"
	Sharded    Strategy = "sharded"
	Pipelined  Strategy = "pipeline"
)

const (
	DefaultChunkSize  = 1024
	DefaultBufferSize = 256
)

var ErrUnknownStrategy = errors.New("unknown strategy")

// Strategies returns every strategy, the baseline first.
func Strategies() []Strategy {
	return []Strategy{Sequential, Shared, Sharded, Pipelined}
}

// ParseStrategy returns the strategy named s.
func ParseStrategy(s string) (Strategy, error) {
	for _, strategy := range Strategies() {
		if strings.EqualFold(s, string(strategy)) {
			return strategy, nil
		}
	}

	return "", errors.Wrapf(ErrUnknownStrategy, "%q", s)
}

// Observer records the outcome of a load.
type Observer interface {
	ObserveLoad(strategy string, workers, lines, skipped int, duration time.Duration)
}

// Options configures Load. The zero value loads sequentially.
type Options struct {
	Strategy Strategy
	// Workers is the number of parse goroutines. It defaults to the number of CPUs.
	Workers int
	// ChunkSize is the number of lines handed at once to a sharded worker.
	ChunkSize int
	// BufferSize is the capacity of the channels between the reader and the workers.
	BufferSize int
	// Dim is the vector dimension. It is read from the first data line when zero.
	Dim int
	// SkipInvalid counts invalid lines instead of failing the load.
	SkipInvalid bool
	MaxLineSize int

	Metrics         Observer
	PipelineOptions []model.PipelineOption
	Logger          *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Strategy == "" {
		o.Strategy = Sequential
	}

	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}

	if o.Strategy == Sequential {
		o.Workers = 1
	}

	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}

	if o.BufferSize <= 0 {
		o.BufferSize = DefaultBufferSize
	}

	if o.MaxLineSize <= 0 {
		o.MaxLineSize = source.DefaultMaxLineSize
	}

	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}

	return o
}
