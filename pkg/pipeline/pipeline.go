package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-wordvec/pkg/pipeline/model"
)

// Pipeline is a pipeline of steps.
type Pipeline struct {
	errcList  *errorChans
	opts      []model.PipelineOption
	startTime time.Time
	goFn      []func(ctx context.Context)

	mu      sync.Mutex
	running bool
}

// New creates a new pipeline.
func New(opts ...model.PipelineOption) (*Pipeline, error) {
	pipe := &Pipeline{
		errcList:  &errorChans{},
		startTime: time.Now(),
		opts:      opts,
	}

	for _, opt := range opts {
		err := opt.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	return pipe, nil
}

// waitForPipeline waits for results from all error channels.
// The first error cancels the pipeline, the remaining ones are drained so that every
// step has returned when it exits.
func waitForPipeline(cancel context.CancelFunc, errs ...*errorChan) error {
	var first error

	for err := range mergeErrors(errs...) {
		if err != nil && first == nil {
			first = err

			cancel()
		}
	}

	return first
}

// Run starts every step and waits for them to finish. A pipeline runs only once.
func (p *Pipeline) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()

		return ErrAlreadyRunning
	}

	p.running = true
	p.mu.Unlock()

	dCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.startTime = time.Now()

	for _, fn := range p.goFn {
		go fn(dCtx)
	}

	err := waitForPipeline(cancel, p.errcList.list...)
	if err != nil {
		return err
	}

	return p.finishRun()
}

func (p *Pipeline) finishRun() error {
	for _, opt := range p.opts {
		err := opt.Finish()
		if err != nil {
			return errors.Wrap(err, "unable to finish pipeline option")
		}
	}

	return nil
}

// register adds a step goroutine started by Run. errC is closed by fn when it returns.
func (p *Pipeline) register(name string, errC chan error, fn func(ctx context.Context)) {
	p.goFn = append(p.goFn, fn)
	p.errcList.add(newErrorChan(name, errC))
}
