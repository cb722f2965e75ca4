// Package workers runs indexed tasks sequentially or on a bounded pool of goroutines.
package workers

import (
	"context"
	"runtime/debug"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var ErrPanic = errors.New("task panicked")

// Executor runs fn for every index in [0, n). Run stops scheduling tasks after the first
// error and returns it.
type Executor interface {
	Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error
}

// New returns a Sequential executor when size is 1 or less, a Pool otherwise.
func New(size int) Executor {
	if size <= 1 {
		return Sequential{}
	}

	return Pool{Size: size}
}

// Sequential runs the tasks one after the other on the calling goroutine.
type Sequential struct{}

func (Sequential) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	for i := range n {
		err := ctx.Err()
		if err != nil {
			return err
		}

		err = safeCall(ctx, i, fn)
		if err != nil {
			return err
		}
	}

	return nil
}

// Pool runs at most Size tasks at the same time.
type Pool struct {
	Size int
}

func (p Pool) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	errGrp, dCtx := errgroup.WithContext(ctx)
	errGrp.SetLimit(max(1, p.Size))

	for i := range n {
		if dCtx.Err() != nil {
			break
		}

		errGrp.Go(func() error {
			return safeCall(dCtx, i, fn)
		})
	}

	err := errGrp.Wait()
	if err != nil {
		return err
	}

	return ctx.Err()
}

func safeCall(ctx context.Context, i int, fn func(ctx context.Context, i int) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(ErrPanic, "task %d: %v\n%s", i, r, debug.Stack())
		}
	}()

	err = fn(ctx, i)
	if err != nil {
		return errors.Wrapf(err, "task %d", i)
	}

	return nil
}
