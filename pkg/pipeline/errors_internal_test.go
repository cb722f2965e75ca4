package pipeline

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorChans(t *testing.T) {
	t.Parallel()

	ecs := errorChans{}
	ec1 := &errorChan{}
	ec2 := &errorChan{}
	doneChan := make(chan struct{}, 2)

	go func() {
		ecs.add(ec1)

		doneChan <- struct{}{}
	}()

	go func() {
		ecs.add(ec2)

		doneChan <- struct{}{}
	}()

	<-doneChan
	<-doneChan
	assert.ElementsMatch(t, []*errorChan{ec1, ec2}, ecs.list)
}

func TestMergeErrorsAllNil(t *testing.T) {
	t.Parallel()

	ec1 := newErrorChan("error chan", nil)
	ec2 := newErrorChan("error chan 2", nil)

	outErrorChan := mergeErrors(ec1, ec2)
	gotErr, open := <-outErrorChan
	assert.False(t, open)
	assert.NoError(t, gotErr)
}

var (
	err1 = errors.New("error 1")
	err2 = errors.New("error 2")
)

func TestMergeErrors(t *testing.T) {
	t.Parallel()

	chan1 := make(chan error)
	ec1 := newErrorChan("first", chan1)
	chan2 := make(chan error)
	ec2 := newErrorChan("second", chan2)

	go func() {
		defer close(chan1)
		defer close(chan2)

		chan1 <- err1

		chan2 <- err2
	}()

	gotErrs := []error{}
	for err := range mergeErrors(ec1, ec2) {
		gotErrs = append(gotErrs, err)
	}

	sort.Slice(gotErrs, func(i, j int) bool {
		return gotErrs[i].Error() < gotErrs[j].Error()
	})

	require.Len(t, gotErrs, 2)
	require.ErrorIs(t, gotErrs[0], err1)
	assert.Contains(t, gotErrs[0].Error(), "first")
	require.ErrorIs(t, gotErrs[1], err2)
	assert.Contains(t, gotErrs[1].Error(), "second")
}

func TestWaitForPipelineCancelsOnFirstError(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	failing := make(chan error, 1)
	blocked := make(chan error, 1)

	failing <- err1
	close(failing)

	go func() {
		defer close(blocked)

		<-ctx.Done()

		blocked <- ctx.Err()
	}()

	err := waitForPipeline(cancel, newErrorChan("failing", failing), newErrorChan("blocked", blocked))
	require.ErrorIs(t, err, err1)
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestIsZero(t *testing.T) {
	t.Parallel()

	type record struct {
		Word   string
		Vector []float64
	}

	assert.True(t, isZero(0))
	assert.False(t, isZero(1))
	assert.True(t, isZero(record{}))
	assert.False(t, isZero(record{Word: "a"}))
	assert.True(t, isZero[[]int](nil))
}
