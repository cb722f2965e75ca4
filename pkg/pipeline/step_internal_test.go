package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-wordvec/pkg/pipeline/model"
)

func TestOneToOne(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		concurrent int
	}{
		"sequential":     {concurrent: 1},
		"sequential v2":  {concurrent: 0},
		"concurrent 2":   {concurrent: 2},
		"concurrent 100": {concurrent: 100},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			input := &model.Step[int]{Output: createInputChan(t, 10)}
			output := &model.Step[int]{Output: make(chan int), Details: &model.StepInfo{Concurrent: tc.concurrent}}
			got := make(chan []int, 1)

			go func() {
				got <- processOutputChan(t, output.Output)
			}()

			err := runOneToOne(t.Context(), nil, input, output, func(_ context.Context, i int) (int, error) {
				return i, nil
			}, false)
			close(output.Output)

			require.NoError(t, err)
			assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, <-got)
		})
	}
}

func TestOneToOneDropZero(t *testing.T) {
	t.Parallel()

	input := &model.Step[int]{Output: createInputChan(t, 10)}
	output := &model.Step[int]{Output: make(chan int), Details: &model.StepInfo{Concurrent: 3}}
	got := make(chan []int, 1)

	go func() {
		got <- processOutputChan(t, output.Output)
	}()

	err := runOneToOne(t.Context(), nil, input, output, func(_ context.Context, i int) (int, error) {
		if i%2 == 0 {
			return 0, nil
		}

		return i, nil
	}, true)
	close(output.Output)

	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 3, 5, 7, 9}, <-got)
}

func TestOneToOneCancel(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		concurrent int
	}{
		"sequential":   {concurrent: 1},
		"concurrent 2": {concurrent: 2},
		"concurrent 5": {concurrent: 5},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithCancel(t.Context())
			defer cancel()

			input := &model.Step[int]{Output: createInputChan(t, 10)}
			// nobody reads the output: only the cancellation can unblock the step
			output := &model.Step[int]{Output: make(chan int), Details: &model.StepInfo{Concurrent: tc.concurrent}}

			err := runOneToOne(ctx, nil, input, output, func(_ context.Context, i int) (int, error) {
				if i == 0 {
					cancel()
				}

				return i, nil
			}, false)
			require.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestOneToMany(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		concurrent int
	}{
		"sequential":    {concurrent: 1},
		"concurrent 4":  {concurrent: 4},
		"concurrent 20": {concurrent: 20},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			input := &model.Step[int]{Output: createInputChan(t, 5)}
			output := &model.Step[int]{Output: make(chan int), Details: &model.StepInfo{Concurrent: tc.concurrent}}
			got := make(chan []int, 1)

			go func() {
				got <- processOutputChan(t, output.Output)
			}()

			err := runOneToMany(t.Context(), nil, input, output, func(_ context.Context, i int) ([]int, error) {
				return []int{i, i * 10}, nil
			})
			close(output.Output)

			require.NoError(t, err)
			assert.ElementsMatch(t, []int{0, 0, 1, 10, 2, 20, 3, 30, 4, 40}, <-got)
		})
	}
}

func TestOneToManyError(t *testing.T) {
	t.Parallel()

	input := &model.Step[int]{Output: createInputChan(t, 5)}
	output := &model.Step[int]{Output: make(chan int, 10), Details: &model.StepInfo{Concurrent: 2}}

	err := runOneToMany(t.Context(), nil, input, output, func(_ context.Context, i int) ([]int, error) {
		if i == 3 {
			return nil, assert.AnError
		}

		return []int{i}, nil
	})
	require.ErrorIs(t, err, assert.AnError)
}
