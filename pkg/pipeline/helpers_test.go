package pipeline_test

import (
	"testing"

	"github.com/askiada/go-wordvec/pkg/pipeline/model"
)

// createInputStep returns a step already holding 0..total-1, so no goroutine is left
// behind when the pipeline stops early.
func createInputStep(t *testing.T, total int) *model.Step[int] {
	t.Helper()

	inputChan := make(chan int, total)
	for i := range total {
		inputChan <- i
	}

	close(inputChan)

	return &model.Step[int]{
		Output:  inputChan,
		Details: &model.StepInfo{Name: "input"},
	}
}

func processOutputChan(t *testing.T, output <-chan int) []int {
	t.Helper()

	res := []int{}

	for out := range output {
		res = append(res, out)
	}

	return res
}

// collect drains output in the background; the returned function waits for the result.
func collect(t *testing.T, output <-chan int) func() []int {
	t.Helper()

	got := make(chan []int, 1)

	go func() {
		got <- processOutputChan(t, output)
	}()

	return func() []int {
		return <-got
	}
}
