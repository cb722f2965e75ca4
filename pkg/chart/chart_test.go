package chart_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-wordvec/pkg/bench"
	"github.com/askiada/go-wordvec/pkg/chart"
)

func TestWrite(t *testing.T) {
	t.Parallel()

	results := []bench.Result{
		{Case: bench.Case{Workload: "load", Strategy: "sequential", Workers: 1}, Runs: 1, Mean: 40 * time.Millisecond},
		{Case: bench.Case{Workload: "load", Strategy: "sharded", Workers: 4}, Runs: 1, Mean: 10 * time.Millisecond},
	}

	var buf bytes.Buffer

	require.NoError(t, chart.Write(&buf, "load timings", results))

	svg := buf.String()
	assert.Contains(t, svg, "<svg")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(svg), "</svg>"))
	assert.Contains(t, svg, "load timings")
	assert.Contains(t, svg, "load/sequential/1")
	assert.Contains(t, svg, "load/sharded/4")
	assert.Contains(t, svg, "mean duration (ms)")
}

func TestWriteEmpty(t *testing.T) {
	t.Parallel()

	err := chart.Write(&bytes.Buffer{}, "empty", nil)
	require.ErrorIs(t, err, chart.ErrNoResult)
}
