package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-wordvec/internal/config"
	"github.com/askiada/go-wordvec/internal/metrics"
	"github.com/askiada/go-wordvec/pkg/source"
)

func writeFixtures(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	vectors := strings.Join([]string{
		"6 2",
		"good 1 0.1",
		"great 0.9 0.2",
		"fun 0.8 0",
		"bad -1 0.1",
		"awful -0.9 -0.2",
		"dull -0.8 0",
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vectors.vec"), []byte(vectors), 0o600))

	var csv strings.Builder

	csv.WriteString("text,label\n")

	for i := range 20 {
		if i%2 == 0 {
			fmt.Fprintf(&csv, "\"good, great fun %d\",pos\n", i)
		} else {
			fmt.Fprintf(&csv, "\"bad and dull %d\",neg\n", i)
		}
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "reviews.csv"), []byte(csv.String()), 0o600))

	cfg := fmt.Sprintf(`log:
  level: info
vectors:
  path: %s
load:
  workers: [2]
  chunk_size: 2
  buffer_size: 4
dataset:
  path: %s
  test_fraction: 0.25
forest:
  trees: 5
  workers: [1, 2]
`, filepath.Join(dir, "vectors.vec"), filepath.Join(dir, "reviews.csv"))

	configPath := filepath.Join(dir, "wordvec.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o600))

	return dir
}

func TestRun(t *testing.T) {
	for _, key := range []string{"WORDVEC_VECTORS_PATH", "WORDVEC_DATASET_PATH", "WORDVEC_LOG_LEVEL", "WORDVEC_REPEAT"} {
		t.Setenv(key, "")
	}

	dir := writeFixtures(t)
	f, err := parseFlags([]string{
		"-config", filepath.Join(dir, "wordvec.yaml"),
		"-workload", "all",
		"-repeat", "2",
		"-chart", filepath.Join(dir, "timings.svg"),
		"-graph", filepath.Join(dir, "load.dot"),
		"-metrics", filepath.Join(dir, "wordvec.prom"),
	}, &bytes.Buffer{})
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer

	require.NoError(t, run(t.Context(), f, &stdout, &stderr))

	assert.Contains(t, stderr.String(), "embeddings loaded")
	assert.Contains(t, stderr.String(), "unique=6")

	table := stdout.String()
	for _, want := range []string{"sequential", "shared", "sharded", "pipeline", "pool", "train"} {
		assert.Contains(t, table, want)
	}

	// header, 4 load cases and 2 train cases
	assert.Len(t, strings.Split(strings.TrimSpace(table), "\n"), 7)

	svg, err := os.ReadFile(filepath.Join(dir, "timings.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
	assert.Contains(t, string(svg), "load/pipeline/2")
	assert.Contains(t, string(svg), "train/pool/2")

	dot, err := os.ReadFile(filepath.Join(dir, "load.dot"))
	require.NoError(t, err)
	assert.Contains(t, string(dot), `"parse" -> "aggregate"`)

	prom, err := os.ReadFile(filepath.Join(dir, "wordvec.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), "wordvec_load_lines_total")
	assert.Contains(t, string(prom), "wordvec_forest_trees_total")
	assert.Contains(t, string(prom), `wordvec_pipeline_step_items_total{pipeline="load",step="parse"}`)
}

func TestRunErrors(t *testing.T) {
	for _, key := range []string{"WORDVEC_VECTORS_PATH", "WORDVEC_DATASET_PATH", "WORDVEC_LOG_LEVEL", "WORDVEC_REPEAT"} {
		t.Setenv(key, "")
	}

	dir := writeFixtures(t)

	err := run(t.Context(), flags{workload: "serve"}, &bytes.Buffer{}, &bytes.Buffer{})
	require.ErrorIs(t, err, ErrUnknownWorkload)

	err = run(t.Context(), flags{workload: "load"}, &bytes.Buffer{}, &bytes.Buffer{})
	require.ErrorIs(t, err, config.ErrInvalid)

	t.Setenv("WORDVEC_VECTORS_PATH", filepath.Join(dir, "missing.txt"))

	err = run(t.Context(), flags{workload: "load", configPath: filepath.Join(dir, "wordvec.yaml")}, &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)

	_, err = parseFlags([]string{"-repeat", "x"}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestLoadCasesUninstrumented(t *testing.T) {
	for _, key := range []string{"WORDVEC_VECTORS_PATH", "WORDVEC_DATASET_PATH", "WORDVEC_LOG_LEVEL", "WORDVEC_REPEAT"} {
		t.Setenv(key, "")
	}

	dir := writeFixtures(t)

	cfg, err := config.Load(filepath.Join(dir, "wordvec.yaml"))
	require.NoError(t, err)

	inputs, err := source.Open(cfg.Vectors.Path, "")
	require.NoError(t, err)

	a := &app{
		cfg:      cfg,
		logger:   slog.New(slog.DiscardHandler),
		registry: metrics.NewRegistry(prometheus.NewRegistry()),
		inputs:   inputs,
	}

	cases, err := a.loadCases()
	require.NoError(t, err)
	require.Len(t, cases, 4)

	for _, c := range cases {
		require.NoError(t, c.Fn(t.Context()), c.Label())
	}

	assert.Zero(t, testutil.CollectAndCount(a.registry.StepItems))
	assert.Equal(t, 4, testutil.CollectAndCount(a.registry.LoadDuration))

	require.NoError(t, a.instrumentedLoad(t.Context(), ""))
	assert.InDelta(t, 6, testutil.ToFloat64(a.registry.StepItems.WithLabelValues("load", "aggregate")), 0)
	assert.Equal(t, 4, testutil.CollectAndCount(a.registry.LoadDuration))
}
