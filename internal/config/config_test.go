package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-wordvec/internal/config"
	"github.com/askiada/go-wordvec/pkg/loader"
)

func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{"WORDVEC_VECTORS_PATH", "WORDVEC_DATASET_PATH", "WORDVEC_LOG_LEVEL", "WORDVEC_REPEAT"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 1, cfg.Repeat)
	assert.Equal(t, loader.DefaultChunkSize, cfg.Load.ChunkSize)
	assert.Equal(t, 0.2, cfg.Dataset.TestFraction)

	strategies, err := cfg.Strategies()
	require.NoError(t, err)
	assert.Equal(t, loader.Strategies(), strategies)

	require.ErrorIs(t, cfg.Validate("all"), config.ErrInvalid)
}

func TestLoadFromYAML(t *testing.T) {
	clearEnv(t)

	yamlPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `log:
  level: debug
  format: json
vectors:
  path: glove.6B.zip
  member: glove.6B.50d.txt
  skip_invalid: true
load:
  strategies: [sequential, pipeline]
  workers: [2, 8]
dataset:
  path: reviews.csv
  text_column: review
  label_column: sentiment
forest:
  trees: 10
  workers: [4]
repeat: 3
`
	require.NoError(t, os.WriteFile(yamlPath, []byte(content), 0o600))

	cfg, err := config.Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "glove.6B.50d.txt", cfg.Vectors.Member)
	assert.True(t, cfg.Vectors.SkipInvalid)
	assert.Equal(t, []int{2, 8}, cfg.Load.Workers)
	assert.Equal(t, loader.DefaultBufferSize, cfg.Load.BufferSize)
	assert.Equal(t, "sentiment", cfg.Dataset.LabelColumn)
	assert.Equal(t, 10, cfg.Forest.Trees)
	assert.Equal(t, 3, cfg.Repeat)
	require.NoError(t, cfg.Validate("all"))

	strategies, err := cfg.Strategies()
	require.NoError(t, err)
	assert.Equal(t, []loader.Strategy{loader.Sequential, loader.Pipelined}, strategies)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("WORDVEC_VECTORS_PATH", "/data/vectors.txt")
	t.Setenv("WORDVEC_DATASET_PATH", "/data/reviews.csv")
	t.Setenv("WORDVEC_LOG_LEVEL", "warn")
	t.Setenv("WORDVEC_REPEAT", "5")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "/data/vectors.txt", cfg.Vectors.Path)
	assert.Equal(t, "/data/reviews.csv", cfg.Dataset.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 5, cfg.Repeat)

	t.Setenv("WORDVEC_REPEAT", "many")

	_, err = config.Load("")
	require.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	yamlPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("repeat: [1"), 0o600))

	_, err = config.Load(yamlPath)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	base, err := config.Load("")
	require.NoError(t, err)

	base.Vectors.Path = "vectors.txt"

	tcs := map[string]struct {
		mutate   func(cfg *config.Config)
		workload string
		wantErr  bool
	}{
		"load only needs vectors": {
			mutate:   func(*config.Config) {},
			workload: "load",
		},
		"train needs a dataset": {
			mutate:   func(*config.Config) {},
			workload: "train",
			wantErr:  true,
		},
		"unknown strategy": {
			mutate:   func(cfg *config.Config) { cfg.Load.Strategies = []string{"threads"} },
			workload: "load",
			wantErr:  true,
		},
		"zero workers": {
			mutate:   func(cfg *config.Config) { cfg.Load.Workers = []int{0} },
			workload: "load",
			wantErr:  true,
		},
		"bad fraction": {
			mutate: func(cfg *config.Config) {
				cfg.Dataset.Path = "reviews.csv"
				cfg.Dataset.TestFraction = 1
			},
			workload: "train",
			wantErr:  true,
		},
		"zero repeat": {
			mutate:   func(cfg *config.Config) { cfg.Repeat = 0 },
			workload: "load",
			wantErr:  true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			cfg := base
			cfg.Load.Strategies = append([]string{}, base.Load.Strategies...)
			cfg.Load.Workers = append([]int{}, base.Load.Workers...)
			tc.mutate(&cfg)

			err := cfg.Validate(tc.workload)
			if tc.wantErr {
				require.ErrorIs(t, err, config.ErrInvalid)

				return
			}

			require.NoError(t, err)
		})
	}
}
