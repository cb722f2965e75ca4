// Package config loads the wordvec configuration from a YAML file and the environment.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/askiada/go-wordvec/pkg/loader"
)

var ErrInvalid = errors.New("invalid configuration")

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Vectors struct {
	Path string `yaml:"path"`
	// Member selects one file of a zip archive.
	Member      string `yaml:"member"`
	Dim         int    `yaml:"dim"`
	SkipInvalid bool   `yaml:"skip_invalid"`
	MaxLineSize int    `yaml:"max_line_size"`
}

type Load struct {
	Strategies []string `yaml:"strategies"`
	Workers    []int    `yaml:"workers"`
	ChunkSize  int      `yaml:"chunk_size"`
	BufferSize int      `yaml:"buffer_size"`
}

type Dataset struct {
	Path         string  `yaml:"path"`
	TextColumn   string  `yaml:"text_column"`
	LabelColumn  string  `yaml:"label_column"`
	TestFraction float64 `yaml:"test_fraction"`
	Seed         uint64  `yaml:"seed"`
}

type Forest struct {
	Trees           int    `yaml:"trees"`
	MaxDepth        int    `yaml:"max_depth"`
	MinSamplesSplit int    `yaml:"min_samples_split"`
	MaxFeatures     int    `yaml:"max_features"`
	Seed            uint64 `yaml:"seed"`
	Workers         []int  `yaml:"workers"`
}

// Config holds the whole configuration.
type Config struct {
	Log     Log     `yaml:"log"`
	Vectors Vectors `yaml:"vectors"`
	Load    Load    `yaml:"load"`
	Dataset Dataset `yaml:"dataset"`
	Forest  Forest  `yaml:"forest"`
	Repeat  int     `yaml:"repeat"`
}

func defaults() Config {
	return Config{
		Log: Log{Level: "info", Format: "text"},
		Load: Load{
			Strategies: []string{"sequential", "shared", "sharded", "pipeline"},
			Workers:    []int{4},
			ChunkSize:  loader.DefaultChunkSize,
			BufferSize: loader.DefaultBufferSize,
		},
		Dataset: Dataset{
			TextColumn:   "text",
			LabelColumn:  "label",
			TestFraction: 0.2,
			Seed:         42,
		},
		Forest: Forest{
			Trees:           100,
			MinSamplesSplit: 2,
			Seed:            42,
			Workers:         []int{1, 4},
		},
		Repeat: 1,
	}
}

// Load reads the YAML file at path, when it is set, over the defaults, then applies the
// WORDVEC_* environment overrides.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "config: read file")
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrap(err, "config: parse yaml")
		}
	}

	if v := os.Getenv("WORDVEC_VECTORS_PATH"); v != "" {
		cfg.Vectors.Path = v
	}

	if v := os.Getenv("WORDVEC_DATASET_PATH"); v != "" {
		cfg.Dataset.Path = v
	}

	if v := os.Getenv("WORDVEC_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if v := os.Getenv("WORDVEC_REPEAT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, errors.Wrapf(err, "config: invalid WORDVEC_REPEAT %q", v)
		}

		cfg.Repeat = n
	}

	return cfg, nil
}

// Strategies returns the configured load strategies.
func (c Config) Strategies() ([]loader.Strategy, error) {
	strategies := make([]loader.Strategy, 0, len(c.Load.Strategies))

	for _, name := range c.Load.Strategies {
		strategy, err := loader.ParseStrategy(name)
		if err != nil {
			return nil, err
		}

		strategies = append(strategies, strategy)
	}

	return strategies, nil
}

// Validate checks the parts of the configuration needed by workload, one of load, train
// or all.
func (c Config) Validate(workload string) error {
	problems := []string{}

	if c.Repeat < 1 {
		problems = append(problems, "repeat must be at least 1")
	}

	if c.Vectors.Path == "" {
		problems = append(problems, "vectors.path is required")
	}

	if c.Vectors.Dim < 0 {
		problems = append(problems, "vectors.dim must not be negative")
	}

	if workload == "load" || workload == "all" {
		if len(c.Load.Strategies) == 0 {
			problems = append(problems, "load.strategies is empty")
		}

		if _, err := c.Strategies(); err != nil {
			problems = append(problems, err.Error())
		}

		problems = append(problems, checkWorkers("load.workers", c.Load.Workers)...)
	}

	if workload == "train" || workload == "all" {
		if c.Dataset.Path == "" {
			problems = append(problems, "dataset.path is required")
		}

		if c.Dataset.TestFraction <= 0 || c.Dataset.TestFraction >= 1 {
			problems = append(problems, "dataset.test_fraction must be in (0, 1)")
		}

		if c.Forest.Trees < 1 {
			problems = append(problems, "forest.trees must be at least 1")
		}

		problems = append(problems, checkWorkers("forest.workers", c.Forest.Workers)...)
	}

	if len(problems) > 0 {
		return errors.Wrap(ErrInvalid, strings.Join(problems, "; "))
	}

	return nil
}

func checkWorkers(key string, workers []int) []string {
	if len(workers) == 0 {
		return []string{key + " is empty"}
	}

	for _, n := range workers {
		if n < 1 {
			return []string{key + " values must be at least 1"}
		}
	}

	return nil
}
