package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/askiada/go-wordvec/internal/config"
	"github.com/askiada/go-wordvec/internal/logging"
	"github.com/askiada/go-wordvec/internal/metrics"
	"github.com/askiada/go-wordvec/pkg/bench"
	"github.com/askiada/go-wordvec/pkg/chart"
	"github.com/askiada/go-wordvec/pkg/dataset"
	"github.com/askiada/go-wordvec/pkg/embedding"
	"github.com/askiada/go-wordvec/pkg/ensemble"
	"github.com/askiada/go-wordvec/pkg/loader"
	"github.com/askiada/go-wordvec/pkg/pipeline/drawer"
	"github.com/askiada/go-wordvec/pkg/pipeline/measure"
	"github.com/askiada/go-wordvec/pkg/pipeline/model"
	"github.com/askiada/go-wordvec/pkg/source"
	"github.com/askiada/go-wordvec/pkg/workers"
)

var ErrUnknownWorkload = errors.New("unknown workload")

type app struct {
	cfg      config.Config
	logger   *slog.Logger
	registry *metrics.Registry
	inputs   []source.Input
}

func run(ctx context.Context, f flags, stdout, stderr io.Writer) error {
	if !slices.Contains([]string{"load", "train", "all"}, f.workload) {
		return errors.Wrapf(ErrUnknownWorkload, "%q", f.workload)
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}

	if f.repeat > 0 {
		cfg.Repeat = f.repeat
	}

	err = cfg.Validate(f.workload)
	if err != nil {
		return err
	}

	logger, err := logging.New(stderr, cfg.Log)
	if err != nil {
		return err
	}

	inputs, err := source.Open(cfg.Vectors.Path, cfg.Vectors.Member)
	if err != nil {
		return err
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: metrics.NewRegistry(prometheus.NewRegistry()),
		inputs:   inputs,
	}

	cases := []bench.Case{}

	if f.workload == "load" || f.workload == "all" {
		loadCases, err := a.loadCases()
		if err != nil {
			return err
		}

		cases = append(cases, loadCases...)
	}

	if f.workload == "train" || f.workload == "all" {
		trainCases, err := a.trainCases(ctx)
		if err != nil {
			return err
		}

		cases = append(cases, trainCases...)
	}

	results, err := bench.Run(ctx, cases, cfg.Repeat)
	if err != nil {
		return err
	}

	for _, res := range results {
		a.registry.ObserveBench(res.Case.Workload, res.Case.Strategy, res.Case.Workers, res.Mean)
	}

	err = bench.WriteTable(stdout, results)
	if err != nil {
		return err
	}

	return a.writeOutputs(ctx, f, results)
}

func (a *app) loadOptions(strategy loader.Strategy, workers int, pipelineOpts ...model.PipelineOption) loader.Options {
	return loader.Options{
		Strategy:        strategy,
		Workers:         workers,
		ChunkSize:       a.cfg.Load.ChunkSize,
		BufferSize:      a.cfg.Load.BufferSize,
		Dim:             a.cfg.Vectors.Dim,
		SkipInvalid:     a.cfg.Vectors.SkipInvalid,
		MaxLineSize:     a.cfg.Vectors.MaxLineSize,
		Metrics:         a.registry,
		PipelineOptions: pipelineOpts,
		Logger:          a.logger,
	}
}

func (a *app) loadCases() ([]bench.Case, error) {
	strategies, err := a.cfg.Strategies()
	if err != nil {
		return nil, err
	}

	cases := []bench.Case{}

	for _, strategy := range strategies {
		counts := a.cfg.Load.Workers
		if strategy == loader.Sequential {
			counts = []int{1}
		}

		for _, n := range counts {
			cases = append(cases, bench.Case{
				Workload: "load",
				Strategy: string(strategy),
				Workers:  n,
				Fn: func(ctx context.Context) error {
					_, err := loader.Load(ctx, a.inputs, a.loadOptions(strategy, n))

					return err
				},
			})
		}
	}

	return cases, nil
}

// trainCases loads the vectors and the dataset once, then returns one case per forest
// worker count. Every case fits a forest on the same features.
func (a *app) trainCases(ctx context.Context) ([]bench.Case, error) {
	res, err := loader.Load(ctx, a.inputs, a.loadOptions(loader.Sharded, slices.Max(a.cfg.Forest.Workers)))
	if err != nil {
		return nil, err
	}

	stats := res.Embeddings.Stats()
	a.logger.InfoContext(ctx, "embeddings loaded",
		"vectors", stats.Vectors,
		"unique", stats.Unique,
		"dim", stats.Dim,
		"min_norm", stats.MinNorm,
		"max_norm", stats.MaxNorm,
		"mean_norm", stats.MeanNorm,
	)

	train, test, err := a.loadDataset(ctx, res.Embeddings)
	if err != nil {
		return nil, err
	}

	cases := []bench.Case{}

	for _, n := range a.cfg.Forest.Workers {
		strategy := "sequential"
		if n > 1 {
			strategy = "pool"
		}

		cases = append(cases, bench.Case{
			Workload: "train",
			Strategy: strategy,
			Workers:  n,
			Fn: func(ctx context.Context) error {
				forest := ensemble.New(ensemble.Config{
					Trees:           a.cfg.Forest.Trees,
					MaxDepth:        a.cfg.Forest.MaxDepth,
					MinSamplesSplit: a.cfg.Forest.MinSamplesSplit,
					MaxFeatures:     a.cfg.Forest.MaxFeatures,
					Seed:            a.cfg.Forest.Seed,
				}, ensemble.WithMetrics(a.registry), ensemble.WithLogger(a.logger))

				err := forest.Fit(ctx, train.x, train.y, workers.New(n))
				if err != nil {
					return err
				}

				score, err := forest.Score(test.x, test.y)
				if err != nil {
					return err
				}

				a.logger.InfoContext(ctx, "forest scored", "workers", n, "accuracy", score)

				return nil
			},
		})
	}

	return cases, nil
}

type features struct {
	x [][]float64
	y []int
}

func (a *app) loadDataset(ctx context.Context, emb *embedding.Embeddings) (features, features, error) {
	file, err := os.Open(a.cfg.Dataset.Path)
	if err != nil {
		return features{}, features{}, errors.Wrap(err, "unable to open dataset")
	}
	defer file.Close()

	ds, err := dataset.LoadCSV(file, dataset.Columns{Text: a.cfg.Dataset.TextColumn, Label: a.cfg.Dataset.LabelColumn})
	if err != nil {
		return features{}, features{}, errors.Wrapf(err, "dataset %s", a.cfg.Dataset.Path)
	}

	trainSet, testSet, err := dataset.Split(ds, a.cfg.Dataset.TestFraction, a.cfg.Dataset.Seed)
	if err != nil {
		return features{}, features{}, err
	}

	exec := workers.New(slices.Max(a.cfg.Forest.Workers))
	sets := [2]features{}

	for i, set := range []*dataset.Dataset{trainSet, testSet} {
		x, unknown, err := dataset.Featurize(ctx, emb, set, exec)
		if err != nil {
			return features{}, features{}, err
		}

		if unknown > 0 {
			a.logger.WarnContext(ctx, "rows without any known token", "rows", unknown, "of", set.Len())
		}

		sets[i] = features{x: x, y: set.Labels}
	}

	a.logger.InfoContext(ctx, "dataset ready",
		"train", trainSet.Len(),
		"test", testSet.Len(),
		"classes", len(ds.Classes),
	)

	return sets[0], sets[1], nil
}

// instrumentedLoad runs one untimed pipeline load exporting per-step metrics. When
// graphPath is set, it also measures the steps and writes the pipeline graph there.
func (a *app) instrumentedLoad(ctx context.Context, graphPath string) error {
	pipelineOpts := []model.PipelineOption{a.registry.PipelineOption("load")}

	if graphPath != "" {
		msr := measure.NewDefaultMeasure()
		pipelineOpts = append(pipelineOpts,
			measure.PipelineMeasure(msr),
			drawer.PipelineDrawer(drawer.NewDOTDrawer(graphPath), msr),
		)
	}

	workerCount := 1
	if len(a.cfg.Load.Workers) > 0 {
		workerCount = slices.Max(a.cfg.Load.Workers)
	}

	opts := a.loadOptions(loader.Pipelined, workerCount, pipelineOpts...)
	// the timed cases already reported their loads
	opts.Metrics = nil

	_, err := loader.Load(ctx, a.inputs, opts)

	return errors.Wrap(err, "unable to run instrumented pipeline load")
}

func (a *app) writeOutputs(ctx context.Context, f flags, results []bench.Result) error {
	if f.chartPath != "" {
		file, err := os.Create(f.chartPath)
		if err != nil {
			return errors.Wrap(err, "unable to create chart")
		}

		err = chart.Write(file, fmt.Sprintf("wordvec timings (%d runs)", a.cfg.Repeat), results)
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}

		if err != nil {
			return err
		}
	}

	if f.graphPath != "" || f.metricsPath != "" {
		err := a.instrumentedLoad(ctx, f.graphPath)
		if err != nil {
			return err
		}
	}

	if f.metricsPath != "" {
		return a.registry.WriteTextfile(f.metricsPath)
	}

	return nil
}
