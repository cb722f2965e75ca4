// Package ensemble implements a random forest classifier trained on a workers.Executor.
//
// Every tree draws its bootstrap sample and its feature subsets from a random source
// seeded with the forest seed and the tree index, so a fitted forest does not depend on
// the executor or on the order in which trees were grown.
package ensemble

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/askiada/go-wordvec/pkg/workers"
)

var (
	ErrEmptyTrainingSet = errors.New("empty training set")
	ErrShapeMismatch    = errors.New("shape mismatch")
	ErrNotFitted        = errors.New("forest is not fitted")
	ErrInvalidLabel     = errors.New("labels must be positive or zero")
)

const DefaultTrees = 100

// Config configures a forest.
type Config struct {
	Trees int
	// MaxDepth limits the depth of every tree. Zero means unlimited.
	MaxDepth int
	// MinSamplesSplit is the smallest number of rows a node needs to be split.
	MinSamplesSplit int
	// MaxFeatures is the number of features tried at every split. Zero means the square
	// root of the number of features.
	MaxFeatures int
	Seed        uint64
}

// FitObserver records the outcome of a fit.
type FitObserver interface {
	ObserveFit(trees, workers int, duration time.Duration)
}

// Option configures a forest.
type Option func(f *Forest)

// WithMetrics reports every fit to obs.
func WithMetrics(obs FitObserver) Option {
	return func(f *Forest) {
		f.metrics = obs
	}
}

// WithLogger sets the logger of the forest.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Forest) {
		f.logger = logger
	}
}

// Forest is a random forest of classification trees.
type Forest struct {
	cfg      Config
	trees    []*node
	classes  int
	features int

	metrics FitObserver
	logger  *slog.Logger
}

// New returns an unfitted forest.
func New(cfg Config, opts ...Option) *Forest {
	if cfg.Trees <= 0 {
		cfg.Trees = DefaultTrees
	}

	if cfg.MinSamplesSplit < 2 {
		cfg.MinSamplesSplit = 2
	}

	f := &Forest{
		cfg:    cfg,
		logger: slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Classes returns the number of classes seen by Fit.
func (f *Forest) Classes() int { return f.classes }

// Trees returns the number of fitted trees.
func (f *Forest) Trees() int { return len(f.trees) }

func checkShape(x [][]float64, width int) error {
	for i, row := range x {
		if len(row) != width {
			return errors.Wrapf(ErrShapeMismatch, "row %d has %d features, want %d", i, len(row), width)
		}
	}

	return nil
}

func workersOf(exec workers.Executor) int {
	if pool, ok := exec.(workers.Pool); ok {
		return pool.Size
	}

	return 1
}

// Fit grows the trees of the forest on exec. Labels are class indices.
func (f *Forest) Fit(ctx context.Context, x [][]float64, y []int, exec workers.Executor) error {
	if len(x) == 0 {
		return ErrEmptyTrainingSet
	}

	if len(x) != len(y) {
		return errors.Wrapf(ErrShapeMismatch, "%d rows, %d labels", len(x), len(y))
	}

	features := len(x[0])
	if features == 0 {
		return errors.Wrap(ErrShapeMismatch, "rows have no feature")
	}

	err := checkShape(x, features)
	if err != nil {
		return err
	}

	classes := 0

	for i, label := range y {
		if label < 0 {
			return errors.Wrapf(ErrInvalidLabel, "row %d: %d", i, label)
		}

		classes = max(classes, label+1)
	}

	maxFeatures := f.cfg.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Sqrt(float64(features)))
	}

	maxFeatures = min(max(maxFeatures, 1), features)

	start := time.Now()
	trees := make([]*node, f.cfg.Trees)

	err = exec.Run(ctx, f.cfg.Trees, func(ctx context.Context, i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		rng := rand.New(rand.NewPCG(f.cfg.Seed, uint64(i)))

		sample := make([]int, len(x))
		for j := range sample {
			sample[j] = rng.IntN(len(x))
		}

		builder := &treeBuilder{
			x:           x,
			y:           y,
			classes:     classes,
			maxDepth:    f.cfg.MaxDepth,
			minSplit:    f.cfg.MinSamplesSplit,
			maxFeatures: maxFeatures,
			rng:         rng,
		}
		trees[i] = builder.build(sample, 0)

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "unable to fit forest")
	}

	f.trees = trees
	f.classes = classes
	f.features = features

	duration := time.Since(start)
	f.logger.InfoContext(ctx, "forest fitted",
		"trees", len(trees),
		"rows", len(x),
		"features", features,
		"classes", classes,
		"duration", duration,
	)

	if f.metrics != nil {
		f.metrics.ObserveFit(len(trees), workersOf(exec), duration)
	}

	return nil
}

// PredictProba returns, for every row, the share of trees voting for each class.
// Every tree votes with the class distribution of the leaf the row falls in.
func (f *Forest) PredictProba(x [][]float64) ([][]float64, error) {
	if len(f.trees) == 0 {
		return nil, ErrNotFitted
	}

	err := checkShape(x, f.features)
	if err != nil {
		return nil, err
	}

	probas := make([][]float64, len(x))

	for i, row := range x {
		proba := make([]float64, f.classes)
		for _, tree := range f.trees {
			floats.Add(proba, tree.predict(row))
		}

		floats.Scale(1/float64(len(f.trees)), proba)
		probas[i] = proba
	}

	return probas, nil
}

// Predict returns the most probable class of every row. Ties go to the lowest class.
func (f *Forest) Predict(x [][]float64) ([]int, error) {
	probas, err := f.PredictProba(x)
	if err != nil {
		return nil, err
	}

	labels := make([]int, len(probas))
	for i, proba := range probas {
		labels[i] = floats.MaxIdx(proba)
	}

	return labels, nil
}

// Score returns the accuracy of the forest on x.
func (f *Forest) Score(x [][]float64, y []int) (float64, error) {
	if len(x) != len(y) {
		return 0, errors.Wrapf(ErrShapeMismatch, "%d rows, %d labels", len(x), len(y))
	}

	if len(x) == 0 {
		return 0, errors.Wrap(ErrShapeMismatch, "no rows to score")
	}

	labels, err := f.Predict(x)
	if err != nil {
		return 0, err
	}

	correct := 0

	for i, label := range labels {
		if label == y[i] {
			correct++
		}
	}

	return float64(correct) / float64(len(y)), nil
}
