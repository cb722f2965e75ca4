// Package dataset loads labelled sentences and turns them into averaged word vectors.
package dataset

import (
	"context"
	"encoding/csv"
	"io"
	"math/rand/v2"
	"slices"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/pkg/errors"

	"github.com/askiada/go-wordvec/pkg/embedding"
	"github.com/askiada/go-wordvec/pkg/workers"
)

var (
	ErrColumnNotFound = errors.New("column not found")
	ErrEmptyDataset   = errors.New("empty dataset")
	ErrInvalidSplit   = errors.New("test fraction must be in (0, 1)")
)

// Columns names the CSV columns holding the sentence and its label.
type Columns struct {
	Text  string
	Label string
}

// Dataset is a list of sentences labelled with the index of their class.
type Dataset struct {
	Texts   []string
	Labels  []int
	Classes []string
}

// Len returns the number of rows.
func (ds *Dataset) Len() int { return len(ds.Texts) }

func (ds *Dataset) subset(rows []int) *Dataset {
	sub := &Dataset{
		Texts:   make([]string, len(rows)),
		Labels:  make([]int, len(rows)),
		Classes: ds.Classes,
	}

	for i, row := range rows {
		sub.Texts[i] = ds.Texts[row]
		sub.Labels[i] = ds.Labels[row]
	}

	return sub
}

// LoadCSV reads a CSV file with a header row. Classes are sorted by name.
func LoadCSV(r io.Reader, cols Columns) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "unable to read header")
	}

	textIdx := slices.Index(header, cols.Text)
	if textIdx < 0 {
		return nil, errors.Wrapf(ErrColumnNotFound, "%q", cols.Text)
	}

	labelIdx := slices.Index(header, cols.Label)
	if labelIdx < 0 {
		return nil, errors.Wrapf(ErrColumnNotFound, "%q", cols.Label)
	}

	texts := []string{}
	labels := []string{}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, errors.Wrap(err, "unable to read row")
		}

		if textIdx >= len(record) || labelIdx >= len(record) {
			line, _ := reader.FieldPos(0)

			return nil, errors.Errorf("line %d: got %d fields", line, len(record))
		}

		texts = append(texts, record[textIdx])
		labels = append(labels, strings.TrimSpace(record[labelIdx]))
	}

	if len(texts) == 0 {
		return nil, ErrEmptyDataset
	}

	classes := slices.Clone(labels)
	slices.Sort(classes)
	classes = slices.Compact(classes)

	ds := &Dataset{
		Texts:   texts,
		Labels:  make([]int, len(labels)),
		Classes: classes,
	}

	for i, label := range labels {
		ds.Labels[i], _ = slices.BinarySearch(classes, label)
	}

	return ds, nil
}

// Tokenize lower-cases text and splits it on every rune that is neither a letter nor a digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Split shuffles the rows with seed and returns the train and test sets. The test set
// holds round(testFraction * len) rows, at least one, and leaves at least one training row.
func Split(ds *Dataset, testFraction float64, seed uint64) (*Dataset, *Dataset, error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, errors.Wrapf(ErrInvalidSplit, "got %v", testFraction)
	}

	if ds.Len() < 2 {
		return nil, nil, errors.Wrapf(ErrEmptyDataset, "cannot split %d rows", ds.Len())
	}

	rows := make([]int, ds.Len())
	for i := range rows {
		rows[i] = i
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rng.Shuffle(len(rows), func(i, j int) {
		rows[i], rows[j] = rows[j], rows[i]
	})

	nTest := int(float64(len(rows))*testFraction + 0.5)
	nTest = min(max(nTest, 1), len(rows)-1)

	return ds.subset(rows[nTest:]), ds.subset(rows[:nTest]), nil
}

// Featurize returns the average vector of the tokens of every row, computed by exec.
// Rows without any known token get a zero vector, their number is returned too.
func Featurize(ctx context.Context, emb *embedding.Embeddings, ds *Dataset, exec workers.Executor) ([][]float64, int, error) {
	features := make([][]float64, ds.Len())

	var unknown atomic.Int64

	err := exec.Run(ctx, ds.Len(), func(_ context.Context, i int) error {
		vec, known := emb.Average(Tokenize(ds.Texts[i]))
		if known == 0 {
			unknown.Add(1)
		}

		features[i] = vec

		return nil
	})
	if err != nil {
		return nil, 0, errors.Wrap(err, "unable to featurize dataset")
	}

	return features, int(unknown.Load()), nil
}
