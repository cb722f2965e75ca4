package dataset_test

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-wordvec/pkg/dataset"
	"github.com/askiada/go-wordvec/pkg/loader"
	"github.com/askiada/go-wordvec/pkg/source"
	"github.com/askiada/go-wordvec/pkg/workers"
)

const reviews = `id,review,sentiment
1,"A great, great movie!",positive
2,Awful plot.,negative
3,great acting,positive
4,"boring, awful",negative
5,unknown words only,neutral
`

var columns = dataset.Columns{Text: "review", Label: "sentiment"}

func TestLoadCSV(t *testing.T) {
	t.Parallel()

	ds, err := dataset.LoadCSV(strings.NewReader(reviews), columns)
	require.NoError(t, err)
	assert.Equal(t, 5, ds.Len())
	assert.Equal(t, []string{"negative", "neutral", "positive"}, ds.Classes)
	assert.Equal(t, []int{2, 0, 2, 0, 1}, ds.Labels)
	assert.Equal(t, "A great, great movie!", ds.Texts[0])
}

func TestLoadCSVErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		content string
		cols    dataset.Columns
		wantErr error
	}{
		"missing text column": {
			content: reviews,
			cols:    dataset.Columns{Text: "text", Label: "sentiment"},
			wantErr: dataset.ErrColumnNotFound,
		},
		"missing label column": {
			content: reviews,
			cols:    dataset.Columns{Text: "review", Label: "label"},
			wantErr: dataset.ErrColumnNotFound,
		},
		"header only": {
			content: "review,sentiment\n",
			cols:    columns,
			wantErr: dataset.ErrEmptyDataset,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := dataset.LoadCSV(strings.NewReader(tc.content), tc.cols)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}

	_, err := dataset.LoadCSV(strings.NewReader("review,sentiment\nonly one field\n"), columns)
	require.Error(t, err)

	_, err = dataset.LoadCSV(strings.NewReader(""), columns)
	require.Error(t, err)
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a", "great", "great", "movie"}, dataset.Tokenize("A great, great movie!"))
	assert.Equal(t, []string{"it", "s", "10", "10"}, dataset.Tokenize("It's 10/10"))
	assert.Empty(t, dataset.Tokenize(" ... "))
}

func TestSplit(t *testing.T) {
	t.Parallel()

	ds := &dataset.Dataset{Classes: []string{"a", "b"}}
	for i := range 10 {
		ds.Texts = append(ds.Texts, strings.Repeat("x", i+1))
		ds.Labels = append(ds.Labels, i%2)
	}

	train, test, err := dataset.Split(ds, 0.3, 42)
	require.NoError(t, err)
	assert.Equal(t, 7, train.Len())
	assert.Equal(t, 3, test.Len())
	assert.Equal(t, ds.Classes, train.Classes)

	seen := map[string]bool{}
	for _, text := range append(slices.Clone(train.Texts), test.Texts...) {
		seen[text] = true
	}

	assert.Len(t, seen, 10)

	train2, test2, err := dataset.Split(ds, 0.3, 42)
	require.NoError(t, err)
	assert.Equal(t, train.Texts, train2.Texts)
	assert.Equal(t, test.Texts, test2.Texts)

	_, _, err = dataset.Split(ds, 1, 42)
	require.ErrorIs(t, err, dataset.ErrInvalidSplit)

	_, _, err = dataset.Split(&dataset.Dataset{Texts: []string{"x"}, Labels: []int{0}}, 0.5, 1)
	require.ErrorIs(t, err, dataset.ErrEmptyDataset)
}

func TestFeaturize(t *testing.T) {
	t.Parallel()

	res, err := loader.Load(t.Context(), []source.Input{
		source.Inline("vectors", "great 1 0\nawful -1 0\nmovie 0 2\nboring 0 -1\n"),
	}, loader.Options{})
	require.NoError(t, err)

	ds, err := dataset.LoadCSV(strings.NewReader(reviews), columns)
	require.NoError(t, err)

	for _, size := range []int{1, 3} {
		features, unknown, err := dataset.Featurize(t.Context(), res.Embeddings, ds, workers.New(size))
		require.NoError(t, err)
		require.Len(t, features, 5)
		assert.Equal(t, 1, unknown)
		assert.InDeltaSlice(t, []float64{2.0 / 3, 2.0 / 3}, features[0], 1e-9)
		assert.Equal(t, []float64{-1, 0}, features[1])
		assert.Equal(t, []float64{0, 0}, features[4])
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, _, err = dataset.Featurize(ctx, res.Embeddings, ds, workers.New(2))
	require.ErrorIs(t, err, context.Canceled)
}
