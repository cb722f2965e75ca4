package embedding

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Embeddings maps tokens to vectors. Every occurrence of a token in the source is kept in
// the ordered lists; Lookup returns the last one. Embeddings are read-only once built and
// safe for concurrent use.
type Embeddings struct {
	index   map[string]int
	words   []string
	vectors [][]float64
	dim     int
}

// Len returns the number of vectors.
func (e *Embeddings) Len() int { return len(e.vectors) }

// Dim returns the dimension of the vectors.
func (e *Embeddings) Dim() int { return e.dim }

// Words returns the tokens in source order. The slice must not be modified.
func (e *Embeddings) Words() []string { return e.words }

// Vectors returns the vectors in source order. The slices must not be modified.
func (e *Embeddings) Vectors() [][]float64 { return e.vectors }

// Unique returns the number of distinct tokens.
func (e *Embeddings) Unique() int { return len(e.index) }

// Index returns the position of token in the ordered lists.
func (e *Embeddings) Index(token string) (int, bool) {
	i, ok := e.index[token]

	return i, ok
}

// Lookup returns the vector of token.
func (e *Embeddings) Lookup(token string) ([]float64, bool) {
	i, ok := e.index[token]
	if !ok {
		return nil, false
	}

	return e.vectors[i], true
}

// Average returns the mean vector of the known tokens and how many of them were known.
// Without any known token it returns the zero vector.
func (e *Embeddings) Average(tokens []string) ([]float64, int) {
	avg := make([]float64, e.dim)
	known := 0

	for _, token := range tokens {
		vec, ok := e.Lookup(token)
		if !ok {
			continue
		}

		floats.Add(avg, vec)

		known++
	}

	if known > 0 {
		floats.Scale(1/float64(known), avg)
	}

	return avg, known
}

// Stats summarises embeddings.
type Stats struct {
	Vectors  int
	Unique   int
	Dim      int
	MinNorm  float64
	MaxNorm  float64
	MeanNorm float64
}

// Stats computes the euclidean norm statistics of the vectors.
func (e *Embeddings) Stats() Stats {
	stats := Stats{
		Vectors: e.Len(),
		Unique:  e.Unique(),
		Dim:     e.dim,
	}

	if len(e.vectors) == 0 {
		return stats
	}

	stats.MinNorm = math.Inf(1)
	total := 0.0

	for _, vec := range e.vectors {
		norm := floats.Norm(vec, 2)
		total += norm
		stats.MinNorm = math.Min(stats.MinNorm, norm)
		stats.MaxNorm = math.Max(stats.MaxNorm, norm)
	}

	stats.MeanNorm = total / float64(len(e.vectors))

	return stats
}
