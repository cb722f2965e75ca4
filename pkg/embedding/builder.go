package embedding

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Builder collects records. Add and Merge are safe for concurrent use.
type Builder struct {
	mu      sync.Mutex
	records []Record
}

// NewBuilder returns a builder with room for sizeHint records.
func NewBuilder(sizeHint int) *Builder {
	if sizeHint < 0 {
		sizeHint = 0
	}

	return &Builder{records: make([]Record, 0, sizeHint)}
}

// Add appends rec.
func (b *Builder) Add(rec Record) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.records = append(b.records, rec)
}

// Merge moves the records of others into b.
func (b *Builder) Merge(others ...*Builder) {
	for _, other := range others {
		other.mu.Lock()
		records := other.records
		other.records = nil
		other.mu.Unlock()

		b.mu.Lock()
		b.records = append(b.records, records...)
		b.mu.Unlock()
	}
}

// Len returns the number of records collected so far.
func (b *Builder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.records)
}

// Build sorts the records by position and returns the embeddings. Every vector must have
// the dimension of the first one. The builder is empty afterwards.
func (b *Builder) Build() (*Embeddings, error) {
	b.mu.Lock()
	records := b.records
	b.records = nil
	b.mu.Unlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].Pos.Less(records[j].Pos)
	})

	emb := &Embeddings{
		index:   make(map[string]int, len(records)),
		words:   make([]string, len(records)),
		vectors: make([][]float64, len(records)),
	}

	for i, rec := range records {
		if i == 0 {
			emb.dim = len(rec.Vector)
		} else if len(rec.Vector) != emb.dim {
			return nil, errors.Wrapf(ErrDimensionMismatch, "source %d line %d: got %d values, want %d",
				rec.Pos.Source, rec.Pos.Line, len(rec.Vector), emb.dim)
		}

		emb.words[i] = rec.Word
		emb.vectors[i] = rec.Vector
		// the last occurrence of a token wins, as a plain assignment to the map would
		emb.index[rec.Word] = i
	}

	return emb, nil
}
