package embedding

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrEmptyLine         = errors.New("empty line")
	ErrMissingVector     = errors.New("token has no vector")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrInvalidValue      = errors.New("invalid vector value")
)

// Pos is the position of a line: the index of its source and its line number, starting at 1.
type Pos struct {
	Source int
	Line   int
}

// Less orders positions by source then line.
func (p Pos) Less(other Pos) bool {
	if p.Source != other.Source {
		return p.Source < other.Source
	}

	return p.Line < other.Line
}

// Record is one parsed line.
type Record struct {
	Pos    Pos
	Word   string
	Vector []float64
}

// ParseLine parses a word-vector line. When dim is positive the token is made of every
// field but the last dim ones, so tokens holding spaces are kept whole; otherwise the
// first field is the token.
func ParseLine(line string, dim int) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Record{}, ErrEmptyLine
	}

	if len(fields) == 1 {
		return Record{}, errors.Wrapf(ErrMissingVector, "token %q", fields[0])
	}

	split := 1

	if dim > 0 {
		if len(fields) <= dim {
			return Record{}, errors.Wrapf(ErrDimensionMismatch, "got %d values, want %d", len(fields)-1, dim)
		}

		split = len(fields) - dim
	}

	values := fields[split:]
	vector := make([]float64, len(values))

	for i, value := range values {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return Record{}, errors.Wrapf(ErrInvalidValue, "value %d %q", i, value)
		}

		vector[i] = f
	}

	return Record{
		Word:   strings.Join(fields[:split], " "),
		Vector: vector,
	}, nil
}

// IsHeader reports whether line is a fastText header: two positive integers.
func IsHeader(line string) bool {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return false
	}

	for _, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil || n <= 0 {
			return false
		}
	}

	return true
}

// InferDim returns the dimension of the vector held by line, assuming a single-field token.
func InferDim(line string) (int, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, ErrEmptyLine
	}

	if len(fields) == 1 {
		return 0, errors.Wrapf(ErrMissingVector, "token %q", fields[0])
	}

	return len(fields) - 1, nil
}
