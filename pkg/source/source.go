// Package source opens word-vector inputs: plain text files, gzip files and zip archives.
package source

import (
	"bufio"
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
)

// DefaultMaxLineSize fits a 1000-dimension vector written with full float precision.
const DefaultMaxLineSize = 1 << 20

var (
	ErrNoInput        = errors.New("no input")
	ErrMemberNotFound = errors.New("archive member not found")
)

// Input is one stream of lines. Open may be called several times.
type Input struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// Open returns the inputs stored at filePath. A zip archive yields member when it is set,
// otherwise every file it holds, in archive order. Files ending in .gz are decompressed.
func Open(filePath, member string) ([]Input, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".zip":
		return openZip(filePath, member)
	case ".gz":
		return []Input{{Name: filepath.Base(filePath), Open: func() (io.ReadCloser, error) {
			return openGzip(filePath)
		}}}, nil
	default:
		if _, err := os.Stat(filePath); err != nil {
			return nil, errors.Wrapf(err, "unable to stat %s", filePath)
		}

		return []Input{{Name: filepath.Base(filePath), Open: func() (io.ReadCloser, error) {
			file, err := os.Open(filePath)
			if err != nil {
				return nil, errors.Wrapf(err, "unable to open %s", filePath)
			}

			return file, nil
		}}}, nil
	}
}

// Inline returns an input reading content.
func Inline(name, content string) Input {
	return Input{Name: name, Open: func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(content)), nil
	}}
}

type multiCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var first error

	for _, c := range m.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}

	return first
}

func openGzip(filePath string) (io.ReadCloser, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s", filePath)
	}

	gz, err := gzip.NewReader(file)
	if err != nil {
		file.Close()

		return nil, errors.Wrapf(err, "unable to read gzip header of %s", filePath)
	}

	return &multiCloser{Reader: gz, closers: []io.Closer{gz, file}}, nil
}

func openZip(filePath, member string) ([]Input, error) {
	archive, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open archive %s", filePath)
	}
	defer archive.Close()

	inputs := []Input{}

	for _, file := range archive.File {
		if file.FileInfo().IsDir() {
			continue
		}

		if member != "" && file.Name != member && path.Base(file.Name) != member {
			continue
		}

		name := file.Name
		inputs = append(inputs, Input{Name: name, Open: func() (io.ReadCloser, error) {
			return openZipMember(filePath, name)
		}})
	}

	if len(inputs) == 0 {
		if member != "" {
			return nil, errors.Wrapf(ErrMemberNotFound, "%s in %s", member, filePath)
		}

		return nil, errors.Wrapf(ErrNoInput, "archive %s is empty", filePath)
	}

	return inputs, nil
}

func openZipMember(filePath, name string) (io.ReadCloser, error) {
	archive, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open archive %s", filePath)
	}

	for _, file := range archive.File {
		if file.Name != name {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			archive.Close()

			return nil, errors.Wrapf(err, "unable to open %s in %s", name, filePath)
		}

		return &multiCloser{Reader: rc, closers: []io.Closer{rc, archive}}, nil
	}

	archive.Close()

	return nil, errors.Wrapf(ErrMemberNotFound, "%s in %s", name, filePath)
}

// Lines calls fn with every line of r and its number, starting at 1. It stops on the first
// error of fn or when ctx is done.
func Lines(ctx context.Context, r io.Reader, maxLineSize int, fn func(lineNo int, line string) error) error {
	if maxLineSize <= 0 {
		maxLineSize = DefaultMaxLineSize
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(64*1024, maxLineSize)), maxLineSize)

	lineNo := 0

	for scanner.Scan() {
		lineNo++

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := fn(lineNo, scanner.Text())
		if err != nil {
			return err
		}
	}

	err := scanner.Err()
	if err != nil {
		return errors.Wrapf(err, "unable to read line %d", lineNo+1)
	}

	return nil
}

// ReadLines opens input and calls fn with each of its lines.
func ReadLines(ctx context.Context, input Input, maxLineSize int, fn func(lineNo int, line string) error) error {
	rc, err := input.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	err = Lines(ctx, rc, maxLineSize, fn)
	if err != nil {
		return errors.Wrapf(err, "input %s", input.Name)
	}

	return nil
}
