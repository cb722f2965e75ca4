// Package logging builds the slog logger of the wordvec command.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-wordvec/internal/config"
)

var ErrUnknownFormat = errors.New("unknown log format")

// New returns a logger writing to w at the level and in the format of cfg.
func New(w io.Writer, cfg config.Log) (*slog.Logger, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(cfg.Level))
	if err != nil {
		return nil, errors.Wrapf(err, "log level %q", cfg.Level)
	}

	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", cfg.Format)
	}
}
