// Package chart renders benchmark timings as an SVG horizontal bar chart.
package chart

import (
	"image/color"
	"io"
	"slices"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/askiada/go-wordvec/pkg/bench"
	"github.com/askiada/go-wordvec/pkg/pipeline/drawer"
)

const (
	width     = 8 * vg.Inch
	barHeight = vg.Length(0.35) * vg.Inch
	padding   = 1.5 * vg.Inch
)

var ErrNoResult = errors.New("no result to draw")

// barColors returns the colour of every bar, from blue for the fastest mean to red for
// the slowest one.
func barColors(results []bench.Result) ([]color.Color, error) {
	means := make([]time.Duration, len(results))
	for i, res := range results {
		means[i] = res.Mean
	}

	lowest, highest := slices.Min(means), slices.Max(means)
	cols := make([]color.Color, len(results))

	for i, res := range results {
		col, err := drawer.GradientColor(res.Mean, lowest, highest)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to colour %s", res.Case.Label())
		}

		cols[i] = color.RGBA{R: col.R, G: col.G, B: col.B, A: 255}
	}

	return cols, nil
}

// Write draws one bar per result with its mean duration in milliseconds. The first result
// is at the top.
func Write(w io.Writer, title string, results []bench.Result) error {
	if len(results) == 0 {
		return ErrNoResult
	}

	cols, err := barColors(results)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "mean duration (ms)"
	p.X.Min = 0

	labels := make([]string, len(results))

	for i, res := range results {
		// the nominal axis grows upwards
		pos := len(results) - 1 - i
		labels[pos] = res.Case.Label()

		bars, err := plotter.NewBarChart(plotter.Values{float64(res.Mean) / float64(time.Millisecond)}, barHeight)
		if err != nil {
			return errors.Wrapf(err, "unable to create bar of %s", res.Case.Label())
		}

		bars.Horizontal = true
		bars.XMin = float64(pos)
		bars.Color = cols[i]
		bars.LineStyle.Width = 0

		p.Add(bars)
	}

	p.NominalY(labels...)

	canvas := vgsvg.New(width, padding+vg.Length(len(results))*barHeight*1.4)
	p.Draw(draw.New(canvas))

	_, err = canvas.WriteTo(w)

	return errors.Wrap(err, "unable to render chart")
}
