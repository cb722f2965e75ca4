// Package bench times workloads run with several strategies.
package bench

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
)

var ErrNoCase = errors.New("no case to run")

// Case is one workload run with one strategy.
type Case struct {
	Workload string
	Strategy string
	Workers  int
	Fn       func(ctx context.Context) error
}

// Label names the case in tables and charts.
func (c Case) Label() string {
	return fmt.Sprintf("%s/%s/%d", c.Workload, c.Strategy, c.Workers)
}

// Result is the timing of a case.
type Result struct {
	Case Case
	Runs int
	Mean time.Duration
	Min  time.Duration
	Max  time.Duration
}

// Run runs every case repeat times, one after the other, and returns their timings in
// the order of cases. It stops on the first error.
func Run(ctx context.Context, cases []Case, repeat int) ([]Result, error) {
	if len(cases) == 0 {
		return nil, ErrNoCase
	}

	repeat = max(repeat, 1)
	results := make([]Result, 0, len(cases))

	for _, c := range cases {
		res := Result{Case: c}

		var total time.Duration

		for run := range repeat {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			start := time.Now()

			err := c.Fn(ctx)
			if err != nil {
				return nil, errors.Wrapf(err, "%s run %d", c.Label(), run)
			}

			elapsed := time.Since(start)
			total += elapsed

			if run == 0 || elapsed < res.Min {
				res.Min = elapsed
			}

			res.Max = max(res.Max, elapsed)
			res.Runs++
		}

		res.Mean = total / time.Duration(res.Runs)
		results = append(results, res)
	}

	return results, nil
}

// WriteTable writes results as an aligned table. Speedup compares the mean of every
// result with the mean of the first result of the same workload.
func WriteTable(w io.Writer, results []Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "workload\tstrategy\tworkers\truns\tmean\tmin\tmax\tspeedup\t")

	baselines := map[string]time.Duration{}

	for _, res := range results {
		base, ok := baselines[res.Case.Workload]
		if !ok {
			base = res.Mean
			baselines[res.Case.Workload] = base
		}

		speedup := 0.0
		if res.Mean > 0 {
			speedup = float64(base) / float64(res.Mean)
		}

		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\t%s\t%.2fx\t\n",
			res.Case.Workload, res.Case.Strategy, res.Case.Workers, res.Runs,
			round(res.Mean), round(res.Min), round(res.Max), speedup)
	}

	return errors.Wrap(tw.Flush(), "unable to write table")
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Second:
		return d.Round(time.Millisecond)
	case d > time.Millisecond:
		return d.Round(time.Microsecond)
	default:
		return d
	}
}
