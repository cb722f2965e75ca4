// Command wordvec benchmarks concurrent word-vector loading and random forest training.
//
//	wordvec -config wordvec.yaml -workload all -repeat 3 -chart timings.svg -graph load.dot -metrics wordvec.prom
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

type flags struct {
	configPath  string
	workload    string
	repeat      int
	chartPath   string
	graphPath   string
	metricsPath string
}

func parseFlags(args []string, stderr io.Writer) (flags, error) {
	var f flags

	fs := flag.NewFlagSet("wordvec", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&f.workload, "workload", "all", "Workload to run: load, train or all")
	fs.IntVar(&f.repeat, "repeat", 0, "Runs per case (overrides the configuration)")
	fs.StringVar(&f.chartPath, "chart", "", "Write an SVG bar chart of the timings to this file")
	fs.StringVar(&f.graphPath, "graph", "", "Write the DOT graph of the load pipeline to this file")
	fs.StringVar(&f.metricsPath, "metrics", "", "Write Prometheus metrics to this file")

	err := fs.Parse(args)
	if err != nil {
		return flags{}, err
	}

	return f, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	err = run(ctx, f, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wordvec: %v\n", err)
		os.Exit(1)
	}
}
