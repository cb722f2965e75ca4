// Package loader loads word-vector inputs into embeddings.
//
// The same inputs can be loaded with several strategies:
//
//   - sequential reads and parses every line on the calling goroutine;
//   - shared hands lines to a pool of workers that all add to one mutex-guarded builder;
//   - sharded hands chunks of lines to workers owning a private builder each, and merges
//     the builders once every chunk is parsed;
//   - pipeline runs a pkg/pipeline pipeline: one reader per input, parse workers and a
//     single aggregator, connected by bounded channels.
//
// Every strategy returns the same embeddings for the same inputs.
package loader
