// Package embedding parses pre-trained word vectors and holds them in memory.
//
// A word-vector file has one token per line followed by its coordinates, separated by
// white space:
//
//	the 0.418 0.24968 -0.41242 0.1217
//	, 0.013441 0.23682 -0.16899 0.40951
//
// fastText ".vec" files start with a header holding the number of tokens and the
// dimension; it is recognised by IsHeader and ignored by the loaders.
//
// Records are produced in any order by concurrent parsers and collected by a Builder,
// which restores the order of the source before building the Embeddings.
package embedding
