// Package measure records how long every step of a pipeline spends computing and
// waiting for its input.
package measure
