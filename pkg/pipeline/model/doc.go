// Package model provides the data structures shared by the pipeline package and its options.
// It defines the steps of a pipeline, their description and the hooks a pipeline option
// can implement to observe them.
package model
