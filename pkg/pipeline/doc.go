// Package pipeline provides a pipeline for processing data.
//
// A pipeline is a graph of steps connected by channels. A root step produces elements,
// intermediate steps transform them (one to one, one to at most one, one to many), a
// splitter copies them to several branches, a merger joins branches back together and
// a sink consumes them. Every step runs in its own goroutines, started by Run.
//
// Channels are bounded: a step with a buffer of size n holds at most n pending elements,
// so a slow consumer pushes back on every producer upstream of it. StepConcurrency
// spreads the work of a step over several goroutines reading the same input.
//
// The pipeline stops on the first error. Run cancels the context given to every step,
// waits until all of them returned and reports the first error, wrapped with the name of
// the step that produced it.
//
// Pipeline options (see the measure and drawer packages) observe the steps through the
// hooks of model.PipelineOption.
package pipeline
