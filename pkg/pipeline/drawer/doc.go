// Package drawer renders the topology of a pipeline as a Graphviz graph.
package drawer
