// Package graph compiles workflow definitions into executable graphs.
//
// The sequencer runs a workflow as a strict ordered list. This package
// expresses the same definition as a graph, one node per step, which
// lets callers compose workflow steps with their own nodes and routers.
//
// Example usage:
//
//	seq := autoflow.NewSequencer(gateway)
//	result, err := graph.Run(ctx, def, seq, map[string]any{"ticket": "TK-42"})
package graph
